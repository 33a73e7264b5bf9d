// Package export renders analysis results as JSON, YAML, CSV or styled text.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/okian/skirmish/internal/domain/breakdown"
	"github.com/okian/skirmish/internal/domain/fight"
	"github.com/okian/skirmish/internal/domain/playerstats"
	"github.com/okian/skirmish/internal/domain/timeline"
	"github.com/okian/skirmish/internal/domain/types"
)

// Format is an output encoding.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// Formats lists the supported formats.
func Formats() []Format { return []Format{FormatText, FormatJSON, FormatYAML, FormatCSV} }

// ParseFormat resolves a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Writer encodes views to an output stream in one format.
type Writer struct {
	out    io.Writer
	format Format
	theme  Theme
}

// NewWriter returns a writer for format.
func NewWriter(out io.Writer, format Format) *Writer {
	return &Writer{out: out, format: format, theme: DefaultTheme()}
}

// Format returns the writer's format.
func (w *Writer) Format() Format { return w.format }

// write encodes doc for json and yaml, rows for csv and the rendered text otherwise.
func (w *Writer) write(doc, rows any, text func(Theme) string) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	case FormatCSV:
		if err := gocsv.Marshal(rows, w.out); err != nil {
			return fmt.Errorf("encode csv: %w", err)
		}
		return nil
	case FormatText:
		if _, err := io.WriteString(w.out, text(w.theme)); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, w.format)
}

// Sessions writes a session listing.
func (w *Writer) Sessions(list SessionList) error {
	return w.write(list, list.Sessions, list.render)
}

// Summaries writes fight summaries. CSV output holds the meters.
func (w *Writer) Summaries(summaries []fight.Summary) error {
	var rows []meterRow
	for _, s := range summaries {
		rows = append(rows, meterRows(s)...)
	}
	var doc any = summaries
	if len(summaries) == 1 {
		doc = summaries[0]
	}
	return w.write(doc, rows, func(t Theme) string { return renderSummaries(t, summaries) })
}

// Timeline writes a filtered timeline.
func (w *Writer) Timeline(sessionID string, r timeline.Result) error {
	doc := struct {
		SessionID string `json:"session_id" yaml:"session_id"`
		timeline.Result `yaml:",inline"`
	}{sessionID, r}
	return w.write(doc, r.Entries, func(t Theme) string { return renderTimeline(t, sessionID, r) })
}

// Stats writes a player aggregate. CSV output holds the per-session history.
func (w *Writer) Stats(a playerstats.Aggregate) error {
	return w.write(a, a.History, func(t Theme) string { return renderStats(t, a) })
}

// Leaderboard writes leaderboard entries.
func (w *Writer) Leaderboard(entries []types.Entry) error {
	return w.write(entries, entries, func(t Theme) string { return renderLeaderboard(t, entries) })
}

// DamageBreakdown writes a damage breakdown.
func (w *Writer) DamageBreakdown(r breakdown.DamageReport) error {
	return w.write(r, r.Groups, func(t Theme) string { return renderBreakdown(t, "Damage breakdown", r.Groups, r.Total) })
}

// HealingBreakdown writes a healing breakdown.
func (w *Writer) HealingBreakdown(r breakdown.HealingReport) error {
	return w.write(r, r.Groups, func(t Theme) string { return renderBreakdown(t, "Healing breakdown", r.Groups, r.Total) })
}
