package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/okian/skirmish/internal/domain/breakdown"
	"github.com/okian/skirmish/internal/domain/fight"
	"github.com/okian/skirmish/internal/domain/playerstats"
	"github.com/okian/skirmish/internal/domain/scoring"
	"github.com/okian/skirmish/internal/domain/timeline"
	"github.com/okian/skirmish/internal/domain/types"
)

// Palette.
var (
	ColorBorder  = lipgloss.Color("#4A4A4A")
	ColorTitle   = lipgloss.Color("#C89A3A")
	ColorMuted   = lipgloss.Color("#8C8C8C")
	ColorBright  = lipgloss.Color("#F0F0F0")
	ColorDamage  = lipgloss.Color("#dc2626")
	ColorHealing = lipgloss.Color("#22c55e")
	ColorControl = lipgloss.Color("#3b82f6")
	ColorDeath   = lipgloss.Color("#a855f7")
)

// Theme holds the styles used by the text renderer.
type Theme struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Border  lipgloss.Style
	Markers map[timeline.Marker]lipgloss.Style
}

// DefaultTheme returns the standard styles.
func DefaultTheme() Theme {
	marker := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c).Bold(true) }
	return Theme{
		Title:  lipgloss.NewStyle().Foreground(ColorTitle).Bold(true),
		Label:  lipgloss.NewStyle().Foreground(ColorMuted),
		Value:  lipgloss.NewStyle().Foreground(ColorBright).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(ColorMuted),
		Header: lipgloss.NewStyle().Foreground(ColorTitle).Bold(true).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Border: lipgloss.NewStyle().Foreground(ColorBorder),
		Markers: map[timeline.Marker]lipgloss.Style{
			timeline.MarkerDamage:  marker(ColorDamage),
			timeline.MarkerHealing: marker(ColorHealing),
			timeline.MarkerControl: marker(ColorControl),
			timeline.MarkerDeath:   marker(ColorDeath),
			timeline.MarkerOther:   marker(ColorMuted),
		},
	}
}

func (t Theme) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(t.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.Header
			}
			return t.Cell
		}).
		String()
}

// pairs renders label/value pairs on one line.
func (t Theme) pairs(kv ...string) string {
	parts := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		parts = append(parts, t.Label.Render(kv[i]+":")+" "+t.Value.Render(kv[i+1]))
	}
	return strings.Join(parts, "   ")
}

func block(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, kept...) + "\n"
}

func rate(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func percent(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" }

func seconds(d time.Duration) string { return d.Round(time.Millisecond).String() }

func (l SessionList) render(t Theme) string {
	if len(l.Sessions) == 0 {
		return block(t.Title.Render("Sessions"), t.Muted.Render("no sessions detected"))
	}
	rows := make([][]string, 0, len(l.Sessions))
	for i, s := range l.Sessions {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.ID,
			s.Start.Format(time.DateTime),
			seconds(s.Duration),
			humanize.Comma(int64(s.Events)),
			s.Players,
		})
	}
	return block(
		t.Title.Render("Sessions"),
		t.table([]string{"#", "ID", "Start", "Duration", "Events", "Players"}, rows),
		t.Muted.Render(fmt.Sprintf("%d run(s) discarded as noise", l.Noise)),
	)
}

func meterTable(t Theme, entries []fight.MeterEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			e.Entity.Name,
			humanize.Comma(e.Total),
			rate(e.Rate),
			rate(e.PeakRate),
			percent(e.Percent),
			strconv.Itoa(e.Hits),
		})
	}
	return t.table([]string{"#", "Name", "Total", "Rate", "Peak", "Share", "Hits"}, rows)
}

func renderSummary(t Theme, s fight.Summary) string {
	parts := []string{
		t.Title.Render("Session " + s.SessionID),
		t.pairs(
			"start", s.Start.Format(time.DateTime),
			"duration", seconds(s.Duration),
			"dps", rate(s.DPS),
			"hps", rate(s.HPS),
		),
		t.pairs(
			"damage", humanize.Comma(s.Totals.Damage),
			"healing", humanize.Comma(s.Totals.Healing),
			"deaths", strconv.Itoa(s.Totals.Deaths),
			"crits", strconv.Itoa(s.Totals.Criticals),
		),
	}
	if len(s.DamageMeter) > 0 {
		parts = append(parts, t.Label.Render("Damage meter"), meterTable(t, s.DamageMeter))
	}
	if len(s.HealingMeter) > 0 {
		parts = append(parts, t.Label.Render("Healing meter"), meterTable(t, s.HealingMeter))
	}
	if len(s.KeyEvents) > 0 {
		rows := make([][]string, 0, len(s.KeyEvents))
		for _, k := range s.KeyEvents {
			value := ""
			if k.Value != 0 {
				value = humanize.Comma(k.Value)
			}
			rows = append(rows, []string{seconds(k.Offset), string(k.Reason), k.Source, k.Target, value})
		}
		parts = append(parts, t.Label.Render("Key events"),
			t.table([]string{"At", "Reason", "Source", "Target", "Value"}, rows))
	}
	return block(parts...)
}

func renderSummaries(t Theme, summaries []fight.Summary) string {
	if len(summaries) == 0 {
		return block(t.Muted.Render("no sessions to summarize"))
	}
	out := make([]string, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, renderSummary(t, s))
	}
	return strings.Join(out, "\n")
}

func renderTimeline(t Theme, sessionID string, r timeline.Result) string {
	lines := make([]string, 0, len(r.Entries)+2)
	lines = append(lines, t.Title.Render("Timeline "+sessionID))
	for _, e := range r.Entries {
		style, ok := t.Markers[e.Marker]
		if !ok {
			style = t.Muted
		}
		marker := style.Render(fmt.Sprintf("%-8s", e.Marker))
		lines = append(lines, t.Muted.Render("["+e.Time+"]")+" "+marker+" "+e.Description)
	}
	c := r.Counters
	lines = append(lines, t.pairs(
		"matched", fmt.Sprintf("%d/%d", c.Matched, c.Total),
		"damage", humanize.Comma(c.Damage),
		"healing", humanize.Comma(c.Healing),
		"crits", strconv.Itoa(c.Criticals),
	))
	return block(lines...)
}

func renderStats(t Theme, a playerstats.Aggregate) string {
	if a.Sessions == 0 {
		return block(t.Title.Render(a.Player), t.Muted.Render("no sessions recorded"))
	}
	parts := []string{
		t.Title.Render(a.Player),
		t.pairs(
			"sessions", strconv.Itoa(a.Sessions),
			"score", rate(a.Score),
			"rating", string(a.Rating),
			"consistency", string(a.Consistency),
		),
		t.pairs(
			"avg dps", rate(a.AvgDPS),
			"best dps", rate(a.BestDPS),
			"avg hps", rate(a.AvgHPS),
			"best hps", rate(a.BestHPS),
		),
		t.pairs(
			"kills", strconv.Itoa(a.Kills),
			"deaths", strconv.Itoa(a.Deaths),
			"kdr", strconv.FormatFloat(a.KDR, 'f', 2, 64),
			"survival", percent(a.SurvivalRate*100),
		),
	}
	if tr := a.Trend; tr != nil {
		prediction := "n/a"
		if tr.Prediction != nil {
			prediction = rate(*tr.Prediction)
		}
		parts = append(parts, t.pairs(
			"trend", string(tr.Direction),
			"slope", strconv.FormatFloat(tr.Slope, 'f', 2, 64),
			"r2", strconv.FormatFloat(tr.RSquared, 'f', 2, 64),
			"next", prediction,
		))
	}
	rows := make([][]string, 0, len(a.History))
	for _, h := range a.History {
		rows = append(rows, []string{
			h.Start.Format(time.DateTime),
			h.SessionID,
			string(h.Role),
			rate(h.DPS),
			rate(h.HPS),
			fmt.Sprintf("%d/%d", h.Kills, h.Deaths),
			rate(h.Score),
			ratingLabel(h.Rating),
		})
	}
	parts = append(parts, t.table([]string{"Start", "Session", "Role", "DPS", "HPS", "K/D", "Score", "Rating"}, rows))
	return block(parts...)
}

func ratingLabel(r scoring.Rating) string { return strings.ReplaceAll(string(r), "_", " ") }

func renderLeaderboard(t Theme, entries []types.Entry) string {
	if len(entries) == 0 {
		return block(t.Title.Render("Leaderboard"), t.Muted.Render("no players recorded"))
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{strconv.Itoa(e.Rank), e.Player, rate(e.Score), strconv.Itoa(e.Sessions), e.SessionID})
	}
	return block(t.Title.Render("Leaderboard"),
		t.table([]string{"#", "Player", "Best", "Sessions", "Best session"}, rows))
}

func renderBreakdown(t Theme, title string, groups []breakdown.Group, total int64) string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.Key,
			humanize.Comma(g.Total),
			humanize.Comma(g.Effective),
			strconv.Itoa(g.Count),
			rate(g.Average),
			percent(g.Percent),
			strconv.Itoa(g.Crits),
		})
	}
	return block(
		t.Title.Render(title),
		t.table([]string{"Group", "Total", "Effective", "Hits", "Average", "Share", "Crits"}, rows),
		t.pairs("total", humanize.Comma(total)),
	)
}
