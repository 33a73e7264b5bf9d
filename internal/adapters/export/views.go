package export

import (
	"strings"
	"time"

	"github.com/okian/skirmish/internal/domain/fight"
	"github.com/okian/skirmish/internal/domain/model"
)

// SessionRow is the listing view of a detected session.
type SessionRow struct {
	ID           string              `json:"id" yaml:"id" csv:"id"`
	Start        time.Time           `json:"start" yaml:"start" csv:"start"`
	End          time.Time           `json:"end" yaml:"end" csv:"end"`
	Duration     time.Duration       `json:"duration" yaml:"duration" csv:"-"`
	Seconds      float64             `json:"-" yaml:"-" csv:"seconds"`
	Events       int                 `json:"events" yaml:"events" csv:"events"`
	Players      string              `json:"-" yaml:"-" csv:"players"`
	Participants []model.Participant `json:"participants" yaml:"participants" csv:"-"`
}

// SessionList is the document form of a detection run.
type SessionList struct {
	Sessions []SessionRow `json:"sessions" yaml:"sessions"`
	Noise    int          `json:"noise" yaml:"noise"`
}

// NewSessionList builds the listing of sessions.
func NewSessionList(sessions []model.Session, noise int) SessionList {
	rows := make([]SessionRow, 0, len(sessions))
	for _, s := range sessions {
		var players []string
		for _, p := range s.Participants {
			if p.Entity.IsPlayer() {
				players = append(players, p.Entity.Name)
			}
		}
		rows = append(rows, SessionRow{
			ID:           s.ID,
			Start:        s.Start,
			End:          s.End,
			Duration:     s.Duration(),
			Seconds:      s.Duration().Seconds(),
			Events:       len(s.Events),
			Players:      strings.Join(players, " "),
			Participants: s.Participants,
		})
	}
	return SessionList{Sessions: rows, Noise: noise}
}

// meterRow flattens a meter entry for CSV.
type meterRow struct {
	SessionID string  `csv:"session_id"`
	Meter     string  `csv:"meter"`
	Rank      int     `csv:"rank"`
	Name      string  `csv:"name"`
	Category  string  `csv:"category"`
	Total     int64   `csv:"total"`
	Rate      float64 `csv:"rate"`
	PeakRate  float64 `csv:"peak_rate"`
	Percent   float64 `csv:"percent"`
	Hits      int     `csv:"hits"`
}

func meterRows(s fight.Summary) []meterRow {
	rows := make([]meterRow, 0, len(s.DamageMeter)+len(s.HealingMeter))
	add := func(meter string, entries []fight.MeterEntry) {
		for _, e := range entries {
			rows = append(rows, meterRow{
				SessionID: s.SessionID,
				Meter:     meter,
				Rank:      e.Rank,
				Name:      e.Entity.Name,
				Category:  string(e.Entity.Category),
				Total:     e.Total,
				Rate:      e.Rate,
				PeakRate:  e.PeakRate,
				Percent:   e.Percent,
				Hits:      e.Hits,
			})
		}
	}
	add("damage", s.DamageMeter)
	add("healing", s.HealingMeter)
	return rows
}
