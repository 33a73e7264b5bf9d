package fight

import (
	"math"
	"sort"
	"time"

	"github.com/okian/skirmish/internal/domain/model"
	"github.com/okian/skirmish/internal/domain/rate"
)

// MeterEntry is one ranked row of a damage or healing meter.
type MeterEntry struct {
	Rank     int          `json:"rank" yaml:"rank" csv:"rank"`
	Entity   model.Entity `json:"entity" yaml:"entity" csv:"-"`
	Name     string       `json:"-" yaml:"-" csv:"name"`
	Total    int64        `json:"total" yaml:"total" csv:"total"`
	Rate     float64      `json:"rate" yaml:"rate" csv:"rate"`
	PeakRate float64      `json:"peak_rate" yaml:"peak_rate" csv:"peak_rate"`
	Percent  float64      `json:"percent" yaml:"percent" csv:"percent"`
	Hits     int          `json:"hits" yaml:"hits" csv:"hits"`
}

// Totals are session-wide counters. Dealt/received figures are from the
// player side: players, the log owner and pets.
type Totals struct {
	Events          int   `json:"events" yaml:"events"`
	Damage          int64 `json:"damage" yaml:"damage"`
	Healing         int64 `json:"healing" yaml:"healing"`
	DamageDealt     int64 `json:"damage_dealt" yaml:"damage_dealt"`
	DamageReceived  int64 `json:"damage_received" yaml:"damage_received"`
	HealingDone     int64 `json:"healing_done" yaml:"healing_done"`
	HealingReceived int64 `json:"healing_received" yaml:"healing_received"`
	Deaths          int   `json:"deaths" yaml:"deaths"`
	CrowdControls   int   `json:"crowd_controls" yaml:"crowd_controls"`
	Resisted        int   `json:"resisted" yaml:"resisted"`
	Criticals       int   `json:"criticals" yaml:"criticals"`
}

// Summary is the read-only fight view of one session.
type Summary struct {
	SessionID     string        `json:"session_id" yaml:"session_id"`
	Start         time.Time     `json:"start" yaml:"start"`
	End           time.Time     `json:"end" yaml:"end"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
	DPS           float64       `json:"dps" yaml:"dps"`
	HPS           float64       `json:"hps" yaml:"hps"`
	DamageMeter   []MeterEntry  `json:"damage_meter" yaml:"damage_meter"`
	HealingMeter  []MeterEntry  `json:"healing_meter" yaml:"healing_meter"`
	KeyEvents     []KeyEvent    `json:"key_events" yaml:"key_events"`
	Totals        Totals        `json:"totals" yaml:"totals"`
	DamageSeries  []rate.Point  `json:"damage_series,omitempty" yaml:"damage_series,omitempty"`
	HealingSeries []rate.Point  `json:"healing_series,omitempty" yaml:"healing_series,omitempty"`
}

// Summarizer builds fight summaries. It is immutable after construction and
// safe for concurrent use.
type Summarizer struct {
	rates    *rate.Calculator
	detector *Detector
}

// NewSummarizer builds a Summarizer, defaulting any collaborator not supplied.
func NewSummarizer(opts ...SummarizerOption) (*Summarizer, error) {
	s := &Summarizer{}
	for _, opt := range opts {
		opt(s)
	}

	if s.rates == nil {
		c, err := rate.NewCalculator()
		if err != nil {
			return nil, err
		}
		s.rates = c
	}
	if s.detector == nil {
		d, err := NewDetector()
		if err != nil {
			return nil, err
		}
		s.detector = d
	}
	return s, nil
}

// Summarize computes the summary of a session. Nothing is cached: calling
// it twice on the same session yields equal summaries.
func (s *Summarizer) Summarize(sess model.Session) Summary {
	dur := sess.Duration()
	damage := rate.DamageSamples(sess.Events, "")
	healing := rate.HealingSamples(sess.Events, "")

	return Summary{
		SessionID:     sess.ID,
		Start:         sess.Start,
		End:           sess.End,
		Duration:      dur,
		DPS:           s.rates.Average(damage, dur),
		HPS:           s.rates.Average(healing, dur),
		DamageMeter:   s.DamageMeter(sess),
		HealingMeter:  s.HealingMeter(sess),
		KeyEvents:     s.detector.Detect(sess),
		Totals:        totals(sess.Events),
		DamageSeries:  s.rates.Series(damage),
		HealingSeries: s.rates.Series(healing),
	}
}

// DamageMeter ranks sources by effective damage dealt.
func (s *Summarizer) DamageMeter(sess model.Session) []MeterEntry {
	m := newMeter()
	for _, d := range model.DamageEvents(sess.Events) {
		m.add(d.Source, d.Effective(), d.Timestamp)
	}
	return m.rank(s.rates, sess.Duration())
}

// HealingMeter ranks sources by effective healing done.
func (s *Summarizer) HealingMeter(sess model.Session) []MeterEntry {
	m := newMeter()
	for _, h := range model.HealingEvents(sess.Events) {
		m.add(h.Source, h.Effective(), h.Timestamp)
	}
	return m.rank(s.rates, sess.Duration())
}

type meterRow struct {
	entry   MeterEntry
	samples []rate.Sample
}

type meter struct {
	index map[string]int
	rows  []meterRow
	total int64
}

func newMeter() *meter {
	return &meter{index: make(map[string]int)}
}

// add attributes amount to src; events without a source are not ranked.
func (m *meter) add(src model.Entity, amount int64, at time.Time) {
	if src.IsZero() {
		return
	}
	i, ok := m.index[src.Name]
	if !ok {
		i = len(m.rows)
		m.index[src.Name] = i
		m.rows = append(m.rows, meterRow{entry: MeterEntry{Entity: src, Name: src.Name}})
	}
	r := &m.rows[i]
	r.entry.Total += amount
	r.entry.Hits++
	r.samples = append(r.samples, rate.Sample{Timestamp: at, Amount: float64(amount)})
	m.total += amount
}

// rank sorts by total desc then name asc and assigns ranks 1..n.
func (m *meter) rank(rates *rate.Calculator, dur time.Duration) []MeterEntry {
	sort.Slice(m.rows, func(i, j int) bool {
		a, b := m.rows[i].entry, m.rows[j].entry
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Name < b.Name
	})

	out := make([]MeterEntry, len(m.rows))
	for i, r := range m.rows {
		e := r.entry
		e.Rank = i + 1
		e.Rate = float64(e.Total) / math.Max(dur.Seconds(), 1)
		e.PeakRate = rates.Peak(r.samples).Rate
		if m.total > 0 {
			e.Percent = float64(e.Total) / float64(m.total) * 100
		}
		out[i] = e
	}
	return out
}

func totals(events []model.Event) Totals {
	t := &tally{Totals: Totals{Events: len(events)}}
	for _, e := range events {
		model.Visit[struct{}](e, t)
	}
	return t.Totals
}

// tally accumulates Totals as a model.Visitor.
type tally struct {
	Totals
}

func (t *tally) VisitDamage(ev model.Damage) struct{} {
	amount := ev.Effective()
	t.Damage += amount
	if ev.Source.Friendly() {
		t.DamageDealt += amount
	}
	if ev.Target.Friendly() {
		t.DamageReceived += amount
	}
	if ev.Critical {
		t.Criticals++
	}
	return struct{}{}
}

func (t *tally) VisitHealing(ev model.Healing) struct{} {
	amount := ev.Effective()
	t.Healing += amount
	if ev.Source.Friendly() {
		t.HealingDone += amount
	}
	if ev.Target.Friendly() {
		t.HealingReceived += amount
	}
	if ev.Critical {
		t.Criticals++
	}
	return struct{}{}
}

func (t *tally) VisitCrowdControl(ev model.CrowdControl) struct{} {
	t.CrowdControls++
	if ev.Resisted {
		t.Resisted++
	}
	return struct{}{}
}

func (t *tally) VisitDeath(model.Death) struct{} {
	t.Deaths++
	return struct{}{}
}

func (t *tally) VisitUnknown(model.Unknown) struct{} { return struct{}{} }
