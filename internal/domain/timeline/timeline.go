package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/skirmish/internal/domain/model"
)

const defaultPrecision = time.Millisecond

// Marker is the display category of an entry.
type Marker string

// Entry markers, one per event kind.
const (
	MarkerDamage  Marker = "damage"
	MarkerHealing Marker = "healing"
	MarkerControl Marker = "control"
	MarkerDeath   Marker = "death"
	MarkerOther   Marker = "other"
)

// Markers lists every marker in display order.
func Markers() []Marker {
	return []Marker{MarkerDamage, MarkerHealing, MarkerControl, MarkerDeath, MarkerOther}
}

// ParseMarker accepts a marker name or an event kind name.
func ParseMarker(s string) (Marker, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(MarkerDamage):
		return MarkerDamage, nil
	case string(MarkerHealing), "heal":
		return MarkerHealing, nil
	case string(MarkerControl), string(model.KindCrowdControl), "cc":
		return MarkerControl, nil
	case string(MarkerDeath):
		return MarkerDeath, nil
	case string(MarkerOther), string(model.KindUnknown):
		return MarkerOther, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownMarker)
}

// Value units.
const (
	UnitDamage  = "damage"
	UnitHealing = "healing"
	UnitSeconds = "s"
)

// Entry is one timeline line.
type Entry struct {
	EventID     string        `json:"event_id" yaml:"event_id" csv:"event_id"`
	Timestamp   time.Time     `json:"timestamp" yaml:"timestamp" csv:"timestamp"`
	Offset      time.Duration `json:"offset" yaml:"offset" csv:"-"`
	Time        string        `json:"time" yaml:"time" csv:"time"`
	Marker      Marker        `json:"marker" yaml:"marker" csv:"marker"`
	Description string        `json:"description" yaml:"description" csv:"description"`
	Value       int64         `json:"value,omitempty" yaml:"value,omitempty" csv:"value"`
	Unit        string        `json:"unit,omitempty" yaml:"unit,omitempty" csv:"unit"`
	Source      string        `json:"source,omitempty" yaml:"source,omitempty" csv:"source"`
	Target      string        `json:"target,omitempty" yaml:"target,omitempty" csv:"target"`
	Critical    bool          `json:"critical,omitempty" yaml:"critical,omitempty" csv:"critical"`
}

// HasValue reports whether the entry carries a primary value.
func (e Entry) HasValue() bool { return e.Unit != "" }

// Generator maps session events to entries. It is immutable after
// construction and safe for concurrent use.
type Generator struct {
	precision time.Duration
	rawText   bool
}

// NewGenerator builds a Generator, validating the configuration eagerly.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{precision: defaultPrecision}
	for _, opt := range opts {
		opt(g)
	}
	if g.precision <= 0 {
		return nil, fmt.Errorf("precision %s must be positive: %w", g.precision, ErrInvalidOption)
	}
	return g, nil
}

// Generate returns one entry per session event, in session order.
func (g *Generator) Generate(s model.Session) []Entry {
	out := make([]Entry, 0, len(s.Events))
	for _, e := range s.Events {
		entry := model.Visit[Entry](e, describer{})
		h := e.Meta()
		entry.EventID = h.ID
		entry.Timestamp = h.Timestamp
		entry.Offset = h.Timestamp.Sub(s.Start)
		entry.Time = g.FormatOffset(entry.Offset)
		if g.rawText && h.Raw != "" {
			entry.Description = h.Raw
		}
		out = append(out, entry)
	}
	return out
}

// FormatOffset renders an offset as [-]MM:SS.mmm, rounded to the precision.
func (g *Generator) FormatOffset(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	d = d.Round(g.precision)
	m := d / time.Minute
	sec := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%s%02d:%02d.%03d", sign, m, sec, ms)
}

type describer struct{}

func (describer) VisitDamage(e model.Damage) Entry {
	var b strings.Builder
	fmt.Fprintf(&b, "%s hits %s", name(e.Source), name(e.Target))
	if e.Ability != "" {
		fmt.Fprintf(&b, " with %s", e.Ability)
	}
	kind := e.DamageType
	if kind == "" {
		kind = model.UnknownDamageType
	}
	fmt.Fprintf(&b, " for %s %s damage", humanize.Comma(e.Effective()), strings.ToLower(kind))
	if e.Absorbed > 0 {
		fmt.Fprintf(&b, " (%s absorbed)", humanize.Comma(e.Absorbed))
	}
	switch {
	case e.Blocked:
		b.WriteString(" (blocked)")
	case e.Parried:
		b.WriteString(" (parried)")
	case e.Evaded:
		b.WriteString(" (evaded)")
	}
	if e.Critical {
		b.WriteString(" (critical)")
	}
	return Entry{
		Marker:      MarkerDamage,
		Description: b.String(),
		Value:       e.Effective(),
		Unit:        UnitDamage,
		Source:      e.Source.Name,
		Target:      e.Target.Name,
		Critical:    e.Critical,
	}
}

func (describer) VisitHealing(e model.Healing) Entry {
	var b strings.Builder
	fmt.Fprintf(&b, "%s heals %s", name(e.Source), name(e.Target))
	if e.Ability != "" {
		fmt.Fprintf(&b, " with %s", e.Ability)
	}
	fmt.Fprintf(&b, " for %s", humanize.Comma(e.Effective()))
	if over := e.Overheal(); over > 0 {
		fmt.Fprintf(&b, " (%s overheal)", humanize.Comma(over))
	}
	if e.Critical {
		b.WriteString(" (critical)")
	}
	return Entry{
		Marker:      MarkerHealing,
		Description: b.String(),
		Value:       e.Effective(),
		Unit:        UnitHealing,
		Source:      e.Source.Name,
		Target:      e.Target.Name,
		Critical:    e.Critical,
	}
}

func (describer) VisitCrowdControl(e model.CrowdControl) Entry {
	effect := string(e.Effect)
	if effect == "" {
		effect = string(model.ControlOther)
	}
	entry := Entry{Marker: MarkerControl, Source: e.Source.Name, Target: e.Target.Name}
	if e.Resisted {
		entry.Description = fmt.Sprintf("%s resists %s from %s", name(e.Target), effect, name(e.Source))
		return entry
	}
	entry.Description = fmt.Sprintf("%s applies %s to %s", name(e.Source), effect, name(e.Target))
	if e.Duration > 0 {
		secs := int64(e.Duration.Round(time.Second) / time.Second)
		entry.Description += fmt.Sprintf(" for %ds", secs)
		entry.Value, entry.Unit = secs, UnitSeconds
	}
	return entry
}

func (describer) VisitDeath(e model.Death) Entry {
	entry := Entry{Marker: MarkerDeath, Target: e.Target.Name, Source: e.Killer.Name}
	if e.HasKiller() {
		entry.Description = fmt.Sprintf("%s is killed by %s", name(e.Target), e.Killer.Name)
	} else {
		entry.Description = fmt.Sprintf("%s dies", name(e.Target))
	}
	return entry
}

func (describer) VisitUnknown(e model.Unknown) Entry {
	d := e.Raw
	if d == "" {
		d = "unrecognised event"
	}
	return Entry{Marker: MarkerOther, Description: d}
}

func name(e model.Entity) string {
	if e.IsZero() {
		return "someone"
	}
	return e.Name
}
