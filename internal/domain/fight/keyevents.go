package fight

import (
	"fmt"
	"time"

	"github.com/okian/skirmish/internal/domain/model"
)

// Default key event thresholds.
const (
	defaultBurstDamage  = 500
	defaultBurstHealing = 500
)

// Reason says why an event was flagged.
type Reason string

// Key event reasons.
const (
	ReasonDeath        Reason = "death"
	ReasonBurstDamage  Reason = "burst_damage"
	ReasonBurstHealing Reason = "burst_healing"
	ReasonCCLanded     Reason = "cc_landed"
	ReasonCCResisted   Reason = "cc_resisted"
)

// KeyEvent is a flagged moment of a session.
type KeyEvent struct {
	EventID   string        `json:"event_id" yaml:"event_id" csv:"event_id"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp" csv:"timestamp"`
	Offset    time.Duration `json:"offset" yaml:"offset" csv:"-"`
	Kind      model.Kind    `json:"kind" yaml:"kind" csv:"kind"`
	Reason    Reason        `json:"reason" yaml:"reason" csv:"reason"`
	Source    string        `json:"source,omitempty" yaml:"source,omitempty" csv:"source"`
	Target    string        `json:"target,omitempty" yaml:"target,omitempty" csv:"target"`
	Value     int64         `json:"value,omitempty" yaml:"value,omitempty" csv:"value"`
}

// Detector flags deaths, burst damage and healing, and crowd control.
type Detector struct {
	burstDamage  int64
	burstHealing int64
}

// NewDetector builds a Detector, validating thresholds eagerly.
func NewDetector(opts ...DetectorOption) (*Detector, error) {
	d := &Detector{
		burstDamage:  defaultBurstDamage,
		burstHealing: defaultBurstHealing,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.burstDamage <= 0 {
		return nil, fmt.Errorf("burst damage threshold %d must be positive: %w", d.burstDamage, ErrInvalidOption)
	}
	if d.burstHealing <= 0 {
		return nil, fmt.Errorf("burst healing threshold %d must be positive: %w", d.burstHealing, ErrInvalidOption)
	}
	return d, nil
}

// Detect returns the flagged events of a session in chronological order.
func (d *Detector) Detect(s model.Session) []KeyEvent {
	f := flagger{d: d, start: s.Start}
	var out []KeyEvent
	for _, e := range s.Events {
		if k := model.Visit[*KeyEvent](e, f); k != nil {
			out = append(out, *k)
		}
	}
	return out
}

// flagger returns nil for events that are not significant.
type flagger struct {
	d     *Detector
	start time.Time
}

func (f flagger) key(h model.Header, kind model.Kind, reason Reason) *KeyEvent {
	return &KeyEvent{
		EventID:   h.ID,
		Timestamp: h.Timestamp,
		Offset:    h.Timestamp.Sub(f.start),
		Kind:      kind,
		Reason:    reason,
	}
}

func (f flagger) VisitDamage(e model.Damage) *KeyEvent {
	if e.Amount < f.d.burstDamage {
		return nil
	}
	k := f.key(e.Header, e.Kind(), ReasonBurstDamage)
	k.Source, k.Target, k.Value = e.Source.Name, e.Target.Name, e.Amount
	return k
}

func (f flagger) VisitHealing(e model.Healing) *KeyEvent {
	if e.Amount < f.d.burstHealing {
		return nil
	}
	k := f.key(e.Header, e.Kind(), ReasonBurstHealing)
	k.Source, k.Target, k.Value = e.Source.Name, e.Target.Name, e.Amount
	return k
}

func (f flagger) VisitCrowdControl(e model.CrowdControl) *KeyEvent {
	reason := ReasonCCLanded
	if e.Resisted {
		reason = ReasonCCResisted
	}
	k := f.key(e.Header, e.Kind(), reason)
	k.Source, k.Target = e.Source.Name, e.Target.Name
	return k
}

func (f flagger) VisitDeath(e model.Death) *KeyEvent {
	k := f.key(e.Header, e.Kind(), ReasonDeath)
	k.Source, k.Target = e.Killer.Name, e.Target.Name
	return k
}

func (f flagger) VisitUnknown(model.Unknown) *KeyEvent { return nil }
