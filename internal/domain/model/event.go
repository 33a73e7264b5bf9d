package model

import (
	"fmt"
	"sort"
	"time"
)

// Kind is the discriminant of the combat event union.
type Kind string

// Event kinds.
const (
	KindDamage       Kind = "damage"
	KindHealing      Kind = "healing"
	KindCrowdControl Kind = "crowd_control"
	KindDeath        Kind = "death"
	KindUnknown      Kind = "unknown"
)

// Action is how a damage or healing effect was delivered.
type Action string

// Action categories.
const (
	ActionMelee  Action = "melee"
	ActionSpell  Action = "spell"
	ActionStyle  Action = "style"
	ActionRanged Action = "ranged"
	ActionProc   Action = "proc"
	ActionDoT    Action = "dot"
	ActionOther  Action = "other"
)

// Control is the kind of crowd control effect.
type Control string

// Crowd control effects.
const (
	ControlStun    Control = "stun"
	ControlMez     Control = "mez"
	ControlRoot    Control = "root"
	ControlSnare   Control = "snare"
	ControlSilence Control = "silence"
	ControlDisarm  Control = "disarm"
	ControlOther   Control = "other"
)

// UnknownDamageType is used when a damage line carries no type.
const UnknownDamageType = "Unknown"

// Header holds the fields every combat event carries.
type Header struct {
	ID        string    // unique event id
	Timestamp time.Time // when the event happened
	Raw       string    // opaque source text, never interpreted
}

// Meta returns the common header.
func (h Header) Meta() Header { return h }

// Event is the closed union of combat events. Only the types in this
// package implement it: Damage, Healing, CrowdControl, Death and Unknown.
type Event interface {
	Meta() Header
	Kind() Kind
	sealed()
}

// Damage is a hit from Source on Target.
type Damage struct {
	Header
	Source     Entity
	Target     Entity
	Amount     int64  // raw amount before absorption
	Absorbed   int64  // portion soaked by shields or absorbs
	DamageType string // slash, crush, heat, ...
	Action     Action
	Ability    string // optional spell or style name
	Critical   bool
	Blocked    bool
	Parried    bool
	Evaded     bool
}

// Kind implements Event.
func (Damage) Kind() Kind { return KindDamage }
func (Damage) sealed()    {}

// Effective returns Amount minus Absorbed, never below zero.
func (d Damage) Effective() int64 {
	if d.Absorbed >= d.Amount {
		return 0
	}
	return d.Amount - d.Absorbed
}

// Avoided reports whether the hit was blocked, parried or evaded.
func (d Damage) Avoided() bool { return d.Blocked || d.Parried || d.Evaded }

// Healing restores health from Source to Target.
type Healing struct {
	Header
	Source          Entity
	Target          Entity
	Amount          int64 // raw amount cast
	EffectiveAmount int64 // portion that restored missing health
	Action          Action
	Ability         string
	Critical        bool
}

// Kind implements Event.
func (Healing) Kind() Kind { return KindHealing }
func (Healing) sealed()    {}

// Effective returns the restored amount clamped to [0, Amount].
func (h Healing) Effective() int64 {
	switch {
	case h.EffectiveAmount < 0:
		return 0
	case h.EffectiveAmount > h.Amount:
		return h.Amount
	}
	return h.EffectiveAmount
}

// Overheal returns Amount minus Effective, never below zero.
func (h Healing) Overheal() int64 { return h.Amount - h.Effective() }

// CrowdControl is an impairing effect applied (or resisted) on Target.
type CrowdControl struct {
	Header
	Source   Entity
	Target   Entity
	Effect   Control
	Duration time.Duration
	Resisted bool
	Ability  string
}

// Kind implements Event.
func (CrowdControl) Kind() Kind { return KindCrowdControl }
func (CrowdControl) sealed()    {}

// Death records Target dying, optionally at the hands of Killer.
type Death struct {
	Header
	Target Entity
	Killer Entity // zero when unknown
}

// Kind implements Event.
func (Death) Kind() Kind { return KindDeath }
func (Death) sealed()    {}

// HasKiller reports whether the killer is known.
func (d Death) HasKiller() bool { return !d.Killer.IsZero() }

// Unknown is a recognised line the producer could not classify.
type Unknown struct {
	Header
}

// Kind implements Event.
func (Unknown) Kind() Kind { return KindUnknown }
func (Unknown) sealed()    {}

// Visitor handles every event variant. Adding a variant to the union adds a
// method here, so every implementation stops compiling until it handles it.
type Visitor[T any] interface {
	VisitDamage(Damage) T
	VisitHealing(Healing) T
	VisitCrowdControl(CrowdControl) T
	VisitDeath(Death) T
	VisitUnknown(Unknown) T
}

// Visit dispatches e to the matching Visitor method.
func Visit[T any](e Event, v Visitor[T]) T {
	switch ev := e.(type) {
	case Damage:
		return v.VisitDamage(ev)
	case *Damage:
		return v.VisitDamage(*ev)
	case Healing:
		return v.VisitHealing(ev)
	case *Healing:
		return v.VisitHealing(*ev)
	case CrowdControl:
		return v.VisitCrowdControl(ev)
	case *CrowdControl:
		return v.VisitCrowdControl(*ev)
	case Death:
		return v.VisitDeath(ev)
	case *Death:
		return v.VisitDeath(*ev)
	case Unknown:
		return v.VisitUnknown(ev)
	case *Unknown:
		return v.VisitUnknown(*ev)
	}
	panic(fmt.Sprintf("model: unhandled event type %T", e))
}

// Time returns the event timestamp.
func Time(e Event) time.Time { return e.Meta().Timestamp }

// SortedByTime returns a stably sorted copy of events; the input is not modified.
func SortedByTime(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return Time(out[i]).Before(Time(out[j]))
	})
	return out
}

// variant holds the one case an event resolves to; the others stay nil.
type variant struct {
	damage  *Damage
	healing *Healing
	control *CrowdControl
	death   *Death
}

type unpack struct{}

func (unpack) VisitDamage(d Damage) variant             { return variant{damage: &d} }
func (unpack) VisitHealing(h Healing) variant           { return variant{healing: &h} }
func (unpack) VisitCrowdControl(c CrowdControl) variant { return variant{control: &c} }
func (unpack) VisitDeath(d Death) variant               { return variant{death: &d} }
func (unpack) VisitUnknown(Unknown) variant             { return variant{} }

// AsDamage returns e as a Damage value when it is one, by value or pointer.
func AsDamage(e Event) (Damage, bool) {
	if v := Visit[variant](e, unpack{}); v.damage != nil {
		return *v.damage, true
	}
	return Damage{}, false
}

// AsHealing returns e as a Healing value when it is one, by value or pointer.
func AsHealing(e Event) (Healing, bool) {
	if v := Visit[variant](e, unpack{}); v.healing != nil {
		return *v.healing, true
	}
	return Healing{}, false
}

// AsCrowdControl returns e as a CrowdControl value when it is one, by value or pointer.
func AsCrowdControl(e Event) (CrowdControl, bool) {
	if v := Visit[variant](e, unpack{}); v.control != nil {
		return *v.control, true
	}
	return CrowdControl{}, false
}

// AsDeath returns e as a Death value when it is one, by value or pointer.
func AsDeath(e Event) (Death, bool) {
	if v := Visit[variant](e, unpack{}); v.death != nil {
		return *v.death, true
	}
	return Death{}, false
}

// DamageEvents returns the Damage events of events in order.
func DamageEvents(events []Event) []Damage {
	var out []Damage
	for _, e := range events {
		if d, ok := AsDamage(e); ok {
			out = append(out, d)
		}
	}
	return out
}

// HealingEvents returns the Healing events of events in order.
func HealingEvents(events []Event) []Healing {
	var out []Healing
	for _, e := range events {
		if h, ok := AsHealing(e); ok {
			out = append(out, h)
		}
	}
	return out
}
