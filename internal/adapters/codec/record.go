package codec

import (
	"fmt"
	"time"

	"github.com/okian/skirmish/internal/domain/model"
)

// record is the wire form of every event variant. Type selects the variant;
// fields a variant does not use are omitted.
type record struct {
	Type      model.Kind `json:"type"`
	ID        string     `json:"id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Raw       string     `json:"raw,omitempty"`

	Source *model.Entity `json:"source,omitempty"`
	Target *model.Entity `json:"target,omitempty"`
	Killer *model.Entity `json:"killer,omitempty"`

	Amount     int64        `json:"amount,omitempty"`
	Absorbed   int64        `json:"absorbed,omitempty"`
	Effective  *int64       `json:"effective,omitempty"`
	DamageType string       `json:"damage_type,omitempty"`
	Action     model.Action `json:"action,omitempty"`
	Ability    string       `json:"ability,omitempty"`
	Critical   bool         `json:"critical,omitempty"`
	Blocked    bool         `json:"blocked,omitempty"`
	Parried    bool         `json:"parried,omitempty"`
	Evaded     bool         `json:"evaded,omitempty"`

	Effect   model.Control `json:"effect,omitempty"`
	Duration string        `json:"duration,omitempty"`
	Resisted bool          `json:"resisted,omitempty"`
}

func entityPtr(e model.Entity) *model.Entity {
	if e.IsZero() {
		return nil
	}
	return &e
}

func entity(e *model.Entity) model.Entity {
	if e == nil {
		return model.Entity{}
	}
	return *e
}

// encoder turns events into records.
type encoder struct{}

func header(kind model.Kind, h model.Header) record {
	return record{Type: kind, ID: h.ID, Timestamp: h.Timestamp, Raw: h.Raw}
}

func (encoder) VisitDamage(d model.Damage) record {
	r := header(model.KindDamage, d.Header)
	r.Source, r.Target = entityPtr(d.Source), entityPtr(d.Target)
	r.Amount, r.Absorbed = d.Amount, d.Absorbed
	r.DamageType, r.Action, r.Ability = d.DamageType, d.Action, d.Ability
	r.Critical, r.Blocked, r.Parried, r.Evaded = d.Critical, d.Blocked, d.Parried, d.Evaded
	return r
}

func (encoder) VisitHealing(h model.Healing) record {
	r := header(model.KindHealing, h.Header)
	r.Source, r.Target = entityPtr(h.Source), entityPtr(h.Target)
	eff := h.EffectiveAmount
	r.Amount, r.Effective = h.Amount, &eff
	r.Action, r.Ability, r.Critical = h.Action, h.Ability, h.Critical
	return r
}

func (encoder) VisitCrowdControl(c model.CrowdControl) record {
	r := header(model.KindCrowdControl, c.Header)
	r.Source, r.Target = entityPtr(c.Source), entityPtr(c.Target)
	r.Effect, r.Ability, r.Resisted = c.Effect, c.Ability, c.Resisted
	if c.Duration > 0 {
		r.Duration = c.Duration.String()
	}
	return r
}

func (encoder) VisitDeath(d model.Death) record {
	r := header(model.KindDeath, d.Header)
	r.Target, r.Killer = entityPtr(d.Target), entityPtr(d.Killer)
	return r
}

func (encoder) VisitUnknown(u model.Unknown) record {
	return header(model.KindUnknown, u.Header)
}

// event converts a decoded record back into its variant.
func (r *record) event() (model.Event, error) {
	if r.Amount < 0 || r.Absorbed < 0 {
		return nil, fmt.Errorf("%w: negative amount", ErrInvalid)
	}
	h := model.Header{ID: r.ID, Timestamp: r.Timestamp, Raw: r.Raw}

	switch r.Type {
	case model.KindDamage:
		damageType := r.DamageType
		if damageType == "" {
			damageType = model.UnknownDamageType
		}
		return model.Damage{
			Header: h, Source: entity(r.Source), Target: entity(r.Target),
			Amount: r.Amount, Absorbed: r.Absorbed, DamageType: damageType,
			Action: r.Action, Ability: r.Ability, Critical: r.Critical,
			Blocked: r.Blocked, Parried: r.Parried, Evaded: r.Evaded,
		}, nil
	case model.KindHealing:
		eff := r.Amount
		if r.Effective != nil {
			eff = *r.Effective
		}
		return model.Healing{
			Header: h, Source: entity(r.Source), Target: entity(r.Target),
			Amount: r.Amount, EffectiveAmount: eff,
			Action: r.Action, Ability: r.Ability, Critical: r.Critical,
		}, nil
	case model.KindCrowdControl:
		var dur time.Duration
		if r.Duration != "" {
			d, err := time.ParseDuration(r.Duration)
			if err != nil || d < 0 {
				return nil, fmt.Errorf("%w: duration %q", ErrInvalid, r.Duration)
			}
			dur = d
		}
		effect := r.Effect
		if effect == "" {
			effect = model.ControlOther
		}
		return model.CrowdControl{
			Header: h, Source: entity(r.Source), Target: entity(r.Target),
			Effect: effect, Duration: dur, Resisted: r.Resisted, Ability: r.Ability,
		}, nil
	case model.KindDeath:
		return model.Death{Header: h, Target: entity(r.Target), Killer: entity(r.Killer)}, nil
	case model.KindUnknown:
		return model.Unknown{Header: h}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, r.Type)
}
