// Package breakdown aggregates damage and healing events by ability, damage
// type, action, source or target.
//
// Percentages are taken against the effective total of the events passed in,
// so a report stays self-consistent when the caller filters beforehand. A set
// with no effective amount at all is split by raw amount instead.
package breakdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/skirmish/internal/domain/model"
)

// Dimension is a grouping axis.
type Dimension string

// Grouping dimensions.
const (
	ByAbility  Dimension = "ability"
	ByCategory Dimension = "category" // damage type; damage only
	ByAction   Dimension = "action"
	BySource   Dimension = "source"
	ByTarget   Dimension = "target"
)

const keySeparator = " / "

// Group is one bucket of a breakdown.
type Group struct {
	Key       string   `json:"key" yaml:"key" csv:"key"`
	Labels    []string `json:"labels" yaml:"labels" csv:"-"`
	Total     int64    `json:"total" yaml:"total" csv:"total"`
	Effective int64    `json:"effective" yaml:"effective" csv:"effective"`
	Count     int      `json:"count" yaml:"count" csv:"count"`
	Average   float64  `json:"average" yaml:"average" csv:"average"`
	Percent   float64  `json:"percent" yaml:"percent" csv:"percent"`
	Crits     int      `json:"crits" yaml:"crits" csv:"crits"`
}

// DamageReport is the breakdown of a damage event set.
type DamageReport struct {
	Groups    []Group `json:"groups" yaml:"groups"`
	Total     int64   `json:"total" yaml:"total"`
	Effective int64   `json:"effective" yaml:"effective"`
	Absorbed  int64   `json:"absorbed" yaml:"absorbed"`
	Count     int     `json:"count" yaml:"count"`
	CritRate  float64 `json:"crit_rate" yaml:"crit_rate"`
	BlockRate float64 `json:"block_rate" yaml:"block_rate"`
	ParryRate float64 `json:"parry_rate" yaml:"parry_rate"`
	EvadeRate float64 `json:"evade_rate" yaml:"evade_rate"`
}

// HealingReport is the breakdown of a healing event set.
type HealingReport struct {
	Groups       []Group `json:"groups" yaml:"groups"`
	Total        int64   `json:"total" yaml:"total"`
	Effective    int64   `json:"effective" yaml:"effective"`
	Overheal     int64   `json:"overheal" yaml:"overheal"`
	Count        int     `json:"count" yaml:"count"`
	CritRate     float64 `json:"crit_rate" yaml:"crit_rate"`
	OverhealRate float64 `json:"overheal_rate" yaml:"overheal_rate"`
}

// accumulator collects groups in first-seen order before sorting.
type accumulator struct {
	index  map[string]int
	groups []Group
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[string]int)}
}

func (a *accumulator) add(labels []string, total, effective int64, crit bool) {
	key := strings.Join(labels, keySeparator)
	i, ok := a.index[key]
	if !ok {
		i = len(a.groups)
		a.index[key] = i
		a.groups = append(a.groups, Group{Key: key, Labels: labels})
	}
	g := &a.groups[i]
	g.Total += total
	g.Effective += effective
	g.Count++
	if crit {
		g.Crits++
	}
}

// finish fills averages and percentages and sorts by effective total desc,
// raw total desc, key asc.
// When nothing got through (every hit fully absorbed) percentages fall back to
// the raw amounts so they still add up to 100.
func (a *accumulator) finish(effective, total int64) []Group {
	for i := range a.groups {
		g := &a.groups[i]
		g.Average = float64(g.Effective) / float64(g.Count)
		switch {
		case effective > 0:
			g.Percent = float64(g.Effective) / float64(effective) * 100
		case total > 0:
			g.Percent = float64(g.Total) / float64(total) * 100
		}
	}
	sort.Slice(a.groups, func(i, j int) bool {
		if a.groups[i].Effective != a.groups[j].Effective {
			return a.groups[i].Effective > a.groups[j].Effective
		}
		if a.groups[i].Total != a.groups[j].Total {
			return a.groups[i].Total > a.groups[j].Total
		}
		return a.groups[i].Key < a.groups[j].Key
	})
	return a.groups
}

// Damage groups damage events by dims.
func Damage(events []model.Damage, dims ...Dimension) (DamageReport, error) {
	if err := validate(dims, true); err != nil {
		return DamageReport{}, err
	}

	var r DamageReport
	var crits, blocks, parries, evades int
	acc := newAccumulator()
	for _, d := range events {
		labels := make([]string, len(dims))
		for i, dim := range dims {
			labels[i] = damageLabel(d, dim)
		}
		acc.add(labels, d.Amount, d.Effective(), d.Critical)

		r.Total += d.Amount
		r.Effective += d.Effective()
		r.Absorbed += d.Amount - d.Effective()
		r.Count++
		if d.Critical {
			crits++
		}
		if d.Blocked {
			blocks++
		}
		if d.Parried {
			parries++
		}
		if d.Evaded {
			evades++
		}
	}

	r.Groups = acc.finish(r.Effective, r.Total)
	r.CritRate = ratio(crits, r.Count)
	r.BlockRate = ratio(blocks, r.Count)
	r.ParryRate = ratio(parries, r.Count)
	r.EvadeRate = ratio(evades, r.Count)
	return r, nil
}

// Healing groups healing events by dims.
func Healing(events []model.Healing, dims ...Dimension) (HealingReport, error) {
	if err := validate(dims, false); err != nil {
		return HealingReport{}, err
	}

	var r HealingReport
	var crits int
	acc := newAccumulator()
	for _, h := range events {
		labels := make([]string, len(dims))
		for i, dim := range dims {
			labels[i] = healingLabel(h, dim)
		}
		acc.add(labels, h.Amount, h.Effective(), h.Critical)

		r.Total += h.Amount
		r.Effective += h.Effective()
		r.Overheal += h.Overheal()
		r.Count++
		if h.Critical {
			crits++
		}
	}

	r.Groups = acc.finish(r.Effective, r.Total)
	r.CritRate = ratio(crits, r.Count)
	if r.Total > 0 {
		r.OverhealRate = float64(r.Overheal) / float64(r.Total)
	}
	return r, nil
}

func validate(dims []Dimension, damage bool) error {
	for _, dim := range dims {
		switch dim {
		case ByAbility, ByAction, BySource, ByTarget:
		case ByCategory:
			if !damage {
				return fmt.Errorf("dimension %q applies to damage only: %w", dim, ErrUnknownDimension)
			}
		default:
			return fmt.Errorf("dimension %q: %w", dim, ErrUnknownDimension)
		}
	}
	return nil
}

func damageLabel(d model.Damage, dim Dimension) string {
	switch dim {
	case ByAbility:
		return abilityLabel(d.Ability, d.Action)
	case ByCategory:
		if d.DamageType == "" {
			return model.UnknownDamageType
		}
		return d.DamageType
	case ByAction:
		return actionLabel(d.Action)
	case BySource:
		return d.Source.Name
	case ByTarget:
		return d.Target.Name
	}
	return ""
}

func healingLabel(h model.Healing, dim Dimension) string {
	switch dim {
	case ByAbility:
		return abilityLabel(h.Ability, h.Action)
	case ByAction:
		return actionLabel(h.Action)
	case BySource:
		return h.Source.Name
	case ByTarget:
		return h.Target.Name
	}
	return ""
}

// abilityLabel falls back to the action so auto attacks group together.
func abilityLabel(ability string, action model.Action) string {
	if ability != "" {
		return ability
	}
	return actionLabel(action)
}

func actionLabel(action model.Action) string {
	if action == "" {
		return string(model.ActionOther)
	}
	return string(action)
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
