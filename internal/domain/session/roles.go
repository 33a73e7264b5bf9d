package session

import "github.com/okian/skirmish/internal/domain/model"

// tally accumulates per-participant activity in order of first appearance.
type tally struct {
	index map[string]int
	rows  []model.Participant
}

func (t *tally) row(e model.Entity) *model.Participant {
	if i, ok := t.index[e.Name]; ok {
		return &t.rows[i]
	}
	t.index[e.Name] = len(t.rows)
	t.rows = append(t.rows, model.Participant{Entity: e})
	return &t.rows[len(t.rows)-1]
}

func (t *tally) see(e model.Entity) {
	if !e.IsZero() {
		t.row(e)
	}
}

func (t *tally) VisitDamage(d model.Damage) struct{} {
	t.see(d.Source)
	t.see(d.Target)
	if !d.Source.IsZero() {
		t.row(d.Source).DamageDone += d.Effective()
	}
	if !d.Target.IsZero() {
		t.row(d.Target).DamageTaken += d.Effective()
	}
	return struct{}{}
}

func (t *tally) VisitHealing(h model.Healing) struct{} {
	t.see(h.Source)
	t.see(h.Target)
	if !h.Source.IsZero() {
		t.row(h.Source).HealingDone += h.Effective()
	}
	return struct{}{}
}

func (t *tally) VisitCrowdControl(c model.CrowdControl) struct{} {
	t.see(c.Source)
	t.see(c.Target)
	return struct{}{}
}

func (t *tally) VisitDeath(d model.Death) struct{} {
	t.see(d.Target)
	t.see(d.Killer)
	return struct{}{}
}

func (t *tally) VisitUnknown(model.Unknown) struct{} { return struct{}{} }

// participants collects every named entity in events and assigns its role.
func (d *Detector) participants(events []model.Event) []model.Participant {
	t := &tally{index: make(map[string]int)}
	for _, e := range events {
		model.Visit[struct{}](e, t)
	}
	for i := range t.rows {
		p := &t.rows[i]
		p.Role = Classify(p.DamageDone, p.HealingDone, p.DamageTaken, d.dominance)
	}
	return t.rows
}

// Classify derives a role from damage dealt, healing done and damage taken.
// An activity dominates when it is at least ratio times every other one.
func Classify(damage, healing, taken int64, ratio float64) model.Role {
	if damage <= 0 && healing <= 0 && taken <= 0 {
		return model.RoleUnknown
	}

	totals := [3]float64{float64(damage), float64(healing), float64(taken)}
	roles := [3]model.Role{model.RoleDamageDealer, model.RoleHealer, model.RoleTank}

	top := 0
	for i := 1; i < len(totals); i++ {
		if totals[i] > totals[top] {
			top = i
		}
	}
	for i, v := range totals {
		if i != top && totals[top] < ratio*v {
			return model.RoleHybrid
		}
	}
	return roles[top]
}
