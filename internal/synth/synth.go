// Package synth generates deterministic synthetic combat logs: a party led
// by the log owner ("You") fighting a series of monsters.
package synth

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/skirmish/internal/domain/model"
)

// SelfName is the log owner's name.
const SelfName = "You"

// Default generator configuration constants.
const (
	defaultEncounters = 5
	defaultPause      = 45 * time.Second
	defaultMinLength  = 20 * time.Second
	defaultMaxLength  = 60 * time.Second
	minStep           = 300 * time.Millisecond
	maxStep           = 2 * time.Second
	critChance        = 0.1
	resistChance      = 0.2
	ownerDeathChance  = 0.1
)

// DamageTypes are the damage categories a hit may carry.
var DamageTypes = []string{"slash", "crush", "thrust", "heat", "cold", "matter", "body", "spirit", "energy"}

var (
	monsters = []string{"goblin", "cave troll", "forest wolf", "skeleton warrior", "bog witch"}
	styles   = []string{"Backstab", "Garrote", "Evade", "Doublefrost"}
	heals    = []string{"Minor Heal", "Greater Heal", "Spirit Mend"}
	controls = []model.Control{model.ControlStun, model.ControlMez, model.ControlRoot, model.ControlSnare}
	applied  = map[model.Control]string{
		model.ControlStun:  "stunned",
		model.ControlMez:   "mesmerized",
		model.ControlRoot:  "rooted",
		model.ControlSnare: "snared",
	}
	flavour = []string{"You feel a cold wind.", "The bog witch cackles.", "You sense something watching you."}
)

// Generator produces synthetic event streams. It is immutable after
// construction; each Generate call starts from the seed.
type Generator struct {
	seed       uint64
	encounters int
	start      time.Time
	pause      time.Duration
	minLength  time.Duration
	maxLength  time.Duration
	party      []string
	noise      bool
}

// NewGenerator creates a generator with configuration options.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		seed:       1,
		encounters: defaultEncounters,
		start:      time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC),
		pause:      defaultPause,
		minLength:  defaultMinLength,
		maxLength:  defaultMaxLength,
		party:      []string{"Aelwyn", "Bram", "Mira"},
	}
	for _, opt := range opts {
		opt(g)
	}

	switch {
	case g.encounters < 1:
		return nil, fmt.Errorf("%w: encounters %d", ErrInvalidOption, g.encounters)
	case g.minLength <= 0 || g.maxLength < g.minLength:
		return nil, fmt.Errorf("%w: encounter length %s..%s", ErrInvalidOption, g.minLength, g.maxLength)
	case g.pause <= 0:
		return nil, fmt.Errorf("%w: pause %s", ErrInvalidOption, g.pause)
	}
	return g, nil
}

// run is the state of one Generate call.
type run struct {
	rng     *rand.Rand
	ids     *rand.ChaCha8
	now     time.Time
	self    model.Entity
	party   []model.Entity
	healer  model.Entity
	events  []model.Event
	idError error
}

func (g *Generator) newRun() *run {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], g.seed)
	ids := rand.NewChaCha8(seed)

	r := &run{
		rng:  rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15)),
		ids:  ids,
		now:  g.start,
		self: model.Entity{Name: SelfName, Category: model.CategorySelf, Realm: "Albion"},
	}
	for _, name := range g.party {
		r.party = append(r.party, model.Entity{Name: name, Category: model.CategoryPlayer, Realm: "Albion"})
	}
	r.healer = r.party[0]
	return r
}

// Generate returns the full event stream in timestamp order.
func (g *Generator) Generate(ctx context.Context) ([]model.Event, error) {
	r := g.newRun()
	for i := 0; i < g.encounters; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate encounter %d: %w", i, err)
		}
		if i > 0 {
			r.now = r.now.Add(g.pause)
			if g.noise {
				r.add(model.Unknown{Header: r.header(pick(r.rng, flavour))})
				r.now = r.now.Add(g.pause)
			}
		}
		g.encounter(r)
		if r.idError != nil {
			return nil, fmt.Errorf("generate event id: %w", r.idError)
		}
	}
	return r.events, nil
}

func (g *Generator) encounter(r *run) {
	enemy := model.Entity{Name: pick(r.rng, monsters), Category: model.CategoryNPC}
	span := g.minLength + time.Duration(r.rng.Int64N(int64(g.maxLength-g.minLength)+1))
	end := r.now.Add(span)
	tank := r.party[len(r.party)-1]

	ownerDies := r.rng.Float64() < ownerDeathChance
	for r.now.Before(end) {
		switch roll := r.rng.IntN(100); {
		case roll < 45:
			attacker := r.self
			if r.rng.IntN(2) == 0 && len(r.party) > 1 {
				attacker = r.party[1+r.rng.IntN(len(r.party)-1)]
			}
			r.hit(attacker, enemy)
		case roll < 70:
			target := tank
			if r.rng.IntN(3) == 0 {
				target = r.self
			}
			r.hit(enemy, target)
		case roll < 88:
			r.heal(r.healer, pick(r.rng, append([]model.Entity{r.self}, r.party...)))
		case roll < 96:
			r.control(r.self, enemy)
		default:
			r.add(model.Unknown{Header: r.header(pick(r.rng, flavour))})
		}
		r.now = r.now.Add(minStep + time.Duration(r.rng.Int64N(int64(maxStep-minStep))))
	}

	if ownerDies {
		r.add(model.Death{Header: r.header("You have been killed by the " + enemy.Name + "!"), Target: r.self, Killer: enemy})
	}
	r.add(model.Death{Header: r.header("You just killed the " + enemy.Name + "!"), Target: enemy, Killer: r.self})
}

func (r *run) hit(src, dst model.Entity) {
	dtype := pick(r.rng, DamageTypes)
	amount := int64(20 + r.rng.IntN(180))
	crit := r.rng.Float64() < critChance
	if crit {
		amount *= 2
	}
	var absorbed int64
	if r.rng.IntN(5) == 0 {
		absorbed = amount / 4
	}

	d := model.Damage{
		Source:     src,
		Target:     dst,
		Amount:     amount,
		Absorbed:   absorbed,
		DamageType: dtype,
		Action:     model.ActionMelee,
		Critical:   crit,
	}
	if src.IsPlayer() && r.rng.IntN(4) == 0 {
		d.Action = model.ActionStyle
		d.Ability = pick(r.rng, styles)
	}
	d.Header = r.header(fmt.Sprintf("%s hit %s for %d points of %s damage!", subject(src), object(dst), amount, dtype))
	r.add(d)
}

func (r *run) heal(src, dst model.Entity) {
	amount := int64(80 + r.rng.IntN(320))
	effective := amount - int64(r.rng.IntN(int(amount)+1))/2
	h := model.Healing{
		Source:          src,
		Target:          dst,
		Amount:          amount,
		EffectiveAmount: effective,
		Action:          model.ActionSpell,
		Ability:         pick(r.rng, heals),
		Critical:        r.rng.Float64() < critChance,
	}
	h.Header = r.header(fmt.Sprintf("%s heals %s for %d hit points.", subject(src), object(dst), effective))
	r.add(h)
}

func (r *run) control(src, dst model.Entity) {
	effect := controls[r.rng.IntN(len(controls))]
	resisted := r.rng.Float64() < resistChance
	c := model.CrowdControl{
		Source:   src,
		Target:   dst,
		Effect:   effect,
		Resisted: resisted,
	}
	raw := fmt.Sprintf("%s is %s!", object(dst), applied[effect])
	if resisted {
		raw = fmt.Sprintf("%s resists the effect!", object(dst))
	} else {
		c.Duration = time.Duration(2+r.rng.IntN(7)) * time.Second
	}
	c.Header = r.header(raw)
	r.add(c)
}

func (r *run) header(raw string) model.Header {
	id, err := uuid.NewRandomFromReader(r.ids)
	if err != nil && r.idError == nil {
		r.idError = err
	}
	return model.Header{ID: id.String(), Timestamp: r.now, Raw: raw}
}

func (r *run) add(e model.Event) { r.events = append(r.events, e) }

func subject(e model.Entity) string {
	if e.IsPlayer() {
		return e.Name
	}
	return "The " + e.Name
}

func object(e model.Entity) string {
	switch {
	case e.IsSelf():
		return "you"
	case e.IsPlayer():
		return e.Name
	}
	return "the " + e.Name
}

func pick[T any](rng *rand.Rand, xs []T) T { return xs[rng.IntN(len(xs))] }
