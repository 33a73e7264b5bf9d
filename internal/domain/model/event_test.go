package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/skirmish/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

type kindCounter struct{}

func (kindCounter) VisitDamage(model.Damage) string             { return "damage" }
func (kindCounter) VisitHealing(model.Healing) string           { return "healing" }
func (kindCounter) VisitCrowdControl(model.CrowdControl) string { return "cc" }
func (kindCounter) VisitDeath(model.Death) string               { return "death" }
func (kindCounter) VisitUnknown(model.Unknown) string           { return "unknown" }

func TestDamage(t *testing.T) {
	convey.Convey("Given a damage event", t, func() {
		d := model.Damage{Amount: 100, Absorbed: 30}

		convey.Convey("Then effective amount subtracts absorption", func() {
			convey.So(d.Effective(), convey.ShouldEqual, 70)
			convey.So(d.Kind(), convey.ShouldEqual, model.KindDamage)
		})

		convey.Convey("When absorption exceeds the amount", func() {
			d.Absorbed = 150

			convey.Convey("Then effective amount is clamped to zero", func() {
				convey.So(d.Effective(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the hit was parried", func() {
			d.Parried = true

			convey.Convey("Then it counts as avoided", func() {
				convey.So(d.Avoided(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestHealing(t *testing.T) {
	convey.Convey("Given a healing event with overheal", t, func() {
		h := model.Healing{Amount: 200, EffectiveAmount: 120}

		convey.Convey("Then overheal is amount minus effective", func() {
			convey.So(h.Effective(), convey.ShouldEqual, 120)
			convey.So(h.Overheal(), convey.ShouldEqual, 80)
		})

		convey.Convey("When effective exceeds the amount", func() {
			h.EffectiveAmount = 500

			convey.Convey("Then effective is clamped and overheal is zero", func() {
				convey.So(h.Effective(), convey.ShouldEqual, 200)
				convey.So(h.Overheal(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestEntity(t *testing.T) {
	convey.Convey("Given entities of each category", t, func() {
		self := model.Entity{Name: "You", Category: model.CategorySelf}
		player := model.Entity{Name: "Aerin", Category: model.CategoryPlayer}
		pet := model.Entity{Name: "wolf", Category: model.CategoryPet}
		npc := model.Entity{Name: "a goblin", Category: model.CategoryNPC}

		convey.Convey("Then derived flags follow the category", func() {
			convey.So(self.IsSelf(), convey.ShouldBeTrue)
			convey.So(self.IsPlayer(), convey.ShouldBeTrue)
			convey.So(player.IsSelf(), convey.ShouldBeFalse)
			convey.So(player.IsPlayer(), convey.ShouldBeTrue)
			convey.So(pet.IsPlayer(), convey.ShouldBeFalse)
			convey.So(pet.Friendly(), convey.ShouldBeTrue)
			convey.So(npc.Friendly(), convey.ShouldBeFalse)
			convey.So(model.Entity{}.IsZero(), convey.ShouldBeTrue)
		})
	})
}

func TestVisit(t *testing.T) {
	convey.Convey("Given one event of every kind", t, func() {
		events := []model.Event{
			model.Damage{}, model.Healing{}, model.CrowdControl{}, model.Death{}, model.Unknown{},
			&model.Damage{},
		}

		convey.Convey("Then Visit dispatches each to its handler", func() {
			var got []string
			for _, e := range events {
				got = append(got, model.Visit[string](e, kindCounter{}))
			}
			convey.So(got, convey.ShouldResemble, []string{"damage", "healing", "cc", "death", "unknown", "damage"})
		})
	})
}

func TestVariantAccessors(t *testing.T) {
	convey.Convey("Given events passed by value and by pointer", t, func() {
		base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		events := []model.Event{
			model.Damage{Header: model.Header{ID: "d1", Timestamp: base}, Amount: 100},
			&model.Damage{Header: model.Header{ID: "d2", Timestamp: base}, Amount: 200},
			&model.Healing{Header: model.Header{ID: "h1", Timestamp: base}, Amount: 50, EffectiveAmount: 50},
			&model.CrowdControl{Header: model.Header{ID: "c1", Timestamp: base}, Effect: model.ControlStun},
			&model.Death{Header: model.Header{ID: "k1", Timestamp: base}},
			&model.Unknown{Header: model.Header{ID: "u1", Timestamp: base}},
		}

		convey.Convey("Then the filters keep both forms", func() {
			damage := model.DamageEvents(events)
			convey.So(damage, convey.ShouldHaveLength, 2)
			convey.So(damage[1].Amount, convey.ShouldEqual, 200)
			convey.So(model.HealingEvents(events), convey.ShouldHaveLength, 1)
		})

		convey.Convey("Then each accessor matches only its own case", func() {
			_, ok := model.AsDamage(events[2])
			convey.So(ok, convey.ShouldBeFalse)
			c, ok := model.AsCrowdControl(events[3])
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(c.Effect, convey.ShouldEqual, model.ControlStun)
			d, ok := model.AsDeath(events[4])
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(d.ID, convey.ShouldEqual, "k1")
			_, ok = model.AsDeath(events[5])
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestSortedByTime(t *testing.T) {
	convey.Convey("Given events out of order", t, func() {
		base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		events := []model.Event{
			model.Damage{Header: model.Header{ID: "b", Timestamp: base.Add(2 * time.Second)}},
			model.Damage{Header: model.Header{ID: "a", Timestamp: base}},
			model.Healing{Header: model.Header{ID: "c", Timestamp: base.Add(2 * time.Second)}},
		}

		convey.Convey("When sorting", func() {
			sorted := model.SortedByTime(events)

			convey.Convey("Then the copy is ordered and stable", func() {
				convey.So(sorted[0].Meta().ID, convey.ShouldEqual, "a")
				convey.So(sorted[1].Meta().ID, convey.ShouldEqual, "b")
				convey.So(sorted[2].Meta().ID, convey.ShouldEqual, "c")
			})

			convey.Convey("And the input is untouched", func() {
				convey.So(events[0].Meta().ID, convey.ShouldEqual, "b")
			})
		})
	})
}

func TestErrors(t *testing.T) {
	convey.Convey("Given an order error", t, func() {
		err := &model.OrderError{Index: 3, EventID: "evt-3"}

		convey.Convey("Then it matches ErrOutOfOrder and names the event", func() {
			convey.So(errors.Is(err, model.ErrOutOfOrder), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "evt-3")
		})
	})

	convey.Convey("Given an event without a timestamp", t, func() {
		err := model.CheckTimestamp(0, model.Death{Header: model.Header{ID: "d1"}})

		convey.Convey("Then it is reported as malformed", func() {
			convey.So(errors.Is(err, model.ErrMalformedTimestamp), convey.ShouldBeTrue)
		})
	})
}
