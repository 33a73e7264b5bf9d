package fight_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/skirmish/internal/domain/fight"
	"github.com/okian/skirmish/internal/domain/model"
	"github.com/okian/skirmish/internal/domain/rate"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	base   = time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	you    = model.Entity{Name: "You", Category: model.CategorySelf}
	cleric = model.Entity{Name: "Aelwyn", Category: model.CategoryPlayer}
	goblin = model.Entity{Name: "a goblin", Category: model.CategoryNPC}
)

func at(sec float64) model.Header {
	return model.Header{ID: time.Duration(sec * float64(time.Second)).String(), Timestamp: base.Add(time.Duration(sec * float64(time.Second)))}
}

func session(events ...model.Event) model.Session {
	s := model.Session{ID: "s1", Events: events}
	if len(events) > 0 {
		s.Start = model.Time(events[0])
		s.End = model.Time(events[len(events)-1])
	}
	return s
}

func TestDetector(t *testing.T) {
	Convey("Given a key event detector", t, func() {
		Convey("When thresholds are not positive", func() {
			_, err := fight.NewDetector(fight.WithBurstDamage(0))
			_, err2 := fight.NewDetector(fight.WithBurstHealing(-1))

			Convey("Then construction fails", func() {
				So(errors.Is(err, fight.ErrInvalidOption), ShouldBeTrue)
				So(errors.Is(err2, fight.ErrInvalidOption), ShouldBeTrue)
			})
		})

		Convey("When scanning a mixed session", func() {
			d, err := fight.NewDetector()
			So(err, ShouldBeNil)

			s := session(
				model.Damage{Header: at(0), Source: you, Target: goblin, Amount: 499},
				model.Damage{Header: at(1), Source: you, Target: goblin, Amount: 500},
				model.Healing{Header: at(2), Source: cleric, Target: you, Amount: 800, EffectiveAmount: 300},
				model.CrowdControl{Header: at(3), Source: you, Target: goblin, Effect: model.ControlStun},
				model.CrowdControl{Header: at(4), Source: goblin, Target: you, Effect: model.ControlMez, Resisted: true},
				model.Unknown{Header: at(5)},
				model.Death{Header: at(6), Target: goblin, Killer: you},
			)
			keys := d.Detect(s)

			Convey("Then each significant event is flagged with its reason", func() {
				So(keys, ShouldHaveLength, 5)
				So(keys[0].Reason, ShouldEqual, fight.ReasonBurstDamage)
				So(keys[0].Value, ShouldEqual, 500)
				So(keys[0].Offset, ShouldEqual, time.Second)
				So(keys[1].Reason, ShouldEqual, fight.ReasonBurstHealing)
				So(keys[1].Value, ShouldEqual, 800)
				So(keys[2].Reason, ShouldEqual, fight.ReasonCCLanded)
				So(keys[3].Reason, ShouldEqual, fight.ReasonCCResisted)
				So(keys[4].Reason, ShouldEqual, fight.ReasonDeath)
				So(keys[4].Source, ShouldEqual, "You")
				So(keys[4].Target, ShouldEqual, "a goblin")
			})
		})

		Convey("When the burst threshold is raised", func() {
			d, _ := fight.NewDetector(fight.WithBurstDamage(1000))
			keys := d.Detect(session(model.Damage{Header: at(0), Source: you, Target: goblin, Amount: 999}))

			Convey("Then smaller hits are not flagged", func() {
				So(keys, ShouldBeEmpty)
			})
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given a summarizer with default configuration", t, func() {
		sum, err := fight.NewSummarizer()
		So(err, ShouldBeNil)

		Convey("When a session has one damage and one healing event", func() {
			s := session(
				model.Damage{Header: at(0), Source: you, Target: goblin, Amount: 50},
				model.Healing{Header: at(1), Source: cleric, Target: you, Amount: 30, EffectiveAmount: 30},
			)
			out := sum.Summarize(s)

			Convey("Then both meters hold a single first-ranked entry at 100 percent", func() {
				So(out.DamageMeter, ShouldHaveLength, 1)
				So(out.DamageMeter[0].Rank, ShouldEqual, 1)
				So(out.DamageMeter[0].Percent, ShouldEqual, 100)
				So(out.DamageMeter[0].Total, ShouldEqual, 50)
				So(out.HealingMeter, ShouldHaveLength, 1)
				So(out.HealingMeter[0].Rank, ShouldEqual, 1)
				So(out.HealingMeter[0].Percent, ShouldEqual, 100)
				So(out.HealingMeter[0].Entity, ShouldResemble, cleric)
			})

			Convey("And totals count both sides", func() {
				So(out.Totals.Events, ShouldEqual, 2)
				So(out.Totals.DamageDealt, ShouldEqual, 50)
				So(out.Totals.DamageReceived, ShouldEqual, 0)
				So(out.Totals.HealingDone, ShouldEqual, 30)
				So(out.Totals.HealingReceived, ShouldEqual, 30)
			})
		})

		Convey("When sources tie on total", func() {
			s := session(
				model.Damage{Header: at(0), Source: cleric, Target: goblin, Amount: 100},
				model.Damage{Header: at(1), Source: you, Target: goblin, Amount: 100},
				model.Damage{Header: at(2), Source: goblin, Target: you, Amount: 300},
				model.Damage{Header: at(3), Target: you, Amount: 40},
			)
			meter := sum.DamageMeter(s)

			Convey("Then ranks are dense and ties break by name", func() {
				So(meter, ShouldHaveLength, 3)
				So(meter[0].Name, ShouldEqual, "a goblin")
				So(meter[1].Name, ShouldEqual, "Aelwyn")
				So(meter[2].Name, ShouldEqual, "You")
				for i, e := range meter {
					So(e.Rank, ShouldEqual, i+1)
				}
			})

			Convey("And percentages are of the ranked total", func() {
				So(meter[0].Percent, ShouldEqual, 60)
				So(meter[1].Percent, ShouldEqual, 20)
			})
		})

		Convey("When a session spans ten seconds", func() {
			s := session(
				model.Damage{Header: at(0), Source: you, Target: goblin, Amount: 100},
				model.Damage{Header: at(1), Source: you, Target: goblin, Amount: 200},
				model.Damage{Header: at(2), Source: you, Target: goblin, Amount: 150},
				model.Death{Header: at(10), Target: goblin, Killer: you},
			)
			out := sum.Summarize(s)

			Convey("Then rates use the session duration", func() {
				So(out.Duration, ShouldEqual, 10*time.Second)
				So(out.DPS, ShouldEqual, 45)
				So(out.DamageMeter[0].Rate, ShouldEqual, 45)
				So(out.DamageMeter[0].PeakRate, ShouldEqual, 300)
				So(out.DamageMeter[0].PeakRate, ShouldBeGreaterThanOrEqualTo, out.DamageMeter[0].Rate)
				So(out.Totals.Deaths, ShouldEqual, 1)
				So(out.KeyEvents, ShouldHaveLength, 1)
			})

			Convey("And the damage series ends at the total", func() {
				last := out.DamageSeries[len(out.DamageSeries)-1]
				So(last.Cumulative, ShouldEqual, 450)
				So(out.HealingSeries, ShouldBeNil)
			})

			Convey("And summarizing again yields an equal result", func() {
				So(sum.Summarize(s), ShouldResemble, out)
			})
		})

		Convey("When absorbs and overheal are present", func() {
			s := session(
				model.Damage{Header: at(0), Source: goblin, Target: you, Amount: 100, Absorbed: 150, Critical: true},
				model.Healing{Header: at(0), Source: you, Target: you, Amount: 100, EffectiveAmount: 40},
				model.CrowdControl{Header: at(1), Source: goblin, Target: you, Resisted: true},
			)
			out := sum.Summarize(s)

			Convey("Then effective amounts feed totals", func() {
				So(out.Totals.Damage, ShouldEqual, 0)
				So(out.Totals.Healing, ShouldEqual, 40)
				So(out.Totals.Criticals, ShouldEqual, 1)
				So(out.Totals.CrowdControls, ShouldEqual, 1)
				So(out.Totals.Resisted, ShouldEqual, 1)
				So(out.DamageMeter[0].Percent, ShouldEqual, 0)
			})
		})

		Convey("When the session is empty", func() {
			out := sum.Summarize(model.Session{ID: "empty"})

			Convey("Then the summary is zero", func() {
				So(out.DamageMeter, ShouldBeEmpty)
				So(out.HealingMeter, ShouldBeEmpty)
				So(out.KeyEvents, ShouldBeEmpty)
				So(out.DPS, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a summarizer with a custom window", t, func() {
		c, err := rate.NewCalculator(rate.WithWindow(time.Second))
		So(err, ShouldBeNil)
		sum, err := fight.NewSummarizer(fight.WithRates(c))
		So(err, ShouldBeNil)

		Convey("When computing the peak", func() {
			s := session(
				model.Damage{Header: at(0), Source: you, Target: goblin, Amount: 100},
				model.Damage{Header: at(2), Source: you, Target: goblin, Amount: 300},
			)

			Convey("Then windows never join distant hits", func() {
				So(sum.DamageMeter(s)[0].PeakRate, ShouldEqual, 300)
			})
		})
	})
}
