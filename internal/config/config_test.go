package config_test

import (
	"errors"
	"math"
	"runtime"
	"testing"
	"time"

	"github.com/okian/skirmish/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Session.Gap, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Session.DominanceRatio, convey.ShouldEqual, 1.5)
			convey.So(cfg.Rate.Window, convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.Rate.Interval, convey.ShouldEqual, time.Second)
			convey.So(cfg.KeyEvents.BurstDamage, convey.ShouldEqual, 500)
			convey.So(cfg.Scoring.Thresholds.Excellent, convey.ShouldEqual, 85)
			convey.So(cfg.PlayerStats.MinConfidence, convey.ShouldEqual, 0.5)
			convey.So(cfg.Workers.Count, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out-of-range values", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"zero gap", func(c *config.Config) { c.Session.Gap = 0 }},
			{"negative minimum", func(c *config.Config) { c.Session.MinEvents = -1 }},
			{"low dominance", func(c *config.Config) { c.Session.DominanceRatio = 0.5 }},
			{"zero window", func(c *config.Config) { c.Rate.Window = 0 }},
			{"zero burst", func(c *config.Config) { c.KeyEvents.BurstHealing = 0 }},
			{"zero precision", func(c *config.Config) { c.Timeline.Precision = 0 }},
			{"zero rolling", func(c *config.Config) { c.PlayerStats.RollingWindow = 0 }},
			{"confidence above 1", func(c *config.Config) { c.PlayerStats.MinConfidence = 2 }},
			{"NaN dominance", func(c *config.Config) { c.Session.DominanceRatio = math.NaN() }},
			{"NaN confidence", func(c *config.Config) { c.PlayerStats.MinConfidence = math.NaN() }},
			{"NaN stable slope", func(c *config.Config) { c.PlayerStats.StableSlope = math.NaN() }},
			{"negative stable slope", func(c *config.Config) { c.PlayerStats.StableSlope = -1 }},
			{"NaN weight", func(c *config.Config) { c.Scoring.Weights.KDR = math.NaN() }},
			{"NaN reference", func(c *config.Config) { c.Scoring.References.HPS = math.NaN() }},
			{"NaN threshold", func(c *config.Config) { c.Scoring.Thresholds.Good = math.NaN() }},
			{"NaN consistency band", func(c *config.Config) { c.PlayerStats.Consistency.Variable = math.NaN() }},
			{"no workers", func(c *config.Config) { c.Workers.Count = 0 }},
			{"no queue", func(c *config.Config) { c.Workers.QueueSize = 0 }},
			{"no shards", func(c *config.Config) { c.History.ShardCount = 0 }},
			{"no limit", func(c *config.Config) { c.History.MaxLeaderboardLimit = 0 }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" is rejected", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
