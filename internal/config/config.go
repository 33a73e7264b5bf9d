// Package config defines analysis configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with documented defaults.
// - Loading layers defaults, an optional YAML file and SKIRMISH_ env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/okian/skirmish/internal/domain/playerstats"
	"github.com/okian/skirmish/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	Session     SessionConfig     `koanf:"session"`
	Rate        RateConfig        `koanf:"rate"`
	KeyEvents   KeyEventsConfig   `koanf:"key_events"`
	Timeline    TimelineConfig    `koanf:"timeline"`
	Scoring     ScoringConfig     `koanf:"scoring"`
	PlayerStats PlayerStatsConfig `koanf:"player_stats"`
	Workers     WorkersConfig     `koanf:"workers"`
	History     HistoryConfig     `koanf:"history"`
}

// SessionConfig tunes encounter detection and role assignment.
type SessionConfig struct {
	// Gap is the inactivity that closes an encounter.
	Gap time.Duration `koanf:"gap"`
	// MinEvents and MinDuration mark short runs as noise; zero disables.
	MinEvents      int           `koanf:"min_events"`
	MinDuration    time.Duration `koanf:"min_duration"`
	DominanceRatio float64       `koanf:"dominance_ratio"`
}

// RateConfig sets the DPS/HPS window and series step.
type RateConfig struct {
	Window   time.Duration `koanf:"window"`
	Interval time.Duration `koanf:"interval"`
}

// KeyEventsConfig holds the burst thresholds.
type KeyEventsConfig struct {
	BurstDamage  int64 `koanf:"burst_damage"`
	BurstHealing int64 `koanf:"burst_healing"`
}

// TimelineConfig controls timeline rendering.
type TimelineConfig struct {
	Precision time.Duration `koanf:"precision"`
	RawText   bool          `koanf:"raw_text"`
}

// ScoringConfig holds the performance blend.
type ScoringConfig struct {
	Weights    scoring.Weights    `koanf:"weights"`
	References scoring.References `koanf:"references"`
	Thresholds scoring.Thresholds `koanf:"thresholds"`
}

// PlayerStatsConfig tunes trend and consistency analysis.
type PlayerStatsConfig struct {
	RollingWindow int                               `koanf:"rolling_window"`
	MinConfidence float64                           `koanf:"min_confidence"`
	StableSlope   float64                           `koanf:"stable_slope"`
	Consistency   playerstats.ConsistencyThresholds `koanf:"consistency"`
}

// WorkersConfig sizes the batch summarization pool.
type WorkersConfig struct {
	Count     int `koanf:"count"`
	QueueSize int `koanf:"queue_size"`
}

// HistoryConfig sizes the in-memory player history.
type HistoryConfig struct {
	// DedupeSize bounds remembered player/session pairs; zero or less keeps the default.
	DedupeSize int `koanf:"dedupe_size"`
	ShardCount int `koanf:"shard_count"`
	// MaxLeaderboardLimit caps leaderboard requests.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Session: SessionConfig{
			Gap:            10 * time.Second,
			DominanceRatio: 1.5,
		},
		Rate: RateConfig{
			Window:   5 * time.Second,
			Interval: time.Second,
		},
		KeyEvents: KeyEventsConfig{
			BurstDamage:  500,
			BurstHealing: 500,
		},
		Timeline: TimelineConfig{
			Precision: time.Millisecond,
		},
		Scoring: ScoringConfig{
			Weights:    scoring.DefaultWeights(),
			References: scoring.DefaultReferences(),
			Thresholds: scoring.DefaultThresholds(),
		},
		PlayerStats: PlayerStatsConfig{
			RollingWindow: 3,
			MinConfidence: 0.5,
			StableSlope:   0.5,
			Consistency:   playerstats.DefaultConsistencyThresholds(),
		},
		Workers: WorkersConfig{
			Count:     runtime.NumCPU(),
			QueueSize: 1024,
		},
		History: HistoryConfig{
			DedupeSize:          50_000,
			ShardCount:          8,
			MaxLeaderboardLimit: 100,
		},
	}
}

func (c *Config) hasNaN() bool {
	w, r, t, k := c.Scoring.Weights, c.Scoring.References, c.Scoring.Thresholds, c.PlayerStats.Consistency
	for _, v := range []float64{
		w.DPS, w.HPS, w.KDR, w.Survival,
		r.DPS, r.HPS, r.KDR,
		t.Excellent, t.Good, t.Average, t.BelowAverage,
		k.VeryConsistent, k.Consistent, k.Variable,
	} {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Validate checks ranges that the analysis components would otherwise
// reject at construction.
func (c *Config) Validate() error {
	switch {
	case c.Session.Gap <= 0:
		return fmt.Errorf("session.gap %s must be positive: %w", c.Session.Gap, ErrInvalidConfig)
	case c.Session.MinEvents < 0 || c.Session.MinDuration < 0:
		return fmt.Errorf("session minimums must not be negative: %w", ErrInvalidConfig)
	case math.IsNaN(c.Session.DominanceRatio) || c.Session.DominanceRatio < 1:
		return fmt.Errorf("session.dominance_ratio %.2f must be at least 1: %w", c.Session.DominanceRatio, ErrInvalidConfig)
	case c.Rate.Window <= 0 || c.Rate.Interval <= 0:
		return fmt.Errorf("rate window and interval must be positive: %w", ErrInvalidConfig)
	case c.KeyEvents.BurstDamage <= 0 || c.KeyEvents.BurstHealing <= 0:
		return fmt.Errorf("key_events thresholds must be positive: %w", ErrInvalidConfig)
	case c.Timeline.Precision <= 0:
		return fmt.Errorf("timeline.precision %s must be positive: %w", c.Timeline.Precision, ErrInvalidConfig)
	case c.PlayerStats.RollingWindow < 1:
		return fmt.Errorf("player_stats.rolling_window %d must be at least 1: %w", c.PlayerStats.RollingWindow, ErrInvalidConfig)
	case math.IsNaN(c.PlayerStats.MinConfidence) || c.PlayerStats.MinConfidence < 0 || c.PlayerStats.MinConfidence > 1:
		return fmt.Errorf("player_stats.min_confidence %.2f must be within 0..1: %w", c.PlayerStats.MinConfidence, ErrInvalidConfig)
	case math.IsNaN(c.PlayerStats.StableSlope) || c.PlayerStats.StableSlope < 0:
		return fmt.Errorf("player_stats.stable_slope %.2f must not be negative: %w", c.PlayerStats.StableSlope, ErrInvalidConfig)
	case c.hasNaN():
		return fmt.Errorf("scoring and consistency values must be numbers: %w", ErrInvalidConfig)
	case c.Workers.Count < 1:
		return fmt.Errorf("workers.count %d must be at least 1: %w", c.Workers.Count, ErrInvalidConfig)
	case c.Workers.QueueSize < 1:
		return fmt.Errorf("workers.queue_size %d must be at least 1: %w", c.Workers.QueueSize, ErrInvalidConfig)
	case c.History.ShardCount < 1:
		return fmt.Errorf("history.shard_count %d must be at least 1: %w", c.History.ShardCount, ErrInvalidConfig)
	case c.History.MaxLeaderboardLimit < 1:
		return fmt.Errorf("history.max_leaderboard_limit %d must be at least 1: %w", c.History.MaxLeaderboardLimit, ErrInvalidConfig)
	}
	return nil
}
