// Package playerstats aggregates one player's sessions into long-run
// performance, consistency and trend figures.
package playerstats

import (
	"github.com/okian/skirmish/internal/domain/rate"
	"github.com/okian/skirmish/internal/domain/scoring"
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithRates sets the calculator used for per-session DPS and HPS.
func WithRates(c *rate.Calculator) Option {
	return func(p *Calculator) {
		if c != nil {
			p.rates = c
		}
	}
}

// WithScorer sets the performance scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(p *Calculator) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithRollingWindow sets how many sessions the rolling average spans.
func WithRollingWindow(n int) Option {
	return func(p *Calculator) {
		p.rolling = n
	}
}

// WithMinConfidence sets the R² a trend needs before a prediction is made.
func WithMinConfidence(r2 float64) Option {
	return func(p *Calculator) {
		p.minConfidence = r2
	}
}

// WithStableSlope sets the slope magnitude, in score points per session,
// below which a trend is reported as stable.
func WithStableSlope(slope float64) Option {
	return func(p *Calculator) {
		p.stableSlope = slope
	}
}

// WithConsistencyThresholds sets the coefficient of variation bands.
func WithConsistencyThresholds(t ConsistencyThresholds) Option {
	return func(p *Calculator) {
		p.consistency = t
	}
}
