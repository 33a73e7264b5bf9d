// Package timeline renders a session as a chronological, filterable list of
// human-readable entries.
package timeline

import "time"

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithPrecision sets the rounding step of relative times.
func WithPrecision(p time.Duration) Option {
	return func(g *Generator) {
		g.precision = p
	}
}

// WithRawText makes entries describe themselves with the event's raw source
// text when it has any.
func WithRawText(enabled bool) Option {
	return func(g *Generator) {
		g.rawText = enabled
	}
}
