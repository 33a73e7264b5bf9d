package synth

import "time"

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed sets the random seed. Equal seeds give equal output.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithEncounters sets how many encounters are generated.
func WithEncounters(n int) Option {
	return func(g *Generator) { g.encounters = n }
}

// WithStart sets the timestamp of the first event.
func WithStart(t time.Time) Option {
	return func(g *Generator) {
		if !t.IsZero() {
			g.start = t
		}
	}
}

// WithPause sets the quiet time between encounters.
func WithPause(d time.Duration) Option {
	return func(g *Generator) { g.pause = d }
}

// WithEncounterLength sets the bounds of an encounter's active time.
func WithEncounterLength(minLen, maxLen time.Duration) Option {
	return func(g *Generator) {
		g.minLength = minLen
		g.maxLength = maxLen
	}
}

// WithParty sets the players fighting beside the log owner.
func WithParty(names ...string) Option {
	return func(g *Generator) {
		if len(names) > 0 {
			g.party = names
		}
	}
}

// WithNoise inserts a stray event between encounters.
func WithNoise(enabled bool) Option {
	return func(g *Generator) { g.noise = enabled }
}
