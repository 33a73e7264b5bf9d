// Package session splits an ordered combat event stream into encounters.
package session

import "time"

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithGapThreshold sets the inactivity gap that closes a session. A gap
// strictly greater than the threshold starts a new session.
func WithGapThreshold(gap time.Duration) Option {
	return func(d *Detector) {
		d.gap = gap
	}
}

// WithMinEvents marks runs with fewer events as noise. Zero disables the check.
func WithMinEvents(n int) Option {
	return func(d *Detector) {
		d.minEvents = n
	}
}

// WithMinDuration marks runs shorter than dur as noise. Zero disables the check.
func WithMinDuration(dur time.Duration) Option {
	return func(d *Detector) {
		d.minDuration = dur
	}
}

// WithDominanceRatio sets how many times larger one activity total must be
// than every other before a participant gets a single-purpose role.
func WithDominanceRatio(ratio float64) Option {
	return func(d *Detector) {
		d.dominance = ratio
	}
}
