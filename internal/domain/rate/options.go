// Package rate computes damage and healing per second: averages, sliding
// window peaks and fixed-interval series for charting.
package rate

import "time"

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithWindow sets the sliding window used for peak and series rates.
func WithWindow(window time.Duration) Option {
	return func(c *Calculator) {
		c.window = window
	}
}

// WithInterval sets the step between series points.
func WithInterval(interval time.Duration) Option {
	return func(c *Calculator) {
		c.interval = interval
	}
}
