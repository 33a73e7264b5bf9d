// Package fight flags notable moments of a session and assembles the
// per-session fight summary with ranked damage and healing meters.
package fight

import "github.com/okian/skirmish/internal/domain/rate"

// DetectorOption applies a configuration option to the Detector.
type DetectorOption func(*Detector)

// WithBurstDamage sets the raw amount at which a single hit is flagged.
func WithBurstDamage(threshold int64) DetectorOption {
	return func(d *Detector) {
		d.burstDamage = threshold
	}
}

// WithBurstHealing sets the raw amount at which a single heal is flagged.
func WithBurstHealing(threshold int64) DetectorOption {
	return func(d *Detector) {
		d.burstHealing = threshold
	}
}

// SummarizerOption applies a configuration option to the Summarizer.
type SummarizerOption func(*Summarizer)

// WithRates sets the rate calculator used for meter rates and series.
func WithRates(c *rate.Calculator) SummarizerOption {
	return func(s *Summarizer) {
		if c != nil {
			s.rates = c
		}
	}
}

// WithDetector sets the key event detector.
func WithDetector(d *Detector) SummarizerOption {
	return func(s *Summarizer) {
		if d != nil {
			s.detector = d
		}
	}
}
