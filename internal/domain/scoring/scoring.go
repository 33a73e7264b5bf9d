// Package scoring turns per-session combat figures into a 0-100 performance
// score and a qualitative rating.
package scoring

import (
	"fmt"
	"math"
)

// Default scoring configuration constants.
const (
	defaultDPSWeight      = 0.35
	defaultHPSWeight      = 0.25
	defaultKDRWeight      = 0.20
	defaultSurvivalWeight = 0.20

	defaultDPSReference = 300
	defaultHPSReference = 200
	defaultKDRReference = 3

	defaultExcellent    = 85
	defaultGood         = 70
	defaultAverage      = 50
	defaultBelowAverage = 30

	maxScoreValue = 100
)

// Rating is the qualitative band of a score.
type Rating string

// Score ratings, best first.
const (
	RatingExcellent    Rating = "excellent"
	RatingGood         Rating = "good"
	RatingAverage      Rating = "average"
	RatingBelowAverage Rating = "below_average"
	RatingPoor         Rating = "poor"
)

// Weights are the blend factors of each normalized component. They need not
// sum to one; the blend is divided by their sum.
type Weights struct {
	DPS      float64 `koanf:"dps" json:"dps" yaml:"dps"`
	HPS      float64 `koanf:"hps" json:"hps" yaml:"hps"`
	KDR      float64 `koanf:"kdr" json:"kdr" yaml:"kdr"`
	Survival float64 `koanf:"survival" json:"survival" yaml:"survival"`
}

func (w Weights) sum() float64 { return w.DPS + w.HPS + w.KDR + w.Survival }

// References are the values at which a component saturates at 1.
type References struct {
	DPS float64 `koanf:"dps" json:"dps" yaml:"dps"`
	HPS float64 `koanf:"hps" json:"hps" yaml:"hps"`
	KDR float64 `koanf:"kdr" json:"kdr" yaml:"kdr"`
}

// Thresholds are the minimum scores of each rating band.
type Thresholds struct {
	Excellent    float64 `koanf:"excellent" json:"excellent" yaml:"excellent"`
	Good         float64 `koanf:"good" json:"good" yaml:"good"`
	Average      float64 `koanf:"average" json:"average" yaml:"average"`
	BelowAverage float64 `koanf:"below_average" json:"below_average" yaml:"below_average"`
}

// DefaultWeights returns the default blend.
func DefaultWeights() Weights {
	return Weights{DPS: defaultDPSWeight, HPS: defaultHPSWeight, KDR: defaultKDRWeight, Survival: defaultSurvivalWeight}
}

// DefaultReferences returns the default saturation points.
func DefaultReferences() References {
	return References{DPS: defaultDPSReference, HPS: defaultHPSReference, KDR: defaultKDRReference}
}

// DefaultThresholds returns the default rating bands.
func DefaultThresholds() Thresholds {
	return Thresholds{Excellent: defaultExcellent, Good: defaultGood, Average: defaultAverage, BelowAverage: defaultBelowAverage}
}

// Input holds the figures a score is computed from.
type Input struct {
	Player   string
	DPS      float64
	HPS      float64
	Kills    int
	Deaths   int
	Survival float64 // fraction of sessions survived, 0..1
}

// KDR returns kills over deaths, with deaths floored at one.
func (in Input) KDR() float64 {
	return float64(in.Kills) / math.Max(float64(in.Deaths), 1)
}

// Components are the normalized inputs, each in 0..1.
type Components struct {
	DPS      float64 `json:"dps" yaml:"dps"`
	HPS      float64 `json:"hps" yaml:"hps"`
	KDR      float64 `json:"kdr" yaml:"kdr"`
	Survival float64 `json:"survival" yaml:"survival"`
}

// Result contains the computed score for a player.
type Result struct {
	Player     string     `json:"player" yaml:"player"`
	Score      float64    `json:"score" yaml:"score"`
	Rating     Rating     `json:"rating" yaml:"rating"`
	Components Components `json:"components" yaml:"components"`
}

// Scorer computes a score from an input.
type Scorer interface {
	Score(in Input) Result
	Rate(score float64) Rating
}

// WeightedScorer implements Scorer as a weighted blend of saturating
// components. It is immutable after construction.
type WeightedScorer struct {
	weights    Weights
	refs       References
	thresholds Thresholds
}

// NewWeightedScorer creates a scorer, validating the configuration eagerly.
func NewWeightedScorer(opts ...Option) (*WeightedScorer, error) {
	s := &WeightedScorer{
		weights:    DefaultWeights(),
		refs:       DefaultReferences(),
		thresholds: DefaultThresholds(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *WeightedScorer) validate() error {
	w := s.weights
	if hasNaN(w.DPS, w.HPS, w.KDR, w.Survival) {
		return fmt.Errorf("weights %+v must be numbers: %w", w, ErrInvalidWeights)
	}
	if w.DPS < 0 || w.HPS < 0 || w.KDR < 0 || w.Survival < 0 {
		return fmt.Errorf("weights %+v must not be negative: %w", w, ErrInvalidWeights)
	}
	if w.sum() <= 0 {
		return fmt.Errorf("weights %+v must not all be zero: %w", w, ErrInvalidWeights)
	}
	if hasNaN(s.refs.DPS, s.refs.HPS, s.refs.KDR) || s.refs.DPS <= 0 || s.refs.HPS <= 0 || s.refs.KDR <= 0 {
		return fmt.Errorf("references %+v must be positive: %w", s.refs, ErrInvalidReferences)
	}
	t := s.thresholds
	if hasNaN(t.Excellent, t.Good, t.Average, t.BelowAverage) ||
		t.BelowAverage < 0 || t.Excellent > maxScoreValue ||
		t.BelowAverage >= t.Average || t.Average >= t.Good || t.Good >= t.Excellent {
		return fmt.Errorf("thresholds %+v must be strictly increasing within 0..100: %w", t, ErrInvalidThresholds)
	}
	return nil
}

// Weights returns the configured blend.
func (s *WeightedScorer) Weights() Weights { return s.weights }

// Score computes the blended score for the given input.
func (s *WeightedScorer) Score(in Input) Result {
	c := Components{
		DPS:      saturate(in.DPS / s.refs.DPS),
		HPS:      saturate(in.HPS / s.refs.HPS),
		KDR:      saturate(in.KDR() / s.refs.KDR),
		Survival: saturate(in.Survival),
	}
	w := s.weights
	blend := (w.DPS*c.DPS + w.HPS*c.HPS + w.KDR*c.KDR + w.Survival*c.Survival) / w.sum()
	score := math.Max(0, math.Min(maxScoreValue, blend*maxScoreValue))

	return Result{
		Player:     in.Player,
		Score:      score,
		Rating:     s.Rate(score),
		Components: c,
	}
}

// Rate maps a score onto its rating band.
func (s *WeightedScorer) Rate(score float64) Rating {
	t := s.thresholds
	switch {
	case score >= t.Excellent:
		return RatingExcellent
	case score >= t.Good:
		return RatingGood
	case score >= t.Average:
		return RatingAverage
	case score >= t.BelowAverage:
		return RatingBelowAverage
	}
	return RatingPoor
}

func hasNaN(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// saturate clamps v to 0..1; NaN counts as zero.
func saturate(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
