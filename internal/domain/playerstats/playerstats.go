package playerstats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/skirmish/internal/domain/model"
	"github.com/okian/skirmish/internal/domain/rate"
	"github.com/okian/skirmish/internal/domain/scoring"
)

// Default calculator configuration constants.
const (
	defaultRollingWindow  = 3
	defaultMinConfidence  = 0.5
	defaultStableSlope    = 0.5
	defaultVeryConsistent = 0.10
	defaultConsistent     = 0.20
	defaultVariable       = 0.35
	minTrendSessions      = 2
	maxScore              = 100
)

// Consistency is the qualitative band of the score coefficient of variation.
type Consistency string

// Consistency ratings, steadiest first.
const (
	ConsistencyVery         Consistency = "very_consistent"
	ConsistencyConsistent   Consistency = "consistent"
	ConsistencyVariable     Consistency = "variable"
	ConsistencyInconsistent Consistency = "inconsistent"
)

// ConsistencyThresholds are the exclusive upper CV bounds of each band.
type ConsistencyThresholds struct {
	VeryConsistent float64 `koanf:"very_consistent" json:"very_consistent" yaml:"very_consistent"`
	Consistent     float64 `koanf:"consistent" json:"consistent" yaml:"consistent"`
	Variable       float64 `koanf:"variable" json:"variable" yaml:"variable"`
}

// DefaultConsistencyThresholds returns the default CV bands.
func DefaultConsistencyThresholds() ConsistencyThresholds {
	return ConsistencyThresholds{VeryConsistent: defaultVeryConsistent, Consistent: defaultConsistent, Variable: defaultVariable}
}

// Direction summarizes the sign of a trend slope.
type Direction string

// Trend directions.
const (
	DirectionImproving Direction = "improving"
	DirectionStable    Direction = "stable"
	DirectionDeclining Direction = "declining"
)

// SessionStats is one player's record for one session.
type SessionStats struct {
	SessionID   string         `json:"session_id" yaml:"session_id" csv:"session_id"`
	Player      string         `json:"player" yaml:"player" csv:"player"`
	Start       time.Time      `json:"start" yaml:"start" csv:"start"`
	Duration    time.Duration  `json:"duration" yaml:"duration" csv:"-"`
	Role        model.Role     `json:"role" yaml:"role" csv:"role"`
	DamageDone  int64          `json:"damage_done" yaml:"damage_done" csv:"damage_done"`
	HealingDone int64          `json:"healing_done" yaml:"healing_done" csv:"healing_done"`
	DamageTaken int64          `json:"damage_taken" yaml:"damage_taken" csv:"damage_taken"`
	DPS         float64        `json:"dps" yaml:"dps" csv:"dps"`
	HPS         float64        `json:"hps" yaml:"hps" csv:"hps"`
	Kills       int            `json:"kills" yaml:"kills" csv:"kills"`
	Deaths      int            `json:"deaths" yaml:"deaths" csv:"deaths"`
	Survived    bool           `json:"survived" yaml:"survived" csv:"survived"`
	Score       float64        `json:"score" yaml:"score" csv:"score"`
	Rating      scoring.Rating `json:"rating" yaml:"rating" csv:"rating"`
}

// Trend is a least squares fit over the ordered score sequence.
type Trend struct {
	Slope      float64   `json:"slope" yaml:"slope"`
	Intercept  float64   `json:"intercept" yaml:"intercept"`
	RSquared   float64   `json:"r_squared" yaml:"r_squared"`
	Direction  Direction `json:"direction" yaml:"direction"`
	Rolling    []float64 `json:"rolling" yaml:"rolling"`
	Prediction *float64  `json:"prediction,omitempty" yaml:"prediction,omitempty"`
}

// Aggregate is a player's long-run figures over many sessions.
type Aggregate struct {
	Player       string         `json:"player" yaml:"player"`
	Sessions     int            `json:"sessions" yaml:"sessions"`
	Duration     time.Duration  `json:"duration" yaml:"duration"`
	DamageDone   int64          `json:"damage_done" yaml:"damage_done"`
	HealingDone  int64          `json:"healing_done" yaml:"healing_done"`
	DamageTaken  int64          `json:"damage_taken" yaml:"damage_taken"`
	Kills        int            `json:"kills" yaml:"kills"`
	Deaths       int            `json:"deaths" yaml:"deaths"`
	AvgDPS       float64        `json:"avg_dps" yaml:"avg_dps"`
	AvgHPS       float64        `json:"avg_hps" yaml:"avg_hps"`
	BestDPS      float64        `json:"best_dps" yaml:"best_dps"`
	BestHPS      float64        `json:"best_hps" yaml:"best_hps"`
	BestScore    float64        `json:"best_score" yaml:"best_score"`
	KDR          float64        `json:"kdr" yaml:"kdr"`
	SurvivalRate float64        `json:"survival_rate" yaml:"survival_rate"`
	Score        float64        `json:"score" yaml:"score"`
	Rating       scoring.Rating `json:"rating,omitempty" yaml:"rating,omitempty"`
	ScoreCV      float64        `json:"score_cv" yaml:"score_cv"`
	Consistency  Consistency    `json:"consistency,omitempty" yaml:"consistency,omitempty"`
	Trend        *Trend         `json:"trend,omitempty" yaml:"trend,omitempty"`
	History      []SessionStats `json:"history,omitempty" yaml:"history,omitempty"`
}

// Calculator extracts per-session records and aggregates them. It is
// immutable after construction and safe for concurrent use.
type Calculator struct {
	rates         *rate.Calculator
	scorer        scoring.Scorer
	rolling       int
	minConfidence float64
	stableSlope   float64
	consistency   ConsistencyThresholds
}

// NewCalculator builds a Calculator, validating the configuration eagerly.
func NewCalculator(opts ...Option) (*Calculator, error) {
	p := &Calculator{
		rolling:       defaultRollingWindow,
		minConfidence: defaultMinConfidence,
		stableSlope:   defaultStableSlope,
		consistency:   DefaultConsistencyThresholds(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.rates == nil {
		c, err := rate.NewCalculator()
		if err != nil {
			return nil, err
		}
		p.rates = c
	}
	if p.scorer == nil {
		s, err := scoring.NewWeightedScorer()
		if err != nil {
			return nil, err
		}
		p.scorer = s
	}

	t := p.consistency
	switch {
	case p.rolling < 1:
		return nil, fmt.Errorf("rolling window %d must be at least 1: %w", p.rolling, ErrInvalidOption)
	case math.IsNaN(p.minConfidence) || p.minConfidence < 0 || p.minConfidence > 1:
		return nil, fmt.Errorf("min confidence %.2f must be within 0..1: %w", p.minConfidence, ErrInvalidOption)
	case math.IsNaN(p.stableSlope) || p.stableSlope < 0:
		return nil, fmt.Errorf("stable slope %.2f must not be negative: %w", p.stableSlope, ErrInvalidOption)
	case math.IsNaN(t.VeryConsistent) || math.IsNaN(t.Consistent) || math.IsNaN(t.Variable) ||
		t.VeryConsistent <= 0 || t.VeryConsistent >= t.Consistent || t.Consistent >= t.Variable:
		return nil, fmt.Errorf("consistency thresholds %+v must be positive and increasing: %w", t, ErrInvalidOption)
	}
	return p, nil
}

// Extract builds the player's record for one session.
func (p *Calculator) Extract(s model.Session, player string) (SessionStats, error) {
	if player == "" {
		return SessionStats{}, ErrEmptyPlayer
	}
	part, ok := s.Participant(player)
	if !ok {
		return SessionStats{}, fmt.Errorf("%q in session %s: %w", player, s.ID, ErrPlayerNotFound)
	}

	dur := s.Duration()
	st := SessionStats{
		SessionID:   s.ID,
		Player:      player,
		Start:       s.Start,
		Duration:    dur,
		Role:        part.Role,
		DamageDone:  part.DamageDone,
		HealingDone: part.HealingDone,
		DamageTaken: part.DamageTaken,
		DPS:         p.rates.Average(rate.DamageSamples(s.Events, player), dur),
		HPS:         p.rates.Average(rate.HealingSamples(s.Events, player), dur),
	}
	for _, e := range s.Events {
		d, ok := model.AsDeath(e)
		if !ok {
			continue
		}
		if d.Target.Name == player {
			st.Deaths++
		}
		if d.Killer.Name == player {
			st.Kills++
		}
	}
	st.Survived = st.Deaths == 0

	res := p.scorer.Score(scoring.Input{
		Player:   player,
		DPS:      st.DPS,
		HPS:      st.HPS,
		Kills:    st.Kills,
		Deaths:   st.Deaths,
		Survival: boolFraction(st.Survived),
	})
	st.Score, st.Rating = res.Score, res.Rating
	return st, nil
}

// Compute extracts the player's record from every session they took part in
// and aggregates them. Sessions without the player are skipped.
func (p *Calculator) Compute(player string, sessions []model.Session) (Aggregate, error) {
	if player == "" {
		return Aggregate{}, ErrEmptyPlayer
	}
	records := make([]SessionStats, 0, len(sessions))
	for _, s := range sessions {
		st, err := p.Extract(s, player)
		if err != nil {
			continue
		}
		records = append(records, st)
	}
	return p.Aggregate(player, records), nil
}

// Aggregate combines per-session records, ordered by session start. Zero
// records yield an empty aggregate; fewer than two yield no trend.
func (p *Calculator) Aggregate(player string, records []SessionStats) Aggregate {
	agg := Aggregate{Player: player, Sessions: len(records)}
	if len(records) == 0 {
		return agg
	}

	history := make([]SessionStats, len(records))
	copy(history, records)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Start.Before(history[j].Start)
	})
	agg.History = history

	scores := make([]float64, len(history))
	var survived int
	for i, r := range history {
		agg.Duration += r.Duration
		agg.DamageDone += r.DamageDone
		agg.HealingDone += r.HealingDone
		agg.DamageTaken += r.DamageTaken
		agg.Kills += r.Kills
		agg.Deaths += r.Deaths
		agg.AvgDPS += r.DPS
		agg.AvgHPS += r.HPS
		agg.BestDPS = math.Max(agg.BestDPS, r.DPS)
		agg.BestHPS = math.Max(agg.BestHPS, r.HPS)
		agg.BestScore = math.Max(agg.BestScore, r.Score)
		if r.Survived {
			survived++
		}
		scores[i] = r.Score
	}
	n := float64(len(history))
	agg.AvgDPS /= n
	agg.AvgHPS /= n
	agg.KDR = float64(agg.Kills) / math.Max(float64(agg.Deaths), 1)
	agg.SurvivalRate = float64(survived) / n

	res := p.scorer.Score(scoring.Input{
		Player:   player,
		DPS:      agg.AvgDPS,
		HPS:      agg.AvgHPS,
		Kills:    agg.Kills,
		Deaths:   agg.Deaths,
		Survival: agg.SurvivalRate,
	})
	agg.Score, agg.Rating = res.Score, res.Rating

	agg.ScoreCV = coefficientOfVariation(scores)
	agg.Consistency = p.rateConsistency(agg.ScoreCV)
	agg.Trend = p.trend(scores)
	return agg
}

func (p *Calculator) rateConsistency(cv float64) Consistency {
	t := p.consistency
	switch {
	case cv < t.VeryConsistent:
		return ConsistencyVery
	case cv < t.Consistent:
		return ConsistencyConsistent
	case cv < t.Variable:
		return ConsistencyVariable
	}
	return ConsistencyInconsistent
}

// trend fits score = intercept + slope*index. The prediction for the next
// session is set only when the fit clears the minimum confidence.
func (p *Calculator) trend(scores []float64) *Trend {
	if len(scores) < minTrendSessions {
		return nil
	}
	xs := make([]float64, len(scores))
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, scores, nil, false)
	r2 := stat.RSquared(xs, scores, nil, intercept, slope)
	if math.IsNaN(r2) {
		// Constant scores: the flat line fits exactly.
		r2 = 1
	}

	t := &Trend{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
		Direction: DirectionStable,
		Rolling:   rollingMean(scores, p.rolling),
	}
	switch {
	case slope > p.stableSlope:
		t.Direction = DirectionImproving
	case slope < -p.stableSlope:
		t.Direction = DirectionDeclining
	}
	if r2 >= p.minConfidence {
		next := math.Max(0, math.Min(maxScore, intercept+slope*float64(len(scores))))
		t.Prediction = &next
	}
	return t
}

// coefficientOfVariation is the sample standard deviation over the mean.
// It is zero for fewer than two values or a zero mean.
func coefficientOfVariation(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if mean == 0 {
		return 0
	}
	return std / math.Abs(mean)
}

func rollingMean(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		lo := max(0, i-window+1)
		out[i] = stat.Mean(xs[lo:i+1], nil)
	}
	return out
}

func boolFraction(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
