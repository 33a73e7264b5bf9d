package rate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/skirmish/internal/domain/model"
)

// Default calculator configuration constants.
const (
	defaultWindow   = 5 * time.Second
	defaultInterval = time.Second
	minSeconds      = 1.0
)

// Sample is one effective amount at a point in time.
type Sample struct {
	Timestamp time.Time
	Amount    float64
}

// Peak is the best sliding-window rate and the window that produced it.
type Peak struct {
	Rate  float64   `json:"rate" yaml:"rate"`
	Total float64   `json:"total" yaml:"total"`
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Point is one step of a rate series.
type Point struct {
	Offset     time.Duration `json:"offset" yaml:"offset"`
	Timestamp  time.Time     `json:"timestamp" yaml:"timestamp"`
	Rate       float64       `json:"rate" yaml:"rate"`
	Cumulative float64       `json:"cumulative" yaml:"cumulative"`
}

// Calculator holds the rate window configuration. It is immutable after
// construction and safe for concurrent use.
type Calculator struct {
	window   time.Duration
	interval time.Duration
}

// NewCalculator builds a Calculator, validating the configuration eagerly.
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{
		window:   defaultWindow,
		interval: defaultInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.window <= 0 {
		return nil, fmt.Errorf("window %s must be positive: %w", c.window, ErrInvalidOption)
	}
	if c.interval <= 0 {
		return nil, fmt.Errorf("interval %s must be positive: %w", c.interval, ErrInvalidOption)
	}
	return c, nil
}

// Window returns the sliding window size.
func (c *Calculator) Window() time.Duration { return c.window }

// Interval returns the series step.
func (c *Calculator) Interval() time.Duration { return c.interval }

// Average divides the total amount by the duration in seconds, floored at one second.
func (c *Calculator) Average(samples []Sample, duration time.Duration) float64 {
	return Total(samples) / math.Max(duration.Seconds(), minSeconds)
}

// Peak finds the window of at most the configured size with the highest
// rate. Samples are sorted by time first; a window's rate is its sum divided
// by its span in seconds, floored at one second.
func (c *Calculator) Peak(samples []Sample) Peak {
	sorted := sortSamples(samples)
	var (
		best Peak
		sum  float64
		l    int
	)
	for r := range sorted {
		sum += sorted[r].Amount
		for sorted[r].Timestamp.Sub(sorted[l].Timestamp) > c.window {
			sum -= sorted[l].Amount
			l++
		}
		span := sorted[r].Timestamp.Sub(sorted[l].Timestamp)
		rate := sum / math.Max(span.Seconds(), minSeconds)
		if r == 0 || rate > best.Rate {
			best = Peak{Rate: rate, Total: sum, Start: sorted[l].Timestamp, End: sorted[r].Timestamp}
		}
	}
	return best
}

// Series steps from the first to the last sample timestamp at the configured
// interval. The last point is pinned to the last sample so the final
// cumulative value equals the total. The trailing window never reaches
// before the first sample.
func (c *Calculator) Series(samples []Sample) []Point {
	sorted := sortSamples(samples)
	if len(sorted) == 0 {
		return nil
	}
	first := sorted[0].Timestamp
	last := sorted[len(sorted)-1].Timestamp

	var (
		points     []Point
		windowSum  float64
		cumulative float64
		l, r       int
	)
	step := func(t time.Time) {
		for r < len(sorted) && !sorted[r].Timestamp.After(t) {
			windowSum += sorted[r].Amount
			cumulative += sorted[r].Amount
			r++
		}
		lo := t.Add(-c.window)
		for l < r && sorted[l].Timestamp.Before(lo) {
			windowSum -= sorted[l].Amount
			l++
		}
		span := min(c.window, t.Sub(first))
		points = append(points, Point{
			Offset:     t.Sub(first),
			Timestamp:  t,
			Rate:       windowSum / math.Max(span.Seconds(), minSeconds),
			Cumulative: cumulative,
		})
	}

	t := first
	for !t.After(last) {
		step(t)
		t = t.Add(c.interval)
	}
	if points[len(points)-1].Timestamp.Before(last) {
		step(last)
	}
	return points
}

// Total sums sample amounts.
func Total(samples []Sample) float64 {
	var sum float64
	for _, s := range samples {
		sum += s.Amount
	}
	return sum
}

func sortSamples(samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	copy(out, samples)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// DamageSamples turns damage events into effective-amount samples. When
// source is non-empty only that entity's hits are kept.
func DamageSamples(events []model.Event, source string) []Sample {
	var out []Sample
	for _, e := range events {
		d, ok := model.AsDamage(e)
		if !ok || (source != "" && d.Source.Name != source) {
			continue
		}
		out = append(out, Sample{Timestamp: d.Timestamp, Amount: float64(d.Effective())})
	}
	return out
}

// HealingSamples turns healing events into effective-amount samples. When
// source is non-empty only that entity's heals are kept.
func HealingSamples(events []model.Event, source string) []Sample {
	var out []Sample
	for _, e := range events {
		h, ok := model.AsHealing(e)
		if !ok || (source != "" && h.Source.Name != source) {
			continue
		}
		out = append(out, Sample{Timestamp: h.Timestamp, Amount: float64(h.Effective())})
	}
	return out
}
