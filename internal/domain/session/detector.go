package session

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/skirmish/internal/domain/model"
)

// Default detector configuration constants.
const (
	defaultGapThreshold   = 10 * time.Second
	defaultDominanceRatio = 1.5
)

// sessionNamespace seeds deterministic session ids so the same input always
// yields the same ids.
var sessionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("skirmish/session")) //nolint:gochecknoglobals // immutable namespace

// Detection is the full result of a scan. Sessions and Noise together
// partition the input; Noise is empty unless a minimum is configured.
type Detection struct {
	Sessions []model.Session
	Noise    []model.Session
}

// Detector finds encounter boundaries by inactivity gap. It is immutable
// after construction and safe for concurrent use.
type Detector struct {
	gap         time.Duration
	minEvents   int
	minDuration time.Duration
	dominance   float64
}

// NewDetector builds a Detector, validating the configuration eagerly.
func NewDetector(opts ...Option) (*Detector, error) {
	d := &Detector{
		gap:       defaultGapThreshold,
		dominance: defaultDominanceRatio,
	}

	for _, opt := range opts {
		opt(d)
	}

	switch {
	case d.gap <= 0:
		return nil, fmt.Errorf("gap threshold %s must be positive: %w", d.gap, ErrInvalidOption)
	case d.minEvents < 0:
		return nil, fmt.Errorf("min events %d must not be negative: %w", d.minEvents, ErrInvalidOption)
	case d.minDuration < 0:
		return nil, fmt.Errorf("min duration %s must not be negative: %w", d.minDuration, ErrInvalidOption)
	case math.IsNaN(d.dominance) || d.dominance < 1:
		return nil, fmt.Errorf("dominance ratio %.2f must be at least 1: %w", d.dominance, ErrInvalidOption)
	}
	return d, nil
}

// GapThreshold returns the configured inactivity gap.
func (d *Detector) GapThreshold() time.Duration { return d.gap }

// Detect returns the sessions found in events, leaving out noise runs.
func (d *Detector) Detect(events []model.Event) ([]model.Session, error) {
	det, err := d.DetectAll(events)
	if err != nil {
		return nil, err
	}
	return det.Sessions, nil
}

// DetectAll scans events once, left to right. Boundaries are committed as
// soon as a gap is seen and never reopened. Events must be ordered by
// non-decreasing timestamp; the first violation aborts the scan.
func (d *Detector) DetectAll(events []model.Event) (Detection, error) {
	var det Detection
	if len(events) == 0 {
		return det, nil
	}
	if err := model.CheckTimestamp(0, events[0]); err != nil {
		return Detection{}, err
	}

	start := 0
	for i := 1; i < len(events); i++ {
		if err := model.CheckTimestamp(i, events[i]); err != nil {
			return Detection{}, err
		}
		prev, cur := model.Time(events[i-1]), model.Time(events[i])
		if cur.Before(prev) {
			return Detection{}, &model.OrderError{
				Index:     i,
				EventID:   events[i].Meta().ID,
				Previous:  prev,
				Timestamp: cur,
			}
		}
		if cur.Sub(prev) > d.gap {
			d.commit(&det, events[start:i])
			start = i
		}
	}
	d.commit(&det, events[start:])
	return det, nil
}

func (d *Detector) commit(det *Detection, run []model.Event) {
	s := d.close(run)
	if d.isNoise(s) {
		det.Noise = append(det.Noise, s)
		return
	}
	det.Sessions = append(det.Sessions, s)
}

// close freezes a run into a Session that owns its own copy of the events.
func (d *Detector) close(run []model.Event) model.Session {
	events := make([]model.Event, len(run))
	copy(events, run)

	first := events[0]
	start := model.Time(first)
	seed := first.Meta().ID + "|" + strconv.FormatInt(start.UnixNano(), 10)

	return model.Session{
		ID:           uuid.NewSHA1(sessionNamespace, []byte(seed)).String(),
		Start:        start,
		End:          model.Time(events[len(events)-1]),
		Events:       events,
		Participants: d.participants(events),
	}
}

func (d *Detector) isNoise(s model.Session) bool {
	if d.minEvents > 0 && len(s.Events) < d.minEvents {
		return true
	}
	return d.minDuration > 0 && s.Duration() < d.minDuration
}
