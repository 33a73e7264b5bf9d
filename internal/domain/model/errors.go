package model

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel error kinds for input contract violations.
var (
	ErrOutOfOrder         = errors.New("events out of order")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
)

// OrderError identifies the event that broke the non-decreasing timestamp contract.
type OrderError struct {
	Index     int
	EventID   string
	Previous  time.Time
	Timestamp time.Time
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("event %d (%s) at %s precedes previous event at %s",
		e.Index, e.EventID, e.Timestamp.Format(time.RFC3339Nano), e.Previous.Format(time.RFC3339Nano))
}

// Unwrap lets errors.Is match ErrOutOfOrder.
func (e *OrderError) Unwrap() error { return ErrOutOfOrder }

// CheckTimestamp validates a single event's timestamp.
func CheckTimestamp(index int, e Event) error {
	if Time(e).IsZero() {
		return fmt.Errorf("event %d (%s): %w", index, e.Meta().ID, ErrMalformedTimestamp)
	}
	return nil
}
