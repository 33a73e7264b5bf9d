package codec

import (
	"errors"
	"fmt"
)

// Sentinel kinds for codec errors.
var (
	ErrSyntax      = errors.New("malformed event line")
	ErrUnknownType = errors.New("unknown event type")
	ErrInvalid     = errors.New("invalid event field")
)

// LineError ties a decode failure to its 1-based input line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

// Unwrap exposes the underlying sentinel.
func (e *LineError) Unwrap() error { return e.Err }
