package timeline

import "errors"

// Sentinel kinds for timeline errors.
var (
	ErrInvalidOption = errors.New("invalid timeline option")
	ErrUnknownMarker = errors.New("unknown timeline marker")
)
