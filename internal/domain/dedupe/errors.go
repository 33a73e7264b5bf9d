package dedupe

import "errors"

// Sentinel kinds for dedupe errors.
var (
	ErrInvalidSize = errors.New("invalid dedupe size")
)
