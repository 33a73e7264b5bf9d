package rate

import "errors"

// Sentinel kinds for rate calculator errors.
var (
	ErrInvalidOption = errors.New("invalid rate option")
)
