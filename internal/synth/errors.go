package synth

import "errors"

// Sentinel kinds for generator errors.
var (
	ErrInvalidOption = errors.New("invalid generator option")
)
