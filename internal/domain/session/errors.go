package session

import "errors"

// Sentinel kinds for detector errors.
var (
	ErrInvalidOption = errors.New("invalid session detector option")
)
