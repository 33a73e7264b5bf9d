package fight

import "errors"

// Sentinel kinds for fight errors.
var (
	ErrInvalidOption = errors.New("invalid fight option")
)
