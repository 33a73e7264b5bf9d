package breakdown

import "errors"

// Sentinel kinds for breakdown errors.
var (
	ErrUnknownDimension = errors.New("unknown breakdown dimension")
)
