package scoring

import "errors"

// Sentinel kinds for scorer configuration errors.
var (
	ErrInvalidWeights    = errors.New("invalid scoring weights")
	ErrInvalidReferences = errors.New("invalid scoring references")
	ErrInvalidThresholds = errors.New("invalid rating thresholds")
)
