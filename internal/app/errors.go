package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrEmptyPlayer = errors.New("player name is empty")
	ErrBadIndex    = errors.New("summary index out of range")
)
