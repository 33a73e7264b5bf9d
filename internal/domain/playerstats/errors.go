package playerstats

import "errors"

// Sentinel kinds for player statistics errors.
var (
	ErrInvalidOption  = errors.New("invalid player stats option")
	ErrPlayerNotFound = errors.New("player did not take part in session")
	ErrEmptyPlayer    = errors.New("player name is empty")
)
