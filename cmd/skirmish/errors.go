package main

import "errors"

// Sentinel kinds for command errors.
var (
	ErrNoSessions      = errors.New("no sessions in input")
	ErrSessionNotFound = errors.New("session not found")
)
