package session

import "errors"

var (
	// ErrSessionNotFound is returned when a turn is appended to, or a
	// transcript requested for, a session key that was never started
	ErrSessionNotFound = errors.New("session not found")
)
