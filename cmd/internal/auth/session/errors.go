package session

import "errors"

var (
	// ErrNoActiveSession is returned when a token is empty, unknown or expired.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionAllocation is returned when every allocation attempt collided.
	ErrSessionAllocation = errors.New("session allocation failed")

	// ErrSessionNotFound is returned by stores when no active row matches.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTokenCollision is returned by stores when the token hash is already stored.
	ErrTokenCollision = errors.New("session token collision")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
