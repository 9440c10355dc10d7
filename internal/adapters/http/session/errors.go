package session

import "errors"

// Sentinel kinds for session errors.
var (
	ErrNoSecret       = errors.New("session secret not configured")
	ErrNoAccessKey    = errors.New("session access key not configured")
	ErrInvalidKey     = errors.New("invalid access key")
	ErrMissingSession = errors.New("missing session")
	ErrInvalidSession = errors.New("invalid session")
	ErrExpired        = errors.New("session expired")
)
