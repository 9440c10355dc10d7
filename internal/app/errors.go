package service

import "errors"

// Sentinel errors returned by the service. The HTTP layer maps them to
// status codes.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrPlayerNotFound = errors.New("player not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrBackpressure   = errors.New("revaluation queue full")
	ErrThrottled      = errors.New("too many weight saves")
)
