package player

import "errors"

// Sentinel kinds for player record errors.
var (
	ErrUnknownCategory = errors.New("unknown player category")
	ErrNoStatistics    = errors.New("no statistic snapshot")
)
