// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabasePath is the sqlite file holding players, teams, favorites and weights.
	DatabasePath string `koanf:"database_path"`

	// WeightsDocument is the id of the weight profile document.
	WeightsDocument string `koanf:"weights_document"`

	// QueueSize bounds the in-memory revaluation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of revaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the pending revaluation cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /api/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SessionSecret signs session markers.
	SessionSecret string `koanf:"session_secret"`

	// SessionAccessKey is the key a caller presents to open a session.
	SessionAccessKey string `koanf:"session_access_key"`

	// SessionTTLMinutes bounds session age.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// WeightSavesPerMinute throttles weight profile edits.
	WeightSavesPerMinute int `koanf:"weight_saves_per_minute"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		DatabasePath:         "scoutval.db",
		WeightsDocument:      "current",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU(),
		DedupeSize:           50_000,
		MaxLeaderboardLimit:  100,
		SessionSecret:        "change-me",
		SessionAccessKey:     "scout",
		SessionTTLMinutes:    120,
		WeightSavesPerMinute: 30,
	}
}

// SessionTTL returns the session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Validate checks the fields every process relies on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatabasePath == "":
		return fmt.Errorf("%w: database_path must not be empty", ErrInvalidConfig)
	case c.WeightsDocument == "":
		return fmt.Errorf("%w: weights_document must not be empty", ErrInvalidConfig)
	case c.SessionSecret == "":
		return fmt.Errorf("%w: session_secret must not be empty", ErrInvalidConfig)
	case c.SessionAccessKey == "":
		return fmt.Errorf("%w: session_access_key must not be empty", ErrInvalidConfig)
	case c.SessionTTLMinutes <= 0:
		return fmt.Errorf("%w: session_ttl_minutes must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.WeightSavesPerMinute <= 0:
		return fmt.Errorf("%w: weight_saves_per_minute must be positive", ErrInvalidConfig)
	}
	return nil
}
