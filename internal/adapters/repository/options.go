package repository

import (
	"time"

	"github.com/okian/scoutval/pkg/logger"
)

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBusyTimeout sets how long a writer waits for the database lock.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithMigrationsTable overrides the golang-migrate bookkeeping table name.
func WithMigrationsTable(name string) Option {
	return func(s *SQLiteStore) {
		if name != "" {
			s.migrationsTable = name
		}
	}
}
