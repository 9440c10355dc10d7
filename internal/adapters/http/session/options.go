package session

import (
	"time"

	"github.com/okian/scoutval/pkg/logger"
)

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets how long a session stays valid after issue.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(m *Manager) {
		m.secureCookie = secure
	}
}

// WithLogger sets the manager logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}
