// Package session issues and verifies the signed session marker that gates
// the /api routes.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/okian/scoutval/pkg/logger"
	"github.com/okian/scoutval/pkg/metrics"
)

// CookieName is the cookie carrying the session token.
const CookieName = "scoutval_session"

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 2 * time.Hour

// Claims is the verified content of a session token.
type Claims struct {
	UserID   string
	IssuedAt time.Time
}

// Manager signs and verifies HS256 session tokens.
type Manager struct {
	secret       []byte
	accessKey    []byte
	ttl          time.Duration
	now          func() time.Time
	secureCookie bool
	logger       logger.Logger
}

// NewManager builds a Manager. Tokens are only issued to callers presenting
// accessKey.
func NewManager(secret, accessKey string, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if accessKey == "" {
		return nil, ErrNoAccessKey
	}
	m := &Manager{
		secret:    []byte(secret),
		accessKey: []byte(accessKey),
		ttl:       DefaultTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.Get().Named("session")
	}
	return m, nil
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a token for userID after checking key. An empty userID gets a
// fresh random id.
func (m *Manager) Issue(ctx context.Context, userID, key string) (string, Claims, error) {
	if subtle.ConstantTimeCompare([]byte(key), m.accessKey) != 1 {
		metrics.RecordSessionRejected("access_key")
		return "", Claims{}, ErrInvalidKey
	}
	if userID == "" {
		userID = uuid.NewString()
	}

	now := m.now().UTC().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		ID:        uuid.NewString(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to sign session: %w", err)
	}

	metrics.RecordSessionIssued()
	m.logger.Info(ctx, "session issued", logger.String("user", userID))
	return signed, Claims{UserID: userID, IssuedAt: now}, nil
}

// Verify checks the signature and that the token is younger than the TTL.
func (m *Manager) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrMissingSession
	}

	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &rc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithIssuedAt(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	if rc.Subject == "" || rc.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: missing subject or issue time", ErrInvalidSession)
	}
	issued := rc.IssuedAt.Time
	if m.now().Sub(issued) >= m.ttl {
		return Claims{}, ErrExpired
	}
	return Claims{UserID: rc.Subject, IssuedAt: issued.UTC()}, nil
}

// Cookie returns the cookie that carries token.
func (m *Manager) Cookie(token string, issued time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  issued.Add(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns a cookie that removes the session.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest reads the bearer token, falling back to the cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

type userKey struct{}

// WithUser returns a context carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the session user set by the middleware.
func UserFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userKey{}).(string)
	return u, ok && u != ""
}
