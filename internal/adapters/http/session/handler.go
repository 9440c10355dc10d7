package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/scoutval/pkg/logger"
	"github.com/okian/scoutval/pkg/metrics"
)

type createRequest struct {
	AccessKey string `json:"accessKey"`
	UserID    string `json:"userId"`
}

type createResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Middleware rejects requests without a valid session and stores the
// session user in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Verify(TokenFromRequest(r))
		if err != nil {
			reason := "invalid"
			switch {
			case errors.Is(err, ErrMissingSession):
				reason = "missing"
			case errors.Is(err, ErrExpired):
				reason = "expired"
			}
			metrics.RecordSessionRejected(reason)
			m.logger.Debug(r.Context(), "session rejected",
				logger.String("path", r.URL.Path),
				logger.String("reason", reason),
			)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "unauthorized", Message: err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID)))
	})
}

// HandleCreate serves POST /session.
func (m *Manager) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "method_not_allowed", Message: "use POST"})
		return
	}

	var req createRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<14))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid JSON"})
		return
	}

	token, claims, err := m.Issue(r.Context(), req.UserID, req.AccessKey)
	if errors.Is(err, ErrInvalidKey) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "unauthorized", Message: err.Error()})
		return
	}
	if err != nil {
		m.logger.Error(r.Context(), "session issue failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "internal", Message: "could not issue session"})
		return
	}

	http.SetCookie(w, m.Cookie(token, claims.IssuedAt))
	writeJSON(w, http.StatusCreated, createResponse{
		Token:     token,
		UserID:    claims.UserID,
		ExpiresAt: claims.IssuedAt.Add(m.ttl),
	})
}

// HandleDelete serves DELETE /session by clearing the cookie.
func (m *Manager) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", http.MethodDelete)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "method_not_allowed", Message: "use DELETE"})
		return
	}
	http.SetCookie(w, m.ClearCookie())
	w.WriteHeader(http.StatusNoContent)
}
