package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutval/internal/adapters/http/session"
	"github.com/okian/scoutval/pkg/logger"
)

func init() {
	_ = logger.Init()
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestManager(t *testing.T) {
	Convey("Given a manager with a two hour TTL", t, func() {
		ctx := context.Background()
		c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
		m, err := session.NewManager("s3cret", "scout", session.WithClock(c.now))
		So(err, ShouldBeNil)
		So(m.TTL(), ShouldEqual, 2*time.Hour)

		Convey("A wrong access key is refused", func() {
			_, _, err := m.Issue(ctx, "u1", "guess")
			So(errors.Is(err, session.ErrInvalidKey), ShouldBeTrue)
		})

		Convey("An issued token verifies to its user", func() {
			tok, claims, err := m.Issue(ctx, "u1", "scout")
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "u1")

			got, err := m.Verify(tok)
			So(err, ShouldBeNil)
			So(got.UserID, ShouldEqual, "u1")
			So(got.IssuedAt.Equal(c.t), ShouldBeTrue)

			Convey("It expires once the TTL has elapsed", func() {
				c.t = c.t.Add(2*time.Hour - time.Second)
				_, err := m.Verify(tok)
				So(err, ShouldBeNil)

				c.t = c.t.Add(time.Second)
				_, err = m.Verify(tok)
				So(errors.Is(err, session.ErrExpired), ShouldBeTrue)
			})

			Convey("A manager with another secret rejects it", func() {
				other, err := session.NewManager("other", "scout", session.WithClock(c.now))
				So(err, ShouldBeNil)
				_, err = other.Verify(tok)
				So(errors.Is(err, session.ErrInvalidSession), ShouldBeTrue)
			})

			Convey("A tampered token is rejected", func() {
				_, err := m.Verify(tok[:len(tok)-2] + "xx")
				So(errors.Is(err, session.ErrInvalidSession), ShouldBeTrue)
			})
		})

		Convey("An empty user gets a generated id", func() {
			_, claims, err := m.Issue(ctx, "", "scout")
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldNotBeEmpty)
		})

		Convey("An empty token is missing", func() {
			_, err := m.Verify("")
			So(errors.Is(err, session.ErrMissingSession), ShouldBeTrue)
		})
	})

	Convey("A manager needs a secret", t, func() {
		_, err := session.NewManager("", "scout")
		So(errors.Is(err, session.ErrNoSecret), ShouldBeTrue)
	})

	Convey("A manager needs an access key", t, func() {
		_, err := session.NewManager("s3cret", "")
		So(errors.Is(err, session.ErrNoAccessKey), ShouldBeTrue)
	})
}

func TestHandlers(t *testing.T) {
	Convey("Given the session routes and a gated handler", t, func() {
		m, err := session.NewManager("s3cret", "scout")
		So(err, ShouldBeNil)

		mux := http.NewServeMux()
		mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodDelete {
				m.HandleDelete(w, r)
				return
			}
			m.HandleCreate(w, r)
		})
		mux.Handle("/api/me", m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := session.UserFromContext(r.Context())
			_, _ = w.Write([]byte(user))
		})))

		Convey("Requests without a session are unauthorized", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A bad key gets 401", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"accessKey":"nope"}`))
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Malformed JSON gets 400", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{`))
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A created session opens the gated route", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"accessKey":"scout","userId":"u7"}`))
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusCreated)

			var body struct {
				Token  string `json:"token"`
				UserID string `json:"userId"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.UserID, ShouldEqual, "u7")

			cookies := rec.Result().Cookies()
			So(cookies, ShouldHaveLength, 1)
			So(cookies[0].Name, ShouldEqual, session.CookieName)
			So(cookies[0].HttpOnly, ShouldBeTrue)

			Convey("Through the bearer header", func() {
				rec := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
				req.Header.Set("Authorization", "Bearer "+body.Token)
				mux.ServeHTTP(rec, req)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldEqual, "u7")
			})

			Convey("Through the cookie", func() {
				rec := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
				req.AddCookie(cookies[0])
				mux.ServeHTTP(rec, req)
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("Deleting the session clears the cookie", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/session", nil))
			So(rec.Code, ShouldEqual, http.StatusNoContent)
			cookies := rec.Result().Cookies()
			So(cookies, ShouldHaveLength, 1)
			So(cookies[0].MaxAge, ShouldBeLessThan, 0)
		})
	})
}
