package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutval/internal/adapters/http/session"
	service "github.com/okian/scoutval/internal/app"
	"github.com/okian/scoutval/internal/config"
	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "scoutval.db")
	cfg.WorkerCount = 1
	cfg.QueueSize = 16
	cfg.SessionSecret = "test-secret"
	return cfg
}

func openSession(t *testing.T, srv *httptest.Server, key string) string {
	resp, err := http.Post(srv.URL+"/session", "application/json",
		strings.NewReader(`{"accessKey":"`+key+`","userId":"scout-1"}`))
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return ""
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return body.Token
}

func get(t *testing.T, srv *httptest.Server, path, token string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func TestApplication(t *testing.T) {
	Convey("Given an application over a fresh sqlite database", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)

		stores, err := service.OpenStores(ctx, cfg)
		So(err, ShouldBeNil)

		So(stores.Records.PutTeam(ctx, player.Team{ID: 85, Name: "FC", WorldRanking: 5, MaxRanking: 50, Competitiveness: 0.9}), ShouldBeNil)
		So(stores.Records.PutPlayer(ctx, player.Record{
			ID: 276, Name: "N. Striker", Position: "Attacker", TeamID: 85,
			Statistics: []player.Statistics{{Goals: player.Goals{Total: player.IntPtr(10)}}},
		}), ShouldBeNil)

		app, err := newApplication(ctx, cfg, stores)
		So(err, ShouldBeNil)
		srv := httptest.NewServer(app.handler)

		Reset(func() {
			srv.Close()
			_ = app.close(ctx)
		})

		Convey("Health, stats and docs are public", func() {
			for _, path := range []string{"/", "/healthz", "/stats", "/api-docs", "/openapi.yaml"} {
				resp := get(t, srv, path, "")
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			}
		})

		Convey("The api requires a session", func() {
			resp := get(t, srv, "/api/teams", "")
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A wrong access key opens no session", func() {
			So(openSession(t, srv, "nope"), ShouldBeEmpty)
		})

		Convey("With a session", func() {
			token := openSession(t, srv, cfg.SessionAccessKey)
			So(token, ShouldNotBeEmpty)

			Convey("Teams come from the database", func() {
				resp := get(t, srv, "/api/teams", token)
				defer resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var teams []player.Team
				So(json.NewDecoder(resp.Body).Decode(&teams), ShouldBeNil)
				So(teams, ShouldHaveLength, 1)
				So(teams[0].ID, ShouldEqual, 85)
			})

			Convey("Bootstrapped weights are served", func() {
				resp := get(t, srv, "/api/weights/attacker", token)
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})

			Convey("A valuation ranks the player", func() {
				resp := get(t, srv, "/api/players/276/valuation", token)
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				resp = get(t, srv, "/api/rank/276", token)
				defer resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var entry struct {
					Rank int `json:"rank"`
				}
				So(json.NewDecoder(resp.Body).Decode(&entry), ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)
			})
		})
	})

	Convey("A missing session secret fails wiring", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.SessionSecret = ""

		stores, err := service.OpenStores(ctx, cfg)
		So(err, ShouldBeNil)
		defer stores.Close()

		_, err = newApplication(ctx, cfg, stores)
		So(errors.Is(err, session.ErrNoSecret), ShouldBeTrue)
	})
}
