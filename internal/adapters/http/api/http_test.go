package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutval/internal/adapters/http/api"
	"github.com/okian/scoutval/internal/adapters/http/session"
	"github.com/okian/scoutval/internal/adapters/repository"
	service "github.com/okian/scoutval/internal/app"
	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/types"
	"github.com/okian/scoutval/internal/domain/valuation"
	"github.com/okian/scoutval/internal/domain/weights"
	"github.com/okian/scoutval/pkg/logger"
)

func init() {
	_ = logger.Init()
}

var n = player.IntPtr

// faultyDeps injects valuation failures on top of a real service.
type faultyDeps struct {
	*service.Service
	valuationErr error
}

func (f *faultyDeps) PlayerValuation(ctx context.Context, id int) (valuation.Valuation, error) {
	if f.valuationErr != nil {
		return valuation.Valuation{}, f.valuationErr
	}
	return f.Service.PlayerValuation(ctx, id)
}

type harness struct {
	mux   *http.ServeMux
	deps  *faultyDeps
	token string
}

func seed(ctx context.Context) (*repository.Records, *weights.Store) {
	store := repository.NewMemoryStore()
	records := repository.NewRecords(store)
	So(records.PutTeam(ctx, player.Team{ID: 85, Name: "FC", WorldRanking: 5, MaxRanking: 50, Competitiveness: 0.9}), ShouldBeNil)
	So(records.PutPlayer(ctx, player.Record{
		ID:       276,
		Name:     "N. Striker",
		Position: "Attacker",
		TeamID:   85,
		Media:    &player.Media{InstagramFollowers: 200_000, EngagementRate: 4, GoogleSearches: 100_000, TwitterMentions: 10_000},
		Statistics: []player.Statistics{{
			Games:   player.Games{Appearances: n(20), Minutes: n(1800), Lineups: n(18)},
			Goals:   player.Goals{Total: n(10)},
			Assists: n(5),
		}},
	}), ShouldBeNil)
	So(records.PutPlayer(ctx, player.Record{ID: 1, Name: "K. Eeper", Position: "Goalkeeper", TeamID: 85}), ShouldBeNil)
	ws := weights.NewStore(repository.NewWeightDocuments(store))
	So(ws.Bootstrap(ctx), ShouldBeNil)
	return records, ws
}

func newHarness(opts ...service.Option) *harness {
	ctx := context.Background()
	records, ws := seed(ctx)
	svc := service.New(records, ws, opts...)
	So(svc.Start(ctx), ShouldBeNil)
	Reset(func() { _ = svc.Stop(ctx) })

	gate, err := session.NewManager("s3cret", "scout")
	So(err, ShouldBeNil)

	deps := &faultyDeps{Service: svc}
	mux := http.NewServeMux()
	api.NewServer(deps, gate, 5).Register(ctx, mux)

	token, _, err := gate.Issue(ctx, "u1", "scout")
	So(err, ShouldBeNil)
	return &harness{mux: mux, deps: deps, token: token}
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	w := httptest.NewRecorder()
	h.mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServerRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		h := newHarness()

		Convey("Health serves the metrics registry without a session", func() {
			h.token = ""
			w := h.do(http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Stats are public JSON", func() {
			h.token = ""
			w := h.do(http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("API routes need a session", func() {
			h.token = ""
			w := h.do(http.MethodGet, "/api/teams", "")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A session can be created through the API", func() {
			h.token = ""
			w := h.do(http.MethodPost, "/session", `{"accessKey":"scout"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
		})

		Convey("Teams and rosters are browsable", func() {
			w := h.do(http.MethodGet, "/api/teams", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var teams []player.Team
			So(json.Unmarshal(w.Body.Bytes(), &teams), ShouldBeNil)
			So(teams, ShouldHaveLength, 1)

			w = h.do(http.MethodGet, "/api/teams/85/players", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var roster []player.Record
			So(json.Unmarshal(w.Body.Bytes(), &roster), ShouldBeNil)
			So(roster, ShouldHaveLength, 2)

			So(h.do(http.MethodGet, "/api/teams/9/players", "").Code, ShouldEqual, http.StatusNotFound)
			So(h.do(http.MethodGet, "/api/teams/abc/players", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A player record is served raw", func() {
			w := h.do(http.MethodGet, "/api/players/276", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"position":"Attacker"`)
			So(h.do(http.MethodGet, "/api/players/4040", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Unsupported methods are rejected by the router", func() {
			So(h.do(http.MethodPost, "/api/teams", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestValuationRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		h := newHarness()

		Convey("A valuation is computed and ranked", func() {
			w := h.do(http.MethodGet, "/api/players/276/valuation", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var v valuation.Valuation
			So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
			So(v.PlayerID, ShouldEqual, 276)
			So(v.CompositeValue, ShouldBeGreaterThan, 0)

			w = h.do(http.MethodGet, "/api/rank/276", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var e types.Entry
			So(json.Unmarshal(w.Body.Bytes(), &e), ShouldBeNil)
			So(e.Rank, ShouldEqual, 1)

			w = h.do(http.MethodGet, "/api/leaderboard?limit=3", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var top []types.Entry
			So(json.Unmarshal(w.Body.Bytes(), &top), ShouldBeNil)
			So(top, ShouldHaveLength, 1)
		})

		Convey("A missing player is 404", func() {
			w := h.do(http.MethodGet, "/api/players/4040/valuation", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, service.KindNotFound)
		})

		Convey("A configuration error is 500", func() {
			h.deps.valuationErr = types.NewConfigurationError("Attacker", "goalsPerGame", "missing weight")
			w := h.do(http.MethodGet, "/api/players/276/valuation", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(errorCode(w), ShouldEqual, "configuration_error")
		})

		Convey("An upstream failure is 502", func() {
			h.deps.valuationErr = types.NewUpstreamFetchError("get player", errors.New("timeout"))
			w := h.do(http.MethodGet, "/api/players/276/valuation", "")
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(errorCode(w), ShouldEqual, "upstream_error")
		})

		Convey("Unranked players and bad limits are rejected", func() {
			So(h.do(http.MethodGet, "/api/rank/1", "").Code, ShouldEqual, http.StatusNotFound)
			So(h.do(http.MethodGet, "/api/rank/0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(h.do(http.MethodGet, "/api/leaderboard?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			w := h.do(http.MethodGet, "/api/leaderboard?limit=6", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "limit_exceeded")
		})
	})
}

func TestWeightsRoutes(t *testing.T) {
	Convey("Given a server allowing one weight save per minute", t, func() {
		h := newHarness(service.WithWeightSavesPerMinute(1))

		w := h.do(http.MethodGet, "/api/weights/attacker", "")
		So(w.Code, ShouldEqual, http.StatusOK)
		var got struct {
			Category player.Category `json:"category"`
			Profile  weights.Profile `json:"profile"`
		}
		So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
		So(got.Category, ShouldEqual, player.Attacker)

		Convey("An unknown category is 400", func() {
			So(h.do(http.MethodGet, "/api/weights/coach", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An incomplete profile is 400", func() {
			delete(got.Profile.PerformanceWeights, "goalsPerGame")
			body, err := json.Marshal(got.Profile)
			So(err, ShouldBeNil)
			w := h.do(http.MethodPut, "/api/weights/Attacker", string(body))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "validation")
		})

		Convey("A second save is throttled", func() {
			got.Profile.PerformanceWeights["goalsPerGame"] = 0.35
			body, err := json.Marshal(got.Profile)
			So(err, ShouldBeNil)

			So(h.do(http.MethodPut, "/api/weights/Attacker", string(body)).Code, ShouldEqual, http.StatusOK)
			w := h.do(http.MethodPut, "/api/weights/Attacker", string(body))
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w.Header().Get("Retry-After"), ShouldNotBeEmpty)
		})

		Convey("Malformed JSON is 400", func() {
			So(h.do(http.MethodPut, "/api/weights/Attacker", "{").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRevaluationRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		h := newHarness()

		Convey("A team job is accepted", func() {
			w := h.do(http.MethodPost, "/api/revaluations", `{"teamId":85}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			var job struct {
				ID       string `json:"jobId"`
				Accepted []int  `json:"accepted"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &job), ShouldBeNil)
			So(job.ID, ShouldNotBeEmpty)
			So(job.Accepted, ShouldHaveLength, 2)
		})

		Convey("Explicit players are accepted", func() {
			w := h.do(http.MethodPost, "/api/revaluations", `{"playerIds":[276],"reason":"weights_changed"}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
		})

		Convey("Requests must name players or a team but not both", func() {
			So(h.do(http.MethodPost, "/api/revaluations", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(h.do(http.MethodPost, "/api/revaluations", `{"teamId":85,"playerIds":[1]}`).Code, ShouldEqual, http.StatusBadRequest)
			So(h.do(http.MethodPost, "/api/revaluations", `{"playerIds":[0]}`).Code, ShouldEqual, http.StatusBadRequest)
			So(h.do(http.MethodPost, "/api/revaluations", `{"bogus":1}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An unknown team is 404", func() {
			So(h.do(http.MethodPost, "/api/revaluations", `{"teamId":9}`).Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestFavoritesRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		h := newHarness()

		Convey("The pool starts empty", func() {
			w := h.do(http.MethodGet, "/api/favorites", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"groups":[]`)
		})

		Convey("Favorites are added, grouped and removed", func() {
			So(h.do(http.MethodPut, "/api/favorites/276", "").Code, ShouldEqual, http.StatusNoContent)
			So(h.do(http.MethodPut, "/api/favorites/1", "").Code, ShouldEqual, http.StatusNoContent)

			w := h.do(http.MethodGet, "/api/favorites", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body struct {
				UserID string `json:"userId"`
				Groups []struct {
					Label string `json:"label"`
				} `json:"groups"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body.UserID, ShouldEqual, "u1")
			So(body.Groups, ShouldHaveLength, 2)
			So(body.Groups[0].Label, ShouldEqual, "Goalkeepers")
			So(body.Groups[1].Label, ShouldEqual, "Forwards")

			So(h.do(http.MethodDelete, "/api/favorites/1", "").Code, ShouldEqual, http.StatusNoContent)
			So(h.do(http.MethodDelete, "/api/favorites/1", "").Code, ShouldEqual, http.StatusNoContent)
		})

		Convey("Favoriting an unknown player is 404", func() {
			So(h.do(http.MethodPut, "/api/favorites/4040", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestOpError(t *testing.T) {
	Convey("Given handler errors", t, func() {
		cause := errors.New("boom")

		Convey("WrapKind matches both the kind and the cause", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("NewKind carries no cause", func() {
			err := api.NewKind("api.op", api.ErrBackpressure)
			So(errors.Is(err, api.ErrBackpressure), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: backpressure")
		})

		Convey("Wrap of nil is nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
		})
	})
}
