// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	service "github.com/okian/scoutval/internal/app"
	"github.com/okian/scoutval/internal/domain/model"
	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/types"
	"github.com/okian/scoutval/internal/domain/valuation"
	"github.com/okian/scoutval/internal/domain/weights"
	"github.com/okian/scoutval/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider
	LeaderboardDependencies
	RankDependencies

	Teams(ctx context.Context) ([]player.Team, error)
	TeamPlayers(ctx context.Context, teamID int) ([]player.Record, error)
	Player(ctx context.Context, id int) (player.Record, error)
	PlayerValuation(ctx context.Context, id int) (valuation.Valuation, error)

	WeightProfile(ctx context.Context, label string) (player.Category, weights.Profile, error)
	SaveWeightProfile(ctx context.Context, userID, label string, p weights.Profile) (player.Category, error)

	EnqueueRevaluation(ctx context.Context, playerIDs []int, reason string) (model.Job, error)
	EnqueueTeamRevaluation(ctx context.Context, teamID int, reason string) (model.Job, error)

	Favorites(ctx context.Context, userID string) ([]service.FavoriteGroup, error)
	AddFavorite(ctx context.Context, userID string, playerID int) error
	RemoveFavorite(ctx context.Context, userID string, playerID int) error
}

// Gate wraps the /api routes with session checks.
type Gate interface {
	Middleware(next http.Handler) http.Handler
	HandleCreate(w http.ResponseWriter, r *http.Request)
	HandleDelete(w http.ResponseWriter, r *http.Request)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	gate Gate

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	playersHandler     *PlayersHandler
	weightsHandler     *WeightsHandler
	revaluationHandler *RevaluationHandler
	favoritesHandler   *FavoritesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, gate Gate, maxLimit int) *Server {
	log := logger.Get().Named("api")
	return &Server{
		gate:               gate,
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
		playersHandler:     NewPlayersHandler(deps, log),
		weightsHandler:     NewWeightsHandler(deps, log),
		revaluationHandler: NewRevaluationHandler(deps, log),
		favoritesHandler:   NewFavoritesHandler(deps, log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /session", MetricsMiddleware(s.gate.HandleCreate, "session"))
	mux.HandleFunc("DELETE /session", MetricsMiddleware(s.gate.HandleDelete, "session"))

	s.handle(mux, "GET /api/teams", "teams", s.playersHandler.HandleListTeams)
	s.handle(mux, "GET /api/teams/{id}/players", "team_players", s.playersHandler.HandleTeamPlayers)
	s.handle(mux, "GET /api/players/{id}", "player", s.playersHandler.HandleGetPlayer)
	s.handle(mux, "GET /api/players/{id}/valuation", "valuation", s.playersHandler.HandleValuation)
	s.handle(mux, "GET /api/weights/{category}", "weights", s.weightsHandler.HandleGet)
	s.handle(mux, "PUT /api/weights/{category}", "weights", s.weightsHandler.HandlePut)
	s.handle(mux, "POST /api/revaluations", "revaluations", s.revaluationHandler.HandlePost)
	s.handle(mux, "GET /api/leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
	s.handle(mux, "GET /api/rank/{id}", "rank", s.rankHandler.HandleGetRank)
	s.handle(mux, "GET /api/favorites", "favorites", s.favoritesHandler.HandleList)
	s.handle(mux, "PUT /api/favorites/{playerId}", "favorites", s.favoritesHandler.HandleAdd)
	s.handle(mux, "DELETE /api/favorites/{playerId}", "favorites", s.favoritesHandler.HandleRemove)
}

// handle registers a session-gated route. Metrics wrap the gate so
// rejected requests are counted too.
func (s *Server) handle(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	gated := s.gate.Middleware(h)
	mux.HandleFunc(pattern, MetricsMiddleware(gated.ServeHTTP, endpoint))
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

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps a service error to its status code.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	kind := service.ErrorKind(err)
	status := http.StatusInternalServerError
	switch kind {
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindThrottled:
		w.Header().Set("Retry-After", "60")
		status = http.StatusTooManyRequests
	case service.KindBackpressure:
		w.Header().Set("Retry-After", "1")
		status = http.StatusTooManyRequests
	case service.KindUnavailable:
		status = http.StatusServiceUnavailable
	case service.KindUpstream:
		status = http.StatusBadGateway
	case service.KindConfiguration, service.KindInternal:
		status = http.StatusInternalServerError
	}
	writeError(w, status, kind, Wrap(op, err))
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrBadRequest, name, raw)
	}
	return id, nil
}
