package api

import (
	"net/http"

	"github.com/okian/scoutval/pkg/logger"
)

// PlayersHandler serves team and player browsing plus valuations.
type PlayersHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies, log logger.Logger) *PlayersHandler {
	return &PlayersHandler{deps: deps, logger: log}
}

// HandleListTeams handles GET /api/teams.
func (h *PlayersHandler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.deps.Teams(r.Context())
	if err != nil {
		writeServiceError(w, "api.list_teams", err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleTeamPlayers handles GET /api/teams/{id}/players.
func (h *PlayersHandler) HandleTeamPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_players"
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	roster, err := h.deps.TeamPlayers(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// HandleGetPlayer handles GET /api/players/{id}.
func (h *PlayersHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	rec, err := h.deps.Player(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleValuation handles GET /api/players/{id}/valuation.
func (h *PlayersHandler) HandleValuation(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_valuation"
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	v, err := h.deps.PlayerValuation(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
