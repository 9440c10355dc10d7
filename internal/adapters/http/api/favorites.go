package api

import (
	"net/http"

	"github.com/okian/scoutval/internal/adapters/http/session"
	service "github.com/okian/scoutval/internal/app"
	"github.com/okian/scoutval/pkg/logger"
)

type favoritesResponse struct {
	UserID string                  `json:"userId"`
	Groups []service.FavoriteGroup `json:"groups"`
}

// FavoritesHandler serves the session user's player pool.
type FavoritesHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewFavoritesHandler creates a new favorites handler.
func NewFavoritesHandler(deps Dependencies, log logger.Logger) *FavoritesHandler {
	return &FavoritesHandler{deps: deps, logger: log}
}

func sessionUser(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	user, ok := session.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
	}
	return user, ok
}

// HandleList handles GET /api/favorites.
func (h *FavoritesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_favorites"
	user, ok := sessionUser(w, r, op)
	if !ok {
		return
	}
	groups, err := h.deps.Favorites(r.Context(), user)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if groups == nil {
		groups = []service.FavoriteGroup{}
	}
	writeJSON(w, http.StatusOK, favoritesResponse{UserID: user, Groups: groups})
}

// HandleAdd handles PUT /api/favorites/{playerId}.
func (h *FavoritesHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_favorite"
	user, ok := sessionUser(w, r, op)
	if !ok {
		return
	}
	id, err := pathID(r, "playerId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	if err := h.deps.AddFavorite(r.Context(), user, id); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemove handles DELETE /api/favorites/{playerId}.
func (h *FavoritesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_favorite"
	user, ok := sessionUser(w, r, op)
	if !ok {
		return
	}
	id, err := pathID(r, "playerId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	if err := h.deps.RemoveFavorite(r.Context(), user, id); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
