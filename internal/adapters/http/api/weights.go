package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/scoutval/internal/adapters/http/session"
	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/types"
	"github.com/okian/scoutval/internal/domain/weights"
	"github.com/okian/scoutval/pkg/logger"
)

// maxProfileBytes bounds PUT /api/weights bodies.
const maxProfileBytes = 1 << 16

type profileResponse struct {
	Category player.Category `json:"category"`
	Profile  weights.Profile `json:"profile"`
}

// WeightsHandler serves weight profile reads and edits.
type WeightsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewWeightsHandler creates a new weights handler.
func NewWeightsHandler(deps Dependencies, log logger.Logger) *WeightsHandler {
	return &WeightsHandler{deps: deps, logger: log}
}

// HandleGet handles GET /api/weights/{category}.
func (h *WeightsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, p, err := h.deps.WeightProfile(r.Context(), r.PathValue("category"))
	if err != nil {
		writeServiceError(w, "api.get_weights", err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Category: c, Profile: p})
}

// HandlePut handles PUT /api/weights/{category}. Incomplete profiles are
// rejected with 400 and leave the stored profile unchanged.
func (h *WeightsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_weights"

	var p weights.Profile
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxProfileBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	user, _ := session.UserFromContext(r.Context())
	c, err := h.deps.SaveWeightProfile(r.Context(), user, r.PathValue("category"), p)
	if err != nil {
		if errors.Is(err, types.ErrConfiguration) {
			writeError(w, http.StatusBadRequest, "validation", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeServiceError(w, op, err)
		return
	}
	h.logger.Info(r.Context(), "weights updated via api",
		logger.String("category", string(c)),
		logger.String("user", user),
	)
	writeJSON(w, http.StatusOK, profileResponse{Category: c, Profile: p})
}
