package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/scoutval/internal/app"
	"github.com/okian/scoutval/internal/domain/model"
	"github.com/okian/scoutval/pkg/logger"
)

// revaluationRequest names either explicit players or a whole team.
type revaluationRequest struct {
	PlayerIDs []int  `json:"playerIds"`
	TeamID    int    `json:"teamId"`
	Reason    string `json:"reason"`
}

func (req revaluationRequest) validate() error {
	switch {
	case len(req.PlayerIDs) == 0 && req.TeamID == 0:
		return errors.New("one of playerIds or teamId is required")
	case len(req.PlayerIDs) > 0 && req.TeamID != 0:
		return errors.New("playerIds and teamId are exclusive")
	case req.TeamID < 0:
		return errors.New("teamId must be positive")
	}
	for _, id := range req.PlayerIDs {
		if id < 1 {
			return errors.New("playerIds must be positive")
		}
	}
	return nil
}

// RevaluationHandler queues asynchronous revaluations.
type RevaluationHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewRevaluationHandler creates a new revaluation handler.
func NewRevaluationHandler(deps Dependencies, log logger.Logger) *RevaluationHandler {
	return &RevaluationHandler{deps: deps, logger: log}
}

// HandlePost handles POST /api/revaluations.
func (h *RevaluationHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_revaluations"

	var req revaluationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	var (
		job model.Job
		err error
	)
	if req.TeamID != 0 {
		job, err = h.deps.EnqueueTeamRevaluation(r.Context(), req.TeamID, req.Reason)
	} else {
		job, err = h.deps.EnqueueRevaluation(r.Context(), req.PlayerIDs, req.Reason)
	}
	if errors.Is(err, service.ErrBackpressure) {
		h.logger.Warn(r.Context(), "revaluation backpressure",
			logger.String("job", job.ID),
			logger.Int("accepted", len(job.Accepted)),
		)
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		return
	}
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}
