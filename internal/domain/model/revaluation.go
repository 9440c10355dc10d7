// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Reasons a revaluation was requested.
const (
	ReasonWeightsChanged = "weights_changed"
	ReasonManual         = "manual"
)

// RevaluationRequest asks a worker to recompute one player's valuation.
type RevaluationRequest struct {
	JobID       string    // job the request belongs to
	PlayerID    int       // player to revalue
	Reason      string    // why the revaluation was requested
	RequestedAt time.Time // enqueue time, used for queue latency
}

// Job summarizes one accepted revaluation batch.
type Job struct {
	ID       string `json:"jobId"`
	Accepted []int  `json:"accepted"`
	Skipped  []int  `json:"skipped"`
}

// NewJob returns an empty job with a fresh id.
func NewJob() Job {
	return Job{ID: uuid.NewString(), Accepted: []int{}, Skipped: []int{}}
}

// Request builds the queue message for one player of the job.
func (j Job) Request(playerID int, reason string, now time.Time) RevaluationRequest {
	return RevaluationRequest{JobID: j.ID, PlayerID: playerID, Reason: reason, RequestedAt: now}
}
