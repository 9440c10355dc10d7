// Package repository stores players, teams, favorites and weight profiles as
// JSON documents grouped into collections.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// Collection names.
const (
	CollectionPlayers   = "players"
	CollectionTeams     = "teams"
	CollectionFavorites = "favorites"
	CollectionWeights   = "weights"
)

// UpdateFunc receives the current body (nil when absent) and returns the body to store.
type UpdateFunc func(cur json.RawMessage) (json.RawMessage, error)

// DocumentStore is a small document database over JSON bodies.
type DocumentStore interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	Put(ctx context.Context, collection, id string, body json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
	// List returns every body in a collection ordered by id.
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
	// QueryByField returns bodies whose top-level field equals value.
	QueryByField(ctx context.Context, collection, field string, value any) ([]json.RawMessage, error)
	// CountByField counts bodies whose top-level field equals value.
	CountByField(ctx context.Context, collection, field string, value any) (int, error)
	// CountMax returns the size of the largest group when bodies are grouped by field.
	CountMax(ctx context.Context, collection, field string) (int, error)
	// Update applies fn atomically. Concurrent updates of one document serialize.
	Update(ctx context.Context, collection, id string, fn UpdateFunc) error
	Close() error
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkField(field string) error {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}

func checkBody(body json.RawMessage) error {
	if !json.Valid(body) {
		return ErrInvalidBody
	}
	return nil
}
