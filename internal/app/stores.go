package service

import (
	"context"
	"fmt"

	"github.com/okian/scoutval/internal/adapters/repository"
	"github.com/okian/scoutval/internal/config"
	"github.com/okian/scoutval/internal/domain/weights"
	"github.com/okian/scoutval/pkg/logger"
)

// Stores bundles the persistent document store with the typed views every
// entry point needs.
type Stores struct {
	Documents repository.DocumentStore
	Records   *repository.Records
	Weights   *weights.Store
}

// OpenStores opens the sqlite database named by cfg, applies migrations and
// bootstraps the weight profile document.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	docs, err := repository.OpenSQLite(ctx, cfg.DatabasePath,
		repository.WithLogger(logger.Get().Named("sqlite")),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	st, err := NewStores(ctx, docs, cfg.WeightsDocument)
	if err != nil {
		_ = docs.Close()
		return nil, err
	}
	return st, nil
}

// NewStores wraps an open document store and bootstraps weights in it.
func NewStores(ctx context.Context, docs repository.DocumentStore, weightsDocument string) (*Stores, error) {
	ws := weights.NewStore(repository.NewWeightDocuments(docs),
		weights.WithDocumentID(weightsDocument),
	)
	if err := ws.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap weights: %w", err)
	}
	return &Stores{
		Documents: docs,
		Records:   repository.NewRecords(docs),
		Weights:   ws,
	}, nil
}

// Close releases the document store.
func (s *Stores) Close() error {
	return s.Documents.Close()
}
