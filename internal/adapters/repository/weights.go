package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/scoutval/internal/domain/weights"
)

// WeightDocuments persists the weights document in the weights collection.
type WeightDocuments struct {
	store DocumentStore
}

var _ weights.Backend = (*WeightDocuments)(nil)

// NewWeightDocuments returns a weights.Backend over store.
func NewWeightDocuments(store DocumentStore) *WeightDocuments {
	return &WeightDocuments{store: store}
}

// Load implements weights.Backend.
func (w *WeightDocuments) Load(ctx context.Context, docID string) (weights.Document, error) {
	body, err := w.store.Get(ctx, CollectionWeights, docID)
	if errors.Is(err, ErrNotFound) {
		return nil, weights.ErrDocumentMissing
	}
	if err != nil {
		return nil, err
	}
	var doc weights.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode weights %s: %w", docID, err)
	}
	return doc, nil
}

// Update implements weights.Backend.
func (w *WeightDocuments) Update(ctx context.Context, docID string, fn func(weights.Document) (weights.Document, error)) error {
	return w.store.Update(ctx, CollectionWeights, docID, func(cur json.RawMessage) (json.RawMessage, error) {
		var doc weights.Document
		if cur != nil {
			if err := json.Unmarshal(cur, &doc); err != nil {
				return nil, fmt.Errorf("decode weights %s: %w", docID, err)
			}
		}
		next, err := fn(doc)
		if err != nil {
			return nil, err
		}
		return json.Marshal(next)
	})
}
