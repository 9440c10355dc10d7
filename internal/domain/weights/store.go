package weights

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/types"
	"github.com/okian/scoutval/pkg/logger"
	"github.com/okian/scoutval/pkg/metrics"
)

// DefaultDocumentID is the id of the backing document.
const DefaultDocumentID = "current"

// Backend persists the weights document. Update must apply fn atomically
// with respect to the whole document; fn receives nil when it is absent.
type Backend interface {
	Load(ctx context.Context, docID string) (Document, error)
	Update(ctx context.Context, docID string, fn func(current Document) (Document, error)) error
}

// Loader is the read side consumed by valuation.
type Loader interface {
	Load(ctx context.Context, c player.Category) (Profile, error)
}

// Store keeps an in-memory view of the weights document and writes through
// to the backend. Reads never touch the backend.
type Store struct {
	mu       sync.RWMutex
	profiles Document

	saveMu  sync.Mutex
	backend Backend
	docID   string
	logger  logger.Logger
}

// NewStore constructs a Store. Call Bootstrap before serving reads.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		docID:    DefaultDocumentID,
		profiles: Document{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("weights")
	}
	return s
}

// Bootstrap seeds defaults on first run and otherwise loads persisted state.
func (s *Store) Bootstrap(ctx context.Context) error {
	err := s.Refresh(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDocumentMissing):
		s.logger.Info(ctx, "weights document missing; seeding defaults", logger.String("doc", s.docID))
		return s.InitializeDefaults(ctx)
	default:
		return err
	}
}

// Refresh replaces the in-memory view with the persisted document.
func (s *Store) Refresh(ctx context.Context) error {
	doc, err := s.backend.Load(ctx, s.docID)
	if err != nil {
		if errors.Is(err, ErrDocumentMissing) {
			return err
		}
		return types.NewUpstreamFetchError("load weights", err)
	}
	s.mu.Lock()
	s.profiles = doc.Clone()
	s.mu.Unlock()
	return nil
}

// InitializeDefaults writes the default profile of every built-in category,
// keeping any other categories already in the document.
func (s *Store) InitializeDefaults(ctx context.Context) error {
	defaults := DefaultDocument()
	return s.write(ctx, func(cur Document) (Document, error) {
		next := cur.Clone()
		for c, p := range defaults {
			next[c] = p
		}
		return next, nil
	})
}

// Load returns a copy of the profile for c.
func (s *Store) Load(_ context.Context, c player.Category) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[c]
	if !ok {
		return Profile{}, types.NewConfigurationError(string(c), "", "no weight profile")
	}
	return p.Clone(), nil
}

// Save validates p and persists it for c. Sibling categories are carried
// over from the persisted document. Memory changes only after the write
// succeeds.
func (s *Store) Save(ctx context.Context, c player.Category, p Profile) error {
	if err := Validate(c, p); err != nil {
		metrics.RecordWeightSaveError("validation")
		return err
	}
	err := s.write(ctx, func(cur Document) (Document, error) {
		next := cur.Clone()
		next[c] = p.Clone()
		return next, nil
	})
	if err != nil {
		metrics.RecordWeightSaveError("upstream")
		return err
	}
	metrics.RecordWeightSave(string(c))
	s.logger.Info(ctx, "weight profile saved", logger.String("category", string(c)))
	return nil
}

// Categories lists the categories held in memory.
func (s *Store) Categories() []player.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]player.Category, 0, len(s.profiles))
	for c := range s.profiles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Store) write(ctx context.Context, mutate func(Document) (Document, error)) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	var written Document
	err := s.backend.Update(ctx, s.docID, func(cur Document) (Document, error) {
		if cur == nil {
			cur = Document{}
		}
		next, err := mutate(cur)
		if err != nil {
			return nil, err
		}
		written = next
		return next, nil
	})
	if err != nil {
		return types.NewUpstreamFetchError("save weights", fmt.Errorf("document %s: %w", s.docID, err))
	}

	s.mu.Lock()
	s.profiles = written.Clone()
	s.mu.Unlock()
	return nil
}
