package weights

import "github.com/okian/scoutval/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithDocumentID sets the backing document id. Defaults to "current".
func WithDocumentID(id string) Option {
	return func(s *Store) {
		if id != "" {
			s.docID = id
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
