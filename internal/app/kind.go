package service

import (
	"errors"

	"github.com/okian/scoutval/internal/adapters/ranking"
	"github.com/okian/scoutval/internal/domain/types"
)

// Error kinds used for metric labels and HTTP status mapping.
const (
	KindNotFound      = "not_found"
	KindValidation    = "validation"
	KindConfiguration = "configuration_error"
	KindUpstream      = "upstream_error"
	KindThrottled     = "throttled"
	KindBackpressure  = "backpressure"
	KindUnavailable   = "unavailable"
	KindInternal      = "internal"
)

// ErrorKind classifies err. A ConfigurationError raised while validating a
// profile on save counts as a validation failure only at the caller.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPlayerNotFound), errors.Is(err, ErrTeamNotFound), errors.Is(err, ranking.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ranking.ErrInvalidLimit):
		return KindValidation
	case errors.Is(err, ErrThrottled):
		return KindThrottled
	case errors.Is(err, ErrBackpressure):
		return KindBackpressure
	case errors.Is(err, ErrNotStarted):
		return KindUnavailable
	case errors.Is(err, types.ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, types.ErrUpstreamFetch):
		return KindUpstream
	}
	return KindInternal
}
