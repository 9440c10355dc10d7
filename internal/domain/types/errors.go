package types

import (
	"errors"
	"fmt"
)

// Sentinel kinds shared by the valuation pipeline. Typed errors below match
// them through errors.Is so callers can branch on the kind alone.
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrDataUnavailable = errors.New("data unavailable")
	ErrUpstreamFetch   = errors.New("upstream fetch failed")
)

// ConfigurationError reports a missing weight profile or a missing metric
// weight. Metric is empty when the whole profile is absent.
type ConfigurationError struct {
	Category string
	Metric   string
	Reason   string
}

// NewConfigurationError builds a ConfigurationError.
func NewConfigurationError(category, metric, reason string) *ConfigurationError {
	return &ConfigurationError{Category: category, Metric: metric, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Metric != "":
		return fmt.Sprintf("configuration error: category %q metric %q: %s", e.Category, e.Metric, e.Reason)
	default:
		return fmt.Sprintf("configuration error: category %q: %s", e.Category, e.Reason)
	}
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// DataUnavailableError marks a section that could not be computed from the
// available input. It is recovered locally by the aggregator.
type DataUnavailableError struct {
	PlayerID int
	Section  string
	Reason   string
}

// NewDataUnavailableError builds a DataUnavailableError.
func NewDataUnavailableError(playerID int, section, reason string) *DataUnavailableError {
	return &DataUnavailableError{PlayerID: playerID, Section: section, Reason: reason}
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable: player %d section %s: %s", e.PlayerID, e.Section, e.Reason)
}

// Is matches ErrDataUnavailable.
func (e *DataUnavailableError) Is(target error) bool { return target == ErrDataUnavailable }

// UpstreamFetchError wraps a failed read or write against a backing store.
type UpstreamFetchError struct {
	Op  string
	Err error
}

// NewUpstreamFetchError wraps err with the failing operation name.
func NewUpstreamFetchError(op string, err error) *UpstreamFetchError {
	return &UpstreamFetchError{Op: op, Err: err}
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("upstream fetch failed: %s: %v", e.Op, e.Err)
}

// Is matches ErrUpstreamFetch.
func (e *UpstreamFetchError) Is(target error) bool { return target == ErrUpstreamFetch }

func (e *UpstreamFetchError) Unwrap() error { return e.Err }
