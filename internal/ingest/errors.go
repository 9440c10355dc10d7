package ingest

import "errors"

// Sentinel kinds for ingest errors.
var (
	ErrNoFile       = errors.New("no dataset file")
	ErrDecode       = errors.New("dataset decode failed")
	ErrInvalid      = errors.New("invalid dataset")
	ErrWriteFailure = errors.New("dataset write failed")
)
