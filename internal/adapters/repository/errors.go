package repository

import "errors"

// Sentinel kinds for document store errors.
var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidField = errors.New("invalid document field")
	ErrInvalidBody  = errors.New("document body is not valid JSON")
)
