package weights

import "errors"

// Sentinel kinds for weight store errors.
var (
	ErrDocumentMissing = errors.New("weights document missing")
)
