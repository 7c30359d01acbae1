package repository

import "errors"

// Sentinel kinds for evaluation store errors.
var (
	ErrNotFound    = errors.New("evaluation not found")
	ErrUnavailable = errors.New("evaluation store unavailable")
	ErrInvalidID   = errors.New("invalid evaluation id")
	ErrUnsupported = errors.New("unsupported store driver")
)
