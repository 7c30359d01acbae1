package service

import "errors"

// ErrNotStarted is returned by operations that need the store before Start.
var ErrNotStarted = errors.New("service not started")
