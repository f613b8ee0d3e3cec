package nqls

import "errors"

// Sentinel errors.
var (
	ErrConfigNotFound = errors.New("no .nqls.yaml found")
	ErrNoSource       = errors.New("no completion source configured (set server.url or workspace)")
)
