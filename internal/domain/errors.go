package domain

import "errors"

var (
	// ErrNotFound marks a referenced market slug that has no record behind it.
	ErrNotFound = errors.New("not found")

	// ErrRetrieval marks any transport-level failure of the retrieval API:
	// unreachable service, timeout, non-success status, malformed payload.
	// Adapters wrap the concrete cause so nothing transport-specific leaks
	// past them.
	ErrRetrieval = errors.New("retrieval failed")

	ErrContextDone = errors.New("context cancelled")
)
