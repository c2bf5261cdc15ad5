package domain

import "errors"

// Error taxonomy shared by the orchestrator and the request boundary.
// Callers wrap these with context and test them with errors.Is.
var (
	// ErrNotFound covers both absent resources and resources the caller does not own.
	ErrNotFound            = errors.New("not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	// ErrDataIntegrity signals that records in two independent stores no longer reference each other.
	ErrDataIntegrity = errors.New("data integrity fault")
)
