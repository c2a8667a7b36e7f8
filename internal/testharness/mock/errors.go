package mock

import "errors"

// Mock package errors.
var (
	// ErrEndpointNotFound is returned when an endpoint doesn't exist.
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrDuplicateDevice is returned when a node id is already simulated.
	ErrDuplicateDevice = errors.New("device already exists")
)
