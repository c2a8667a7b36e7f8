package cc

import "errors"

// Command class errors.
var (
	// ErrCommandNotSupported is returned when the node is known not to
	// support the requested command.
	ErrCommandNotSupported = errors.New("command not supported")

	// ErrCommandNotReady is returned when a request depends on state that
	// has not been discovered yet.
	ErrCommandNotReady = errors.New("command not ready")

	// ErrInvalidArgument is returned for arguments outside the protocol's
	// legal domain or the node's supported set.
	ErrInvalidArgument = errors.New("invalid argument")
)
