package transport

import (
	"context"
	"errors"
)

// ErrDriverClosed is returned by Send after Close.
var ErrDriverClosed = errors.New("driver closed")

// InboundBufferSize is the capacity of a driver's inbound channel.
const InboundBufferSize = 64

// Driver moves envelopes between the controller and the network.
type Driver interface {
	// Send transmits one envelope. It does not retry.
	Send(ctx context.Context, env Envelope) error

	// Inbound delivers envelopes from nodes. It is closed by Close.
	Inbound() <-chan Envelope

	// Close stops the driver.
	Close() error
}

var (
	_ Driver = (*StreamDriver)(nil)
	_ Driver = (*WebSocketDriver)(nil)
	_ Driver = (*Loopback)(nil)
)
