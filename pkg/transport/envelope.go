package transport

import (
	"encoding/binary"
	"fmt"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// EnvelopeHeaderSize is the node id plus the endpoint byte.
const EnvelopeHeaderSize = 3

// Envelope addresses a frame to or from a node endpoint.
type Envelope struct {
	NodeID   uint16
	Endpoint uint8
	Frame    wire.Frame
}

// Bytes encodes the envelope.
func (e Envelope) Bytes() []byte {
	b := make([]byte, EnvelopeHeaderSize, EnvelopeHeaderSize+e.Frame.Len())
	binary.BigEndian.PutUint16(b, e.NodeID)
	b[2] = e.Endpoint
	return append(b, e.Frame.Bytes()...)
}

// String returns a short description for logs.
func (e Envelope) String() string {
	return fmt.Sprintf("node %d/%d %v", e.NodeID, e.Endpoint, e.Frame)
}

// ParseEnvelope decodes an envelope. The frame must be well formed.
func ParseEnvelope(b []byte) (Envelope, error) {
	if len(b) < EnvelopeHeaderSize {
		return Envelope{}, fmt.Errorf("%w: envelope header needs %d bytes, have %d", ErrFrameTruncated, EnvelopeHeaderSize, len(b))
	}
	f, err := wire.ParseFrame(b[EnvelopeHeaderSize:])
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		NodeID:   binary.BigEndian.Uint16(b),
		Endpoint: b[2],
		Frame:    f,
	}, nil
}
