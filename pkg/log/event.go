package log

import (
	"time"
)

// Event is a protocol capture record. CBOR encoding uses integer keys.
type Event struct {
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the controller run that produced the event.
	SessionID string `cbor:"2,keyasint"`

	Direction Direction `cbor:"3,keyasint"`
	Layer     Layer     `cbor:"4,keyasint"`
	Category  Category  `cbor:"5,keyasint"`

	// NodeID and Endpoint locate the conversation. Zero NodeID means the
	// event is not tied to a node (driver state, for example).
	NodeID   uint16 `cbor:"6,keyasint,omitempty"`
	Endpoint uint8  `cbor:"7,keyasint,omitempty"`

	// Exactly one of these is set.
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"`
}

// Direction indicates message flow.
type Direction uint8

const (
	// DirectionIn is traffic from a node.
	DirectionIn Direction = 0
	// DirectionOut is traffic to a node.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates where the event was captured.
type Layer uint8

const (
	// LayerTransport is the driver envelope layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the command class frame layer.
	LayerWire Layer = 1
	// LayerService is the node and interview layer.
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event.
type Category uint8

const (
	// CategoryMessage is a frame or decoded command.
	CategoryMessage Category = 0
	// CategoryState is a state change.
	CategoryState Category = 2
	// CategoryError is an error.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw envelope bytes at the transport layer.
type FrameEvent struct {
	// Size is the full size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw bytes, possibly truncated.
	Data []byte `cbor:"2,keyasint,omitempty"`

	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a command class frame.
type MessageEvent struct {
	Type MessageType `cbor:"1,keyasint"`

	ClassID   uint16 `cbor:"2,keyasint"`
	CommandID uint8  `cbor:"3,keyasint"`

	// Params is the parameter bytes of the frame.
	Params []byte `cbor:"4,keyasint,omitempty"`

	// Correlated is set on inbound frames that resolved a pending request.
	Correlated bool `cbor:"5,keyasint,omitempty"`
}

// MessageType distinguishes outbound commands from inbound reports.
type MessageType uint8

const (
	// MessageTypeCommand is a frame sent to a node.
	MessageTypeCommand MessageType = 0
	// MessageTypeReport is a frame received from a node.
	MessageTypeReport MessageType = 1
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeCommand:
		return "COMMAND"
	case MessageTypeReport:
		return "REPORT"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures driver, node and interview transitions.
type StateChangeEvent struct {
	Entity StateEntity `cbor:"1,keyasint"`

	// ClassID is set for StateEntityInterview.
	ClassID uint16 `cbor:"5,keyasint,omitempty"`

	OldState string `cbor:"2,keyasint,omitempty"`
	NewState string `cbor:"3,keyasint"`
	Reason   string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntityDriver is the transport driver connection.
	StateEntityDriver StateEntity = 0
	// StateEntityNode is a node lifecycle state.
	StateEntityNode StateEntity = 1
	// StateEntityInterview is the interview of one command class.
	StateEntityInterview StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityDriver:
		return "DRIVER"
	case StateEntityNode:
		return "NODE"
	case StateEntityInterview:
		return "INTERVIEW"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`

	// Context describes what was being done, e.g. "decode Meter Report".
	Context string `cbor:"4,keyasint,omitempty"`
}
