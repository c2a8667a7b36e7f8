package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/meshcc/meshcc-go/pkg/interview"
	"github.com/meshcc/meshcc-go/pkg/log"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrAlreadyStarted = errors.New("service already started")
	ErrNodeNotFound   = errors.New("node not found")
	ErrDuplicateNode  = errors.New("node already exists")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrInvalidNodeID  = errors.New("invalid node id")
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateRunning - service is routing inbound traffic.
	StateRunning

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	// NodeInboxSize is the inbound buffer of each node. Envelopes for a
	// node whose inbox is full are dropped.
	NodeInboxSize int

	// MaxConcurrentInterviews bounds InterviewAll. Zero means one at a time.
	MaxConcurrentInterviews int

	// InterviewStepTimeout bounds each command class interview.
	InterviewStepTimeout time.Duration

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// Capture records protocol events. May be nil.
	Capture *log.Session
}

// DefaultControllerConfig returns a ControllerConfig with sensible defaults.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		NodeInboxSize:           64,
		MaxConcurrentInterviews: 4,
		InterviewStepTimeout:    interview.DefaultConfig().StepTimeout,
	}
}

// Validate checks if the controller config is valid.
func (c *ControllerConfig) Validate() error {
	if c.NodeInboxSize <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxConcurrentInterviews < 0 || c.InterviewStepTimeout < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// NodeSpec describes a node to add to the controller.
type NodeSpec struct {
	ID                uint16
	FrequentListening bool

	// Endpoints lists the command classes of each endpoint, root first.
	Endpoints [][]wire.ClassID
}

// Event types for service callbacks.
type EventType uint8

const (
	// EventNodeAdded - node added to the table.
	EventNodeAdded EventType = iota

	// EventNodeRemoved - node removed from the table.
	EventNodeRemoved

	// EventInterviewStarted - node interview started.
	EventInterviewStarted

	// EventInterviewCompleted - every class interviewed, node ready.
	EventInterviewCompleted

	// EventInterviewFailed - node interview ended with failures.
	EventInterviewFailed

	// EventClassStateChanged - one command class changed interview state.
	EventClassStateChanged

	// EventUnknownNode - inbound frame from a node not in the table.
	EventUnknownNode

	// EventFrameDropped - a node's inbox was full.
	EventFrameDropped

	// EventDriverClosed - the driver's inbound channel closed.
	EventDriverClosed
)

// String returns the event type name.
func (e EventType) String() string {
	switch e {
	case EventNodeAdded:
		return "NODE_ADDED"
	case EventNodeRemoved:
		return "NODE_REMOVED"
	case EventInterviewStarted:
		return "INTERVIEW_STARTED"
	case EventInterviewCompleted:
		return "INTERVIEW_COMPLETED"
	case EventInterviewFailed:
		return "INTERVIEW_FAILED"
	case EventClassStateChanged:
		return "CLASS_STATE_CHANGED"
	case EventUnknownNode:
		return "UNKNOWN_NODE"
	case EventFrameDropped:
		return "FRAME_DROPPED"
	case EventDriverClosed:
		return "DRIVER_CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Event represents a service event.
type Event struct {
	// Type is the event type.
	Type EventType

	// NodeID is the node the event concerns.
	NodeID uint16

	// Endpoint and ClassID are set for class and frame events.
	Endpoint uint8
	ClassID  wire.ClassID

	// ClassState is set for EventClassStateChanged.
	ClassState interview.State

	// Error is set if the event is an error.
	Error error
}

// EventHandler handles service events. Handlers run synchronously on the
// goroutine that produced the event.
type EventHandler func(Event)
