// Package node holds the topology the command class engine runs on: a
// Node with one or more Endpoints, each carrying its command class
// instances and a correlation client.
//
// All inbound traffic for a node goes through Node.Dispatch, which runs
// the class's report handler before offering the frame to pending
// requests. A caller resumed by a report therefore always observes the
// state that report produced.
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/log"
	"github.com/meshcc/meshcc-go/pkg/transport"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Errors.
var (
	ErrEndpointNotFound     = errors.New("endpoint not found")
	ErrCommandClassNotFound = errors.New("command class not found")
)

// State is the node lifecycle state.
type State uint8

const (
	StateCreated State = iota
	StateInterviewing
	StateReady
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateInterviewing:
		return "INTERVIEWING"
	case StateReady:
		return "READY"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Sender transmits envelopes. transport.Driver satisfies it.
type Sender interface {
	Send(ctx context.Context, env transport.Envelope) error
}

// Directory resolves other nodes in the network.
type Directory interface {
	LookupNode(id uint16) (cc.NodeInfo, bool)
}

// Config describes a node.
type Config struct {
	ID                uint16
	FrequentListening bool

	// Endpoints lists the command classes of each endpoint. Index 0 is the
	// root device. A node with no entries gets an empty root endpoint.
	Endpoints [][]wire.ClassID

	Sender    Sender
	Directory Directory

	Logger  *slog.Logger
	Capture *log.Session
}

// Node is one device in the mesh.
type Node struct {
	id        uint16
	frequent  bool
	sender    Sender
	directory Directory
	logger    *slog.Logger
	capture   *log.Session
	endpoints []*Endpoint

	mu    sync.RWMutex
	state State
}

// New creates a node and instantiates its command classes.
func New(cfg Config) *Node {
	n := &Node{
		id:        cfg.ID,
		frequent:  cfg.FrequentListening,
		sender:    cfg.Sender,
		directory: cfg.Directory,
		logger:    cfg.Logger,
		capture:   cfg.Capture,
	}
	if n.logger != nil {
		n.logger = n.logger.With("node", cfg.ID)
	}

	eps := cfg.Endpoints
	if len(eps) == 0 {
		eps = [][]wire.ClassID{nil}
	}
	for i, classes := range eps {
		ep := newEndpoint(n, uint8(i))
		for _, id := range classes {
			ep.Add(id)
		}
		n.endpoints = append(n.endpoints, ep)
	}
	return n
}

// ID returns the node id.
func (n *Node) ID() uint16 { return n.id }

// FrequentListening reports whether the node wakes on beams rather than
// listening continuously.
func (n *Node) FrequentListening() bool { return n.frequent }

// State returns the lifecycle state.
func (n *Node) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// SetState moves the node to s and records the transition.
func (n *Node) SetState(s State, reason string) {
	n.mu.Lock()
	old := n.state
	n.state = s
	n.mu.Unlock()

	if old == s {
		return
	}
	n.debugLog("node state", "from", old, "to", s, "reason", reason)
	n.capture.StateChange(log.StateEntityNode, n.id, 0, old.String(), s.String(), reason)
}

// Endpoint returns the endpoint at index.
func (n *Node) Endpoint(index uint8) (*Endpoint, error) {
	if int(index) >= len(n.endpoints) {
		return nil, fmt.Errorf("%w: node %d endpoint %d", ErrEndpointNotFound, n.id, index)
	}
	return n.endpoints[index], nil
}

// Endpoints returns the endpoints in index order.
func (n *Node) Endpoints() []*Endpoint {
	return slices.Clone(n.endpoints)
}

// CommandClass returns the instance of class id on an endpoint.
func (n *Node) CommandClass(endpoint uint8, id wire.ClassID) (cc.CommandClass, error) {
	ep, err := n.Endpoint(endpoint)
	if err != nil {
		return nil, err
	}
	c, ok := ep.CommandClass(id)
	if !ok {
		return nil, fmt.Errorf("%w: node %d endpoint %d class %v", ErrCommandClassNotFound, n.id, endpoint, id)
	}
	return c, nil
}

// Dispatch handles one inbound envelope: the owning class's report
// handler runs first, then the frame is offered to pending requests. The
// handler's error is returned after both steps have run.
func (n *Node) Dispatch(env transport.Envelope) error {
	ep, err := n.Endpoint(env.Endpoint)
	if err != nil {
		n.capture.Error(log.LayerService, n.id, env.Endpoint, err, "dispatch")
		n.warn("inbound frame for unknown endpoint", "endpoint", env.Endpoint, "frame", env.Frame)
		return err
	}

	f := env.Frame
	var handleErr error
	if c, ok := ep.CommandClass(f.ClassID()); ok {
		handleErr = c.HandleReport(f)
		if handleErr != nil {
			n.capture.Error(log.LayerWire, n.id, ep.index, handleErr, fmt.Sprintf("handle %v %v", f.ClassID(), f.CommandID()))
		}
	} else {
		n.debugLog("frame for class not on endpoint", "endpoint", ep.index, "class", f.ClassID())
	}

	claimed := ep.client.Deliver(f)
	n.capture.Message(log.DirectionIn, n.id, ep.index, f, claimed)
	return handleErr
}

// Run dispatches envelopes from inbox until it is closed or ctx is done.
// Handler errors are already logged by Dispatch and do not stop the loop.
func (n *Node) Run(ctx context.Context, inbox <-chan transport.Envelope) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-inbox:
			if !ok {
				return nil
			}
			_ = n.Dispatch(env)
		}
	}
}

// Close releases every pending request on the node's endpoints.
func (n *Node) Close() {
	for _, ep := range n.endpoints {
		ep.client.Close()
	}
}

func (n *Node) debugLog(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Debug(msg, args...)
	}
}

func (n *Node) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}
