package node

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/interaction"
	"github.com/meshcc/meshcc-go/pkg/log"
	"github.com/meshcc/meshcc-go/pkg/registry"
	"github.com/meshcc/meshcc-go/pkg/transport"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Endpoint is a functional unit of a node. It implements cc.Host for the
// command classes it carries.
type Endpoint struct {
	node   *Node
	index  uint8
	client *interaction.Client
	logger *slog.Logger

	mu      sync.RWMutex
	classes map[wire.ClassID]cc.CommandClass
}

func newEndpoint(n *Node, index uint8) *Endpoint {
	ep := &Endpoint{
		node:    n,
		index:   index,
		classes: make(map[wire.ClassID]cc.CommandClass),
	}
	if n.logger != nil {
		ep.logger = n.logger.With("endpoint", index)
	}
	ep.client = interaction.NewClient(endpointSender{ep})
	ep.client.SetLogger(ep.logger)
	return ep
}

// Add instantiates class id on the endpoint. An existing instance is
// returned unchanged.
func (e *Endpoint) Add(id wire.ClassID) cc.CommandClass {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.classes[id]; ok {
		return c
	}
	c := registry.New(id, e)
	e.classes[id] = c
	return c
}

// Index returns the endpoint index.
func (e *Endpoint) Index() uint8 { return e.index }

// Node returns the owning node.
func (e *Endpoint) Node() *Node { return e.node }

// Pending returns the number of requests awaiting a report.
func (e *Endpoint) Pending() int { return e.client.Pending() }

// NodeID implements cc.Host.
func (e *Endpoint) NodeID() uint16 { return e.node.id }

// EndpointIndex implements cc.Host.
func (e *Endpoint) EndpointIndex() uint8 { return e.index }

// Send implements cc.Host.
func (e *Endpoint) Send(ctx context.Context, f wire.Frame) error {
	return e.client.Send(ctx, f)
}

// Request implements cc.Host.
func (e *Endpoint) Request(ctx context.Context, req wire.Frame, exp interaction.Expectation) (wire.Frame, error) {
	return e.client.Request(ctx, req, exp)
}

// Await implements cc.Host.
func (e *Endpoint) Await(ctx context.Context, exp interaction.Expectation) (wire.Frame, error) {
	return e.client.Await(ctx, exp)
}

// CommandClass implements cc.Host.
func (e *Endpoint) CommandClass(id wire.ClassID) (cc.CommandClass, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.classes[id]
	return c, ok
}

// CommandClasses implements cc.Host.
func (e *Endpoint) CommandClasses() []wire.ClassID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]wire.ClassID, 0, len(e.classes))
	for id := range e.classes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Instances returns the command class instances in class id order.
func (e *Endpoint) Instances() []cc.CommandClass {
	ids := e.CommandClasses()
	out := make([]cc.CommandClass, 0, len(ids))
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, id := range ids {
		out = append(out, e.classes[id])
	}
	return out
}

// LookupNode implements cc.Host. The node itself is always resolvable.
func (e *Endpoint) LookupNode(id uint16) (cc.NodeInfo, bool) {
	if id == e.node.id {
		return e.node, true
	}
	if e.node.directory == nil {
		return nil, false
	}
	return e.node.directory.LookupNode(id)
}

// Logger implements cc.Host.
func (e *Endpoint) Logger() *slog.Logger { return e.logger }

// endpointSender addresses outbound frames to the endpoint.
type endpointSender struct{ e *Endpoint }

func (s endpointSender) Send(ctx context.Context, f wire.Frame) error {
	n := s.e.node
	if n.sender == nil {
		return transport.ErrDriverClosed
	}
	env := transport.Envelope{NodeID: n.id, Endpoint: s.e.index, Frame: f}
	if err := n.sender.Send(ctx, env); err != nil {
		n.capture.Error(log.LayerTransport, n.id, s.e.index, err, "send "+f.String())
		return err
	}
	n.capture.Message(log.DirectionOut, n.id, s.e.index, f, false)
	return nil
}

var (
	_ cc.Host     = (*Endpoint)(nil)
	_ cc.NodeInfo = (*Node)(nil)
)
