// Package cctest provides an in-memory cc.Host for command class tests.
package cctest

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/interaction"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Responder returns the frames a node answers req with.
type Responder func(req wire.Frame) []wire.Frame

// Node is a topology entry returned by LookupNode.
type Node struct {
	NodeID   uint16
	Frequent bool
}

// ID returns the node id.
func (n Node) ID() uint16 { return n.NodeID }

// FrequentListening returns the frequent listening flag.
func (n Node) FrequentListening() bool { return n.Frequent }

// Host is a single endpoint whose outbound frames are answered by a
// Responder. Replies go through the same handle-then-correlate path the
// real node dispatch uses.
type Host struct {
	ID       uint16
	Endpoint uint8
	Log      *slog.Logger

	client *interaction.Client

	mu        sync.Mutex
	respond   Responder
	sent      []wire.Frame
	classes   map[wire.ClassID]cc.CommandClass
	nodes     map[uint16]Node
	handleErr []error
}

// NewHost creates a host for node id with no responder.
func NewHost(id uint16) *Host {
	h := &Host{
		ID:      id,
		classes: make(map[wire.ClassID]cc.CommandClass),
		nodes:   make(map[uint16]Node),
	}
	h.client = interaction.NewClient(sender{h})
	return h
}

// Add registers a command class instance on the host.
func (h *Host) Add(c cc.CommandClass) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.classes[c.ID()] = c
}

// AddNode adds a topology entry.
func (h *Host) AddNode(n Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nodes[n.NodeID] = n
}

// Respond sets the responder.
func (h *Host) Respond(r Responder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.respond = r
}

// Sent returns a copy of the frames sent so far.
func (h *Host) Sent() []wire.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.sent)
}

// HandleErrors returns the errors returned by HandleReport so far.
func (h *Host) HandleErrors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.handleErr)
}

// Inject delivers an inbound frame as the node dispatch would. It reports
// whether a pending request claimed it.
func (h *Host) Inject(f wire.Frame) bool {
	h.mu.Lock()
	c, ok := h.classes[f.ClassID()]
	h.mu.Unlock()

	if ok {
		if err := c.HandleReport(f); err != nil {
			h.mu.Lock()
			h.handleErr = append(h.handleErr, err)
			h.mu.Unlock()
		}
	}
	return h.client.Deliver(f)
}

// NodeID implements cc.Host.
func (h *Host) NodeID() uint16 { return h.ID }

// EndpointIndex implements cc.Host.
func (h *Host) EndpointIndex() uint8 { return h.Endpoint }

// Send implements cc.Host.
func (h *Host) Send(ctx context.Context, f wire.Frame) error {
	return h.client.Send(ctx, f)
}

// Request implements cc.Host.
func (h *Host) Request(ctx context.Context, req wire.Frame, exp interaction.Expectation) (wire.Frame, error) {
	return h.client.Request(ctx, req, exp)
}

// Await implements cc.Host.
func (h *Host) Await(ctx context.Context, exp interaction.Expectation) (wire.Frame, error) {
	return h.client.Await(ctx, exp)
}

// CommandClass implements cc.Host.
func (h *Host) CommandClass(id wire.ClassID) (cc.CommandClass, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.classes[id]
	return c, ok
}

// CommandClasses implements cc.Host.
func (h *Host) CommandClasses() []wire.ClassID {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]wire.ClassID, 0, len(h.classes))
	for id := range h.classes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// LookupNode implements cc.Host.
func (h *Host) LookupNode(id uint16) (cc.NodeInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.nodes[id]
	if !ok {
		return nil, false
	}
	return n, true
}

// Logger implements cc.Host.
func (h *Host) Logger() *slog.Logger { return h.Log }

type sender struct{ h *Host }

func (s sender) Send(_ context.Context, f wire.Frame) error {
	s.h.mu.Lock()
	s.h.sent = append(s.h.sent, f)
	respond := s.h.respond
	s.h.mu.Unlock()

	if respond == nil {
		return nil
	}
	for _, r := range respond(f) {
		s.h.Inject(r)
	}
	return nil
}
