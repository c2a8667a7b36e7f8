package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/interview"
	"github.com/meshcc/meshcc-go/pkg/log"
	"github.com/meshcc/meshcc-go/pkg/node"
	"github.com/meshcc/meshcc-go/pkg/transport"
)

// Controller routes traffic between a driver and the nodes it serves.
type Controller struct {
	mu sync.RWMutex

	config       ControllerConfig
	state        ServiceState
	driver       transport.Driver
	orchestrator *interview.Orchestrator

	nodes map[uint16]*managedNode

	// Event handlers
	eventHandlers []EventHandler

	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// managedNode is a node plus the goroutine draining its inbox.
type managedNode struct {
	node  *node.Node
	inbox chan transport.Envelope

	mu   sync.Mutex
	stop context.CancelFunc
	done chan struct{}
}

var _ node.Directory = (*Controller)(nil)

// NewController creates a controller on driver.
func NewController(driver transport.Driver, config ControllerConfig) (*Controller, error) {
	if driver == nil {
		return nil, fmt.Errorf("%w: nil driver", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		config: config,
		state:  StateIdle,
		driver: driver,
		nodes:  make(map[uint16]*managedNode),
	}
	c.orchestrator = interview.New(interview.Config{
		StepTimeout: config.InterviewStepTimeout,
		OnEvent:     c.onInterviewEvent,
		Logger:      config.Logger,
		Capture:     config.Capture,
	})
	return c, nil
}

// State returns the current service state.
func (c *Controller) State() ServiceState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// OnEvent registers an event handler.
func (c *Controller) OnEvent(handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventHandlers = append(c.eventHandlers, handler)
}

// Start begins routing inbound envelopes to nodes.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return ErrAlreadyStarted
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.state = StateRunning

	for _, m := range c.nodes {
		c.startNodeLocked(m)
	}

	c.wg.Add(1)
	go c.pump()

	c.debugLog("controller started", "nodes", len(c.nodes))
	return nil
}

// Stop stops routing. Nodes stay in the table and resume on Start.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.state = StateStopped
	c.cancel()
	nodes := slices.Collect(maps.Values(c.nodes))
	c.mu.Unlock()

	c.wg.Wait()
	for _, m := range nodes {
		stopNode(m)
	}

	c.debugLog("controller stopped")
	return nil
}

// Close stops the controller, releases every pending request and closes
// the driver.
func (c *Controller) Close() error {
	if c.State() == StateRunning {
		_ = c.Stop()
	}

	c.mu.RLock()
	for _, m := range c.nodes {
		m.node.Close()
	}
	c.mu.RUnlock()

	return c.driver.Close()
}

// AddNode creates a node and adds it to the table. If the controller is
// running the node starts receiving immediately.
func (c *Controller) AddNode(spec NodeSpec) (*node.Node, error) {
	if spec.ID == 0 {
		return nil, ErrInvalidNodeID
	}

	c.mu.Lock()
	if _, exists := c.nodes[spec.ID]; exists {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrDuplicateNode, spec.ID)
	}

	n := node.New(node.Config{
		ID:                spec.ID,
		FrequentListening: spec.FrequentListening,
		Endpoints:         spec.Endpoints,
		Sender:            c.driver,
		Directory:         c,
		Logger:            c.config.Logger,
		Capture:           c.config.Capture,
	})
	m := &managedNode{
		node:  n,
		inbox: make(chan transport.Envelope, c.config.NodeInboxSize),
	}
	c.nodes[spec.ID] = m
	if c.state == StateRunning {
		c.startNodeLocked(m)
	}
	c.mu.Unlock()

	c.emitEvent(Event{Type: EventNodeAdded, NodeID: spec.ID})
	return n, nil
}

// RemoveNode stops a node and removes it from the table. Its pending
// requests fail with interaction.ErrClientClosed.
func (c *Controller) RemoveNode(id uint16) error {
	c.mu.Lock()
	m, exists := c.nodes[id]
	if !exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	delete(c.nodes, id)
	c.mu.Unlock()

	stopNode(m)
	m.node.Close()
	c.emitEvent(Event{Type: EventNodeRemoved, NodeID: id})
	return nil
}

// Node returns the node with the given id.
func (c *Controller) Node(id uint16) (*node.Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, exists := c.nodes[id]
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return m.node, nil
}

// LookupNode implements node.Directory.
func (c *Controller) LookupNode(id uint16) (cc.NodeInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, exists := c.nodes[id]
	if !exists {
		return nil, false
	}
	return m.node, true
}

// Nodes returns every node ordered by id.
func (c *Controller) Nodes() []*node.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*node.Node, 0, len(c.nodes))
	for _, id := range slices.Sorted(maps.Keys(c.nodes)) {
		out = append(out, c.nodes[id].node)
	}
	return out
}

// Interview runs the interview of one node. The controller must be
// running so replies reach the node.
func (c *Controller) Interview(ctx context.Context, id uint16) (interview.Result, error) {
	if c.State() != StateRunning {
		return interview.Result{}, ErrNotStarted
	}
	n, err := c.Node(id)
	if err != nil {
		return interview.Result{}, err
	}

	c.emitEvent(Event{Type: EventInterviewStarted, NodeID: id})
	res, err := c.orchestrator.Interview(ctx, n)
	if err != nil {
		c.emitEvent(Event{Type: EventInterviewFailed, NodeID: id, Error: err})
		return res, err
	}
	c.emitEvent(Event{Type: EventInterviewCompleted, NodeID: id})
	return res, nil
}

// InterviewAll interviews every node, at most MaxConcurrentInterviews at a
// time. One node's failure does not stop the others; the returned error
// joins all failures.
func (c *Controller) InterviewAll(ctx context.Context) (map[uint16]interview.Result, error) {
	nodes := c.Nodes()
	limit := max(c.config.MaxConcurrentInterviews, 1)
	sem := make(chan struct{}, limit)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		errs    []error
		results = make(map[uint16]interview.Result, len(nodes))
	)
	for _, n := range nodes {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return results, errors.Join(append(errs, ctx.Err())...)
		}

		wg.Add(1)
		go func(id uint16) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := c.Interview(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			results[id] = res
			if err != nil {
				errs = append(errs, fmt.Errorf("node %d: %w", id, err))
			}
		}(n.ID())
	}
	wg.Wait()
	return results, errors.Join(errs...)
}

// pump reads the driver and routes envelopes by node id.
func (c *Controller) pump() {
	defer c.wg.Done()

	inbound := c.driver.Inbound()
	for {
		select {
		case <-c.ctx.Done():
			return
		case env, ok := <-inbound:
			if !ok {
				c.debugLog("driver inbound closed")
				c.emitEvent(Event{Type: EventDriverClosed})
				return
			}
			c.route(env)
		}
	}
}

func (c *Controller) route(env transport.Envelope) {
	c.mu.RLock()
	m, exists := c.nodes[env.NodeID]
	c.mu.RUnlock()

	if !exists {
		c.config.Capture.Error(log.LayerService, env.NodeID, env.Endpoint, ErrNodeNotFound, "route")
		c.debugLog("frame from unknown node", "node", env.NodeID, "frame", env.Frame)
		c.emitEvent(Event{Type: EventUnknownNode, NodeID: env.NodeID, Endpoint: env.Endpoint, ClassID: env.Frame.ClassID()})
		return
	}

	select {
	case m.inbox <- env:
	default:
		c.warn("node inbox full, dropping frame", "node", env.NodeID, "frame", env.Frame)
		c.emitEvent(Event{Type: EventFrameDropped, NodeID: env.NodeID, Endpoint: env.Endpoint, ClassID: env.Frame.ClassID()})
	}
}

// startNodeLocked starts the dispatch loop of m. c.mu must be held.
func (c *Controller) startNodeLocked(m *managedNode) {
	ctx, cancel := context.WithCancel(c.ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.stop, m.done = cancel, done
	m.mu.Unlock()

	go func() {
		defer close(done)
		_ = m.node.Run(ctx, m.inbox)
	}()
}

func stopNode(m *managedNode) {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-done
}

func (c *Controller) onInterviewEvent(e interview.Event) {
	c.emitEvent(Event{
		Type:       EventClassStateChanged,
		NodeID:     e.NodeID,
		Endpoint:   e.Endpoint,
		ClassID:    e.ClassID,
		ClassState: e.To,
		Error:      e.Err,
	})
}

// emitEvent sends an event to all registered handlers.
func (c *Controller) emitEvent(event Event) {
	c.mu.RLock()
	handlers := slices.Clone(c.eventHandlers)
	c.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

func (c *Controller) debugLog(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, args...)
	}
}

func (c *Controller) warn(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Warn(msg, args...)
	}
}
