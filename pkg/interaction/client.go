package interaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Client errors.
var (
	// ErrOperationCancelled is returned when the context ends before a
	// matching frame arrives. The context error is wrapped as well.
	ErrOperationCancelled = errors.New("operation cancelled")

	ErrClientClosed = errors.New("client is closed")
)

// Sender hands a frame to the transport.
type Sender interface {
	Send(ctx context.Context, f wire.Frame) error
}

// Expectation describes the frame a pending request waits for.
type Expectation struct {
	ClassID   wire.ClassID
	CommandID wire.CommandID

	// Match is an optional predicate over the candidate frame.
	Match func(wire.Frame) bool
}

// Matches reports whether f satisfies the expectation.
func (e Expectation) Matches(f wire.Frame) bool {
	if !f.Is(e.ClassID, e.CommandID) {
		return false
	}
	return e.Match == nil || e.Match(f)
}

// String returns a compact form for logging.
func (e Expectation) String() string {
	return fmt.Sprintf("%s/%s", e.ClassID, e.CommandID)
}

// waiter is one registered expectation.
type waiter struct {
	exp Expectation
	ch  chan wire.Frame
}

// Client correlates inbound frames with pending requests for one
// conversation.
type Client struct {
	sender Sender
	logger *slog.Logger

	mu      sync.Mutex
	waiters []*waiter
	closed  bool
}

// NewClient creates a client that sends through sender.
func NewClient(sender Sender) *Client {
	return &Client{sender: sender}
}

// SetLogger sets the logger used for correlation diagnostics.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// Send transmits f without waiting for a reply.
func (c *Client) Send(ctx context.Context, f wire.Frame) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClientClosed
	}
	return c.sender.Send(ctx, f)
}

// Request registers exp, sends req and waits for the first matching frame.
// Registration happens before the send so a fast reply cannot be missed.
func (c *Client) Request(ctx context.Context, req wire.Frame, exp Expectation) (wire.Frame, error) {
	w, err := c.register(exp)
	if err != nil {
		return wire.Frame{}, err
	}

	if err := c.sender.Send(ctx, req); err != nil {
		c.remove(w)
		return wire.Frame{}, err
	}

	return c.wait(ctx, w)
}

// Await waits for a frame matching exp without sending anything. It is
// used for multi-part reports where the node sends follow-up frames.
func (c *Client) Await(ctx context.Context, exp Expectation) (wire.Frame, error) {
	w, err := c.register(exp)
	if err != nil {
		return wire.Frame{}, err
	}
	return c.wait(ctx, w)
}

// Deliver offers an inbound frame to the pending waiters. The first waiter
// in registration order whose expectation matches is resolved and removed.
// It reports whether a waiter claimed the frame.
func (c *Client) Deliver(f wire.Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, w := range c.waiters {
		if !w.exp.Matches(f) {
			continue
		}
		c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
		w.ch <- f
		c.debugLog("correlated frame", "expect", w.exp.String(), "pending", len(c.waiters))
		return true
	}
	return false
}

// Pending returns the number of registered waiters.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// Close releases all waiters with ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	for _, w := range c.waiters {
		close(w.ch)
	}
	c.waiters = nil
	return nil
}

func (c *Client) register(exp Expectation) (*waiter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	w := &waiter{exp: exp, ch: make(chan wire.Frame, 1)}
	c.waiters = append(c.waiters, w)
	return w, nil
}

// remove unregisters w. It returns false if w was already resolved.
func (c *Client) remove(w *waiter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, cur := range c.waiters {
		if cur == w {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Client) wait(ctx context.Context, w *waiter) (wire.Frame, error) {
	select {
	case f, ok := <-w.ch:
		if !ok {
			return wire.Frame{}, ErrClientClosed
		}
		return f, nil
	case <-ctx.Done():
		if !c.remove(w) {
			// Resolved or closed concurrently with the cancellation.
			if f, ok := <-w.ch; ok {
				return f, nil
			}
			return wire.Frame{}, ErrClientClosed
		}
		c.mu.Lock()
		c.debugLog("wait cancelled", "expect", w.exp.String())
		c.mu.Unlock()
		return wire.Frame{}, fmt.Errorf("%w: %w", ErrOperationCancelled, ctx.Err())
	}
}

// debugLog must be called with c.mu held.
func (c *Client) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
