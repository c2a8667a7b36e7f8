package transport

import (
	"context"
	"slices"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/log"
)

// Responder answers an outbound envelope with zero or more inbound ones.
type Responder func(env Envelope) []Envelope

// Loopback is an in-memory Driver. Replies produced by the Responder are
// queued on Inbound in order.
type Loopback struct {
	capture *log.Session
	inbound chan Envelope
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	respond Responder
	sent    []Envelope
	closed  bool
}

// NewLoopback creates a loopback driver. respond may be nil.
func NewLoopback(respond Responder) *Loopback {
	return &Loopback{
		respond: respond,
		inbound: make(chan Envelope, InboundBufferSize),
		done:    make(chan struct{}),
	}
}

// SetCapture records envelopes to s.
func (l *Loopback) SetCapture(s *log.Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.capture = s
}

// SetResponder replaces the responder.
func (l *Loopback) SetResponder(r Responder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.respond = r
}

// Sent returns the envelopes sent so far.
func (l *Loopback) Sent() []Envelope {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.sent)
}

// Send implements Driver.
func (l *Loopback) Send(ctx context.Context, env Envelope) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrDriverClosed
	}
	l.sent = append(l.sent, env)
	respond := l.respond
	capture := l.capture
	l.wg.Add(1)
	l.mu.Unlock()
	defer l.wg.Done()

	capture.Frame(log.DirectionOut, env.NodeID, env.Endpoint, env.Bytes())
	if respond == nil {
		return nil
	}
	for _, r := range respond(env) {
		if err := l.push(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Inject queues an unsolicited envelope.
func (l *Loopback) Inject(ctx context.Context, env Envelope) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrDriverClosed
	}
	l.wg.Add(1)
	l.mu.Unlock()
	defer l.wg.Done()

	return l.push(ctx, env)
}

func (l *Loopback) push(ctx context.Context, env Envelope) error {
	l.mu.Lock()
	capture := l.capture
	l.mu.Unlock()
	capture.Frame(log.DirectionIn, env.NodeID, env.Endpoint, env.Bytes())

	select {
	case l.inbound <- env:
		return nil
	case <-l.done:
		return ErrDriverClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inbound implements Driver.
func (l *Loopback) Inbound() <-chan Envelope {
	return l.inbound
}

// Close implements Driver.
func (l *Loopback) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.done)
	l.mu.Unlock()

	l.wg.Wait()
	close(l.inbound)
	return nil
}
