package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/connection"
	"github.com/meshcc/meshcc-go/pkg/log"
)

// link is one established gateway connection.
type link interface {
	ReadMessage() ([]byte, error)
	WriteMessage(ctx context.Context, b []byte) error
	Close() error
}

type dialFunc func(ctx context.Context) (link, error)

// LinkConfig holds the settings shared by the network drivers.
type LinkConfig struct {
	Reconnect connection.ManagerConfig

	// Logger is optional.
	Logger *slog.Logger

	// Capture records envelopes in and out. Nil disables capture.
	Capture *log.Session
}

// DefaultLinkConfig returns reconnect enabled with default backoff.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{Reconnect: connection.DefaultManagerConfig()}
}

// linkDriver is the Driver behind StreamDriver and WebSocketDriver. It
// keeps at most one live link and redials through a connection.Manager.
type linkDriver struct {
	cfg     LinkConfig
	dial    dialFunc
	manager *connection.Manager
	inbound chan Envelope

	mu   sync.Mutex
	cur  link
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func newLinkDriver(cfg LinkConfig, dial dialFunc) *linkDriver {
	d := &linkDriver{
		cfg:     cfg,
		dial:    dial,
		inbound: make(chan Envelope, InboundBufferSize),
		done:    make(chan struct{}),
	}
	rc := cfg.Reconnect
	if rc.Logger == nil {
		rc.Logger = cfg.Logger
	}
	user := rc.OnStateChange
	rc.OnStateChange = func(from, to connection.State) {
		cfg.Capture.StateChange(log.StateEntityDriver, 0, 0, from.String(), to.String(), "")
		if user != nil {
			user(from, to)
		}
	}
	d.manager = connection.NewManager(d.connect, rc)
	return d
}

// Connect dials the gateway once. Later losses are redialed in the
// background.
func (d *linkDriver) Connect(ctx context.Context) error {
	return d.manager.Connect(ctx)
}

// State returns the link state.
func (d *linkDriver) State() connection.State {
	return d.manager.State()
}

func (d *linkDriver) connect(ctx context.Context) error {
	l, err := d.dial(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	select {
	case <-d.done:
		d.mu.Unlock()
		l.Close()
		return ErrDriverClosed
	default:
	}
	d.cur = l
	d.wg.Add(1)
	d.mu.Unlock()

	go d.readLoop(l)
	return nil
}

func (d *linkDriver) readLoop(l link) {
	defer d.wg.Done()
	for {
		b, err := l.ReadMessage()
		if err != nil {
			d.drop(l, err)
			return
		}

		env, err := ParseEnvelope(b)
		if err != nil {
			d.debugLog("dropping malformed envelope", "error", err, "len", len(b))
			d.cfg.Capture.Error(log.LayerTransport, 0, 0, err, "parse envelope")
			continue
		}
		d.cfg.Capture.Frame(log.DirectionIn, env.NodeID, env.Endpoint, b)

		select {
		case d.inbound <- env:
		case <-d.done:
			return
		}
	}
}

// drop discards l after a read or write failure and reports the loss.
func (d *linkDriver) drop(l link, cause error) {
	d.mu.Lock()
	current := d.cur == l
	if current {
		d.cur = nil
	}
	d.mu.Unlock()

	l.Close()
	if !current {
		return
	}
	select {
	case <-d.done:
	default:
		d.manager.Lost(cause)
	}
}

// Send implements Driver.
func (d *linkDriver) Send(ctx context.Context, env Envelope) error {
	d.mu.Lock()
	select {
	case <-d.done:
		d.mu.Unlock()
		return ErrDriverClosed
	default:
	}
	l := d.cur
	d.mu.Unlock()

	if l == nil {
		return connection.ErrNotConnected
	}

	b := env.Bytes()
	if err := l.WriteMessage(ctx, b); err != nil {
		d.drop(l, err)
		return fmt.Errorf("send to node %d: %w", env.NodeID, err)
	}
	d.cfg.Capture.Frame(log.DirectionOut, env.NodeID, env.Endpoint, b)
	return nil
}

// Inbound implements Driver.
func (d *linkDriver) Inbound() <-chan Envelope {
	return d.inbound
}

// Close implements Driver.
func (d *linkDriver) Close() error {
	d.once.Do(func() {
		d.mu.Lock()
		close(d.done)
		l := d.cur
		d.cur = nil
		d.mu.Unlock()

		d.manager.Close()
		if l != nil {
			l.Close()
		}
		d.wg.Wait()
		close(d.inbound)
	})
	return nil
}

func (d *linkDriver) debugLog(msg string, args ...any) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Debug(msg, args...)
	}
}
