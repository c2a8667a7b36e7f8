package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Connection errors.
var (
	ErrClosed           = errors.New("connection manager closed")
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
)

// DialTimeout bounds a single background dial.
const DialTimeout = 10 * time.Second

// State is the link state.
type State uint8

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectFunc dials the gateway. It returns nil once the link is usable.
type ConnectFunc func(ctx context.Context) error

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Backoff BackoffConfig

	// AutoReconnect redials after Lost. Defaults to true in DefaultManagerConfig.
	AutoReconnect bool

	// OnStateChange is called outside the lock for every transition.
	OnStateChange func(from, to State)

	// Logger is optional.
	Logger *slog.Logger
}

// DefaultManagerConfig returns a config with reconnect enabled.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Backoff:       DefaultBackoffConfig(),
		AutoReconnect: true,
	}
}

// Manager tracks link state and redials with backoff after a loss.
type Manager struct {
	cfg     ManagerConfig
	connect ConnectFunc
	backoff *Backoff

	mu    sync.RWMutex
	state State

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	kick   chan struct{}
}

// NewManager creates a manager and starts its reconnect loop. Call Close
// to stop it.
func NewManager(connect ConnectFunc, cfg ManagerConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:     cfg,
		connect: connect,
		backoff: NewBackoff(cfg.Backoff),
		state:   StateDisconnected,
		ctx:     ctx,
		cancel:  cancel,
		kick:    make(chan struct{}, 1),
	}
	m.wg.Add(1)
	go m.loop()
	return m
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected reports whether the link is up.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Attempts returns the number of redials since the last success.
func (m *Manager) Attempts() int {
	return m.backoff.Attempts()
}

// Connect dials once in the caller's goroutine. A failed first dial does
// not start background reconnection.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case StateClosed:
		m.mu.Unlock()
		return ErrClosed
	}
	from := m.state
	m.state = StateConnecting
	m.mu.Unlock()
	m.notify(from, StateConnecting)

	if err := m.connect(ctx); err != nil {
		m.transition(StateConnecting, StateDisconnected)
		return err
	}
	m.backoff.Reset()
	m.transition(StateConnecting, StateConnected)
	return nil
}

// Lost reports that a connected link failed.
func (m *Manager) Lost(cause error) {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}
	to := StateDisconnected
	if m.cfg.AutoReconnect {
		to = StateReconnecting
	}
	m.state = to
	m.mu.Unlock()

	m.debugLog("connection lost", "error", cause, "reconnect", m.cfg.AutoReconnect)
	m.notify(StateConnected, to)

	if to == StateReconnecting {
		select {
		case m.kick <- struct{}{}:
		default:
		}
	}
}

// Close stops the reconnect loop. It is safe to call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	from := m.state
	m.state = StateClosed
	m.mu.Unlock()

	m.notify(from, StateClosed)
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) loop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.kick:
			m.redial()
		}
	}
}

func (m *Manager) redial() {
	for m.State() == StateReconnecting {
		attempt := m.backoff.Attempts() + 1
		if err := m.backoff.Wait(m.ctx); err != nil {
			return
		}
		if m.State() != StateReconnecting {
			return
		}

		ctx, cancel := context.WithTimeout(m.ctx, DialTimeout)
		err := m.connect(ctx)
		cancel()
		if err != nil {
			m.debugLog("reconnect failed", "attempt", attempt, "error", err)
			continue
		}

		m.backoff.Reset()
		m.transition(StateReconnecting, StateConnected)
		return
	}
}

// transition moves from -> to if the state is still from.
func (m *Manager) transition(from, to State) {
	m.mu.Lock()
	if m.state != from {
		m.mu.Unlock()
		return
	}
	m.state = to
	m.mu.Unlock()
	m.notify(from, to)
}

func (m *Manager) notify(from, to State) {
	if m.cfg.OnStateChange != nil {
		m.cfg.OnStateChange(from, to)
	}
}

func (m *Manager) debugLog(msg string, args ...any) {
	if m.cfg.Logger != nil {
		m.cfg.Logger.Debug(msg, args...)
	}
}
