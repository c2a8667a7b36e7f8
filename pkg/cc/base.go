package cc

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/interaction"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Command describes one command of a class and what gates its support.
type Command struct {
	ID   wire.CommandID
	Name string

	// MinVersion is the class version that introduced the command.
	// Zero and one both mean a base command.
	MinVersion uint8

	// Capability, when set, names a capability flag that must be reported
	// true before the command is supported.
	Capability string
}

// Base carries the state every command class instance shares: identity,
// negotiated version and capability flags.
type Base struct {
	id       wire.ClassID
	host     Host
	commands map[wire.CommandID]Command

	mu           sync.RWMutex
	version      uint8
	versionKnown bool
	caps         map[string]bool
}

// NewBase creates the shared state for class id on host.
func NewBase(id wire.ClassID, host Host, commands []Command) *Base {
	b := &Base{
		id:       id,
		host:     host,
		commands: make(map[wire.CommandID]Command, len(commands)),
		caps:     make(map[string]bool),
	}
	for _, c := range commands {
		b.commands[c.ID] = c
	}
	return b
}

// ID returns the class id.
func (b *Base) ID() wire.ClassID {
	return b.id
}

// Name returns the class name.
func (b *Base) Name() string {
	return b.id.String()
}

// Host returns the endpoint the instance lives on.
func (b *Base) Host() Host {
	return b.host
}

// Version returns the negotiated version and whether it is known.
func (b *Base) Version() (uint8, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version, b.versionKnown
}

// SetVersion records the negotiated version. A version of zero means the
// node does not implement the class at all.
func (b *Base) SetVersion(v uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.version = v
	b.versionKnown = true
}

// EffectiveVersion returns the negotiated version, or 1 if unknown.
func (b *Base) EffectiveVersion() uint8 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.versionKnown || b.version == 0 {
		return 1
	}
	return b.version
}

// SetCapability records a capability flag learned from a capability report.
func (b *Base) SetCapability(name string, v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.caps[name] = v
}

// Capability returns the tri-state value of a capability flag.
func (b *Base) Capability(name string) Support {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.caps[name]
	if !ok {
		return SupportUnknown
	}
	return SupportOf(v)
}

// IsSupported answers whether the node supports cmd.
func (b *Base) IsSupported(cmd wire.CommandID) Support {
	c, ok := b.commands[cmd]
	if !ok {
		return SupportNo
	}

	s := SupportYes
	if c.MinVersion > 1 {
		b.mu.RLock()
		if b.versionKnown {
			s = SupportOf(b.version >= c.MinVersion)
		} else {
			s = SupportUnknown
		}
		b.mu.RUnlock()
	}
	if c.Capability != "" {
		s = s.And(b.Capability(c.Capability))
	}
	return s
}

// Require returns ErrCommandNotSupported if the node is known not to
// support cmd. Unknown support is allowed through.
func (b *Base) Require(cmd wire.CommandID) error {
	if b.IsSupported(cmd) == SupportNo {
		return fmt.Errorf("%w: %s %s", ErrCommandNotSupported, b.id, b.commandName(cmd))
	}
	return nil
}

// Send transmits a frame of this class.
func (b *Base) Send(ctx context.Context, f wire.Frame) error {
	return b.host.Send(ctx, f)
}

// Request sends cmd with params and waits for the report command, filtered
// by match when non-nil. The support check happens before anything is sent.
func (b *Base) Request(ctx context.Context, cmd wire.CommandID, params []byte, report wire.CommandID, match func(wire.Frame) bool) (wire.Frame, error) {
	if err := b.Require(cmd); err != nil {
		return wire.Frame{}, err
	}
	req, err := wire.EncodeFrame(b.id, cmd, params)
	if err != nil {
		return wire.Frame{}, err
	}
	b.DebugLog("request", "cmd", b.commandName(cmd))

	return b.host.Request(ctx, req, interaction.Expectation{
		ClassID:   b.id,
		CommandID: report,
		Match:     match,
	})
}

// Await waits for a follow-up report of this class.
func (b *Base) Await(ctx context.Context, report wire.CommandID, match func(wire.Frame) bool) (wire.Frame, error) {
	return b.host.Await(ctx, interaction.Expectation{
		ClassID:   b.id,
		CommandID: report,
		Match:     match,
	})
}

// Malformed logs a decode failure with the offending frame and returns err.
func (b *Base) Malformed(f wire.Frame, err error) error {
	if logger := b.host.Logger(); logger != nil {
		logger.Warn("malformed report",
			"node", b.host.NodeID(),
			"endpoint", b.host.EndpointIndex(),
			"class", b.id.String(),
			"cmd", b.commandName(f.CommandID()),
			"payload", hex.EncodeToString(f.Params()),
			"error", err)
	}
	return err
}

// DebugLog logs at debug level with node and class attributes.
func (b *Base) DebugLog(msg string, args ...any) {
	logger := b.host.Logger()
	if logger == nil {
		return
	}
	logger.Debug(msg, append([]any{
		"node", b.host.NodeID(),
		"endpoint", b.host.EndpointIndex(),
		"class", b.id.String(),
	}, args...)...)
}

// Unhandled logs an inbound command the class does not decode.
func (b *Base) Unhandled(f wire.Frame) error {
	b.DebugLog("ignoring command", "cmd", b.commandName(f.CommandID()))
	return nil
}

func (b *Base) commandName(cmd wire.CommandID) string {
	if c, ok := b.commands[cmd]; ok && c.Name != "" {
		return c.Name
	}
	return cmd.String()
}

// IsCancelled reports whether err came from an abandoned wait.
func IsCancelled(err error) bool {
	return errors.Is(err, interaction.ErrOperationCancelled)
}
