// Package switchbinary implements the Binary Switch command class.
package switchbinary

import (
	"context"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/duration"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Command ids.
const (
	CmdSet    wire.CommandID = 0x01
	CmdGet    wire.CommandID = 0x02
	CmdReport wire.CommandID = 0x03
)

// Wire values.
const (
	valueOff     = 0x00
	valueOn      = 0xFF
	valueUnknown = 0xFE
)

var commands = []cc.Command{
	{ID: CmdSet, Name: "Set"},
	{ID: CmdGet, Name: "Get"},
	{ID: CmdReport, Name: "Report"},
}

// State is the decoded content of a report.
type State struct {
	// Current is nil when the node reports an unknown state.
	Current *bool

	// Target and Remaining are present from version 2.
	Target    *bool
	Remaining *duration.Duration
}

func decodeValue(b byte) *bool {
	if b == valueUnknown {
		return nil
	}
	on := b != valueOff
	return &on
}

func encodeValue(v *bool) byte {
	switch {
	case v == nil:
		return valueUnknown
	case *v:
		return valueOn
	default:
		return valueOff
	}
}

// BuildSet encodes a Set. The duration is appended for version 2 and
// later; it is dropped for older nodes that cannot parse it.
func BuildSet(version uint8, on bool, d duration.Duration) (wire.Frame, error) {
	params := []byte{encodeValue(&on)}
	if version >= 2 {
		b, err := duration.Encode(d)
		if err != nil {
			return wire.Frame{}, err
		}
		params = append(params, b)
	}
	return wire.NewFrame(wire.ClassSwitchBinary, CmdSet, params), nil
}

// ParseSet decodes a Set. The duration is Default when absent.
func ParseSet(f wire.Frame) (bool, duration.Duration, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "switch value"); err != nil {
		return false, duration.Duration{}, err
	}
	d := duration.Default
	if len(p) >= 2 {
		d = duration.Decode(p[1])
	}
	return p[0] != valueOff, d, nil
}

// ParseReport decodes a Binary Switch Report.
func ParseReport(f wire.Frame) (State, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "switch value"); err != nil {
		return State{}, err
	}
	s := State{Current: decodeValue(p[0])}
	if len(p) >= 3 {
		d := duration.Decode(p[2])
		s.Target = decodeValue(p[1])
		s.Remaining = &d
	}
	return s, nil
}

// BuildReport encodes a Binary Switch Report. The version 2 fields are
// included when Target is set.
func BuildReport(s State) wire.Frame {
	params := []byte{encodeValue(s.Current)}
	if s.Target != nil {
		rem := duration.Instant
		if s.Remaining != nil {
			rem = *s.Remaining
		}
		params = append(params, encodeValue(s.Target), duration.EncodeReport(rem))
	}
	return wire.NewFrame(wire.ClassSwitchBinary, CmdReport, params)
}

// Switch is the Binary Switch command class instance.
type Switch struct {
	*cc.Base

	mu    sync.RWMutex
	state *State
}

// New creates a Binary Switch instance on host.
func New(host cc.Host) *Switch {
	return &Switch{Base: cc.NewBase(wire.ClassSwitchBinary, host, commands)}
}

// Dependencies returns the Version class.
func (s *Switch) Dependencies() []wire.ClassID {
	return []wire.ClassID{wire.ClassVersion}
}

// State returns the last report, or nil.
func (s *Switch) State() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Get requests the switch state.
func (s *Switch) Get(ctx context.Context) (State, error) {
	f, err := s.Request(ctx, CmdGet, nil, CmdReport, nil)
	if err != nil {
		return State{}, err
	}
	return ParseReport(f)
}

// Set switches on or off over d, then reads the state back.
func (s *Switch) Set(ctx context.Context, on bool, d duration.Duration) (State, error) {
	f, err := BuildSet(s.EffectiveVersion(), on, d)
	if err != nil {
		return State{}, err
	}
	if err := s.Send(ctx, f); err != nil {
		return State{}, err
	}
	return s.Get(ctx)
}

// Interview reads the current state.
func (s *Switch) Interview(ctx context.Context) error {
	_, err := s.Get(ctx)
	return err
}

// HandleReport applies Binary Switch reports to instance state.
func (s *Switch) HandleReport(f wire.Frame) error {
	if f.CommandID() != CmdReport {
		return s.Unhandled(f)
	}
	st, err := ParseReport(f)
	if err != nil {
		return s.Malformed(f, err)
	}
	s.mu.Lock()
	s.state = &st
	s.mu.Unlock()
	return nil
}
