// Package meter implements the Meter command class: consumption and
// production readings per scale, the supported scale set and reset.
package meter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

var commands = []cc.Command{
	{ID: CmdGet, Name: "Get"},
	{ID: CmdReport, Name: "Report"},
	{ID: CmdSupportedGet, Name: "SupportedGet", MinVersion: 2},
	{ID: CmdSupportedReport, Name: "SupportedReport", MinVersion: 2},
	{ID: CmdReset, Name: "Reset", MinVersion: 2, Capability: CapReset},
}

// Meter is the Meter command class instance.
type Meter struct {
	*cc.Base

	mu        sync.RWMutex
	supported *Supported
	values    map[Scale]*Reading
}

// New creates a Meter instance on host.
func New(host cc.Host) *Meter {
	return &Meter{
		Base:   cc.NewBase(wire.ClassMeter, host, commands),
		values: make(map[Scale]*Reading),
	}
}

// Dependencies returns the Version class.
func (m *Meter) Dependencies() []wire.ClassID {
	return []wire.ClassID{wire.ClassVersion}
}

// Supported returns the supported report, or nil before it is known.
func (m *Meter) Supported() *Supported {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.supported
}

// Value returns the last reading for scale. The second result is false
// if the scale is not tracked; a tracked scale may still have a nil value.
func (m *Meter) Value(scale Scale) (*Reading, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.values[scale]
	return r, ok
}

// Scales returns the tracked scales in ascending order.
func (m *Meter) Scales() []Scale {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.values))
}

// Get requests a reading for scale. Once the supported scales are known,
// other scales are rejected before anything is sent.
func (m *Meter) Get(ctx context.Context, scale Scale) (Reading, error) {
	if s := m.Supported(); s != nil && !slices.Contains(s.Scales, scale) {
		return Reading{}, fmt.Errorf("%w: scale %d not supported", cc.ErrInvalidArgument, scale)
	}

	version := m.EffectiveVersion()
	var match func(wire.Frame) bool
	if version >= 2 {
		match = func(f wire.Frame) bool {
			r, err := ParseReport(f)
			return err == nil && r.Scale == scale
		}
	}

	req := BuildGet(version, scale, RateUnspecified)
	f, err := m.Request(ctx, CmdGet, req.Params(), CmdReport, match)
	if err != nil {
		return Reading{}, err
	}
	return ParseReport(f)
}

// GetSupported requests the meter type and supported scales.
func (m *Meter) GetSupported(ctx context.Context) (Supported, error) {
	f, err := m.Request(ctx, CmdSupportedGet, nil, CmdSupportedReport, nil)
	if err != nil {
		return Supported{}, err
	}
	return ParseSupportedReport(f)
}

// Reset clears all accumulated values. The node does not reply.
func (m *Meter) Reset(ctx context.Context) error {
	if err := m.Require(CmdReset); err != nil {
		return err
	}
	return m.Send(ctx, wire.NewFrame(wire.ClassMeter, CmdReset, nil))
}

// Interview discovers the supported scales and reads each of them. A
// version 1 meter only has its default scale.
func (m *Meter) Interview(ctx context.Context) error {
	if m.IsSupported(CmdSupportedGet) != cc.SupportYes {
		_, err := m.Get(ctx, 0)
		return err
	}

	s, err := m.GetSupported(ctx)
	if err != nil {
		return err
	}
	for _, scale := range s.Scales {
		if _, err := m.Get(ctx, scale); err != nil {
			return fmt.Errorf("scale %d: %w", scale, err)
		}
	}
	return nil
}

// HandleReport applies Meter reports to instance state.
func (m *Meter) HandleReport(f wire.Frame) error {
	switch f.CommandID() {
	case CmdReport:
		r, err := ParseReport(f)
		if err != nil {
			return m.Malformed(f, err)
		}
		m.mu.Lock()
		m.values[r.Scale] = &r
		m.mu.Unlock()
		m.DebugLog("meter report", "type", r.Type.String(), "value", r.Value, "unit", Unit(r.Type, r.Scale))

	case CmdSupportedReport:
		s, err := ParseSupportedReport(f)
		if err != nil {
			return m.Malformed(f, err)
		}
		m.SetCapability(CapReset, s.ResetAllowed)
		m.mu.Lock()
		m.supported = &s
		m.values = cc.Reconcile(m.values, s.Scales)
		m.mu.Unlock()

	default:
		return m.Unhandled(f)
	}
	return nil
}
