// Package setpoint implements the Thermostat Setpoint command class.
package setpoint

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
	{ID: CmdSet, Name: "Set"},
	{ID: CmdGet, Name: "Get"},
	{ID: CmdReport, Name: "Report"},
	{ID: CmdSupportedGet, Name: "SupportedGet"},
	{ID: CmdSupportedReport, Name: "SupportedReport"},
	{ID: CmdCapabilitiesGet, Name: "CapabilitiesGet", MinVersion: 3},
	{ID: CmdCapabilitiesReport, Name: "CapabilitiesReport", MinVersion: 3},
}

// Thermostat is the Thermostat Setpoint command class instance.
type Thermostat struct {
	*cc.Base

	mu     sync.RWMutex
	types  []Type
	values map[Type]*Setpoint
	limits map[Type]*Capabilities
}

// New creates a Thermostat Setpoint instance on host.
func New(host cc.Host) *Thermostat {
	return &Thermostat{
		Base:   cc.NewBase(wire.ClassThermostatSetpoint, host, commands),
		values: make(map[Type]*Setpoint),
		limits: make(map[Type]*Capabilities),
	}
}

// Dependencies returns the Version class.
func (t *Thermostat) Dependencies() []wire.ClassID {
	return []wire.ClassID{wire.ClassVersion}
}

// Types returns the supported setpoint types, or nil before they are known.
func (t *Thermostat) Types() []Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.types)
}

// Value returns the last known setpoint of typ.
func (t *Thermostat) Value(typ Type) (*Setpoint, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[typ]
	return v, ok
}

// Tracked returns the tracked types in ascending order.
func (t *Thermostat) Tracked() []Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.values))
}

// Limits returns the capability range of typ, if reported.
func (t *Thermostat) Limits(typ Type) (Capabilities, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := t.limits[typ]
	if c == nil {
		return Capabilities{}, false
	}
	return *c, true
}

// GetSupported requests the supported setpoint types.
func (t *Thermostat) GetSupported(ctx context.Context) ([]Type, error) {
	f, err := t.Request(ctx, CmdSupportedGet, nil, CmdSupportedReport, nil)
	if err != nil {
		return nil, err
	}
	return ParseSupportedReport(f)
}

// Get requests the setpoint of typ.
func (t *Thermostat) Get(ctx context.Context, typ Type) (Setpoint, error) {
	if err := t.checkType(typ); err != nil {
		return Setpoint{}, err
	}
	match := func(f wire.Frame) bool {
		got, _, err := ParseReport(f)
		return err == nil && got == typ
	}
	f, err := t.Request(ctx, CmdGet, BuildGet(typ).Params(), CmdReport, match)
	if err != nil {
		return Setpoint{}, err
	}
	_, sp, err := ParseReport(f)
	return sp, err
}

// GetCapabilities requests the allowed range of typ.
func (t *Thermostat) GetCapabilities(ctx context.Context, typ Type) (Capabilities, error) {
	if err := t.checkType(typ); err != nil {
		return Capabilities{}, err
	}
	match := func(f wire.Frame) bool {
		got, _, err := ParseCapabilitiesReport(f)
		return err == nil && got == typ
	}
	f, err := t.Request(ctx, CmdCapabilitiesGet, []byte{byte(typ) & typeMask}, CmdCapabilitiesReport, match)
	if err != nil {
		return Capabilities{}, err
	}
	_, c, err := ParseCapabilitiesReport(f)
	return c, err
}

// Set changes the setpoint of typ, then reads it back.
func (t *Thermostat) Set(ctx context.Context, typ Type, sp Setpoint) (Setpoint, error) {
	if err := t.checkType(typ); err != nil {
		return Setpoint{}, err
	}
	if c, ok := t.Limits(typ); ok && !c.Contains(sp) {
		return Setpoint{}, fmt.Errorf("%w: %v outside [%v, %v]", cc.ErrInvalidArgument, sp.Value, c.Min.Value, c.Max.Value)
	}

	f, err := BuildSet(typ, sp)
	if err != nil {
		return Setpoint{}, fmt.Errorf("%w: %w", cc.ErrInvalidArgument, err)
	}
	if err := t.Send(ctx, f); err != nil {
		return Setpoint{}, err
	}
	return t.Get(ctx, typ)
}

// checkType rejects types outside the supported set once it is known.
// Unknown support lets the request through.
func (t *Thermostat) checkType(typ Type) error {
	types := t.Types()
	if types != nil && !slices.Contains(types, typ) {
		return fmt.Errorf("%w: setpoint type %s not supported", cc.ErrInvalidArgument, typ)
	}
	return nil
}

// Interview discovers the supported types, then reads the range (from
// version 3) and value of each.
func (t *Thermostat) Interview(ctx context.Context) error {
	types, err := t.GetSupported(ctx)
	if err != nil {
		return err
	}
	for _, typ := range types {
		if t.IsSupported(CmdCapabilitiesGet) == cc.SupportYes {
			if _, err := t.GetCapabilities(ctx, typ); err != nil {
				return fmt.Errorf("capabilities of %s: %w", typ, err)
			}
		}
		if _, err := t.Get(ctx, typ); err != nil {
			return fmt.Errorf("setpoint %s: %w", typ, err)
		}
	}
	return nil
}

// HandleReport applies Thermostat Setpoint reports to instance state.
func (t *Thermostat) HandleReport(f wire.Frame) error {
	switch f.CommandID() {
	case CmdReport:
		typ, sp, err := ParseReport(f)
		if err != nil {
			return t.Malformed(f, err)
		}
		t.mu.Lock()
		if t.supportsLocked(typ) {
			t.values[typ] = &sp
		}
		t.mu.Unlock()

	case CmdSupportedReport:
		types, err := ParseSupportedReport(f)
		if err != nil {
			return t.Malformed(f, err)
		}
		if types == nil {
			types = []Type{}
		}
		t.mu.Lock()
		t.types = types
		t.values = cc.Reconcile(t.values, types)
		t.limits = cc.Reconcile(t.limits, types)
		t.mu.Unlock()

	case CmdCapabilitiesReport:
		typ, c, err := ParseCapabilitiesReport(f)
		if err != nil {
			return t.Malformed(f, err)
		}
		t.mu.Lock()
		if t.supportsLocked(typ) {
			t.limits[typ] = &c
		}
		t.mu.Unlock()

	default:
		return t.Unhandled(f)
	}
	return nil
}

// supportsLocked reports whether typ may be tracked: any type before the
// supported set is known, afterwards only its members. t.mu must be held.
func (t *Thermostat) supportsLocked(typ Type) bool {
	return t.types == nil || slices.Contains(t.types, typ)
}
