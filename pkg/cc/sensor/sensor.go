// Package sensor implements the Multilevel Sensor command class.
//
// From version 5 the node enumerates its sensor types and the scales of
// each type; readings are tracked per type and reconciled whenever the
// supported types are reported again.
package sensor

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
	{ID: CmdSupportedSensorGet, Name: "SupportedSensorGet", MinVersion: 5},
	{ID: CmdSupportedSensorReport, Name: "SupportedSensorReport", MinVersion: 5},
	{ID: CmdSupportedScaleGet, Name: "SupportedScaleGet", MinVersion: 5},
	{ID: CmdSupportedScaleReport, Name: "SupportedScaleReport", MinVersion: 5},
}

// Sensor is the Multilevel Sensor command class instance.
type Sensor struct {
	*cc.Base

	mu     sync.RWMutex
	types  []Type
	scales map[Type][]uint8
	values map[Type]*Reading
}

// New creates a Multilevel Sensor instance on host.
func New(host cc.Host) *Sensor {
	return &Sensor{
		Base:   cc.NewBase(wire.ClassSensorMultilevel, host, commands),
		scales: make(map[Type][]uint8),
		values: make(map[Type]*Reading),
	}
}

// Dependencies returns the Version class.
func (s *Sensor) Dependencies() []wire.ClassID {
	return []wire.ClassID{wire.ClassVersion}
}

// Types returns the supported types, or nil before they are known.
func (s *Sensor) Types() []Type {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.types)
}

// Scales returns the supported scales of t, or nil before they are known.
func (s *Sensor) Scales(t Type) []uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.scales[t])
}

// Value returns the last reading of t. The second result is false if the
// type is not tracked.
func (s *Sensor) Value(t Type) (*Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.values[t]
	return r, ok
}

// Tracked returns the tracked types in ascending order.
func (s *Sensor) Tracked() []Type {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// GetSupportedTypes requests the supported sensor types.
func (s *Sensor) GetSupportedTypes(ctx context.Context) ([]Type, error) {
	f, err := s.Request(ctx, CmdSupportedSensorGet, nil, CmdSupportedSensorReport, nil)
	if err != nil {
		return nil, err
	}
	return ParseSupportedSensorReport(f)
}

// GetSupportedScales requests the scales of t. The types must be known.
func (s *Sensor) GetSupportedScales(ctx context.Context, t Type) ([]uint8, error) {
	if err := s.checkType(t); err != nil {
		return nil, err
	}
	match := func(f wire.Frame) bool {
		got, _, err := ParseSupportedScaleReport(f)
		return err == nil && got == t
	}
	f, err := s.Request(ctx, CmdSupportedScaleGet, []byte{byte(t)}, CmdSupportedScaleReport, match)
	if err != nil {
		return nil, err
	}
	_, scales, err := ParseSupportedScaleReport(f)
	return scales, err
}

// Get requests the node's default reading.
func (s *Sensor) Get(ctx context.Context) (Reading, error) {
	f, err := s.Request(ctx, CmdGet, nil, CmdReport, nil)
	if err != nil {
		return Reading{}, err
	}
	return ParseReport(f)
}

// GetValue requests a reading of type t in the given scale. Before version
// 5 the node only has its default reading and the arguments are not sent.
func (s *Sensor) GetValue(ctx context.Context, t Type, scale uint8) (Reading, error) {
	version := s.EffectiveVersion()
	if version < 5 {
		return s.Get(ctx)
	}

	if err := s.checkType(t); err != nil {
		return Reading{}, err
	}
	scales := s.Scales(t)
	if scales == nil {
		return Reading{}, fmt.Errorf("%w: scales of %s not discovered", cc.ErrCommandNotReady, t)
	}
	if !slices.Contains(scales, scale) {
		return Reading{}, fmt.Errorf("%w: scale %d not supported for %s", cc.ErrInvalidArgument, scale, t)
	}

	match := func(f wire.Frame) bool {
		r, err := ParseReport(f)
		return err == nil && r.Type == t && r.Scale == scale
	}
	req := BuildGet(version, t, scale)
	f, err := s.Request(ctx, CmdGet, req.Params(), CmdReport, match)
	if err != nil {
		return Reading{}, err
	}
	return ParseReport(f)
}

func (s *Sensor) checkType(t Type) error {
	types := s.Types()
	if types == nil {
		return fmt.Errorf("%w: sensor types not discovered", cc.ErrCommandNotReady)
	}
	if !slices.Contains(types, t) {
		return fmt.Errorf("%w: sensor type %s not supported", cc.ErrInvalidArgument, t)
	}
	return nil
}

// Interview discovers types and scales from version 5 and reads each type
// in its first scale. Older sensors get a single Get.
func (s *Sensor) Interview(ctx context.Context) error {
	if s.IsSupported(CmdSupportedSensorGet) != cc.SupportYes {
		_, err := s.Get(ctx)
		return err
	}

	types, err := s.GetSupportedTypes(ctx)
	if err != nil {
		return err
	}
	for _, t := range types {
		scales, err := s.GetSupportedScales(ctx, t)
		if err != nil {
			return fmt.Errorf("scales of %s: %w", t, err)
		}
		if len(scales) == 0 {
			continue
		}
		if _, err := s.GetValue(ctx, t, scales[0]); err != nil {
			return fmt.Errorf("value of %s: %w", t, err)
		}
	}
	return nil
}

// HandleReport applies Multilevel Sensor reports to instance state.
func (s *Sensor) HandleReport(f wire.Frame) error {
	switch f.CommandID() {
	case CmdReport:
		r, err := ParseReport(f)
		if err != nil {
			return s.Malformed(f, err)
		}
		s.mu.Lock()
		known := s.types == nil || slices.Contains(s.types, r.Type)
		if known {
			s.values[r.Type] = &r
		}
		s.mu.Unlock()
		if !known {
			s.DebugLog("ignoring report of unsupported type", "type", r.Type.String())
			return nil
		}
		s.DebugLog("sensor report", "type", r.Type.String(), "value", r.Value, "scale", r.Scale)

	case CmdSupportedSensorReport:
		types, err := ParseSupportedSensorReport(f)
		if err != nil {
			return s.Malformed(f, err)
		}
		if types == nil {
			types = []Type{}
		}
		s.mu.Lock()
		s.types = types
		s.values = cc.Reconcile(s.values, types)
		for t := range s.scales {
			if !slices.Contains(types, t) {
				delete(s.scales, t)
			}
		}
		s.mu.Unlock()

	case CmdSupportedScaleReport:
		t, scales, err := ParseSupportedScaleReport(f)
		if err != nil {
			return s.Malformed(f, err)
		}
		if scales == nil {
			scales = []uint8{}
		}
		s.mu.Lock()
		s.scales[t] = scales
		s.mu.Unlock()

	default:
		return s.Unhandled(f)
	}
	return nil
}
