package setpoint

import (
	"fmt"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Command ids.
const (
	CmdSet                wire.CommandID = 0x01
	CmdGet                wire.CommandID = 0x02
	CmdReport             wire.CommandID = 0x03
	CmdSupportedGet       wire.CommandID = 0x04
	CmdSupportedReport    wire.CommandID = 0x05
	CmdCapabilitiesGet    wire.CommandID = 0x09
	CmdCapabilitiesReport wire.CommandID = 0x0A
)

// Type is a setpoint type.
type Type uint8

// Setpoint types. Values 0x03-0x06 are unused by the protocol.
const (
	TypeNone              Type = 0x00
	TypeHeating           Type = 0x01
	TypeCooling           Type = 0x02
	TypeFurnace           Type = 0x07
	TypeDryAir            Type = 0x08
	TypeMoistAir          Type = 0x09
	TypeAutoChangeover    Type = 0x0A
	TypeEnergySaveHeating Type = 0x0B
	TypeEnergySaveCooling Type = 0x0C
	TypeAwayHeating       Type = 0x0D
	TypeAwayCooling       Type = 0x0E
	TypeFullPower         Type = 0x0F
)

// supportedTable maps bit positions of the supported report to types.
var supportedTable = []Type{
	TypeNone, TypeHeating, TypeCooling, TypeFurnace, TypeDryAir, TypeMoistAir,
	TypeAutoChangeover, TypeEnergySaveHeating, TypeEnergySaveCooling,
	TypeAwayHeating, TypeAwayCooling, TypeFullPower,
}

// String returns the setpoint type name.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "N/A"
	case TypeHeating:
		return "HEATING"
	case TypeCooling:
		return "COOLING"
	case TypeFurnace:
		return "FURNACE"
	case TypeDryAir:
		return "DRY_AIR"
	case TypeMoistAir:
		return "MOIST_AIR"
	case TypeAutoChangeover:
		return "AUTO_CHANGEOVER"
	case TypeEnergySaveHeating:
		return "ENERGY_SAVE_HEATING"
	case TypeEnergySaveCooling:
		return "ENERGY_SAVE_COOLING"
	case TypeAwayHeating:
		return "AWAY_HEATING"
	case TypeAwayCooling:
		return "AWAY_COOLING"
	case TypeFullPower:
		return "FULL_POWER"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(t))
	}
}

// Scales.
const (
	ScaleCelsius    uint8 = 0
	ScaleFahrenheit uint8 = 1
)

// typeMask selects the type bits of the first parameter byte.
const typeMask = 0x0F

// Setpoint is a value in a scale.
type Setpoint struct {
	Value float64
	Scale uint8
}

// Capabilities is the allowed range of one setpoint type.
type Capabilities struct {
	Min Setpoint
	Max Setpoint
}

// Contains reports whether sp lies within the range. Values in a
// different scale than the bounds are not checked.
func (c Capabilities) Contains(sp Setpoint) bool {
	if sp.Scale != c.Min.Scale || sp.Scale != c.Max.Scale {
		return true
	}
	return sp.Value >= c.Min.Value && sp.Value <= c.Max.Value
}

// BuildSet encodes a Set using the canonical precision and size for value.
func BuildSet(t Type, sp Setpoint) (wire.Frame, error) {
	params, err := wire.AppendScaled([]byte{byte(t) & typeMask}, sp.Value, sp.Scale)
	if err != nil {
		return wire.Frame{}, err
	}
	return wire.NewFrame(wire.ClassThermostatSetpoint, CmdSet, params), nil
}

// BuildGet encodes a Get for t.
func BuildGet(t Type) wire.Frame {
	return wire.NewFrame(wire.ClassThermostatSetpoint, CmdGet, []byte{byte(t) & typeMask})
}

// ParseSet decodes a Set or Report; both share the layout.
func ParseSet(f wire.Frame) (Type, Setpoint, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 2, "setpoint"); err != nil {
		return 0, Setpoint{}, err
	}
	v, _, err := wire.ReadScaled(p[1:])
	if err != nil {
		return 0, Setpoint{}, err
	}
	return Type(p[0] & typeMask), Setpoint{Value: v.Value, Scale: v.Scale}, nil
}

// ParseReport decodes a Report.
func ParseReport(f wire.Frame) (Type, Setpoint, error) {
	return ParseSet(f)
}

// BuildReport encodes a Report.
func BuildReport(t Type, sp Setpoint) (wire.Frame, error) {
	f, err := BuildSet(t, sp)
	if err != nil {
		return wire.Frame{}, err
	}
	return wire.NewFrame(wire.ClassThermostatSetpoint, CmdReport, f.Params()), nil
}

// ParseSupportedReport decodes the supported types through the bit
// position table.
func ParseSupportedReport(f wire.Frame) ([]Type, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "setpoint type mask"); err != nil {
		return nil, err
	}
	return wire.ParseBitMaskTable(p, supportedTable), nil
}

// BuildSupportedReport encodes the supported types.
func BuildSupportedReport(types []Type) (wire.Frame, error) {
	mask, err := wire.EncodeBitMaskTable(types, supportedTable)
	if err != nil {
		return wire.Frame{}, err
	}
	if len(mask) == 0 {
		mask = []byte{0}
	}
	return wire.NewFrame(wire.ClassThermostatSetpoint, CmdSupportedReport, mask), nil
}

// ParseCapabilitiesReport decodes the range of one type.
func ParseCapabilitiesReport(f wire.Frame) (Type, Capabilities, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "setpoint type"); err != nil {
		return 0, Capabilities{}, err
	}
	lo, n, err := wire.ReadScaled(p[1:])
	if err != nil {
		return 0, Capabilities{}, err
	}
	hi, _, err := wire.ReadScaled(p[1+n:])
	if err != nil {
		return 0, Capabilities{}, err
	}
	return Type(p[0] & typeMask), Capabilities{
		Min: Setpoint{Value: lo.Value, Scale: lo.Scale},
		Max: Setpoint{Value: hi.Value, Scale: hi.Scale},
	}, nil
}

// BuildCapabilitiesReport encodes the range of one type.
func BuildCapabilitiesReport(t Type, c Capabilities) (wire.Frame, error) {
	params, err := wire.AppendScaled([]byte{byte(t) & typeMask}, c.Min.Value, c.Min.Scale)
	if err != nil {
		return wire.Frame{}, err
	}
	if params, err = wire.AppendScaled(params, c.Max.Value, c.Max.Scale); err != nil {
		return wire.Frame{}, err
	}
	return wire.NewFrame(wire.ClassThermostatSetpoint, CmdCapabilitiesReport, params), nil
}
