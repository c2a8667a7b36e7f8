package meter

import (
	"fmt"
	"math"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Command ids.
const (
	CmdGet             wire.CommandID = 0x01
	CmdReport          wire.CommandID = 0x02
	CmdSupportedGet    wire.CommandID = 0x03
	CmdSupportedReport wire.CommandID = 0x04
	CmdReset           wire.CommandID = 0x05
)

// CapReset is the capability flag learned from the supported report.
const CapReset = "reset"

// Type is the kind of meter.
type Type uint8

// Meter types.
const (
	TypeElectric Type = 0x01
	TypeGas      Type = 0x02
	TypeWater    Type = 0x03
	TypeHeating  Type = 0x04
	TypeCooling  Type = 0x05
)

// String returns the meter type name.
func (t Type) String() string {
	switch t {
	case TypeElectric:
		return "ELECTRIC"
	case TypeGas:
		return "GAS"
	case TypeWater:
		return "WATER"
	case TypeHeating:
		return "HEATING"
	case TypeCooling:
		return "COOLING"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(t))
	}
}

// RateType distinguishes imported from exported energy.
type RateType uint8

// Rate types.
const (
	RateUnspecified RateType = 0x00
	RateImport      RateType = 0x01
	RateExport      RateType = 0x02
)

// String returns the rate type name.
func (r RateType) String() string {
	switch r {
	case RateUnspecified:
		return "UNSPECIFIED"
	case RateImport:
		return "IMPORT"
	case RateExport:
		return "EXPORT"
	default:
		return fmt.Sprintf("RESERVED(%d)", uint8(r))
	}
}

// Scale is a meter unit. Values 0-7 fit the header bits; larger values
// use the scale 7 escape and a trailing byte.
type Scale int

// scaleEscape in the header bits means "7 + next byte".
const scaleEscape = 7

var scaleUnits = map[Type][]string{
	TypeElectric: {"kWh", "kVAh", "W", "pulse", "V", "A", "power factor", "kVar", "kVarh"},
	TypeGas:      {"m³", "ft³", "", "pulse"},
	TypeWater:    {"m³", "ft³", "US gal", "pulse"},
	TypeHeating:  {"kWh"},
	TypeCooling:  {"kWh"},
}

// Unit returns the unit name of scale s for meter type t.
func Unit(t Type, s Scale) string {
	units := scaleUnits[t]
	if int(s) < len(units) && units[s] != "" {
		return units[s]
	}
	return fmt.Sprintf("scale %d", int(s))
}

// Reading is the content of a Meter Report.
type Reading struct {
	Type      Type
	Rate      RateType
	Scale     Scale
	Value     float64
	Precision uint8
	Size      uint8

	// DeltaTime is the age of Previous in seconds. Previous is nil when
	// the report carries no previous value.
	DeltaTime uint16
	Previous  *float64
}

// Supported is the content of a Meter Supported Report.
type Supported struct {
	Type         Type
	Rate         RateType
	ResetAllowed bool
	Scales       []Scale
}

// Bit layout shared by report and supported report headers.
const (
	headerScaleBit = 0x80
	rateShift      = 5
	rateMask       = 0x60
	typeMask       = 0x1F
	moreScalesBit  = 0x80
	scaleMask      = 0x7F
	getScaleShift  = 3
	getScaleMask   = 0x38
	getRateShift   = 6
)

// BuildGet encodes a Meter Get for the given class version. Version 1 has
// no parameters; version 4 adds the rate type and the scale escape.
func BuildGet(version uint8, scale Scale, rate RateType) wire.Frame {
	if version < 2 {
		return wire.NewFrame(wire.ClassMeter, CmdGet, nil)
	}

	hdr := min(int(scale), scaleEscape)
	b0 := byte(hdr) << getScaleShift & getScaleMask
	if version < 4 {
		return wire.NewFrame(wire.ClassMeter, CmdGet, []byte{b0})
	}

	b0 |= byte(rate) << getRateShift
	params := []byte{b0}
	if hdr == scaleEscape {
		params = append(params, byte(int(scale)-scaleEscape))
	}
	return wire.NewFrame(wire.ClassMeter, CmdGet, params)
}

// ParseGet decodes the requested scale and rate type.
func ParseGet(f wire.Frame) (Scale, RateType) {
	p := f.Params()
	if len(p) == 0 {
		return 0, RateUnspecified
	}
	scale := Scale((p[0] & getScaleMask) >> getScaleShift)
	rate := RateType(p[0] >> getRateShift)
	if scale == scaleEscape && len(p) > 1 {
		scale += Scale(p[1])
	}
	return scale, rate
}

// ParseReport decodes a Meter Report.
func ParseReport(f wire.Frame) (Reading, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 2, "meter header"); err != nil {
		return Reading{}, err
	}

	v, n, err := wire.ReadScaled(p[1:])
	if err != nil {
		return Reading{}, err
	}
	r := Reading{
		Type:      Type(p[0] & typeMask),
		Rate:      RateType((p[0] & rateMask) >> rateShift),
		Scale:     Scale((p[0]&headerScaleBit)>>5 | v.Scale),
		Value:     v.Value,
		Precision: v.Precision,
		Size:      v.Size,
	}
	rest := p[1+n:]

	if len(rest) >= 2 {
		r.DeltaTime = uint16(rest[0])<<8 | uint16(rest[1])
		rest = rest[2:]
		if r.DeltaTime != 0 {
			if err := wire.CheckLength(rest, int(v.Size), "previous value"); err != nil {
				return Reading{}, err
			}
			prev, err := wire.DecodeDecimal(rest[:v.Size], v.Precision, v.Size)
			if err != nil {
				return Reading{}, err
			}
			r.Previous = &prev
			rest = rest[v.Size:]
		}
	}

	if r.Scale == scaleEscape {
		ext, _, err := wire.ExtendEnum(scaleEscape, scaleEscape, rest)
		if err != nil {
			return Reading{}, err
		}
		r.Scale = Scale(ext)
	}
	return r, nil
}

// BuildReport encodes a Meter Report. Previous is sent when DeltaTime is
// non-zero, using the same precision and size as Value.
func BuildReport(r Reading) (wire.Frame, error) {
	hdrScale := min(int(r.Scale), scaleEscape)
	b0 := byte(r.Type)&typeMask | byte(r.Rate)<<rateShift&rateMask
	if hdrScale&0x04 != 0 {
		b0 |= headerScaleBit
	}

	params := []byte{b0}
	params, err := wire.AppendScaled(params, r.Value, uint8(hdrScale&0x03))
	if err != nil {
		return wire.Frame{}, err
	}

	if r.Previous != nil || r.DeltaTime != 0 {
		params = append(params, byte(r.DeltaTime>>8), byte(r.DeltaTime))
		if r.DeltaTime != 0 {
			precision, _, size := wire.ParseControl(params[1])
			prev := 0.0
			if r.Previous != nil {
				prev = *r.Previous
			}
			raw := int64(math.Round(prev * math.Pow10(int(precision))))
			if params, err = wire.AppendInt(params, raw, int(size)); err != nil {
				return wire.Frame{}, err
			}
		}
	}

	if hdrScale == scaleEscape {
		params = append(params, byte(int(r.Scale)-scaleEscape))
	}
	return wire.NewFrame(wire.ClassMeter, CmdReport, params), nil
}

// ParseSupportedReport decodes a Meter Supported Report.
func ParseSupportedReport(f wire.Frame) (Supported, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 2, "meter supported"); err != nil {
		return Supported{}, err
	}

	s := Supported{
		Type:         Type(p[0] & typeMask),
		Rate:         RateType((p[0] & rateMask) >> rateShift),
		ResetAllowed: p[0]&headerScaleBit != 0,
	}
	for _, sc := range wire.ParseBitMask([]byte{p[1] & scaleMask}, uint8(0)) {
		if sc != scaleEscape {
			s.Scales = append(s.Scales, Scale(sc))
		}
	}

	if p[1]&moreScalesBit != 0 {
		more, _, err := wire.ParseLengthPrefixedBitMask(p[2:], uint8(0))
		if err != nil {
			return Supported{}, err
		}
		for _, sc := range more {
			s.Scales = append(s.Scales, Scale(int(sc)+scaleEscape+1))
		}
	}
	return s, nil
}

// BuildSupportedReport encodes a Meter Supported Report. Scales past 6
// are carried in the length-prefixed extension.
func BuildSupportedReport(s Supported) (wire.Frame, error) {
	b0 := byte(s.Type)&typeMask | byte(s.Rate)<<rateShift&rateMask
	if s.ResetAllowed {
		b0 |= headerScaleBit
	}

	var low []int
	var high []int
	for _, sc := range s.Scales {
		switch {
		case sc < scaleEscape:
			low = append(low, int(sc))
		case sc > scaleEscape:
			high = append(high, int(sc)-scaleEscape-1)
		}
	}
	mask := wire.EncodeBitMask(low, 0)
	b1 := byte(0)
	if len(mask) > 0 {
		b1 = mask[0]
	}

	params := []byte{b0, b1}
	if len(high) > 0 {
		params[1] |= moreScalesBit
		var err error
		if params, err = wire.AppendLengthPrefixedBitMask(params, high, 0); err != nil {
			return wire.Frame{}, err
		}
	}
	return wire.NewFrame(wire.ClassMeter, CmdSupportedReport, params), nil
}
