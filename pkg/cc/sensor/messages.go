package sensor

import (
	"fmt"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Command ids.
const (
	CmdSupportedSensorGet    wire.CommandID = 0x01
	CmdSupportedSensorReport wire.CommandID = 0x02
	CmdSupportedScaleGet     wire.CommandID = 0x03
	CmdGet                   wire.CommandID = 0x04
	CmdReport                wire.CommandID = 0x05
	CmdSupportedScaleReport  wire.CommandID = 0x06
)

// Type is a sensor type. Unknown values are kept as-is.
type Type uint8

// Sensor types.
const (
	TypeAirTemperature Type = 0x01
	TypeGeneralPurpose Type = 0x02
	TypeLuminance      Type = 0x03
	TypePower          Type = 0x04
	TypeHumidity       Type = 0x05
	TypeVelocity       Type = 0x06
	TypeDirection      Type = 0x07
	TypeAtmPressure    Type = 0x08
	TypeBaroPressure   Type = 0x09
	TypeSolarRadiation Type = 0x0A
	TypeDewPoint       Type = 0x0B
	TypeRainRate       Type = 0x0C
	TypeTideLevel      Type = 0x0D
	TypeWeight         Type = 0x0E
	TypeVoltage        Type = 0x0F
	TypeCurrent        Type = 0x10
	TypeCO2Level       Type = 0x11
	TypeAirFlow        Type = 0x12
	TypeTankCapacity   Type = 0x13
	TypeDistance       Type = 0x14
	TypeUltraviolet    Type = 0x1B
	TypeMoisture       Type = 0x1F
)

var typeNames = map[Type]string{
	TypeAirTemperature: "AIR_TEMPERATURE",
	TypeGeneralPurpose: "GENERAL_PURPOSE",
	TypeLuminance:      "LUMINANCE",
	TypePower:          "POWER",
	TypeHumidity:       "HUMIDITY",
	TypeVelocity:       "VELOCITY",
	TypeDirection:      "DIRECTION",
	TypeAtmPressure:    "ATMOSPHERIC_PRESSURE",
	TypeBaroPressure:   "BAROMETRIC_PRESSURE",
	TypeSolarRadiation: "SOLAR_RADIATION",
	TypeDewPoint:       "DEW_POINT",
	TypeRainRate:       "RAIN_RATE",
	TypeTideLevel:      "TIDE_LEVEL",
	TypeWeight:         "WEIGHT",
	TypeVoltage:        "VOLTAGE",
	TypeCurrent:        "CURRENT",
	TypeCO2Level:       "CO2_LEVEL",
	TypeAirFlow:        "AIR_FLOW",
	TypeTankCapacity:   "TANK_CAPACITY",
	TypeDistance:       "DISTANCE",
	TypeUltraviolet:    "ULTRAVIOLET",
	TypeMoisture:       "MOISTURE",
}

// String returns the sensor type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(t))
}

// Reading is the content of a Multilevel Sensor Report.
type Reading struct {
	Type      Type
	Scale     uint8
	Value     float64
	Precision uint8
	Size      uint8
}

const (
	getScaleShift = 3
	getScaleMask  = 0x18
	scaleMaskLow  = 0x0F
)

// BuildGet encodes a Get. From version 5 it names the type and scale.
func BuildGet(version uint8, t Type, scale uint8) wire.Frame {
	if version < 5 {
		return wire.NewFrame(wire.ClassSensorMultilevel, CmdGet, nil)
	}
	return wire.NewFrame(wire.ClassSensorMultilevel, CmdGet,
		[]byte{byte(t), scale << getScaleShift & getScaleMask})
}

// ParseGet decodes a version 5 Get. ok is false for the parameterless form.
func ParseGet(f wire.Frame) (t Type, scale uint8, ok bool) {
	p := f.Params()
	if len(p) < 2 {
		return 0, 0, false
	}
	return Type(p[0]), (p[1] & getScaleMask) >> getScaleShift, true
}

// ParseReport decodes a Multilevel Sensor Report.
func ParseReport(f wire.Frame) (Reading, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 2, "sensor header"); err != nil {
		return Reading{}, err
	}
	v, _, err := wire.ReadScaled(p[1:])
	if err != nil {
		return Reading{}, err
	}
	return Reading{
		Type:      Type(p[0]),
		Scale:     v.Scale,
		Value:     v.Value,
		Precision: v.Precision,
		Size:      v.Size,
	}, nil
}

// BuildReport encodes a Multilevel Sensor Report with canonical precision.
func BuildReport(t Type, scale uint8, value float64) (wire.Frame, error) {
	params, err := wire.AppendScaled([]byte{byte(t)}, value, scale)
	if err != nil {
		return wire.Frame{}, err
	}
	return wire.NewFrame(wire.ClassSensorMultilevel, CmdReport, params), nil
}

// ParseSupportedSensorReport decodes the supported type bitmask. Bit 0
// of byte 0 is type 1.
func ParseSupportedSensorReport(f wire.Frame) ([]Type, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "sensor type mask"); err != nil {
		return nil, err
	}
	return wire.ParseBitMask(p, Type(1)), nil
}

// BuildSupportedSensorReport encodes the supported type bitmask.
func BuildSupportedSensorReport(types []Type) wire.Frame {
	return wire.NewFrame(wire.ClassSensorMultilevel, CmdSupportedSensorReport, wire.EncodeBitMask(types, 1))
}

// BuildSupportedScaleGet encodes a Supported Scale Get for t.
func BuildSupportedScaleGet(t Type) wire.Frame {
	return wire.NewFrame(wire.ClassSensorMultilevel, CmdSupportedScaleGet, []byte{byte(t)})
}

// ParseSupportedScaleReport decodes the supported scales of one type.
func ParseSupportedScaleReport(f wire.Frame) (Type, []uint8, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 2, "sensor scale mask"); err != nil {
		return 0, nil, err
	}
	return Type(p[0]), wire.ParseBitMask([]byte{p[1] & scaleMaskLow}, uint8(0)), nil
}

// BuildSupportedScaleReport encodes the supported scales of one type.
func BuildSupportedScaleReport(t Type, scales []uint8) wire.Frame {
	mask := wire.EncodeBitMask(scales, 0)
	b := byte(0)
	if len(mask) > 0 {
		b = mask[0] & scaleMaskLow
	}
	return wire.NewFrame(wire.ClassSensorMultilevel, CmdSupportedScaleReport, []byte{byte(t), b})
}
