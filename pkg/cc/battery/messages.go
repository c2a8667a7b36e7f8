package battery

import (
	"fmt"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Command ids.
const (
	CmdGet          wire.CommandID = 0x02
	CmdReport       wire.CommandID = 0x03
	CmdHealthGet    wire.CommandID = 0x04
	CmdHealthReport wire.CommandID = 0x05
)

// LowBatteryLevel is the level byte that signals a low battery warning.
const LowBatteryLevel = 0xFF

// unknownCapacity marks an unknown maximum capacity in a health report.
const unknownCapacity = 0xFF

// ChargingStatus is the charging state reported from version 2.
type ChargingStatus uint8

// Charging states.
const (
	Discharging ChargingStatus = 0x00
	Charging    ChargingStatus = 0x01
	Maintaining ChargingStatus = 0x02
)

// String returns the charging state name.
func (c ChargingStatus) String() string {
	switch c {
	case Discharging:
		return "DISCHARGING"
	case Charging:
		return "CHARGING"
	case Maintaining:
		return "MAINTAINING"
	default:
		return fmt.Sprintf("RESERVED(%d)", uint8(c))
	}
}

// ReplaceStatus says whether the battery should be replaced or recharged.
type ReplaceStatus uint8

// Replace states.
const (
	ReplaceNo   ReplaceStatus = 0x00
	ReplaceSoon ReplaceStatus = 0x01
	ReplaceNow  ReplaceStatus = 0x03
)

// Report is the content of a Battery Report.
type Report struct {
	// Level is the charge in percent. A low battery warning reads as 0.
	Level uint8
	IsLow bool

	// Status holds the version 2 fields, nil for shorter reports.
	Status *Status
}

// Status carries the extended battery flags.
type Status struct {
	Charging     ChargingStatus
	Rechargeable bool
	Backup       bool
	Overheating  bool
	LowFluid     bool
	Replace      ReplaceStatus
	Disconnected bool

	// LowTemperature is defined from version 3.
	LowTemperature bool
}

// Health is the content of a Battery Health Report.
type Health struct {
	// MaxCapacity is the capacity in percent of new, nil if unknown.
	MaxCapacity *uint8

	// Temperature is nil when the node reports no temperature.
	Temperature *wire.ScaledValue
}

// Flag bits of the first status byte.
const (
	chargingShift     = 6
	chargingMask      = 0xC0
	rechargeableBit   = 0x20
	backupBit         = 0x10
	overheatingBit    = 0x08
	lowFluidBit       = 0x04
	replaceMask       = 0x03
	disconnectedBit   = 0x01
	lowTemperatureBit = 0x02
)

// ParseReport decodes a Battery Report.
func ParseReport(f wire.Frame) (Report, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "battery level"); err != nil {
		return Report{}, err
	}

	r := Report{Level: p[0]}
	if p[0] == LowBatteryLevel {
		r.Level = 0
		r.IsLow = true
	}
	if len(p) < 3 {
		return r, nil
	}

	s := &Status{
		Charging:     ChargingStatus((p[1] & chargingMask) >> chargingShift),
		Rechargeable: p[1]&rechargeableBit != 0,
		Backup:       p[1]&backupBit != 0,
		Overheating:  p[1]&overheatingBit != 0,
		LowFluid:     p[1]&lowFluidBit != 0,
		Replace:      ReplaceStatus(p[1] & replaceMask),
		Disconnected: p[2]&disconnectedBit != 0,

		LowTemperature: p[2]&lowTemperatureBit != 0,
	}
	r.Status = s
	return r, nil
}

// BuildReport encodes a Battery Report.
func BuildReport(r Report) wire.Frame {
	level := r.Level
	if r.IsLow {
		level = LowBatteryLevel
	}
	params := []byte{level}
	if s := r.Status; s != nil {
		b1 := byte(s.Charging)<<chargingShift&chargingMask | byte(s.Replace)&replaceMask
		if s.Rechargeable {
			b1 |= rechargeableBit
		}
		if s.Backup {
			b1 |= backupBit
		}
		if s.Overheating {
			b1 |= overheatingBit
		}
		if s.LowFluid {
			b1 |= lowFluidBit
		}
		var b2 byte
		if s.Disconnected {
			b2 |= disconnectedBit
		}
		if s.LowTemperature {
			b2 |= lowTemperatureBit
		}
		params = append(params, b1, b2)
	}
	return wire.NewFrame(wire.ClassBattery, CmdReport, params)
}

// ParseHealthReport decodes a Battery Health Report.
func ParseHealthReport(f wire.Frame) (Health, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 2, "battery health"); err != nil {
		return Health{}, err
	}

	var h Health
	if p[0] != unknownCapacity {
		c := p[0]
		h.MaxCapacity = &c
	}

	if _, _, size := wire.ParseControl(p[1]); size == 0 {
		return h, nil
	}
	temp, _, err := wire.ReadScaled(p[1:])
	if err != nil {
		return Health{}, err
	}
	h.Temperature = &temp
	return h, nil
}

// BuildHealthReport encodes a Battery Health Report.
func BuildHealthReport(h Health) (wire.Frame, error) {
	params := []byte{unknownCapacity}
	if h.MaxCapacity != nil {
		params[0] = *h.MaxCapacity
	}
	if h.Temperature == nil {
		params = append(params, 0x00)
		return wire.NewFrame(wire.ClassBattery, CmdHealthReport, params), nil
	}

	params, err := wire.AppendScaled(params, h.Temperature.Value, h.Temperature.Scale)
	if err != nil {
		return wire.Frame{}, err
	}
	return wire.NewFrame(wire.ClassBattery, CmdHealthReport, params), nil
}
