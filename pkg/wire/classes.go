package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// ClassID identifies a command class. Ids up to 0xFF occupy one byte on the
// wire; ids 0xF100-0xFFFF use the two-byte extended form.
type ClassID uint16

// CommandID identifies a command within its class namespace.
type CommandID uint8

// ExtendedClassMarkerMin is the lowest first byte that starts a two-byte
// extended class id.
const ExtendedClassMarkerMin = 0xF1

// Command class identifiers.
const (
	ClassNoOperation         ClassID = 0x00
	ClassBasic               ClassID = 0x20
	ClassApplicationStatus   ClassID = 0x22
	ClassSwitchBinary        ClassID = 0x25
	ClassSwitchMultilevel    ClassID = 0x26
	ClassSwitchAll           ClassID = 0x27
	ClassSceneActivation     ClassID = 0x2B
	ClassSensorBinary        ClassID = 0x30
	ClassSensorMultilevel    ClassID = 0x31
	ClassMeter               ClassID = 0x32
	ClassColorSwitch         ClassID = 0x33
	ClassThermostatMode      ClassID = 0x40
	ClassThermostatSetpoint  ClassID = 0x43
	ClassThermostatFanMode   ClassID = 0x44
	ClassDoorLockLogging     ClassID = 0x4C
	ClassBarrierOperator     ClassID = 0x66
	ClassWindowCovering      ClassID = 0x6A
	ClassDoorLock            ClassID = 0x62
	ClassUserCode            ClassID = 0x63
	ClassHumidityControlSetp ClassID = 0x64
	ClassConfiguration       ClassID = 0x70
	ClassNotification        ClassID = 0x71
	ClassManufacturerSpec    ClassID = 0x72
	ClassPowerlevel          ClassID = 0x73
	ClassProtection          ClassID = 0x75
	ClassNodeNaming          ClassID = 0x77
	ClassFirmwareUpdate      ClassID = 0x7A
	ClassClock               ClassID = 0x81
	ClassBattery             ClassID = 0x80
	ClassWakeUp              ClassID = 0x84
	ClassAssociation         ClassID = 0x85
	ClassVersion             ClassID = 0x86
	ClassIndicator           ClassID = 0x87
	ClassMultiChannelAssoc   ClassID = 0x8E
	ClassMultiCommand        ClassID = 0x8F
	ClassAssociationGroupInf ClassID = 0x59
	ClassDeviceResetLocally  ClassID = 0x5A
	ClassCentralScene        ClassID = 0x5B
	ClassZWavePlusInfo       ClassID = 0x5E
	ClassMultiChannel        ClassID = 0x60
	ClassSecurity            ClassID = 0x98
	ClassSecurity2           ClassID = 0x9F
	ClassSoundSwitch         ClassID = 0x79
	ClassEntryControl        ClassID = 0x6F
	ClassSupervision         ClassID = 0x6C
	ClassTransportService    ClassID = 0x55
	ClassCRC16Encap          ClassID = 0x56
	ClassManufacturerProp    ClassID = 0x91
)

var classNames = map[ClassID]string{
	ClassNoOperation:         "No Operation",
	ClassBasic:               "Basic",
	ClassApplicationStatus:   "Application Status",
	ClassSwitchBinary:        "Binary Switch",
	ClassSwitchMultilevel:    "Multilevel Switch",
	ClassSwitchAll:           "All Switch",
	ClassSceneActivation:     "Scene Activation",
	ClassSensorBinary:        "Binary Sensor",
	ClassSensorMultilevel:    "Multilevel Sensor",
	ClassMeter:               "Meter",
	ClassColorSwitch:         "Color Switch",
	ClassThermostatMode:      "Thermostat Mode",
	ClassThermostatSetpoint:  "Thermostat Setpoint",
	ClassThermostatFanMode:   "Thermostat Fan Mode",
	ClassDoorLockLogging:     "Door Lock Logging",
	ClassBarrierOperator:     "Barrier Operator",
	ClassWindowCovering:      "Window Covering",
	ClassDoorLock:            "Door Lock",
	ClassUserCode:            "User Code",
	ClassHumidityControlSetp: "Humidity Control Setpoint",
	ClassConfiguration:       "Configuration",
	ClassNotification:        "Notification",
	ClassManufacturerSpec:    "Manufacturer Specific",
	ClassPowerlevel:          "Powerlevel",
	ClassProtection:          "Protection",
	ClassNodeNaming:          "Node Naming and Location",
	ClassFirmwareUpdate:      "Firmware Update Meta Data",
	ClassClock:               "Clock",
	ClassBattery:             "Battery",
	ClassWakeUp:              "Wake Up",
	ClassAssociation:         "Association",
	ClassVersion:             "Version",
	ClassIndicator:           "Indicator",
	ClassMultiChannelAssoc:   "Multi Channel Association",
	ClassMultiCommand:        "Multi Command",
	ClassAssociationGroupInf: "Association Group Information",
	ClassDeviceResetLocally:  "Device Reset Locally",
	ClassCentralScene:        "Central Scene",
	ClassZWavePlusInfo:       "Z-Wave Plus Info",
	ClassMultiChannel:        "Multi Channel",
	ClassSecurity:            "Security",
	ClassSecurity2:           "Security 2",
	ClassSoundSwitch:         "Sound Switch",
	ClassEntryControl:        "Entry Control",
	ClassSupervision:         "Supervision",
	ClassTransportService:    "Transport Service",
	ClassCRC16Encap:          "CRC-16 Encapsulation",
	ClassManufacturerProp:    "Manufacturer Proprietary",
}

// String returns the class name, or its hex id if unknown.
func (c ClassID) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint16(c))
}

// ParseClassID accepts a class name ("Meter", "binary switch") or a
// numeric id ("0x32", "50").
func ParseClassID(s string) (ClassID, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseUint(s, 0, 16); err == nil {
		id := ClassID(v)
		if !id.Valid() {
			return 0, fmt.Errorf("%w: class id %s", ErrInvalidValue, s)
		}
		return id, nil
	}
	want := normalizeName(s)
	for id, name := range classNames {
		if normalizeName(name) == want {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown class %q", ErrInvalidValue, s)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), ""))
}

// IsExtended reports whether the id uses the two-byte wire form.
func (c ClassID) IsExtended() bool {
	return c >= ExtendedClassMarkerMin<<8
}

// Valid reports whether the id has a wire representation: any one-byte id,
// or an extended id.
func (c ClassID) Valid() bool {
	return c <= 0xFF || c.IsExtended()
}

// headerLen is the number of bytes used by class id plus command id.
func (c ClassID) headerLen() int {
	if c.IsExtended() {
		return 3
	}
	return 2
}

// String returns the command id in hex. Command names live with their class.
func (c CommandID) String() string {
	return fmt.Sprintf("0x%02X", uint8(c))
}
