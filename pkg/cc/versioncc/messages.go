package versioncc

import (
	"fmt"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Command ids.
const (
	CmdGet                 wire.CommandID = 0x11
	CmdReport              wire.CommandID = 0x12
	CmdCommandClassGet     wire.CommandID = 0x13
	CmdCommandClassReport  wire.CommandID = 0x14
	CmdCapabilitiesGet     wire.CommandID = 0x15
	CmdCapabilitiesReport  wire.CommandID = 0x16
	CmdZWaveSoftwareGet    wire.CommandID = 0x17
	CmdZWaveSoftwareReport wire.CommandID = 0x18
)

// Capability flag names.
const (
	CapVersion       = "version"
	CapCommandClass  = "commandClass"
	CapZWaveSoftware = "zwaveSoftware"
)

// Capability report bits.
const (
	capBitVersion       = 0x01
	capBitCommandClass  = 0x02
	capBitZWaveSoftware = 0x04
)

// LibraryType is the protocol library flavor of the node.
type LibraryType uint8

// Library types.
const (
	LibraryStaticController LibraryType = 0x01
	LibraryController       LibraryType = 0x02
	LibraryEnhancedSlave    LibraryType = 0x03
	LibrarySlave            LibraryType = 0x04
	LibraryInstaller        LibraryType = 0x05
	LibraryRoutingSlave     LibraryType = 0x06
	LibraryBridgeController LibraryType = 0x07
	LibraryDeviceUnderTest  LibraryType = 0x08
	LibraryAVRemote         LibraryType = 0x0A
	LibraryAVDevice         LibraryType = 0x0B
)

// String returns the library type name.
func (l LibraryType) String() string {
	switch l {
	case LibraryStaticController:
		return "STATIC_CONTROLLER"
	case LibraryController:
		return "CONTROLLER"
	case LibraryEnhancedSlave:
		return "ENHANCED_SLAVE"
	case LibrarySlave:
		return "SLAVE"
	case LibraryInstaller:
		return "INSTALLER"
	case LibraryRoutingSlave:
		return "ROUTING_SLAVE"
	case LibraryBridgeController:
		return "BRIDGE_CONTROLLER"
	case LibraryDeviceUnderTest:
		return "DEVICE_UNDER_TEST"
	case LibraryAVRemote:
		return "AV_REMOTE"
	case LibraryAVDevice:
		return "AV_DEVICE"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(l))
	}
}

// Pair is a major.minor version.
type Pair struct {
	Major uint8
	Minor uint8
}

// String returns "major.minor".
func (p Pair) String() string {
	return fmt.Sprintf("%d.%d", p.Major, p.Minor)
}

// Triple is a major.minor.patch version.
type Triple struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// String returns "major.minor.patch".
func (t Triple) String() string {
	return fmt.Sprintf("%d.%d.%d", t.Major, t.Minor, t.Patch)
}

// Info is the content of a Version Report.
type Info struct {
	LibraryType LibraryType
	Protocol    Pair

	// Firmware holds firmware 0 followed by any additional targets.
	Firmware []Pair

	// HardwareVersion is present from version 2.
	HardwareVersion *uint8
}

// Capabilities is the content of a Capabilities Report.
type Capabilities struct {
	Version       bool
	CommandClass  bool
	ZWaveSoftware bool
}

// SoftwareInfo is the content of a Z-Wave Software Report.
type SoftwareInfo struct {
	SDK                Triple
	AppFramework       Triple
	AppFrameworkBuild  uint16
	HostInterface      Triple
	HostInterfaceBuild uint16
	ZWaveProtocol      Triple
	ZWaveProtocolBuild uint16
	Application        Triple
	ApplicationBuild   uint16
}

const softwareReportLen = 23

// ParseReport decodes a Version Report.
func ParseReport(f wire.Frame) (Info, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 5, "version report"); err != nil {
		return Info{}, err
	}

	info := Info{
		LibraryType: LibraryType(p[0]),
		Protocol:    Pair{p[1], p[2]},
		Firmware:    []Pair{{p[3], p[4]}},
	}
	if len(p) < 7 {
		return info, nil
	}

	hw := p[5]
	info.HardwareVersion = &hw
	targets := int(p[6])
	rest := p[7:]
	if err := wire.CheckLength(rest, 2*targets, "firmware targets"); err != nil {
		return Info{}, err
	}
	for i := 0; i < targets; i++ {
		info.Firmware = append(info.Firmware, Pair{rest[2*i], rest[2*i+1]})
	}
	return info, nil
}

// BuildReport encodes a Version Report. The version 2 fields are included
// when HardwareVersion is set.
func BuildReport(info Info) wire.Frame {
	fw0 := Pair{}
	if len(info.Firmware) > 0 {
		fw0 = info.Firmware[0]
	}
	params := []byte{byte(info.LibraryType), info.Protocol.Major, info.Protocol.Minor, fw0.Major, fw0.Minor}
	if info.HardwareVersion != nil {
		extra := info.Firmware
		if len(extra) > 0 {
			extra = extra[1:]
		}
		params = append(params, *info.HardwareVersion, byte(len(extra)))
		for _, fw := range extra {
			params = append(params, fw.Major, fw.Minor)
		}
	}
	return wire.NewFrame(wire.ClassVersion, CmdReport, params)
}

// classBytes encodes a class id in its wire form.
func classBytes(id wire.ClassID) []byte {
	if id.IsExtended() {
		return []byte{byte(id >> 8), byte(id)}
	}
	return []byte{byte(id)}
}

// BuildCommandClassGet encodes a Command Class Get for id.
func BuildCommandClassGet(id wire.ClassID) wire.Frame {
	return wire.NewFrame(wire.ClassVersion, CmdCommandClassGet, classBytes(id))
}

// ParseCommandClassGet decodes the requested class id.
func ParseCommandClassGet(f wire.Frame) (wire.ClassID, error) {
	id, _, err := readClassID(f.Params())
	return id, err
}

// ParseCommandClassReport decodes a Command Class Report.
func ParseCommandClassReport(f wire.Frame) (wire.ClassID, uint8, error) {
	id, n, err := readClassID(f.Params())
	if err != nil {
		return 0, 0, err
	}
	rest := f.Params()[n:]
	if err := wire.CheckLength(rest, 1, "class version"); err != nil {
		return 0, 0, err
	}
	return id, rest[0], nil
}

// BuildCommandClassReport encodes a Command Class Report.
func BuildCommandClassReport(id wire.ClassID, version uint8) wire.Frame {
	return wire.NewFrame(wire.ClassVersion, CmdCommandClassReport, append(classBytes(id), version))
}

func readClassID(p []byte) (wire.ClassID, int, error) {
	if err := wire.CheckLength(p, 1, "class id"); err != nil {
		return 0, 0, err
	}
	if p[0] < wire.ExtendedClassMarkerMin {
		return wire.ClassID(p[0]), 1, nil
	}
	if err := wire.CheckLength(p, 2, "extended class id"); err != nil {
		return 0, 0, err
	}
	return wire.ClassID(p[0])<<8 | wire.ClassID(p[1]), 2, nil
}

// ParseCapabilitiesReport decodes a Capabilities Report.
func ParseCapabilitiesReport(f wire.Frame) (Capabilities, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "capabilities"); err != nil {
		return Capabilities{}, err
	}
	return Capabilities{
		Version:       p[0]&capBitVersion != 0,
		CommandClass:  p[0]&capBitCommandClass != 0,
		ZWaveSoftware: p[0]&capBitZWaveSoftware != 0,
	}, nil
}

// BuildCapabilitiesReport encodes a Capabilities Report.
func BuildCapabilitiesReport(c Capabilities) wire.Frame {
	var b byte
	if c.Version {
		b |= capBitVersion
	}
	if c.CommandClass {
		b |= capBitCommandClass
	}
	if c.ZWaveSoftware {
		b |= capBitZWaveSoftware
	}
	return wire.NewFrame(wire.ClassVersion, CmdCapabilitiesReport, []byte{b})
}

// ParseSoftwareReport decodes a Z-Wave Software Report.
func ParseSoftwareReport(f wire.Frame) (SoftwareInfo, error) {
	p := f.Params()
	if err := wire.CheckLength(p, softwareReportLen, "software report"); err != nil {
		return SoftwareInfo{}, err
	}
	triple := func(o int) Triple { return Triple{p[o], p[o+1], p[o+2]} }
	build := func(o int) uint16 { return uint16(p[o])<<8 | uint16(p[o+1]) }

	return SoftwareInfo{
		SDK:                triple(0),
		AppFramework:       triple(3),
		AppFrameworkBuild:  build(6),
		HostInterface:      triple(8),
		HostInterfaceBuild: build(11),
		ZWaveProtocol:      triple(13),
		ZWaveProtocolBuild: build(16),
		Application:        triple(18),
		ApplicationBuild:   build(21),
	}, nil
}

// BuildSoftwareReport encodes a Z-Wave Software Report.
func BuildSoftwareReport(s SoftwareInfo) wire.Frame {
	p := make([]byte, 0, softwareReportLen)
	triple := func(t Triple) { p = append(p, t.Major, t.Minor, t.Patch) }
	build := func(b uint16) { p = append(p, byte(b>>8), byte(b)) }

	triple(s.SDK)
	triple(s.AppFramework)
	build(s.AppFrameworkBuild)
	triple(s.HostInterface)
	build(s.HostInterfaceBuild)
	triple(s.ZWaveProtocol)
	build(s.ZWaveProtocolBuild)
	triple(s.Application)
	build(s.ApplicationBuild)
	return wire.NewFrame(wire.ClassVersion, CmdZWaveSoftwareReport, p)
}
