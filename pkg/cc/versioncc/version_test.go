package versioncc

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/cc/cctest"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

func u8(v uint8) *uint8 { return &v }

type fakeNode struct {
	classVersions map[wire.ClassID]uint8
	info          Info
	caps          Capabilities
	software      SoftwareInfo
}

func (n *fakeNode) respond(req wire.Frame) []wire.Frame {
	switch req.CommandID() {
	case CmdCommandClassGet:
		id, err := ParseCommandClassGet(req)
		if err != nil {
			return nil
		}
		return []wire.Frame{BuildCommandClassReport(id, n.classVersions[id])}
	case CmdGet:
		return []wire.Frame{BuildReport(n.info)}
	case CmdCapabilitiesGet:
		return []wire.Frame{BuildCapabilitiesReport(n.caps)}
	case CmdZWaveSoftwareGet:
		return []wire.Frame{BuildSoftwareReport(n.software)}
	}
	return nil
}

func setup(node *fakeNode) (*cctest.Host, *Version, *cc.Generic) {
	host := cctest.NewHost(5)
	v := New(host)
	battery := cc.NewGeneric(wire.ClassBattery, host)
	host.Add(v)
	host.Add(battery)
	host.Respond(node.respond)
	return host, v, battery
}

func TestInterviewVersion3(t *testing.T) {
	node := &fakeNode{
		classVersions: map[wire.ClassID]uint8{wire.ClassVersion: 3, wire.ClassBattery: 2},
		info: Info{
			LibraryType:     LibraryEnhancedSlave,
			Protocol:        Pair{7, 16},
			Firmware:        []Pair{{1, 2}, {3, 4}},
			HardwareVersion: u8(9),
		},
		caps:     Capabilities{Version: true, CommandClass: true, ZWaveSoftware: true},
		software: SoftwareInfo{SDK: Triple{7, 16, 3}, ApplicationBuild: 300},
	}
	host, v, battery := setup(node)

	if err := v.Interview(context.Background()); err != nil {
		t.Fatalf("Interview failed: %v", err)
	}

	if ver, known := v.Version(); !known || ver != 3 {
		t.Errorf("own version = %d (known %v), want 3", ver, known)
	}
	if ver, known := battery.Version(); !known || ver != 2 {
		t.Errorf("battery version = %d (known %v), want 2", ver, known)
	}
	if !reflect.DeepEqual(v.Info(), &node.info) {
		t.Errorf("Info = %+v, want %+v", v.Info(), node.info)
	}
	if v.Software() == nil || v.Software().SDK != (Triple{7, 16, 3}) || v.Software().ApplicationBuild != 300 {
		t.Errorf("Software = %+v", v.Software())
	}
	if got := v.IsSupported(CmdZWaveSoftwareGet); got != cc.SupportYes {
		t.Errorf("ZWS support = %v", got)
	}

	var cmds []wire.CommandID
	for _, f := range host.Sent() {
		cmds = append(cmds, f.CommandID())
	}
	want := []wire.CommandID{CmdCommandClassGet, CmdCommandClassGet, CmdGet, CmdCapabilitiesGet, CmdZWaveSoftwareGet}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("sent %v, want %v", cmds, want)
	}
}

func TestInterviewVersion1SkipsCapabilities(t *testing.T) {
	node := &fakeNode{
		classVersions: map[wire.ClassID]uint8{wire.ClassVersion: 1, wire.ClassBattery: 1},
		info:          Info{LibraryType: LibrarySlave, Protocol: Pair{4, 5}, Firmware: []Pair{{1, 0}}},
	}
	host, v, _ := setup(node)

	if err := v.Interview(context.Background()); err != nil {
		t.Fatalf("Interview failed: %v", err)
	}
	for _, f := range host.Sent() {
		if f.CommandID() == CmdCapabilitiesGet || f.CommandID() == CmdZWaveSoftwareGet {
			t.Errorf("unexpected %v on version 1 node", f)
		}
	}
	if v.Info().HardwareVersion != nil {
		t.Error("v1 report should not carry a hardware version")
	}
	if _, err := v.GetCapabilities(context.Background()); !errors.Is(err, cc.ErrCommandNotSupported) {
		t.Errorf("GetCapabilities on v1 = %v", err)
	}
}

func TestSoftwareGatedOnCapability(t *testing.T) {
	node := &fakeNode{
		classVersions: map[wire.ClassID]uint8{wire.ClassVersion: 3},
		info:          Info{Firmware: []Pair{{1, 0}}},
		caps:          Capabilities{Version: true, CommandClass: true},
	}
	host, v, _ := setup(node)

	if err := v.Interview(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := v.IsSupported(CmdZWaveSoftwareGet); got != cc.SupportNo {
		t.Errorf("ZWS support = %v, want NO", got)
	}
	for _, f := range host.Sent() {
		if f.CommandID() == CmdZWaveSoftwareGet {
			t.Error("software get sent without capability")
		}
	}
}

func TestCommandClassReportCorrelation(t *testing.T) {
	host, v, battery := setup(&fakeNode{})
	// Reply with an unrelated class first, then the requested one.
	host.Respond(func(req wire.Frame) []wire.Frame {
		return []wire.Frame{
			BuildCommandClassReport(wire.ClassVersion, 2),
			BuildCommandClassReport(wire.ClassBattery, 3),
		}
	})

	ver, err := v.GetCommandClassVersion(context.Background(), wire.ClassBattery)
	if err != nil {
		t.Fatal(err)
	}
	if ver != 3 {
		t.Errorf("version = %d, want 3", ver)
	}
	// The uncorrelated report still updated state.
	if own, known := v.Version(); !known || own != 2 {
		t.Errorf("own version = %d, %v", own, known)
	}
	if got, _ := battery.Version(); got != 3 {
		t.Errorf("battery version = %d", got)
	}
}

func TestParseReportMalformed(t *testing.T) {
	tests := []struct {
		name   string
		params []byte
	}{
		{"short", []byte{0x03, 0x07, 0x10}},
		{"targets overrun", []byte{0x03, 0x07, 0x10, 0x01, 0x00, 0x02, 0x02, 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReport(wire.NewFrame(wire.ClassVersion, CmdReport, tt.params))
			if !errors.Is(err, wire.ErrMalformedPayload) {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestExtendedClassVersion(t *testing.T) {
	f := BuildCommandClassReport(wire.ClassID(0xF105), 4)
	id, ver, err := ParseCommandClassReport(f)
	if err != nil {
		t.Fatal(err)
	}
	if id != 0xF105 || ver != 4 {
		t.Errorf("got %v v%d", id, ver)
	}
}
