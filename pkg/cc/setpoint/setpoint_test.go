package setpoint

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/cc/cctest"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

func TestSupportedReportLookupTable(t *testing.T) {
	tests := []struct {
		name string
		mask []byte
		want []Type
	}{
		{"heating and cooling", []byte{0x06}, []Type{TypeHeating, TypeCooling}},
		{"bit 3 is furnace", []byte{0x08}, []Type{TypeFurnace}},
		{"second byte", []byte{0x02, 0x08}, []Type{TypeHeating, TypeFullPower}},
		{"bits past table ignored", []byte{0x00, 0xF0}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSupportedReport(wire.NewFrame(wire.ClassThermostatSetpoint, CmdSupportedReport, tt.mask))
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	f, err := BuildSupportedReport([]Type{TypeHeating, TypeFurnace, TypeAwayCooling})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(f.Params(), []byte{0x0A, 0x04}) {
		t.Errorf("mask = % X", f.Params())
	}
	if _, err := BuildSupportedReport([]Type{0x04}); !errors.Is(err, wire.ErrInvalidValue) {
		t.Errorf("unused type error = %v", err)
	}
}

func TestBuildSetCanonical(t *testing.T) {
	f, err := BuildSet(TypeHeating, Setpoint{Value: 12.5, Scale: ScaleCelsius})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x43, 0x01, 0x01, 0x21, 0x7D}
	if !bytes.Equal(f.Bytes(), want) {
		t.Errorf("Set = % X, want % X", f.Bytes(), want)
	}

	typ, sp, err := ParseSet(f)
	if err != nil {
		t.Fatal(err)
	}
	if typ != TypeHeating || sp.Value != 12.5 || sp.Scale != ScaleCelsius {
		t.Errorf("parsed %v %+v", typ, sp)
	}
}

func TestCapabilitiesReport(t *testing.T) {
	in := Capabilities{Min: Setpoint{Value: 5}, Max: Setpoint{Value: 30.5}}
	f, err := BuildCapabilitiesReport(TypeHeating, in)
	if err != nil {
		t.Fatal(err)
	}
	typ, c, err := ParseCapabilitiesReport(f)
	if err != nil {
		t.Fatal(err)
	}
	if typ != TypeHeating || c != in {
		t.Errorf("got %v %+v", typ, c)
	}

	short := wire.NewFrame(wire.ClassThermostatSetpoint, CmdCapabilitiesReport, f.Params()[:3])
	if _, _, err := ParseCapabilitiesReport(short); !errors.Is(err, wire.ErrMalformedPayload) {
		t.Errorf("error = %v", err)
	}
}

type fakeThermostat struct {
	types  []Type
	values map[Type]Setpoint
	limits map[Type]Capabilities
}

func (n *fakeThermostat) respond(req wire.Frame) []wire.Frame {
	switch req.CommandID() {
	case CmdSupportedGet:
		f, _ := BuildSupportedReport(n.types)
		return []wire.Frame{f}
	case CmdGet:
		typ := Type(req.Params()[0])
		f, _ := BuildReport(typ, n.values[typ])
		return []wire.Frame{f}
	case CmdSet:
		typ, sp, err := ParseSet(req)
		if err == nil {
			n.values[typ] = sp
		}
	case CmdCapabilitiesGet:
		typ := Type(req.Params()[0])
		f, _ := BuildCapabilitiesReport(typ, n.limits[typ])
		return []wire.Frame{f}
	}
	return nil
}

func newThermostat(node *fakeThermostat, version uint8) (*cctest.Host, *Thermostat) {
	host := cctest.NewHost(12)
	th := New(host)
	th.SetVersion(version)
	host.Add(th)
	host.Respond(node.respond)
	return host, th
}

func TestThermostatInterviewAndSet(t *testing.T) {
	node := &fakeThermostat{
		types:  []Type{TypeHeating, TypeCooling},
		values: map[Type]Setpoint{TypeHeating: {Value: 21}, TypeCooling: {Value: 25.5}},
		limits: map[Type]Capabilities{
			TypeHeating: {Min: Setpoint{Value: 5}, Max: Setpoint{Value: 28}},
			TypeCooling: {Min: Setpoint{Value: 18}, Max: Setpoint{Value: 32}},
		},
	}
	_, th := newThermostat(node, 3)
	ctx := context.Background()

	if err := th.Interview(ctx); err != nil {
		t.Fatal(err)
	}
	if v, _ := th.Value(TypeCooling); v == nil || v.Value != 25.5 {
		t.Errorf("cooling = %+v", v)
	}
	if c, ok := th.Limits(TypeHeating); !ok || c.Max.Value != 28 {
		t.Errorf("heating limits = %+v", c)
	}

	got, err := th.Set(ctx, TypeHeating, Setpoint{Value: 22.5})
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != 22.5 {
		t.Errorf("read back %v", got.Value)
	}

	if _, err := th.Set(ctx, TypeHeating, Setpoint{Value: 40}); !errors.Is(err, cc.ErrInvalidArgument) {
		t.Errorf("out of range: %v", err)
	}
	if _, err := th.Set(ctx, TypeFurnace, Setpoint{Value: 20}); !errors.Is(err, cc.ErrInvalidArgument) {
		t.Errorf("unsupported type: %v", err)
	}
}

func TestThermostatVersion1SkipsCapabilities(t *testing.T) {
	node := &fakeThermostat{
		types:  []Type{TypeHeating},
		values: map[Type]Setpoint{TypeHeating: {Value: 20}},
	}
	host, th := newThermostat(node, 1)

	if err := th.Interview(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, f := range host.Sent() {
		if f.CommandID() == CmdCapabilitiesGet {
			t.Error("capabilities requested on version 1")
		}
	}
}

func TestThermostatReconcile(t *testing.T) {
	node := &fakeThermostat{
		types:  []Type{TypeHeating, TypeCooling},
		values: map[Type]Setpoint{TypeHeating: {Value: 20}, TypeCooling: {Value: 24}},
	}
	host, th := newThermostat(node, 2)
	if err := th.Interview(context.Background()); err != nil {
		t.Fatal(err)
	}

	f, _ := BuildSupportedReport([]Type{TypeCooling, TypeAutoChangeover})
	host.Inject(f)

	if got := th.Tracked(); !slices.Equal(got, []Type{TypeCooling, TypeAutoChangeover}) {
		t.Errorf("tracked = %v", got)
	}
	if v, _ := th.Value(TypeCooling); v == nil || v.Value != 24 {
		t.Errorf("cooling = %+v", v)
	}
	if v, ok := th.Value(TypeAutoChangeover); !ok || v != nil {
		t.Errorf("auto = %+v", v)
	}
}

func TestThermostatReconcileLimits(t *testing.T) {
	node := &fakeThermostat{
		types:  []Type{TypeHeating, TypeCooling},
		values: map[Type]Setpoint{TypeHeating: {Value: 20}, TypeCooling: {Value: 24}},
		limits: map[Type]Capabilities{
			TypeHeating: {Min: Setpoint{Value: 5}, Max: Setpoint{Value: 28}},
			TypeCooling: {Min: Setpoint{Value: 18}, Max: Setpoint{Value: 32}},
		},
	}
	host, th := newThermostat(node, 3)
	if err := th.Interview(context.Background()); err != nil {
		t.Fatal(err)
	}

	f, _ := BuildSupportedReport([]Type{TypeCooling, TypeAutoChangeover})
	host.Inject(f)

	if _, ok := th.Limits(TypeHeating); ok {
		t.Error("heating limits kept after type was removed")
	}
	if _, ok := th.Limits(TypeAutoChangeover); ok {
		t.Error("limits reported for a type never queried")
	}
	if c, ok := th.Limits(TypeCooling); !ok || c.Max.Value != 32 {
		t.Errorf("cooling limits = %+v, %v", c, ok)
	}

	report, _ := BuildReport(TypeHeating, Setpoint{Value: 30})
	host.Inject(report)
	caps, _ := BuildCapabilitiesReport(TypeHeating, Capabilities{Max: Setpoint{Value: 40}})
	host.Inject(caps)

	if _, ok := th.Value(TypeHeating); ok {
		t.Error("heating value tracked outside supported set")
	}
	if _, ok := th.Limits(TypeHeating); ok {
		t.Error("heating limits tracked outside supported set")
	}
}
