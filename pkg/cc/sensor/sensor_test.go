package sensor

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/cc/cctest"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

type fakeSensor struct {
	types  []Type
	scales map[Type][]uint8
	values map[Type]float64
}

func (n *fakeSensor) respond(req wire.Frame) []wire.Frame {
	switch req.CommandID() {
	case CmdSupportedSensorGet:
		return []wire.Frame{BuildSupportedSensorReport(n.types)}
	case CmdSupportedScaleGet:
		t := Type(req.Params()[0])
		return []wire.Frame{BuildSupportedScaleReport(t, n.scales[t])}
	case CmdGet:
		t, scale, ok := ParseGet(req)
		if !ok {
			t, scale = n.types[0], 0
		}
		f, _ := BuildReport(t, scale, n.values[t])
		return []wire.Frame{f}
	}
	return nil
}

func newSensor(node *fakeSensor, version uint8) (*cctest.Host, *Sensor) {
	host := cctest.NewHost(9)
	s := New(host)
	s.SetVersion(version)
	host.Add(s)
	host.Respond(node.respond)
	return host, s
}

func TestSupportedSensorReport(t *testing.T) {
	f := wire.NewFrame(wire.ClassSensorMultilevel, CmdSupportedSensorReport, []byte{0x01})
	types, err := ParseSupportedSensorReport(f)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(types, []Type{TypeAirTemperature}) {
		t.Errorf("types = %v", types)
	}

	f = BuildSupportedSensorReport([]Type{TypeAirTemperature, TypeHumidity, TypeCO2Level})
	if got := f.Params(); len(got) != 3 || got[0] != 0x11 || got[2] != 0x01 {
		t.Errorf("mask = % X", got)
	}
}

func TestParseReport(t *testing.T) {
	// air temperature, precision 1, scale 0 (Celsius), size 2, 21.3
	f := wire.NewFrame(wire.ClassSensorMultilevel, CmdReport, []byte{0x01, 0x22, 0x00, 0xD5})
	r, err := ParseReport(f)
	if err != nil {
		t.Fatal(err)
	}
	if r.Type != TypeAirTemperature || r.Value != 21.3 || r.Scale != 0 || r.Precision != 1 || r.Size != 2 {
		t.Errorf("got %+v", r)
	}

	unknown := wire.NewFrame(wire.ClassSensorMultilevel, CmdReport, []byte{0xEE, 0x01, 0x05})
	r, err = ParseReport(unknown)
	if err != nil {
		t.Fatal(err)
	}
	if r.Type != 0xEE {
		t.Errorf("reserved type not preserved: %v", r.Type)
	}

	_, err = ParseReport(wire.NewFrame(wire.ClassSensorMultilevel, CmdReport, []byte{0x01, 0x22, 0x00}))
	if !errors.Is(err, wire.ErrMalformedPayload) {
		t.Errorf("error = %v", err)
	}
}

func TestSensorInterview(t *testing.T) {
	node := &fakeSensor{
		types:  []Type{TypeAirTemperature, TypeHumidity},
		scales: map[Type][]uint8{TypeAirTemperature: {0, 1}, TypeHumidity: {0}},
		values: map[Type]float64{TypeAirTemperature: 21.5, TypeHumidity: 40},
	}
	_, s := newSensor(node, 5)

	if err := s.Interview(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.Types(), node.types) {
		t.Errorf("types = %v", s.Types())
	}
	if !slices.Equal(s.Scales(TypeAirTemperature), []uint8{0, 1}) {
		t.Errorf("scales = %v", s.Scales(TypeAirTemperature))
	}
	if r, _ := s.Value(TypeHumidity); r == nil || r.Value != 40 {
		t.Errorf("humidity = %+v", r)
	}
}

func TestGetValueErrors(t *testing.T) {
	node := &fakeSensor{
		types:  []Type{TypeAirTemperature},
		scales: map[Type][]uint8{TypeAirTemperature: {0}},
	}
	host, s := newSensor(node, 5)
	ctx := context.Background()

	if _, err := s.GetValue(ctx, TypeAirTemperature, 0); !errors.Is(err, cc.ErrCommandNotReady) {
		t.Errorf("before discovery: %v", err)
	}
	if len(host.Sent()) != 0 {
		t.Error("frame sent before discovery")
	}

	if _, err := s.GetSupportedTypes(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetValue(ctx, TypeAirTemperature, 0); !errors.Is(err, cc.ErrCommandNotReady) {
		t.Errorf("before scales: %v", err)
	}
	if _, err := s.GetValue(ctx, TypeLuminance, 0); !errors.Is(err, cc.ErrInvalidArgument) {
		t.Errorf("unsupported type: %v", err)
	}

	if _, err := s.GetSupportedScales(ctx, TypeAirTemperature); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetValue(ctx, TypeAirTemperature, 2); !errors.Is(err, cc.ErrInvalidArgument) {
		t.Errorf("unsupported scale: %v", err)
	}
	if _, err := s.GetValue(ctx, TypeAirTemperature, 0); err != nil {
		t.Errorf("valid request failed: %v", err)
	}
}

func TestSensorVersion4(t *testing.T) {
	node := &fakeSensor{types: []Type{TypePower}, values: map[Type]float64{TypePower: 120}}
	host, s := newSensor(node, 4)

	if err := s.Interview(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sent := host.Sent(); len(sent) != 1 || len(sent[0].Params()) != 0 {
		t.Errorf("sent %v", sent)
	}
	if r, _ := s.Value(TypePower); r == nil || r.Value != 120 {
		t.Errorf("power = %+v", r)
	}
}

func TestSensorReconcileScenario(t *testing.T) {
	host := cctest.NewHost(9)
	s := New(host)
	s.SetVersion(5)
	host.Add(s)

	host.Inject(BuildSupportedSensorReport([]Type{TypeAirTemperature, TypeLuminance}))
	report, _ := BuildReport(TypeAirTemperature, 0, 19.5)
	host.Inject(report)

	if r, _ := s.Value(TypeAirTemperature); r == nil || r.Value != 19.5 {
		t.Fatalf("A = %+v", r)
	}
	if r, ok := s.Value(TypeLuminance); !ok || r != nil {
		t.Fatalf("B = %+v, %v", r, ok)
	}

	host.Inject(BuildSupportedSensorReport([]Type{TypeLuminance, TypeHumidity}))

	if got := s.Tracked(); !slices.Equal(got, []Type{TypeLuminance, TypeHumidity}) {
		t.Errorf("tracked = %v", got)
	}
	if _, ok := s.Value(TypeAirTemperature); ok {
		t.Error("A should be absent")
	}
	if r, ok := s.Value(TypeHumidity); !ok || r != nil {
		t.Errorf("C = %+v, %v", r, ok)
	}
}

func TestGetValueWaitsForRequestedScale(t *testing.T) {
	node := &fakeSensor{
		types:  []Type{TypeAirTemperature},
		scales: map[Type][]uint8{TypeAirTemperature: {0, 1}},
	}
	host, s := newSensor(node, 5)
	ctx := context.Background()
	if _, err := s.GetSupportedTypes(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSupportedScales(ctx, TypeAirTemperature); err != nil {
		t.Fatal(err)
	}

	host.Respond(func(req wire.Frame) []wire.Frame {
		celsius, _ := BuildReport(TypeAirTemperature, 0, 21)
		fahrenheit, _ := BuildReport(TypeAirTemperature, 1, 70)
		return []wire.Frame{celsius, fahrenheit}
	})
	r, err := s.GetValue(ctx, TypeAirTemperature, 1)
	if err != nil {
		t.Fatal(err)
	}
	if r.Scale != 1 || r.Value != 70 {
		t.Errorf("reading = %+v", r)
	}
}

func TestUnsupportedTypeReportNotTracked(t *testing.T) {
	host := cctest.NewHost(9)
	s := New(host)
	s.SetVersion(5)
	host.Add(s)

	host.Inject(BuildSupportedSensorReport([]Type{TypeAirTemperature}))
	report, _ := BuildReport(TypeHumidity, 0, 55)
	host.Inject(report)

	if _, ok := s.Value(TypeHumidity); ok {
		t.Error("humidity tracked outside supported set")
	}
	if got := s.Tracked(); !slices.Equal(got, []Type{TypeAirTemperature}) {
		t.Errorf("tracked = %v", got)
	}
}
