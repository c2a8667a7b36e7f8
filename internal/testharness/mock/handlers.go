package mock

import (
	"slices"

	"github.com/meshcc/meshcc-go/pkg/cc/association"
	"github.com/meshcc/meshcc-go/pkg/cc/battery"
	"github.com/meshcc/meshcc-go/pkg/cc/meter"
	"github.com/meshcc/meshcc-go/pkg/cc/naming"
	"github.com/meshcc/meshcc-go/pkg/cc/sensor"
	"github.com/meshcc/meshcc-go/pkg/cc/setpoint"
	"github.com/meshcc/meshcc-go/pkg/cc/switchbinary"
	"github.com/meshcc/meshcc-go/pkg/cc/versioncc"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// handle produces the built-in replies for f. Classes the endpoint does
// not declare are ignored, as a real node would.
func (d *Device) handle(endpoint uint8, f wire.Frame) []wire.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()

	ep, ok := d.Endpoints[endpoint]
	if !ok || d.muted[f.ClassID()] {
		return nil
	}
	if _, ok := ep.Classes[f.ClassID()]; !ok {
		return nil
	}

	switch f.ClassID() {
	case wire.ClassVersion:
		return d.handleVersion(ep, f)
	case wire.ClassBattery:
		return ep.handleBattery(f)
	case wire.ClassMeter:
		return ep.handleMeter(f)
	case wire.ClassSensorMultilevel:
		return ep.handleSensor(f)
	case wire.ClassThermostatSetpoint:
		return ep.handleSetpoint(f)
	case wire.ClassAssociation:
		return ep.handleAssociation(f)
	case wire.ClassNodeNaming:
		return ep.handleNaming(f)
	case wire.ClassSwitchBinary:
		return ep.handleSwitch(f)
	}
	return nil
}

func one(f wire.Frame, err error) []wire.Frame {
	if err != nil {
		return nil
	}
	return []wire.Frame{f}
}

func (d *Device) handleVersion(ep *Endpoint, f wire.Frame) []wire.Frame {
	switch f.CommandID() {
	case versioncc.CmdGet:
		return []wire.Frame{versioncc.BuildReport(d.Info)}
	case versioncc.CmdCommandClassGet:
		id, err := versioncc.ParseCommandClassGet(f)
		if err != nil {
			return nil
		}
		return []wire.Frame{versioncc.BuildCommandClassReport(id, ep.Classes[id])}
	case versioncc.CmdCapabilitiesGet:
		return []wire.Frame{versioncc.BuildCapabilitiesReport(d.Capabilities)}
	case versioncc.CmdZWaveSoftwareGet:
		return []wire.Frame{versioncc.BuildSoftwareReport(d.Software)}
	}
	return nil
}

func (ep *Endpoint) handleBattery(f wire.Frame) []wire.Frame {
	switch f.CommandID() {
	case battery.CmdGet:
		if ep.Battery == nil {
			return nil
		}
		return []wire.Frame{battery.BuildReport(*ep.Battery)}
	case battery.CmdHealthGet:
		if ep.Health == nil {
			return nil
		}
		return one(battery.BuildHealthReport(*ep.Health))
	}
	return nil
}

func (ep *Endpoint) handleMeter(f wire.Frame) []wire.Frame {
	m := ep.Meter
	if m == nil {
		return nil
	}
	switch f.CommandID() {
	case meter.CmdSupportedGet:
		return one(meter.BuildSupportedReport(m.Supported))
	case meter.CmdGet:
		scale, rate := meter.ParseGet(f)
		if rate == 0 {
			rate = m.Supported.Rate
		}
		return one(meter.BuildReport(meter.Reading{
			Type:  m.Supported.Type,
			Rate:  rate,
			Scale: scale,
			Value: m.Values[scale],
		}))
	case meter.CmdReset:
		if m.Supported.ResetAllowed {
			clear(m.Values)
		}
	}
	return nil
}

func (ep *Endpoint) handleSensor(f wire.Frame) []wire.Frame {
	switch f.CommandID() {
	case sensor.CmdSupportedSensorGet:
		return []wire.Frame{sensor.BuildSupportedSensorReport(ep.sensorTypes())}
	case sensor.CmdSupportedScaleGet:
		if len(f.Params()) == 0 {
			return nil
		}
		t := sensor.Type(f.Params()[0])
		s, ok := ep.Sensors[t]
		if !ok {
			return nil
		}
		return []wire.Frame{sensor.BuildSupportedScaleReport(t, s.Scales)}
	case sensor.CmdGet:
		t, scale, ok := sensor.ParseGet(f)
		if !ok {
			types := ep.sensorTypes()
			if len(types) == 0 {
				return nil
			}
			t, scale = types[0], 0
		}
		s, found := ep.Sensors[t]
		if !found {
			return nil
		}
		if !slices.Contains(s.Scales, scale) && len(s.Scales) > 0 {
			scale = s.Scales[0]
		}
		return one(sensor.BuildReport(t, scale, s.Value))
	}
	return nil
}

func (ep *Endpoint) sensorTypes() []sensor.Type {
	types := make([]sensor.Type, 0, len(ep.Sensors))
	for t := range ep.Sensors {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

func (ep *Endpoint) handleSetpoint(f wire.Frame) []wire.Frame {
	switch f.CommandID() {
	case setpoint.CmdSupportedGet:
		types := make([]setpoint.Type, 0, len(ep.Setpoints))
		for t := range ep.Setpoints {
			types = append(types, t)
		}
		slices.Sort(types)
		return one(setpoint.BuildSupportedReport(types))
	case setpoint.CmdGet:
		if len(f.Params()) == 0 {
			return nil
		}
		t := setpoint.Type(f.Params()[0] & 0x0F)
		s, ok := ep.Setpoints[t]
		if !ok {
			return nil
		}
		return one(setpoint.BuildReport(t, s.Value))
	case setpoint.CmdSet:
		t, sp, err := setpoint.ParseSet(f)
		if err != nil {
			return nil
		}
		if s, ok := ep.Setpoints[t]; ok {
			if s.Limits == nil || s.Limits.Contains(sp) {
				s.Value = sp
			}
		}
	case setpoint.CmdCapabilitiesGet:
		if len(f.Params()) == 0 {
			return nil
		}
		t := setpoint.Type(f.Params()[0] & 0x0F)
		s, ok := ep.Setpoints[t]
		if !ok || s.Limits == nil {
			return nil
		}
		return one(setpoint.BuildCapabilitiesReport(t, *s.Limits))
	}
	return nil
}

func (ep *Endpoint) handleAssociation(f wire.Frame) []wire.Frame {
	switch f.CommandID() {
	case association.CmdGroupingsGet:
		return []wire.Frame{association.BuildGroupingsReport(uint8(len(ep.Groups)))}
	case association.CmdGet:
		if len(f.Params()) == 0 {
			return nil
		}
		g := f.Params()[0]
		if _, ok := ep.Groups[g]; !ok {
			g = 1
		}
		return association.SplitReport(g, ep.MaxNodes, ep.Groups[g], ep.PerFrame)
	case association.CmdSet:
		g, nodes, err := association.ParseSet(f)
		if err != nil {
			return nil
		}
		if _, ok := ep.Groups[g]; !ok {
			return nil
		}
		for _, id := range nodes {
			if !slices.Contains(ep.Groups[g], id) && len(ep.Groups[g]) < int(ep.MaxNodes) {
				ep.Groups[g] = append(ep.Groups[g], id)
			}
		}
	case association.CmdRemove:
		g, nodes, err := association.ParseSet(f)
		if err != nil {
			return nil
		}
		if len(nodes) == 0 {
			ep.Groups[g] = nil
			break
		}
		ep.Groups[g] = slices.DeleteFunc(ep.Groups[g], func(id uint16) bool {
			return slices.Contains(nodes, id)
		})
	case association.CmdSpecificGroupGet:
		return []wire.Frame{association.BuildSpecificGroupReport(ep.SpecificGroup)}
	}
	return nil
}

func (ep *Endpoint) handleNaming(f wire.Frame) []wire.Frame {
	switch f.CommandID() {
	case naming.CmdNameGet:
		return one(naming.BuildText(naming.CmdNameReport, ep.Name))
	case naming.CmdLocationGet:
		return one(naming.BuildText(naming.CmdLocationReport, ep.Location))
	case naming.CmdNameSet:
		if s, err := naming.ParseText(f); err == nil {
			ep.Name = s
		}
	case naming.CmdLocationSet:
		if s, err := naming.ParseText(f); err == nil {
			ep.Location = s
		}
	}
	return nil
}

func (ep *Endpoint) handleSwitch(f wire.Frame) []wire.Frame {
	switch f.CommandID() {
	case switchbinary.CmdGet:
		return []wire.Frame{switchbinary.BuildReport(ep.Switch)}
	case switchbinary.CmdSet:
		on, _, err := switchbinary.ParseSet(f)
		if err != nil {
			return nil
		}
		ep.Switch.Current = &on
		if ep.Switch.Target != nil {
			ep.Switch.Target = &on
		}
	}
	return nil
}
