package mock

import (
	"github.com/meshcc/meshcc-go/pkg/cc/battery"
	"github.com/meshcc/meshcc-go/pkg/cc/meter"
	"github.com/meshcc/meshcc-go/pkg/cc/sensor"
	"github.com/meshcc/meshcc-go/pkg/cc/setpoint"
	"github.com/meshcc/meshcc-go/pkg/cc/switchbinary"
	"github.com/meshcc/meshcc-go/pkg/duration"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// DemoClasses are the classes a demo device declares on its root endpoint.
var DemoClasses = []wire.ClassID{
	wire.ClassVersion,
	wire.ClassSwitchBinary,
	wire.ClassSensorMultilevel,
	wire.ClassMeter,
	wire.ClassThermostatSetpoint,
	wire.ClassNodeNaming,
	wire.ClassBattery,
	wire.ClassAssociation,
}

// NewDemoDevice creates a device with every supported class populated:
// a metering thermostat plug running on a backup battery.
func NewDemoDevice(id uint16) *Device {
	d := NewDevice(id)
	d.Capabilities.ZWaveSoftware = true
	d.Software.SDK.Major = 7
	d.Software.SDK.Minor = 18

	off := false
	_ = d.Update(0, func(ep *Endpoint) {
		ep.Classes[wire.ClassSwitchBinary] = 2
		ep.Classes[wire.ClassSensorMultilevel] = 5
		ep.Classes[wire.ClassMeter] = 3
		ep.Classes[wire.ClassThermostatSetpoint] = 3
		ep.Classes[wire.ClassNodeNaming] = 1
		ep.Classes[wire.ClassBattery] = 2
		ep.Classes[wire.ClassAssociation] = 2

		rem := duration.Instant
		ep.Switch = switchbinary.State{Current: &off, Target: &off, Remaining: &rem}

		ep.Sensors[sensor.TypeAirTemperature] = &SensorState{Scales: []uint8{0, 1}, Value: 21.5}
		ep.Sensors[sensor.TypeHumidity] = &SensorState{Scales: []uint8{0}, Value: 48}

		ep.Meter = &MeterState{
			Supported: meter.Supported{
				Type:         meter.TypeElectric,
				Rate:         meter.RateImport,
				ResetAllowed: true,
				Scales:       []meter.Scale{0, 2},
			},
			Values: map[meter.Scale]float64{0: 12.34, 2: 56.7},
		}

		ep.Setpoints[setpoint.TypeHeating] = &SetpointState{
			Value: setpoint.Setpoint{Value: 20.5, Scale: setpoint.ScaleCelsius},
			Limits: &setpoint.Capabilities{
				Min: setpoint.Setpoint{Value: 5, Scale: setpoint.ScaleCelsius},
				Max: setpoint.Setpoint{Value: 30, Scale: setpoint.ScaleCelsius},
			},
		}
		ep.Setpoints[setpoint.TypeCooling] = &SetpointState{
			Value: setpoint.Setpoint{Value: 25, Scale: setpoint.ScaleCelsius},
			Limits: &setpoint.Capabilities{
				Min: setpoint.Setpoint{Value: 18, Scale: setpoint.ScaleCelsius},
				Max: setpoint.Setpoint{Value: 32, Scale: setpoint.ScaleCelsius},
			},
		}

		ep.Name = "demo plug"
		ep.Location = "lab"

		ep.Battery = &battery.Report{Level: 87, Status: &battery.Status{Rechargeable: true, Backup: true}}
		ep.Health = &battery.Health{}

		ep.Groups[1] = []uint16{1}
		ep.Groups[2] = nil
		ep.SpecificGroup = 0
	})
	return d
}
