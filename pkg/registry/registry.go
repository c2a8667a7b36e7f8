// Package registry maps command class ids to their implementations.
//
// The table is fixed at compile time. Classes without an implementation
// are represented by cc.Generic so their frames still reach correlation.
package registry

import (
	"slices"

	"github.com/meshcc/meshcc-go/pkg/cc"
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

// Constructor creates a command class instance on host.
type Constructor func(host cc.Host) cc.CommandClass

var constructors = map[wire.ClassID]Constructor{
	wire.ClassVersion:            func(h cc.Host) cc.CommandClass { return versioncc.New(h) },
	wire.ClassBattery:            func(h cc.Host) cc.CommandClass { return battery.New(h) },
	wire.ClassMeter:              func(h cc.Host) cc.CommandClass { return meter.New(h) },
	wire.ClassSensorMultilevel:   func(h cc.Host) cc.CommandClass { return sensor.New(h) },
	wire.ClassThermostatSetpoint: func(h cc.Host) cc.CommandClass { return setpoint.New(h) },
	wire.ClassAssociation:        func(h cc.Host) cc.CommandClass { return association.New(h) },
	wire.ClassNodeNaming:         func(h cc.Host) cc.CommandClass { return naming.New(h) },
	wire.ClassSwitchBinary:       func(h cc.Host) cc.CommandClass { return switchbinary.New(h) },
}

// New creates the instance for class id. Unknown ids yield a cc.Generic.
func New(id wire.ClassID, host cc.Host) cc.CommandClass {
	if ctor, ok := constructors[id]; ok {
		return ctor(host)
	}
	return cc.NewGeneric(id, host)
}

// Has reports whether id has a dedicated implementation.
func Has(id wire.ClassID) bool {
	_, ok := constructors[id]
	return ok
}

// Known returns the implemented class ids in ascending order.
func Known() []wire.ClassID {
	ids := make([]wire.ClassID, 0, len(constructors))
	for id := range constructors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Name returns the display name of a class id.
func Name(id wire.ClassID) string {
	return id.String()
}
