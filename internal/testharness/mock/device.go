// Package mock provides a simulated mesh node that answers the supported
// command classes over a loopback transport.
package mock

import (
	"maps"
	"slices"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc/battery"
	"github.com/meshcc/meshcc-go/pkg/cc/meter"
	"github.com/meshcc/meshcc-go/pkg/cc/sensor"
	"github.com/meshcc/meshcc-go/pkg/cc/setpoint"
	"github.com/meshcc/meshcc-go/pkg/cc/switchbinary"
	"github.com/meshcc/meshcc-go/pkg/cc/versioncc"
	"github.com/meshcc/meshcc-go/pkg/transport"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Device is a simulated node.
type Device struct {
	// ID is the node id.
	ID uint16

	// Info is returned for Version Get.
	Info versioncc.Info

	// Capabilities is returned for Version Capabilities Get.
	Capabilities versioncc.Capabilities

	// Software is returned for Version Z-Wave Software Get.
	Software versioncc.SoftwareInfo

	// Endpoints holds the device's endpoints. Endpoint 0 is the root.
	Endpoints map[uint8]*Endpoint

	// Handlers are callbacks that override the built-in replies.
	Handlers DeviceHandlers

	received []transport.Envelope
	muted    map[wire.ClassID]bool

	mu sync.RWMutex
}

// Endpoint is the state behind one endpoint of a simulated node.
type Endpoint struct {
	// ID is the endpoint index.
	ID uint8

	// Classes maps each supported class to the version the node reports.
	Classes map[wire.ClassID]uint8

	Battery *battery.Report
	Health  *battery.Health

	// Meter is nil when the endpoint has no meter.
	Meter *MeterState

	Sensors   map[sensor.Type]*SensorState
	Setpoints map[setpoint.Type]*SetpointState

	// Groups holds the association destinations per group.
	Groups        map[uint8][]uint16
	MaxNodes      uint8
	PerFrame      int
	SpecificGroup uint8

	Name     string
	Location string

	Switch switchbinary.State
}

// MeterState holds the readings of a simulated meter.
type MeterState struct {
	Supported meter.Supported
	Values    map[meter.Scale]float64
}

// SensorState holds one simulated sensor type.
type SensorState struct {
	Scales []uint8
	Value  float64
}

// SetpointState holds one simulated setpoint type.
type SetpointState struct {
	Value  setpoint.Setpoint
	Limits *setpoint.Capabilities
}

// DeviceHandlers holds callbacks for device operations.
type DeviceHandlers struct {
	// OnFrame is called for every received frame before the built-in
	// handler. Returning handled=true suppresses the built-in reply.
	OnFrame func(endpoint uint8, f wire.Frame) (replies []wire.Frame, handled bool)
}

// NewDevice creates a simulated node with an empty root endpoint that
// supports the Version class.
func NewDevice(id uint16) *Device {
	d := &Device{
		ID:        id,
		Endpoints: make(map[uint8]*Endpoint),
		muted:     make(map[wire.ClassID]bool),
		Info: versioncc.Info{
			LibraryType: versioncc.LibraryEnhancedSlave,
			Protocol:    versioncc.Pair{Major: 7, Minor: 18},
			Firmware:    []versioncc.Pair{{Major: 1, Minor: 0}},
		},
	}
	d.AddEndpoint(0)
	d.Support(0, wire.ClassVersion, 3)
	d.Capabilities = versioncc.Capabilities{Version: true, CommandClass: true}
	return d
}

// AddEndpoint adds an endpoint, or returns the existing one.
func (d *Device) AddEndpoint(id uint8) *Endpoint {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ep, ok := d.Endpoints[id]; ok {
		return ep
	}
	ep := &Endpoint{
		ID:        id,
		Classes:   make(map[wire.ClassID]uint8),
		Sensors:   make(map[sensor.Type]*SensorState),
		Setpoints: make(map[setpoint.Type]*SetpointState),
		Groups:    make(map[uint8][]uint16),
		MaxNodes:  5,
		PerFrame:  5,
	}
	d.Endpoints[id] = ep
	return ep
}

// Support declares class at the given version on an endpoint.
func (d *Device) Support(endpoint uint8, class wire.ClassID, version uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ep, ok := d.Endpoints[endpoint]
	if !ok {
		return ErrEndpointNotFound
	}
	ep.Classes[class] = version
	return nil
}

// Classes returns the supported classes of an endpoint in ascending order.
func (d *Device) Classes(endpoint uint8) []wire.ClassID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ep, ok := d.Endpoints[endpoint]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(ep.Classes))
}

// Update runs fn with the endpoint state locked.
func (d *Device) Update(endpoint uint8, fn func(ep *Endpoint)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ep, ok := d.Endpoints[endpoint]
	if !ok {
		return ErrEndpointNotFound
	}
	fn(ep)
	return nil
}

// Mute stops the device from answering any frame of class.
func (d *Device) Mute(class wire.ClassID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.muted[class] = true
}

// Unmute resumes answering class.
func (d *Device) Unmute(class wire.ClassID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.muted, class)
}

// GetMessages returns all received envelopes.
func (d *Device) GetMessages() []transport.Envelope {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.received)
}

// ClearMessages clears all received envelopes.
func (d *Device) ClearMessages() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.received = d.received[:0]
}

// Responder returns a transport.Responder answering for this device only.
func (d *Device) Responder() transport.Responder {
	return d.Respond
}

// Respond handles one envelope addressed to the device and returns the
// replies. Envelopes for other nodes, unknown endpoints or muted classes
// get no reply.
func (d *Device) Respond(env transport.Envelope) []transport.Envelope {
	if env.NodeID != d.ID {
		return nil
	}

	d.mu.Lock()
	d.received = append(d.received, env)
	onFrame := d.Handlers.OnFrame
	d.mu.Unlock()

	var frames []wire.Frame
	handled := false
	if onFrame != nil {
		frames, handled = onFrame(env.Endpoint, env.Frame)
	}
	if !handled {
		frames = d.handle(env.Endpoint, env.Frame)
	}

	out := make([]transport.Envelope, 0, len(frames))
	for _, f := range frames {
		out = append(out, transport.Envelope{NodeID: d.ID, Endpoint: env.Endpoint, Frame: f})
	}
	return out
}

// Unsolicited wraps f as an envelope sent by the device from endpoint.
func (d *Device) Unsolicited(endpoint uint8, f wire.Frame) transport.Envelope {
	return transport.Envelope{NodeID: d.ID, Endpoint: endpoint, Frame: f}
}
