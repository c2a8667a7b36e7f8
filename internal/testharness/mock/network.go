package mock

import (
	"maps"
	"slices"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/transport"
)

// Network routes envelopes to a set of simulated devices.
type Network struct {
	devices map[uint16]*Device

	mu sync.RWMutex
}

// NewNetwork creates a network holding devices.
func NewNetwork(devices ...*Device) *Network {
	n := &Network{devices: make(map[uint16]*Device)}
	for _, d := range devices {
		n.devices[d.ID] = d
	}
	return n
}

// Add adds a device to the network.
func (n *Network) Add(d *Device) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.devices[d.ID]; exists {
		return ErrDuplicateDevice
	}
	n.devices[d.ID] = d
	return nil
}

// Remove takes a device off the network. Frames sent to it go unanswered.
func (n *Network) Remove(id uint16) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.devices, id)
}

// Device returns the device with the given node id.
func (n *Network) Device(id uint16) (*Device, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	d, ok := n.devices[id]
	return d, ok
}

// IDs returns the simulated node ids in ascending order.
func (n *Network) IDs() []uint16 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Sorted(maps.Keys(n.devices))
}

// Responder returns a transport.Responder dispatching by node id.
func (n *Network) Responder() transport.Responder {
	return func(env transport.Envelope) []transport.Envelope {
		d, ok := n.Device(env.NodeID)
		if !ok {
			return nil
		}
		return d.Respond(env)
	}
}
