package cc

import (
	"context"
	"log/slog"

	"github.com/meshcc/meshcc-go/pkg/interaction"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// CommandClass is one command class instance on one endpoint.
type CommandClass interface {
	ID() wire.ClassID
	Name() string

	// Version returns the negotiated version and whether it is known.
	Version() (uint8, bool)
	SetVersion(v uint8)
	EffectiveVersion() uint8

	IsSupported(cmd wire.CommandID) Support

	// Dependencies lists the classes that must be interviewed first.
	Dependencies() []wire.ClassID

	// Interview runs the discovery sequence for this class.
	Interview(ctx context.Context) error

	// HandleReport decodes an inbound frame of this class and updates
	// instance state. It runs for every inbound frame, correlated or not.
	HandleReport(f wire.Frame) error
}

// NodeInfo is the topology view of another node.
type NodeInfo interface {
	ID() uint16
	FrequentListening() bool
}

// Host is the endpoint a command class instance lives on.
type Host interface {
	NodeID() uint16
	EndpointIndex() uint8

	// Send transmits a frame without waiting for a reply.
	Send(ctx context.Context, f wire.Frame) error

	// Request sends req and waits for the first frame matching exp.
	Request(ctx context.Context, req wire.Frame, exp interaction.Expectation) (wire.Frame, error)

	// Await waits for a frame matching exp without sending.
	Await(ctx context.Context, exp interaction.Expectation) (wire.Frame, error)

	// CommandClass returns a sibling instance on the same endpoint.
	CommandClass(id wire.ClassID) (CommandClass, bool)

	// CommandClasses lists the class ids on the endpoint in ascending order.
	CommandClasses() []wire.ClassID

	// LookupNode returns another node in the network.
	LookupNode(id uint16) (NodeInfo, bool)

	// Logger returns the operational logger, or nil.
	Logger() *slog.Logger
}
