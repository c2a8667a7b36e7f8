package cc

import (
	"context"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Generic stands in for classes without a dedicated implementation. It
// has no interview and reports every command as unsupported, but its
// frames still reach correlation.
type Generic struct {
	*Base
}

// NewGeneric creates a placeholder instance for class id.
func NewGeneric(id wire.ClassID, host Host) *Generic {
	return &Generic{Base: NewBase(id, host, nil)}
}

// Dependencies returns nil.
func (g *Generic) Dependencies() []wire.ClassID { return nil }

// Interview does nothing.
func (g *Generic) Interview(context.Context) error { return nil }

// HandleReport ignores the frame.
func (g *Generic) HandleReport(f wire.Frame) error {
	return g.Unhandled(f)
}
