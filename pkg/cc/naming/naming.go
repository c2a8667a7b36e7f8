// Package naming implements the Node Naming and Location command class.
package naming

import (
	"context"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Command ids.
const (
	CmdNameSet        wire.CommandID = 0x01
	CmdNameGet        wire.CommandID = 0x02
	CmdNameReport     wire.CommandID = 0x03
	CmdLocationSet    wire.CommandID = 0x04
	CmdLocationGet    wire.CommandID = 0x05
	CmdLocationReport wire.CommandID = 0x06
)

// MaxTextLen is the longest encoded name or location in bytes.
const MaxTextLen = 16

var commands = []cc.Command{
	{ID: CmdNameSet, Name: "NameSet"},
	{ID: CmdNameGet, Name: "NameGet"},
	{ID: CmdNameReport, Name: "NameReport"},
	{ID: CmdLocationSet, Name: "LocationSet"},
	{ID: CmdLocationGet, Name: "LocationGet"},
	{ID: CmdLocationReport, Name: "LocationReport"},
}

// BuildText encodes a name or location frame for cmd. Text longer than
// MaxTextLen bytes in its chosen encoding is truncated.
func BuildText(cmd wire.CommandID, text string) (wire.Frame, error) {
	cp, b, err := wire.EncodeText(text)
	if err != nil {
		return wire.Frame{}, err
	}
	b = wire.TruncateText(cp, b, MaxTextLen)
	return wire.NewFrame(wire.ClassNodeNaming, cmd, append([]byte{byte(cp)}, b...)), nil
}

// ParseText decodes a name or location frame.
func ParseText(f wire.Frame) (string, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "char presentation"); err != nil {
		return "", err
	}
	text := p[1:]
	if len(text) > MaxTextLen {
		text = text[:MaxTextLen]
	}
	return wire.DecodeText(p[0], text)
}

// Naming is the Node Naming and Location command class instance.
type Naming struct {
	*cc.Base

	mu       sync.RWMutex
	name     *string
	location *string
}

// New creates a Node Naming instance on host.
func New(host cc.Host) *Naming {
	return &Naming{Base: cc.NewBase(wire.ClassNodeNaming, host, commands)}
}

// Dependencies returns nil.
func (n *Naming) Dependencies() []wire.ClassID {
	return nil
}

// Name returns the last known name, or nil.
func (n *Naming) Name() *string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// Location returns the last known location, or nil.
func (n *Naming) Location() *string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.location
}

// GetName requests the node name.
func (n *Naming) GetName(ctx context.Context) (string, error) {
	f, err := n.Request(ctx, CmdNameGet, nil, CmdNameReport, nil)
	if err != nil {
		return "", err
	}
	return ParseText(f)
}

// GetLocation requests the node location.
func (n *Naming) GetLocation(ctx context.Context) (string, error) {
	f, err := n.Request(ctx, CmdLocationGet, nil, CmdLocationReport, nil)
	if err != nil {
		return "", err
	}
	return ParseText(f)
}

// SetName stores name on the node. The node does not reply, so the local
// state is updated with the text as sent.
func (n *Naming) SetName(ctx context.Context, name string) error {
	return n.setText(ctx, CmdNameSet, name, &n.name)
}

// SetLocation stores location on the node.
func (n *Naming) SetLocation(ctx context.Context, location string) error {
	return n.setText(ctx, CmdLocationSet, location, &n.location)
}

func (n *Naming) setText(ctx context.Context, cmd wire.CommandID, text string, dst **string) error {
	f, err := BuildText(cmd, text)
	if err != nil {
		return err
	}
	if err := n.Send(ctx, f); err != nil {
		return err
	}
	sent, err := ParseText(f)
	if err != nil {
		return err
	}
	n.mu.Lock()
	*dst = &sent
	n.mu.Unlock()
	return nil
}

// Interview reads name and location.
func (n *Naming) Interview(ctx context.Context) error {
	if _, err := n.GetName(ctx); err != nil {
		return err
	}
	_, err := n.GetLocation(ctx)
	return err
}

// HandleReport applies name and location reports to instance state.
func (n *Naming) HandleReport(f wire.Frame) error {
	var dst **string
	switch f.CommandID() {
	case CmdNameReport:
		dst = &n.name
	case CmdLocationReport:
		dst = &n.location
	default:
		return n.Unhandled(f)
	}

	text, err := ParseText(f)
	if err != nil {
		return n.Malformed(f, err)
	}
	n.mu.Lock()
	*dst = &text
	n.mu.Unlock()
	return nil
}
