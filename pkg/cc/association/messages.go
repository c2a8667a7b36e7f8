package association

import (
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Command ids.
const (
	CmdSet                 wire.CommandID = 0x01
	CmdGet                 wire.CommandID = 0x02
	CmdReport              wire.CommandID = 0x03
	CmdRemove              wire.CommandID = 0x04
	CmdGroupingsGet        wire.CommandID = 0x05
	CmdGroupingsReport     wire.CommandID = 0x06
	CmdSpecificGroupGet    wire.CommandID = 0x0B
	CmdSpecificGroupReport wire.CommandID = 0x0C
)

// Node id range addressable by an association.
const (
	MinNodeID = 1
	MaxNodeID = 232
)

// Report is one frame of a possibly multi-part Association Report.
type Report struct {
	Group           uint8
	MaxNodes        uint8
	ReportsToFollow uint8
	Nodes           []uint16
}

// BuildSet encodes a Set adding nodes to group.
func BuildSet(group uint8, nodes []uint16) wire.Frame {
	return wire.NewFrame(wire.ClassAssociation, CmdSet, groupAndNodes(group, nodes))
}

// BuildRemove encodes a Remove. Group 0 addresses every group; an empty
// node list removes every node.
func BuildRemove(group uint8, nodes []uint16) wire.Frame {
	return wire.NewFrame(wire.ClassAssociation, CmdRemove, groupAndNodes(group, nodes))
}

// ParseSet decodes a Set or Remove.
func ParseSet(f wire.Frame) (uint8, []uint16, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "association group"); err != nil {
		return 0, nil, err
	}
	return p[0], nodeList(p[1:]), nil
}

func groupAndNodes(group uint8, nodes []uint16) []byte {
	p := make([]byte, 0, 1+len(nodes))
	p = append(p, group)
	for _, n := range nodes {
		p = append(p, byte(n))
	}
	return p
}

func nodeList(b []byte) []uint16 {
	nodes := make([]uint16, len(b))
	for i, n := range b {
		nodes[i] = uint16(n)
	}
	return nodes
}

// BuildGet encodes a Get for group.
func BuildGet(group uint8) wire.Frame {
	return wire.NewFrame(wire.ClassAssociation, CmdGet, []byte{group})
}

// ParseReport decodes one Association Report frame.
func ParseReport(f wire.Frame) (Report, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 3, "association report"); err != nil {
		return Report{}, err
	}
	return Report{
		Group:           p[0],
		MaxNodes:        p[1],
		ReportsToFollow: p[2],
		Nodes:           nodeList(p[3:]),
	}, nil
}

// BuildReport encodes one Association Report frame.
func BuildReport(r Report) wire.Frame {
	p := []byte{r.Group, r.MaxNodes, r.ReportsToFollow}
	for _, n := range r.Nodes {
		p = append(p, byte(n))
	}
	return wire.NewFrame(wire.ClassAssociation, CmdReport, p)
}

// SplitReport encodes the members of a group as a sequence of reports of
// at most perFrame nodes each.
func SplitReport(group, maxNodes uint8, nodes []uint16, perFrame int) []wire.Frame {
	if perFrame <= 0 {
		perFrame = len(nodes)
	}
	var chunks [][]uint16
	for len(nodes) > perFrame {
		chunks = append(chunks, nodes[:perFrame])
		nodes = nodes[perFrame:]
	}
	chunks = append(chunks, nodes)

	frames := make([]wire.Frame, len(chunks))
	for i, c := range chunks {
		frames[i] = BuildReport(Report{
			Group:           group,
			MaxNodes:        maxNodes,
			ReportsToFollow: uint8(len(chunks) - 1 - i),
			Nodes:           c,
		})
	}
	return frames
}

// ParseGroupingsReport decodes the number of groups.
func ParseGroupingsReport(f wire.Frame) (uint8, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "groupings"); err != nil {
		return 0, err
	}
	return p[0], nil
}

// BuildGroupingsReport encodes the number of groups.
func BuildGroupingsReport(n uint8) wire.Frame {
	return wire.NewFrame(wire.ClassAssociation, CmdGroupingsReport, []byte{n})
}

// ParseSpecificGroupReport decodes the group last activated on the node.
func ParseSpecificGroupReport(f wire.Frame) (uint8, error) {
	p := f.Params()
	if err := wire.CheckLength(p, 1, "specific group"); err != nil {
		return 0, err
	}
	return p[0], nil
}

// BuildSpecificGroupReport encodes the group last activated on the node.
func BuildSpecificGroupReport(group uint8) wire.Frame {
	return wire.NewFrame(wire.ClassAssociation, CmdSpecificGroupReport, []byte{group})
}
