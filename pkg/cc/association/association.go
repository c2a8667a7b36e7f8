// Package association implements the Association command class: the
// lifeline and other groups through which a node reports to controllers.
package association

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

var commands = []cc.Command{
	{ID: CmdSet, Name: "Set"},
	{ID: CmdGet, Name: "Get"},
	{ID: CmdReport, Name: "Report"},
	{ID: CmdRemove, Name: "Remove"},
	{ID: CmdGroupingsGet, Name: "GroupingsGet"},
	{ID: CmdGroupingsReport, Name: "GroupingsReport"},
	{ID: CmdSpecificGroupGet, Name: "SpecificGroupGet", MinVersion: 2},
	{ID: CmdSpecificGroupReport, Name: "SpecificGroupReport", MinVersion: 2},
}

// Group is the membership of one association group.
type Group struct {
	MaxNodes uint8
	Nodes    []uint16
}

// Association is the Association command class instance.
type Association struct {
	*cc.Base

	mu       sync.RWMutex
	count    *uint8
	groups   map[uint8]*Group
	partial  map[uint8]*partialReport
	specific *uint8
}

// partialReport collects a report sequence that is still being received.
type partialReport struct {
	nodes    []uint16
	toFollow uint8
}

// New creates an Association instance on host.
func New(host cc.Host) *Association {
	return &Association{
		Base:    cc.NewBase(wire.ClassAssociation, host, commands),
		groups:  make(map[uint8]*Group),
		partial: make(map[uint8]*partialReport),
	}
}

// Dependencies returns the Version class.
func (a *Association) Dependencies() []wire.ClassID {
	return []wire.ClassID{wire.ClassVersion}
}

// GroupCount returns the number of groups and whether it is known.
func (a *Association) GroupCount() (uint8, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.count == nil {
		return 0, false
	}
	return *a.count, true
}

// Group returns the known membership of group. The second result is false
// if the group is not tracked; a tracked group may still be nil.
func (a *Association) Group(group uint8) (*Group, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	g, ok := a.groups[group]
	return g, ok
}

// Groups returns the tracked group ids in ascending order.
func (a *Association) Groups() []uint8 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Sorted(maps.Keys(a.groups))
}

// GetGroupings requests the number of groups.
func (a *Association) GetGroupings(ctx context.Context) (uint8, error) {
	f, err := a.Request(ctx, CmdGroupingsGet, nil, CmdGroupingsReport, nil)
	if err != nil {
		return 0, err
	}
	return ParseGroupingsReport(f)
}

// Get requests the members of group. Reports split over several frames
// are aggregated; the wait ends with the last one.
func (a *Association) Get(ctx context.Context, group uint8) (Group, error) {
	if err := a.checkGroup(group); err != nil {
		return Group{}, err
	}
	match := func(f wire.Frame) bool {
		r, err := ParseReport(f)
		return err == nil && r.Group == group && r.ReportsToFollow == 0
	}
	a.mu.Lock()
	delete(a.partial, group)
	a.mu.Unlock()

	if _, err := a.Request(ctx, CmdGet, []byte{group}, CmdReport, match); err != nil {
		return Group{}, err
	}

	g, _ := a.Group(group)
	if g == nil {
		return Group{}, fmt.Errorf("%w: group %d report not applied", cc.ErrCommandNotReady, group)
	}
	return Group{MaxNodes: g.MaxNodes, Nodes: slices.Clone(g.Nodes)}, nil
}

// GetSpecificGroup requests the group that triggered the node's last
// command.
func (a *Association) GetSpecificGroup(ctx context.Context) (uint8, error) {
	f, err := a.Request(ctx, CmdSpecificGroupGet, nil, CmdSpecificGroupReport, nil)
	if err != nil {
		return 0, err
	}
	return ParseSpecificGroupReport(f)
}

// Add associates nodes with group and reads the group back.
func (a *Association) Add(ctx context.Context, group uint8, nodes ...uint16) (Group, error) {
	if err := a.checkGroup(group); err != nil {
		return Group{}, err
	}
	if len(nodes) == 0 {
		return Group{}, fmt.Errorf("%w: no nodes", cc.ErrInvalidArgument)
	}
	if err := a.checkDestinations(nodes); err != nil {
		return Group{}, err
	}
	if g, _ := a.Group(group); g != nil && g.MaxNodes > 0 {
		merged := slices.Clone(g.Nodes)
		for _, n := range nodes {
			if !slices.Contains(merged, n) {
				merged = append(merged, n)
			}
		}
		if len(merged) > int(g.MaxNodes) {
			return Group{}, fmt.Errorf("%w: group %d holds at most %d nodes", cc.ErrInvalidArgument, group, g.MaxNodes)
		}
	}

	if err := a.Send(ctx, BuildSet(group, nodes)); err != nil {
		return Group{}, err
	}
	return a.Get(ctx, group)
}

// Remove removes nodes from group. Group 0 removes them from every group
// and an empty node list clears the group.
func (a *Association) Remove(ctx context.Context, group uint8, nodes ...uint16) error {
	if group != 0 {
		if err := a.checkGroup(group); err != nil {
			return err
		}
	}
	for _, n := range nodes {
		if n < MinNodeID || n > MaxNodeID {
			return fmt.Errorf("%w: node id %d", cc.ErrInvalidArgument, n)
		}
	}
	if err := a.Send(ctx, BuildRemove(group, nodes)); err != nil {
		return err
	}
	if group == 0 {
		return nil
	}
	_, err := a.Get(ctx, group)
	return err
}

func (a *Association) checkGroup(group uint8) error {
	if group == 0 {
		return fmt.Errorf("%w: group 0", cc.ErrInvalidArgument)
	}
	if count, ok := a.GroupCount(); ok && group > count {
		return fmt.Errorf("%w: group %d of %d", cc.ErrInvalidArgument, group, count)
	}
	return nil
}

// checkDestinations rejects ids outside the node range and frequent
// listening nodes.
func (a *Association) checkDestinations(nodes []uint16) error {
	for _, id := range nodes {
		if id < MinNodeID || id > MaxNodeID {
			return fmt.Errorf("%w: node id %d", cc.ErrInvalidArgument, id)
		}
		if n, ok := a.Host().LookupNode(id); ok && n.FrequentListening() {
			return fmt.Errorf("%w: node %d is a frequent listening node", cc.ErrInvalidArgument, id)
		}
	}
	return nil
}

// Interview reads the group count and the members of every group.
func (a *Association) Interview(ctx context.Context) error {
	count, err := a.GetGroupings(ctx)
	if err != nil {
		return err
	}
	for g := uint8(1); g <= count && g != 0; g++ {
		if _, err := a.Get(ctx, g); err != nil {
			return fmt.Errorf("group %d: %w", g, err)
		}
	}
	return nil
}

// HandleReport applies Association reports to instance state.
func (a *Association) HandleReport(f wire.Frame) error {
	switch f.CommandID() {
	case CmdReport:
		r, err := ParseReport(f)
		if err != nil {
			return a.Malformed(f, err)
		}
		a.mu.Lock()
		// A count that does not go down starts a new sequence; the
		// previous one was cut short.
		var nodes []uint16
		if p := a.partial[r.Group]; p != nil && r.ReportsToFollow < p.toFollow {
			nodes = p.nodes
		}
		nodes = append(nodes, r.Nodes...)
		if r.ReportsToFollow > 0 {
			a.partial[r.Group] = &partialReport{nodes: nodes, toFollow: r.ReportsToFollow}
		} else {
			delete(a.partial, r.Group)
			a.groups[r.Group] = &Group{MaxNodes: r.MaxNodes, Nodes: nodes}
		}
		a.mu.Unlock()

	case CmdGroupingsReport:
		n, err := ParseGroupingsReport(f)
		if err != nil {
			return a.Malformed(f, err)
		}
		keys := make([]uint8, 0, n)
		for g := 1; g <= int(n); g++ {
			keys = append(keys, uint8(g))
		}
		a.mu.Lock()
		a.count = &n
		a.groups = cc.Reconcile(a.groups, keys)
		a.mu.Unlock()

	case CmdSpecificGroupReport:
		g, err := ParseSpecificGroupReport(f)
		if err != nil {
			return a.Malformed(f, err)
		}
		a.mu.Lock()
		a.specific = &g
		a.mu.Unlock()

	default:
		return a.Unhandled(f)
	}
	return nil
}

// SpecificGroup returns the last reported specific group, or nil.
func (a *Association) SpecificGroup() *uint8 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.specific
}
