package interview

import (
	"errors"
	"fmt"
	"slices"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// ErrDependencyCycle is returned when class dependencies form a cycle.
var ErrDependencyCycle = errors.New("command class dependency cycle")

// Order sorts classes so every class follows the classes it depends on.
// Dependencies on classes not in the list are ignored. Among classes
// that are ready at the same time the lower class id goes first, so the
// order is deterministic.
func Order(classes []cc.CommandClass) ([]cc.CommandClass, error) {
	byID := make(map[wire.ClassID]cc.CommandClass, len(classes))
	indegree := make(map[wire.ClassID]int, len(classes))
	for _, c := range classes {
		byID[c.ID()] = c
		indegree[c.ID()] = 0
	}

	dependents := make(map[wire.ClassID][]wire.ClassID)
	for id, c := range byID {
		for _, dep := range c.Dependencies() {
			if _, ok := byID[dep]; !ok || dep == id {
				continue
			}
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []wire.ClassID
	for id, d := range indegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}

	out := make([]cc.CommandClass, 0, len(byID))
	for len(ready) > 0 {
		slices.Sort(ready)
		id := ready[0]
		ready = ready[1:]
		out = append(out, byID[id])

		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(out) != len(byID) {
		var stuck []wire.ClassID
		for id, d := range indegree {
			if d > 0 {
				stuck = append(stuck, id)
			}
		}
		slices.Sort(stuck)
		return nil, fmt.Errorf("%w: %v", ErrDependencyCycle, stuck)
	}
	return out, nil
}
