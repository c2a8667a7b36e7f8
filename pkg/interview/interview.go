// Package interview drives the discovery sequence of a node.
//
// For each endpoint the command classes are ordered by their declared
// dependencies (Version first, for example) and each class's own
// Interview runs in turn. A class that fails takes its dependents down
// with it; unrelated classes still run. Cancellation stops everything.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/log"
	"github.com/meshcc/meshcc-go/pkg/node"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// State is the interview state of one command class.
type State uint8

const (
	StatePending State = iota
	StateRunning
	StateDone
	StateFailed

	// StateSkipped means a dependency failed.
	StateSkipped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateRunning:
		return "RUNNING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	case StateSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// Event reports a class state transition.
type Event struct {
	NodeID   uint16
	Endpoint uint8
	ClassID  wire.ClassID
	From, To State

	// Err is set for StateFailed.
	Err error
}

// Config configures an Orchestrator.
type Config struct {
	// StepTimeout bounds each class interview. Zero means no bound; the
	// caller's context still applies.
	StepTimeout time.Duration

	// OnEvent is called synchronously for every transition.
	OnEvent func(Event)

	Logger  *slog.Logger
	Capture *log.Session
}

// DefaultConfig returns a config with a 30 second step timeout.
func DefaultConfig() Config {
	return Config{StepTimeout: 30 * time.Second}
}

// ClassResult is the outcome for one class.
type ClassResult struct {
	Endpoint uint8
	ClassID  wire.ClassID
	State    State
	Err      error
	Elapsed  time.Duration
}

// Result is the outcome of a node interview in execution order.
type Result struct {
	NodeID  uint16
	Classes []ClassResult
}

// Failed returns the results in StateFailed.
func (r Result) Failed() []ClassResult {
	var out []ClassResult
	for _, c := range r.Classes {
		if c.State == StateFailed {
			out = append(out, c)
		}
	}
	return out
}

// Orchestrator runs node interviews.
type Orchestrator struct {
	cfg Config
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

// Interview runs every class interview on every endpoint of n and moves
// the node to Ready, or to Failed if any class failed. The returned error
// joins the class failures; a cancelled context aborts immediately.
func (o *Orchestrator) Interview(ctx context.Context, n *node.Node) (Result, error) {
	res := Result{NodeID: n.ID()}
	n.SetState(node.StateInterviewing, "")

	var errs []error
	for _, ep := range n.Endpoints() {
		err := o.interviewEndpoint(ctx, n, ep, &res)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			n.SetState(node.StateFailed, err.Error())
			return res, err
		}
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		n.SetState(node.StateFailed, fmt.Sprintf("%d command classes failed", len(res.Failed())))
		return res, err
	}
	n.SetState(node.StateReady, "")
	return res, nil
}

func (o *Orchestrator) interviewEndpoint(ctx context.Context, n *node.Node, ep *node.Endpoint, res *Result) error {
	ordered, err := Order(ep.Instances())
	if err != nil {
		return fmt.Errorf("endpoint %d: %w", ep.Index(), err)
	}

	states := make(map[wire.ClassID]State, len(ordered))
	var errs []error
	for _, c := range ordered {
		if err := ctx.Err(); err != nil {
			return err
		}

		if dep, ok := failedDependency(c, states); ok {
			states[c.ID()] = StateSkipped
			o.emit(Event{NodeID: n.ID(), Endpoint: ep.Index(), ClassID: c.ID(), From: StatePending, To: StateSkipped})
			res.Classes = append(res.Classes, ClassResult{
				Endpoint: ep.Index(),
				ClassID:  c.ID(),
				State:    StateSkipped,
				Err:      fmt.Errorf("dependency %v did not complete", dep),
			})
			continue
		}

		cr := o.runClass(ctx, n.ID(), ep.Index(), c)
		states[c.ID()] = cr.State
		res.Classes = append(res.Classes, cr)
		if cr.Err == nil {
			continue
		}
		if cc.IsCancelled(cr.Err) && ctx.Err() != nil {
			return cr.Err
		}
		errs = append(errs, fmt.Errorf("node %d endpoint %d %v: %w", n.ID(), ep.Index(), c.ID(), cr.Err))
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) runClass(ctx context.Context, nodeID uint16, endpoint uint8, c cc.CommandClass) ClassResult {
	o.emit(Event{NodeID: nodeID, Endpoint: endpoint, ClassID: c.ID(), From: StatePending, To: StateRunning})

	stepCtx := ctx
	if o.cfg.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, o.cfg.StepTimeout)
		defer cancel()
	}

	start := time.Now()
	err := c.Interview(stepCtx)
	cr := ClassResult{
		Endpoint: endpoint,
		ClassID:  c.ID(),
		State:    StateDone,
		Err:      err,
		Elapsed:  time.Since(start),
	}
	if err != nil {
		cr.State = StateFailed
	}
	o.emit(Event{NodeID: nodeID, Endpoint: endpoint, ClassID: c.ID(), From: StateRunning, To: cr.State, Err: err})
	return cr
}

// failedDependency returns the first dependency of c that did not finish.
func failedDependency(c cc.CommandClass, states map[wire.ClassID]State) (wire.ClassID, bool) {
	for _, dep := range c.Dependencies() {
		if s, ok := states[dep]; ok && s != StateDone {
			return dep, true
		}
	}
	return 0, false
}

func (o *Orchestrator) emit(e Event) {
	reason := ""
	if e.Err != nil {
		reason = e.Err.Error()
	}
	o.cfg.Capture.StateChange(log.StateEntityInterview, e.NodeID, e.ClassID, e.From.String(), e.To.String(), reason)

	if o.cfg.Logger != nil {
		o.cfg.Logger.Debug("interview",
			"node", e.NodeID,
			"endpoint", e.Endpoint,
			"class", e.ClassID,
			"state", e.To,
			"error", e.Err,
		)
	}
	if o.cfg.OnEvent != nil {
		o.cfg.OnEvent(e)
	}
}
