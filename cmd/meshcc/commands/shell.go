package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/cc/association"
	"github.com/meshcc/meshcc-go/pkg/cc/battery"
	"github.com/meshcc/meshcc-go/pkg/cc/meter"
	"github.com/meshcc/meshcc-go/pkg/cc/naming"
	"github.com/meshcc/meshcc-go/pkg/cc/sensor"
	"github.com/meshcc/meshcc-go/pkg/cc/setpoint"
	"github.com/meshcc/meshcc-go/pkg/cc/switchbinary"
	"github.com/meshcc/meshcc-go/pkg/cc/versioncc"
	"github.com/meshcc/meshcc-go/pkg/duration"
	"github.com/meshcc/meshcc-go/pkg/service"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive command shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		env, err := newEnvironment(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer env.Close()

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "meshcc> ",
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return fmt.Errorf("failed to create readline: %w", err)
		}
		defer rl.Close()

		sh := newShell(env.controller, rl.Stdout(), time.Duration(cfg.Interview.Timeout))
		env.controller.OnEvent(sh.handleEvent)
		sh.printHelp()

		for {
			line, err := rl.Readline()
			if err != nil {
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				fmt.Fprintln(sh.out, "Exiting...")
				return nil
			}
			if sh.exec(ctx, line) {
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// shell executes interactive commands against a controller.
type shell struct {
	ctrl    *service.Controller
	out     io.Writer
	timeout time.Duration
}

func newShell(ctrl *service.Controller, out io.Writer, timeout time.Duration) *shell {
	return &shell{ctrl: ctrl, out: out, timeout: timeout}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, `
Commands:
  nodes                                 - List nodes and their state
  interview [node]                      - Interview one node or all nodes
  show <node>                           - Show cached values of a node
  version <node> [ep]                   - Read version information
  battery <node> [ep]                   - Read battery level
  meter <node> [scale] [ep]             - Read a meter scale (default 0)
  meter-reset <node> [ep]               - Reset accumulated meter values
  sensor <node> <type> [scale] [ep]     - Read a sensor value
  setpoint <node> <type> [value] [ep]   - Read or write a setpoint (°C)
  switch <node> [on|off] [duration] [ep] - Read or set the binary switch
  name <node> [text]                    - Read or write the node name
  location <node> [text]                - Read or write the node location
  assoc <node> <group> [add|remove <ids...>] - Read or change a group
  help                                  - Show this help
  quit                                  - Exit`)
}

// handleEvent prints controller events that arrive outside a command.
func (s *shell) handleEvent(e service.Event) {
	switch e.Type {
	case service.EventInterviewCompleted, service.EventInterviewFailed, service.EventUnknownNode, service.EventDriverClosed:
		if e.Error != nil {
			fmt.Fprintf(s.out, "[event] %s node %d: %v\n", e.Type, e.NodeID, e.Error)
		} else {
			fmt.Fprintf(s.out, "[event] %s node %d\n", e.Type, e.NodeID)
		}
	}
}

// exec runs one command line. It returns true when the shell should exit.
func (s *shell) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		s.printHelp()
	case "nodes", "ls":
		s.cmdNodes()
	case "interview", "i":
		err = s.cmdInterview(ctx, args)
	case "show":
		err = s.cmdShow(args)
	case "version":
		err = s.cmdVersion(ctx, args)
	case "battery":
		err = s.cmdBattery(ctx, args)
	case "meter":
		err = s.cmdMeter(ctx, args)
	case "meter-reset":
		err = s.cmdMeterReset(ctx, args)
	case "sensor":
		err = s.cmdSensor(ctx, args)
	case "setpoint":
		err = s.cmdSetpoint(ctx, args)
	case "switch":
		err = s.cmdSwitch(ctx, args)
	case "name", "location":
		err = s.cmdNaming(ctx, cmd, args)
	case "assoc", "association":
		err = s.cmdAssociation(ctx, args)
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return false
}

func (s *shell) cmdNodes() {
	nodes := s.ctrl.Nodes()
	if len(nodes) == 0 {
		fmt.Fprintln(s.out, "No nodes.")
		return
	}
	for _, n := range nodes {
		eps := n.Endpoints()
		classes := 0
		for _, ep := range eps {
			classes += len(ep.CommandClasses())
		}
		fmt.Fprintf(s.out, "  node %-4d %-12s %d endpoint(s), %d class(es)\n", n.ID(), n.State(), len(eps), classes)
	}
}

func (s *shell) cmdInterview(ctx context.Context, args []string) error {
	if len(args) == 0 {
		results, err := s.ctrl.InterviewAll(ctx)
		for _, n := range s.ctrl.Nodes() {
			if res, ok := results[n.ID()]; ok {
				formatNode(s.out, n, res)
			}
		}
		return err
	}
	id, err := parseNodeID(args[0])
	if err != nil {
		return err
	}
	n, err := s.ctrl.Node(id)
	if err != nil {
		return err
	}
	res, err := s.ctrl.Interview(ctx, id)
	formatNode(s.out, n, res)
	return err
}

func (s *shell) cmdShow(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: show <node>")
	}
	id, err := parseNodeID(args[0])
	if err != nil {
		return err
	}
	n, err := s.ctrl.Node(id)
	if err != nil {
		return err
	}
	for _, ep := range n.Endpoints() {
		fmt.Fprintf(s.out, "Endpoint %d\n", ep.Index())
		for _, c := range ep.Instances() {
			fmt.Fprintf(s.out, "  %s\n", c.Name())
			for _, d := range describe(c) {
				fmt.Fprintf(s.out, "    %s\n", d)
			}
		}
	}
	return nil
}

func (s *shell) cmdVersion(ctx context.Context, args []string) error {
	v, err := lookup[*versioncc.Version](s, args, 1, wire.ClassVersion)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	info, err := v.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%+v\n", info)
	for _, id := range v.Host().CommandClasses() {
		if id == wire.ClassVersion {
			continue
		}
		ver, err := v.GetCommandClassVersion(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "  %-26s v%d\n", id, ver)
	}
	return nil
}

func (s *shell) cmdBattery(ctx context.Context, args []string) error {
	b, err := lookup[*battery.Battery](s, args, 1, wire.ClassBattery)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := b.Get(ctx); err != nil {
		return err
	}
	s.printDescribe(b)
	return nil
}

func (s *shell) cmdMeter(ctx context.Context, args []string) error {
	m, err := lookup[*meter.Meter](s, args, 2, wire.ClassMeter)
	if err != nil {
		return err
	}
	scale := 0
	if len(args) > 1 {
		if scale, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid scale %q", args[1])
		}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	r, err := m.Get(ctx, meter.Scale(scale))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%g %s\n", r.Value, meter.Unit(r.Type, r.Scale))
	return nil
}

func (s *shell) cmdMeterReset(ctx context.Context, args []string) error {
	m, err := lookup[*meter.Meter](s, args, 1, wire.ClassMeter)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := m.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Meter reset.")
	return nil
}

func (s *shell) cmdSensor(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: sensor <node> <type> [scale] [ep]")
	}
	sn, err := lookup[*sensor.Sensor](s, args, 3, wire.ClassSensorMultilevel)
	if err != nil {
		return err
	}
	t, err := parseEnum(args[1], func(v uint8) string { return sensor.Type(v).String() })
	if err != nil {
		return err
	}
	var scale uint8
	if len(args) > 2 {
		v, err := strconv.ParseUint(args[2], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid scale %q", args[2])
		}
		scale = uint8(v)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	r, err := sn.GetValue(ctx, sensor.Type(t), scale)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: %g (scale %d)\n", r.Type, r.Value, r.Scale)
	return nil
}

func (s *shell) cmdSetpoint(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: setpoint <node> <type> [value] [ep]")
	}
	th, err := lookup[*setpoint.Thermostat](s, args, 3, wire.ClassThermostatSetpoint)
	if err != nil {
		return err
	}
	t, err := parseEnum(args[1], func(v uint8) string { return setpoint.Type(v).String() })
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sp setpoint.Setpoint
	if len(args) > 2 {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q", args[2])
		}
		sp, err = th.Set(ctx, setpoint.Type(t), setpoint.Setpoint{Value: v, Scale: setpoint.ScaleCelsius})
		if err != nil {
			return err
		}
	} else if sp, err = th.Get(ctx, setpoint.Type(t)); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: %s\n", setpoint.Type(t), formatSetpoint(sp))
	return nil
}

func (s *shell) cmdSwitch(ctx context.Context, args []string) error {
	// The endpoint is the last argument only after on|off and a duration.
	epArg := 1
	if len(args) > 1 {
		epArg = 3
	}
	sw, err := lookup[*switchbinary.Switch](s, args, epArg, wire.ClassSwitchBinary)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var state switchbinary.State
	if len(args) > 1 {
		var on bool
		switch strings.ToLower(args[1]) {
		case "on", "1", "true":
			on = true
		case "off", "0", "false":
		default:
			return fmt.Errorf("invalid value %q (on or off)", args[1])
		}
		d := duration.Default
		if len(args) > 2 {
			td, err := time.ParseDuration(args[2])
			if err != nil {
				return fmt.Errorf("invalid duration %q", args[2])
			}
			d = duration.Of(td)
		}
		if state, err = sw.Set(ctx, on, d); err != nil {
			return err
		}
	} else if state, err = sw.Get(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, formatSwitch(state))
	return nil
}

func (s *shell) cmdNaming(ctx context.Context, which string, args []string) error {
	n, err := lookup[*naming.Naming](s, args, -1, wire.ClassNodeNaming)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if len(args) > 1 {
		text := strings.Join(args[1:], " ")
		if which == "name" {
			err = n.SetName(ctx, text)
		} else {
			err = n.SetLocation(ctx, text)
		}
		if err != nil {
			return err
		}
	}

	var text string
	if which == "name" {
		text, err = n.GetName(ctx)
	} else {
		text, err = n.GetLocation(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: %q\n", which, text)
	return nil
}

func (s *shell) cmdAssociation(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: assoc <node> <group> [add|remove <ids...>]")
	}
	a, err := lookup[*association.Association](s, args, -1, wire.ClassAssociation)
	if err != nil {
		return err
	}
	g, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid group %q", args[1])
	}
	group := uint8(g)

	var nodes []uint16
	if len(args) > 3 {
		for _, arg := range args[3:] {
			id, err := parseNodeID(arg)
			if err != nil {
				return err
			}
			nodes = append(nodes, id)
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var grp association.Group
	switch {
	case len(args) == 2:
		grp, err = a.Get(ctx, group)
	case strings.EqualFold(args[2], "add"):
		grp, err = a.Add(ctx, group, nodes...)
	case strings.EqualFold(args[2], "remove"):
		if err = a.Remove(ctx, group, nodes...); err == nil {
			grp, err = a.Get(ctx, group)
		}
	default:
		return fmt.Errorf("unknown action %q (add or remove)", args[2])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "group %d: %v (max %d)\n", group, grp.Nodes, grp.MaxNodes)
	return nil
}

func (s *shell) printDescribe(c cc.CommandClass) {
	for _, d := range describe(c) {
		fmt.Fprintln(s.out, d)
	}
}

func (s *shell) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// lookup resolves the instance of class on the node named by args[0]. The
// endpoint is taken from args[epArg] when present; a negative epArg means
// the root endpoint.
func lookup[T cc.CommandClass](s *shell, args []string, epArg int, class wire.ClassID) (T, error) {
	var zero T
	if len(args) < 1 {
		return zero, errors.New("node id required")
	}
	id, err := parseNodeID(args[0])
	if err != nil {
		return zero, err
	}
	var ep uint8
	if epArg >= 0 && len(args) > epArg {
		v, err := strconv.ParseUint(args[epArg], 10, 8)
		if err != nil {
			return zero, fmt.Errorf("invalid endpoint %q", args[epArg])
		}
		ep = uint8(v)
	}

	n, err := s.ctrl.Node(id)
	if err != nil {
		return zero, err
	}
	c, err := n.CommandClass(ep, class)
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%s on node %d has no implementation", class, id)
	}
	return t, nil
}

func parseNodeID(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid node id %q", s)
	}
	return uint16(v), nil
}

// parseEnum accepts a number or a name as printed by name, compared
// without case and separators.
func parseEnum(s string, name func(uint8) string) (uint8, error) {
	if v, err := strconv.ParseUint(s, 0, 8); err == nil {
		return uint8(v), nil
	}
	norm := func(x string) string {
		return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(x))
	}
	want := norm(s)
	for v := 0; v < 256; v++ {
		if norm(name(uint8(v))) == want {
			return uint8(v), nil
		}
	}
	return 0, fmt.Errorf("unknown type %q", s)
}
