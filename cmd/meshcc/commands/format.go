package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/cc/association"
	"github.com/meshcc/meshcc-go/pkg/cc/battery"
	"github.com/meshcc/meshcc-go/pkg/cc/meter"
	"github.com/meshcc/meshcc-go/pkg/cc/naming"
	"github.com/meshcc/meshcc-go/pkg/cc/sensor"
	"github.com/meshcc/meshcc-go/pkg/cc/setpoint"
	"github.com/meshcc/meshcc-go/pkg/cc/switchbinary"
	"github.com/meshcc/meshcc-go/pkg/cc/versioncc"
	"github.com/meshcc/meshcc-go/pkg/interview"
	"github.com/meshcc/meshcc-go/pkg/node"
)

// formatNode writes the interview outcome and cached values of a node.
func formatNode(w io.Writer, n *node.Node, res interview.Result) {
	fmt.Fprintf(w, "Node %d (%s)\n", n.ID(), n.State())

	results := make(map[uint8]map[string]interview.ClassResult)
	for _, r := range res.Classes {
		if results[r.Endpoint] == nil {
			results[r.Endpoint] = make(map[string]interview.ClassResult)
		}
		results[r.Endpoint][r.ClassID.String()] = r
	}

	for _, ep := range n.Endpoints() {
		fmt.Fprintf(w, "  Endpoint %d\n", ep.Index())
		for _, c := range ep.Instances() {
			version := "?"
			if v, ok := c.Version(); ok {
				version = fmt.Sprintf("v%d", v)
			}
			line := fmt.Sprintf("    %-26s %-3s", c.Name(), version)
			if r, ok := results[ep.Index()][c.ID().String()]; ok {
				line += fmt.Sprintf(" %-8s %s", r.State, formatElapsed(r.Elapsed))
				if r.Err != nil {
					line += "  " + r.Err.Error()
				}
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
			for _, detail := range describe(c) {
				fmt.Fprintf(w, "      %s\n", detail)
			}
		}
	}

	if len(res.Classes) > 0 {
		counts := interviewSummary(res)
		fmt.Fprintf(w, "  %d done, %d failed, %d skipped\n",
			counts[interview.StateDone], counts[interview.StateFailed], counts[interview.StateSkipped])
	}
}

// interviewSummary counts the class outcomes of a result.
func interviewSummary(res interview.Result) map[interview.State]int {
	counts := make(map[interview.State]int)
	for _, c := range res.Classes {
		counts[c.State]++
	}
	return counts
}

// describe returns one line per cached value of an instance.
func describe(c cc.CommandClass) []string {
	var out []string
	switch c := c.(type) {
	case *versioncc.Version:
		if info := c.Info(); info != nil {
			fw := make([]string, len(info.Firmware))
			for i, p := range info.Firmware {
				fw[i] = p.String()
			}
			out = append(out, fmt.Sprintf("library %s, protocol %s, firmware %s",
				info.LibraryType, info.Protocol, strings.Join(fw, ",")))
		}
		if sw := c.Software(); sw != nil {
			out = append(out, fmt.Sprintf("sdk %s, application %s", sw.SDK, sw.Application))
		}

	case *battery.Battery:
		if r := c.Last(); r != nil {
			s := fmt.Sprintf("level %d%%", r.Level)
			if r.IsLow {
				s += " (low)"
			}
			if r.Status != nil {
				s += fmt.Sprintf(", %s", r.Status.Charging)
			}
			out = append(out, s)
		}

	case *meter.Meter:
		if s := c.Supported(); s != nil {
			out = append(out, fmt.Sprintf("%s meter, %s, reset allowed: %t", s.Type, s.Rate, s.ResetAllowed))
		}
		for _, scale := range c.Scales() {
			if r, ok := c.Value(scale); ok {
				out = append(out, fmt.Sprintf("%g %s", r.Value, meter.Unit(r.Type, r.Scale)))
			}
		}

	case *sensor.Sensor:
		for _, t := range c.Tracked() {
			if r, ok := c.Value(t); ok {
				out = append(out, fmt.Sprintf("%s: %g (scale %d)", t, r.Value, r.Scale))
			}
		}

	case *setpoint.Thermostat:
		for _, t := range c.Tracked() {
			if sp, ok := c.Value(t); ok {
				s := fmt.Sprintf("%s: %s", t, formatSetpoint(*sp))
				if lim, ok := c.Limits(t); ok {
					s += fmt.Sprintf(" [%s..%s]", formatSetpoint(lim.Min), formatSetpoint(lim.Max))
				}
				out = append(out, s)
			}
		}

	case *association.Association:
		for _, g := range c.Groups() {
			if grp, ok := c.Group(g); ok {
				out = append(out, fmt.Sprintf("group %d: %v (max %d)", g, grp.Nodes, grp.MaxNodes))
			}
		}

	case *naming.Naming:
		if name := c.Name(); name != nil {
			out = append(out, fmt.Sprintf("name %q", *name))
		}
		if loc := c.Location(); loc != nil {
			out = append(out, fmt.Sprintf("location %q", *loc))
		}

	case *switchbinary.Switch:
		if s := c.State(); s != nil {
			out = append(out, formatSwitch(*s))
		}
	}
	return out
}

func formatSetpoint(sp setpoint.Setpoint) string {
	unit := "°C"
	if sp.Scale == setpoint.ScaleFahrenheit {
		unit = "°F"
	}
	return fmt.Sprintf("%g%s", sp.Value, unit)
}

func formatSwitch(s switchbinary.State) string {
	out := "current " + onOff(s.Current)
	if s.Target != nil {
		out += ", target " + onOff(s.Target)
	}
	if s.Remaining != nil {
		out += ", remaining " + s.Remaining.String()
	}
	return out
}

func onOff(b *bool) string {
	switch {
	case b == nil:
		return "unknown"
	case *b:
		return "on"
	default:
		return "off"
	}
}

// formatElapsed mirrors the precision used by the log viewer.
func formatElapsed(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}
