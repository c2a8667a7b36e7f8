package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshcc/meshcc-go/pkg/cc/association"
	"github.com/meshcc/meshcc-go/pkg/cc/battery"
	"github.com/meshcc/meshcc-go/pkg/cc/meter"
	"github.com/meshcc/meshcc-go/pkg/cc/naming"
	"github.com/meshcc/meshcc-go/pkg/cc/sensor"
	"github.com/meshcc/meshcc-go/pkg/cc/setpoint"
	"github.com/meshcc/meshcc-go/pkg/cc/switchbinary"
	"github.com/meshcc/meshcc-go/pkg/cc/versioncc"
	"github.com/meshcc/meshcc-go/pkg/transport"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

var decodeEnvelope bool

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a frame or envelope given in hex",
	Long: `Decode parses a command class frame and prints its class, command and
decoded fields. With --envelope the input starts with the 3-byte
node id and endpoint header used by the gateway link.

Spaces and colons in the input are ignored.`,
	Example: `  meshcc decode 32 02 21 74 00 00 30 39
  meshcc decode --envelope 0002 00 8003 57`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := parseHex(strings.Join(args, ""))
		if err != nil {
			return err
		}
		return runDecode(cmd.OutOrStdout(), b, decodeEnvelope)
	},
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeEnvelope, "envelope", false, "input includes the node id and endpoint header")
	rootCmd.AddCommand(decodeCmd)
}

func parseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "", "0x", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

func runDecode(w io.Writer, b []byte, envelope bool) error {
	var f wire.Frame
	if envelope {
		env, err := transport.ParseEnvelope(b)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Node:     %d\n", env.NodeID)
		fmt.Fprintf(w, "Endpoint: %d\n", env.Endpoint)
		f = env.Frame
	} else {
		var err error
		if f, err = wire.ParseFrame(b); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Class:    %s (0x%02X)\n", f.ClassID(), uint16(f.ClassID()))
	fmt.Fprintf(w, "Command:  %s\n", f.CommandID())
	if len(f.Params()) > 0 {
		fmt.Fprintf(w, "Params:   %s\n", hex.EncodeToString(f.Params()))
	}

	v, err := decodePayload(f)
	if err != nil {
		return err
	}
	if v != nil {
		fmt.Fprintf(w, "Decoded:  %+v\n", v)
	}
	return nil
}

// decodePayload parses frames of the implemented classes. It returns nil
// for commands without a decoder.
func decodePayload(f wire.Frame) (any, error) {
	switch f.ClassID() {
	case wire.ClassVersion:
		return decodeVersion(f)
	case wire.ClassBattery:
		switch f.CommandID() {
		case battery.CmdReport:
			return battery.ParseReport(f)
		case battery.CmdHealthReport:
			return battery.ParseHealthReport(f)
		}
	case wire.ClassMeter:
		switch f.CommandID() {
		case meter.CmdGet:
			scale, rate := meter.ParseGet(f)
			return struct {
				Scale meter.Scale
				Rate  meter.RateType
			}{scale, rate}, nil
		case meter.CmdReport:
			return meter.ParseReport(f)
		case meter.CmdSupportedReport:
			return meter.ParseSupportedReport(f)
		}
	case wire.ClassSensorMultilevel:
		return decodeSensor(f)
	case wire.ClassThermostatSetpoint:
		return decodeSetpoint(f)
	case wire.ClassAssociation:
		return decodeAssociation(f)
	case wire.ClassNodeNaming:
		switch f.CommandID() {
		case naming.CmdNameSet, naming.CmdNameReport, naming.CmdLocationSet, naming.CmdLocationReport:
			text, err := naming.ParseText(f)
			if err != nil {
				return nil, err
			}
			return struct{ Text string }{text}, nil
		}
	case wire.ClassSwitchBinary:
		switch f.CommandID() {
		case switchbinary.CmdSet:
			on, d, err := switchbinary.ParseSet(f)
			if err != nil {
				return nil, err
			}
			return struct {
				On       bool
				Duration string
			}{on, d.String()}, nil
		case switchbinary.CmdReport:
			s, err := switchbinary.ParseReport(f)
			if err != nil {
				return nil, err
			}
			return formatSwitch(s), nil
		}
	}
	return nil, nil
}

func decodeVersion(f wire.Frame) (any, error) {
	switch f.CommandID() {
	case versioncc.CmdReport:
		return versioncc.ParseReport(f)
	case versioncc.CmdCommandClassGet:
		id, err := versioncc.ParseCommandClassGet(f)
		if err != nil {
			return nil, err
		}
		return struct{ Class wire.ClassID }{id}, nil
	case versioncc.CmdCommandClassReport:
		id, v, err := versioncc.ParseCommandClassReport(f)
		if err != nil {
			return nil, err
		}
		return struct {
			Class   wire.ClassID
			Version uint8
		}{id, v}, nil
	case versioncc.CmdCapabilitiesReport:
		return versioncc.ParseCapabilitiesReport(f)
	case versioncc.CmdZWaveSoftwareReport:
		return versioncc.ParseSoftwareReport(f)
	}
	return nil, nil
}

func decodeSensor(f wire.Frame) (any, error) {
	switch f.CommandID() {
	case sensor.CmdGet:
		t, scale, ok := sensor.ParseGet(f)
		if !ok {
			return nil, nil
		}
		return struct {
			Type  sensor.Type
			Scale uint8
		}{t, scale}, nil
	case sensor.CmdReport:
		return sensor.ParseReport(f)
	case sensor.CmdSupportedSensorReport:
		return sensor.ParseSupportedSensorReport(f)
	case sensor.CmdSupportedScaleReport:
		t, scales, err := sensor.ParseSupportedScaleReport(f)
		if err != nil {
			return nil, err
		}
		return struct {
			Type   sensor.Type
			Scales []uint8
		}{t, scales}, nil
	}
	return nil, nil
}

func decodeSetpoint(f wire.Frame) (any, error) {
	type typed struct {
		Type     setpoint.Type
		Setpoint string
	}
	switch f.CommandID() {
	case setpoint.CmdSet:
		t, sp, err := setpoint.ParseSet(f)
		if err != nil {
			return nil, err
		}
		return typed{t, formatSetpoint(sp)}, nil
	case setpoint.CmdReport:
		t, sp, err := setpoint.ParseReport(f)
		if err != nil {
			return nil, err
		}
		return typed{t, formatSetpoint(sp)}, nil
	case setpoint.CmdSupportedReport:
		return setpoint.ParseSupportedReport(f)
	case setpoint.CmdCapabilitiesReport:
		t, c, err := setpoint.ParseCapabilitiesReport(f)
		if err != nil {
			return nil, err
		}
		return struct {
			Type     setpoint.Type
			Min, Max string
		}{t, formatSetpoint(c.Min), formatSetpoint(c.Max)}, nil
	}
	return nil, nil
}

func decodeAssociation(f wire.Frame) (any, error) {
	switch f.CommandID() {
	case association.CmdSet, association.CmdRemove:
		group, nodes, err := association.ParseSet(f)
		if err != nil {
			return nil, err
		}
		return struct {
			Group uint8
			Nodes []uint16
		}{group, nodes}, nil
	case association.CmdReport:
		return association.ParseReport(f)
	case association.CmdGroupingsReport:
		n, err := association.ParseGroupingsReport(f)
		if err != nil {
			return nil, err
		}
		return struct{ Groups uint8 }{n}, nil
	case association.CmdSpecificGroupReport:
		g, err := association.ParseSpecificGroupReport(f)
		if err != nil {
			return nil, err
		}
		return struct{ Group uint8 }{g}, nil
	}
	return nil, nil
}
