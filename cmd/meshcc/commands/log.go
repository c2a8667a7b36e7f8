package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshcc/meshcc-go/pkg/log"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

var (
	viewLayer     string
	viewDirection string
	viewCategory  string
	viewNode      uint16
	viewClass     string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View or summarize protocol capture files",
	Long: `Capture files (.mlog) are written when a command runs with
--protocol-log or logging.protocolLog set.`,
}

var logViewCmd = &cobra.Command{
	Use:   "view <file.mlog>",
	Short: "View a capture file in human-readable form",
	Example: `  meshcc log view run.mlog
  meshcc log view --layer wire --direction in run.mlog
  meshcc log view --node 5 --class Meter run.mlog`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := viewFilter()
		if err != nil {
			return err
		}
		return RunView(args[0], filter, cmd.OutOrStdout())
	},
}

var logStatsCmd = &cobra.Command{
	Use:   "stats <file.mlog>",
	Short: "Show statistics about a capture file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunStats(args[0], cmd.OutOrStdout())
	},
}

func init() {
	logViewCmd.Flags().StringVar(&viewLayer, "layer", "", "filter by layer (transport, wire, service)")
	logViewCmd.Flags().StringVar(&viewDirection, "direction", "", "filter by direction (in, out)")
	logViewCmd.Flags().StringVar(&viewCategory, "category", "", "filter by category (message, state, error)")
	logViewCmd.Flags().Uint16Var(&viewNode, "node", 0, "filter by node id")
	logViewCmd.Flags().StringVar(&viewClass, "class", "", "filter by command class name or id")

	logCmd.AddCommand(logViewCmd, logStatsCmd)
	rootCmd.AddCommand(logCmd)
}

func viewFilter() (log.Filter, error) {
	filter := log.Filter{NodeID: viewNode}
	if viewLayer != "" {
		l, err := parseLayer(viewLayer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}
	if viewDirection != "" {
		d, err := parseDirection(viewDirection)
		if err != nil {
			return filter, err
		}
		filter.Direction = &d
	}
	if viewCategory != "" {
		c, err := parseCategory(viewCategory)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if viewClass != "" {
		id, err := wire.ParseClassID(viewClass)
		if err != nil {
			return filter, err
		}
		v := uint16(id)
		filter.ClassID = &v
	}
	return filter, nil
}

// parseLayer parses a layer string (case-insensitive).
func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "service":
		return log.LayerService, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, or service)", s)
	}
}

// parseDirection parses a direction string (case-insensitive).
func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}

// RunView writes the events of the capture at path that match filter.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] DIRECTION LAYER node/endpoint Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var typeLabel string
	switch {
	case event.Frame != nil:
		typeLabel = "Frame"
	case event.Message != nil:
		typeLabel = event.Message.Type.String()
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	where := "-"
	if event.NodeID != 0 {
		where = fmt.Sprintf("%d/%d", event.NodeID, event.Endpoint)
	}

	fmt.Fprintf(w, "%s [%s] %-3s %s %s %s\n", ts, shortenID(event.SessionID),
		event.Direction, event.Layer, where, typeLabel)

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of a session id.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	class := wire.ClassID(msg.ClassID)
	fmt.Fprintf(w, "  Class: %s  Command: %s\n", class, wire.CommandID(msg.CommandID))
	if len(msg.Params) > 0 {
		fmt.Fprintf(w, "  Params: %s\n", hex.EncodeToString(msg.Params))
	}
	if msg.Correlated {
		fmt.Fprintln(w, "  Correlated: yes")
	}
	f, err := wire.EncodeFrame(class, wire.CommandID(msg.CommandID), msg.Params)
	if err != nil {
		return
	}
	if v, err := decodePayload(f); err == nil && v != nil {
		fmt.Fprintf(w, "  Decoded: %+v\n", v)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	entity := sc.Entity.String()
	if sc.Entity == log.StateEntityInterview {
		entity += " " + wire.ClassID(sc.ClassID).String()
	}
	fmt.Fprintf(w, "  Entity: %s\n", entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Nodes             map[uint16]*NodeStats
	Sessions          map[string]bool
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// NodeStats holds statistics for a single node.
type NodeStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Commands   int
	Reports    int
	Correlated int
	Classes    map[wire.ClassID]int
	Errors     int
}

// RunStats analyzes the capture at path and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := collectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func collectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Nodes:             make(map[uint16]*NodeStats),
		Sessions:          make(map[string]bool),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++
		stats.Sessions[event.SessionID] = true

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}
		if event.Error != nil {
			stats.Errors++
		}

		if event.NodeID == 0 {
			continue
		}
		ns, ok := stats.Nodes[event.NodeID]
		if !ok {
			ns = &NodeStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				Classes:   make(map[wire.ClassID]int),
			}
			stats.Nodes[event.NodeID] = ns
		}
		if event.Timestamp.After(ns.LastSeen) {
			ns.LastSeen = event.Timestamp
		}
		if event.Error != nil {
			ns.Errors++
		}
		if m := event.Message; m != nil {
			ns.Classes[wire.ClassID(m.ClassID)]++
			switch m.Type {
			case log.MessageTypeCommand:
				ns.Commands++
			case log.MessageTypeReport:
				ns.Reports++
				if m.Correlated {
					ns.Correlated++
				}
			}
		}
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Protocol Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintf(w, "Sessions:   %d\n", len(stats.Sessions))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerWire, log.LayerService} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Nodes: %d\n", len(stats.Nodes))
	ids := make([]uint16, 0, len(stats.Nodes))
	for id := range stats.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		ns := stats.Nodes[id]
		fmt.Fprintf(w, "  [node %d] %d commands, %d reports (%d correlated), duration %s\n",
			id, ns.Commands, ns.Reports, ns.Correlated, ns.LastSeen.Sub(ns.FirstSeen).Round(time.Millisecond))
		classes := make([]wire.ClassID, 0, len(ns.Classes))
		for c := range ns.Classes {
			classes = append(classes, c)
		}
		slices.Sort(classes)
		for _, c := range classes {
			fmt.Fprintf(w, "           %-26s %d\n", c.String()+":", ns.Classes[c])
		}
		if ns.Errors > 0 {
			fmt.Fprintf(w, "           Errors: %d\n", ns.Errors)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
