package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := NewSlogAdapter(logger)

	a.Log(Event{
		SessionID: "abc", NodeID: 9, Direction: DirectionIn, Layer: LayerWire,
		Message: &MessageEvent{Type: MessageTypeReport, ClassID: 0x80, CommandID: 0x03, Params: []byte{0xFF}, Correlated: true},
	})

	out := buf.String()
	for _, want := range []string{"session=abc", "node=9", "class=Battery", "command=0x03", "params=ff", "correlated=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapterStateChange(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	NewSlogAdapter(logger).Log(Event{
		Layer:       LayerService,
		StateChange: &StateChangeEvent{Entity: StateEntityInterview, ClassID: 0x86, OldState: "PENDING", NewState: "FAILED", Reason: "cancelled"},
	})

	out := buf.String()
	for _, want := range []string{"entity=INTERVIEW", "class=Version", "new_state=FAILED", "reason=cancelled"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
	if strings.Contains(out, "node=") {
		t.Errorf("node attrs should be omitted for node 0: %s", out)
	}
}
