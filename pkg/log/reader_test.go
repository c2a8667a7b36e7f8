package log

import (
	"testing"
	"time"
)

func TestFilterMatches(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	meter := uint16(0x32)
	battery := uint16(0x80)
	in := DirectionIn
	wireLayer := LayerWire
	errCat := CategoryError
	later := ts.Add(time.Second)

	msg := Event{
		Timestamp: ts, SessionID: "a", NodeID: 5, Direction: DirectionIn, Layer: LayerWire,
		Message: &MessageEvent{ClassID: 0x32, CommandID: 0x02},
	}
	interview := Event{
		Timestamp: ts, SessionID: "a", NodeID: 5, Layer: LayerService, Category: CategoryState,
		StateChange: &StateChangeEvent{Entity: StateEntityInterview, ClassID: 0x32},
	}
	frame := Event{Timestamp: ts, NodeID: 5, Frame: &FrameEvent{Size: 3}}

	tests := []struct {
		name   string
		filter Filter
		event  Event
		want   bool
	}{
		{"empty matches", Filter{}, msg, true},
		{"session", Filter{SessionID: "b"}, msg, false},
		{"node", Filter{NodeID: 5}, msg, true},
		{"other node", Filter{NodeID: 6}, msg, false},
		{"class on message", Filter{ClassID: &meter}, msg, true},
		{"class mismatch", Filter{ClassID: &battery}, msg, false},
		{"class on interview", Filter{ClassID: &meter}, interview, true},
		{"class excludes frames", Filter{ClassID: &meter}, frame, false},
		{"direction", Filter{Direction: &in}, msg, true},
		{"layer", Filter{Layer: &wireLayer}, interview, false},
		{"category", Filter{Category: &errCat}, msg, false},
		{"start inclusive", Filter{TimeStart: &ts}, msg, true},
		{"end exclusive", Filter{TimeEnd: &ts}, msg, false},
		{"before end", Filter{TimeEnd: &later}, msg, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.event); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilteredReader(t *testing.T) {
	ts := time.Now()
	path := createTestLogFile(t, []Event{
		{Timestamp: ts, NodeID: 2},
		{Timestamp: ts, NodeID: 3},
		{Timestamp: ts, NodeID: 2},
	})

	r, err := NewFilteredReader(path, Filter{NodeID: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if got := readAll(t, r); len(got) != 2 {
		t.Errorf("read %d events, want 2", len(got))
	}
}

func TestNewReaderMissingFile(t *testing.T) {
	if _, err := NewReader(t.TempDir() + "/missing.mlog"); err == nil {
		t.Error("expected error for missing file")
	}
}
