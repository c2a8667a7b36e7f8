package log

import (
	"bytes"
	"testing"
	"time"
)

func TestEventEncodingUsesIntegerKeys(t *testing.T) {
	in := Event{
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC),
		SessionID: "s1",
		Direction: DirectionOut,
		Frame:     &FrameEvent{Size: 2, Data: []byte{0x25, 0x02}},
	}

	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(in); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	// map of 6 entries, first key the integer 1 (timestamp)
	if b[0] != 0xA6 || b[1] != 0x01 {
		t.Errorf("header = % X", b[:2])
	}

	var out Event
	if err := NewDecoder(&buf).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("timestamp = %v, want nanosecond precision", out.Timestamp)
	}
	if out.Frame == nil || !bytes.Equal(out.Frame.Data, in.Frame.Data) {
		t.Errorf("frame = %+v", out.Frame)
	}
}
