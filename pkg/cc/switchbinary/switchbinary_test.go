package switchbinary

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/meshcc/meshcc-go/pkg/cc/cctest"
	"github.com/meshcc/meshcc-go/pkg/duration"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

func TestBuildSetByVersion(t *testing.T) {
	tests := []struct {
		name    string
		version uint8
		on      bool
		d       duration.Duration
		want    []byte
	}{
		{"v1 drops duration", 1, true, duration.Of(5 * time.Second), []byte{0x25, 0x01, 0xFF}},
		{"v2 seconds", 2, true, duration.Of(5 * time.Second), []byte{0x25, 0x01, 0xFF, 0x05}},
		{"v2 default", 2, false, duration.Default, []byte{0x25, 0x01, 0x00, 0xFF}},
		{"v2 minutes", 2, true, duration.Of(10 * time.Minute), []byte{0x25, 0x01, 0xFF, 0x89}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := BuildSet(tt.version, tt.on, tt.d)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(f.Bytes(), tt.want) {
				t.Errorf("got % X, want % X", f.Bytes(), tt.want)
			}
		})
	}
}

func TestParseReport(t *testing.T) {
	s, err := ParseReport(wire.NewFrame(wire.ClassSwitchBinary, CmdReport, []byte{0xFE}))
	if err != nil {
		t.Fatal(err)
	}
	if s.Current != nil || s.Target != nil {
		t.Errorf("unknown report = %+v", s)
	}

	s, err = ParseReport(wire.NewFrame(wire.ClassSwitchBinary, CmdReport, []byte{0x00, 0xFF, 0x03}))
	if err != nil {
		t.Fatal(err)
	}
	if s.Current == nil || *s.Current || s.Target == nil || !*s.Target {
		t.Errorf("transition report = %+v", s)
	}
	if s.Remaining == nil || s.Remaining.Value != 3*time.Second {
		t.Errorf("remaining = %v", s.Remaining)
	}
}

func TestSwitchSet(t *testing.T) {
	host := cctest.NewHost(6)
	sw := New(host)
	sw.SetVersion(2)
	host.Add(sw)

	on := false
	host.Respond(func(req wire.Frame) []wire.Frame {
		switch req.CommandID() {
		case CmdSet:
			v, _, _ := ParseSet(req)
			on = v
		case CmdGet:
			return []wire.Frame{BuildReport(State{Current: &on})}
		}
		return nil
	})

	st, err := sw.Set(context.Background(), true, duration.Instant)
	if err != nil {
		t.Fatal(err)
	}
	if st.Current == nil || !*st.Current {
		t.Errorf("state = %+v", st)
	}
	if sw.State() == nil || !*sw.State().Current {
		t.Error("instance state not updated")
	}
	if sent := host.Sent(); len(sent[0].Params()) != 2 {
		t.Errorf("v2 set should carry a duration: % X", sent[0].Bytes())
	}
}
