package naming

import (
	"context"
	"errors"
	"testing"

	"github.com/meshcc/meshcc-go/pkg/cc/cctest"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

func TestBuildText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantSel  byte
		wantText string
	}{
		{"ascii", "Kitchen", 0x00, "Kitchen"},
		{"latin1", "Bad oben größe", 0x01, "Bad oben größe"},
		{"utf16 truncated to whole units", "温度センサー台所の上", 0x02, "温度センサー台所"},
		{"ascii truncated", "Living room ceiling lamp", 0x00, "Living room ceil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := BuildText(CmdNameSet, tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if f.Params()[0] != tt.wantSel {
				t.Errorf("selector = %d, want %d", f.Params()[0], tt.wantSel)
			}
			if len(f.Params())-1 > MaxTextLen {
				t.Errorf("text is %d bytes", len(f.Params())-1)
			}
			got, err := ParseText(f)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.wantText {
				t.Errorf("text = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestParseTextErrors(t *testing.T) {
	for _, p := range [][]byte{nil, {0x02, 0x00}, {0x00, 0xC3}} {
		if _, err := ParseText(wire.NewFrame(wire.ClassNodeNaming, CmdNameReport, p)); !errors.Is(err, wire.ErrMalformedPayload) {
			t.Errorf("% X: error = %v", p, err)
		}
	}
}

func TestNamingInterviewAndSet(t *testing.T) {
	host := cctest.NewHost(2)
	n := New(host)
	host.Add(n)
	host.Respond(func(req wire.Frame) []wire.Frame {
		switch req.CommandID() {
		case CmdNameGet:
			f, _ := BuildText(CmdNameReport, "Thermostat")
			return []wire.Frame{f}
		case CmdLocationGet:
			f, _ := BuildText(CmdLocationReport, "Küche")
			return []wire.Frame{f}
		}
		return nil
	})
	ctx := context.Background()

	if err := n.Interview(ctx); err != nil {
		t.Fatal(err)
	}
	if n.Name() == nil || *n.Name() != "Thermostat" {
		t.Errorf("name = %v", n.Name())
	}
	if n.Location() == nil || *n.Location() != "Küche" {
		t.Errorf("location = %v", n.Location())
	}

	if err := n.SetLocation(ctx, "Wohnzimmer"); err != nil {
		t.Fatal(err)
	}
	if *n.Location() != "Wohnzimmer" {
		t.Errorf("location after set = %q", *n.Location())
	}
	sent := host.Sent()
	if last := sent[len(sent)-1]; !last.Is(wire.ClassNodeNaming, CmdLocationSet) {
		t.Errorf("last sent = %v", last)
	}
}
