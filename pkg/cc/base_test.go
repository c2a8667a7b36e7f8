package cc

import (
	"errors"
	"testing"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

const (
	cmdGet       wire.CommandID = 0x01
	cmdReport    wire.CommandID = 0x02
	cmdV2Get     wire.CommandID = 0x03
	cmdV3Get     wire.CommandID = 0x05
	cmdReset     wire.CommandID = 0x07
	capResetFlag                = "reset"
)

func testCommands() []Command {
	return []Command{
		{ID: cmdGet, Name: "Get"},
		{ID: cmdReport, Name: "Report"},
		{ID: cmdV2Get, Name: "SupportedGet", MinVersion: 2},
		{ID: cmdV3Get, Name: "CapabilitiesGet", MinVersion: 3},
		{ID: cmdReset, Name: "Reset", MinVersion: 2, Capability: capResetFlag},
	}
}

func TestIsSupported(t *testing.T) {
	b := NewBase(wire.ClassMeter, nil, testCommands())

	t.Run("UnknownVersion", func(t *testing.T) {
		if got := b.IsSupported(cmdGet); got != SupportYes {
			t.Errorf("base command = %v, want YES", got)
		}
		for _, cmd := range []wire.CommandID{cmdV2Get, cmdV3Get, cmdReset} {
			if got := b.IsSupported(cmd); got != SupportUnknown {
				t.Errorf("cmd %v = %v, want UNKNOWN", cmd, got)
			}
		}
		if b.EffectiveVersion() != 1 {
			t.Errorf("EffectiveVersion = %d, want 1", b.EffectiveVersion())
		}
	})

	t.Run("KnownVersion", func(t *testing.T) {
		b.SetVersion(2)
		if got := b.IsSupported(cmdV2Get); got != SupportYes {
			t.Errorf("v2 command = %v, want YES", got)
		}
		if got := b.IsSupported(cmdV3Get); got != SupportNo {
			t.Errorf("v3 command = %v, want NO", got)
		}
		if got := b.IsSupported(cmdReset); got != SupportUnknown {
			t.Errorf("capability-gated command = %v, want UNKNOWN before capability report", got)
		}
		if b.EffectiveVersion() != 2 {
			t.Errorf("EffectiveVersion = %d, want 2", b.EffectiveVersion())
		}
	})

	t.Run("Capability", func(t *testing.T) {
		b.SetCapability(capResetFlag, false)
		if got := b.IsSupported(cmdReset); got != SupportNo {
			t.Errorf("reset = %v, want NO", got)
		}
		b.SetCapability(capResetFlag, true)
		if got := b.IsSupported(cmdReset); got != SupportYes {
			t.Errorf("reset = %v, want YES", got)
		}
	})

	t.Run("UnknownCommand", func(t *testing.T) {
		if got := b.IsSupported(0x7E); got != SupportNo {
			t.Errorf("undeclared command = %v, want NO", got)
		}
	})
}

func TestVersionGatingMonotonic(t *testing.T) {
	b := NewBase(wire.ClassMeter, nil, testCommands())
	b.SetVersion(3)
	for _, v := range []uint8{3, 1, 4} {
		b.SetVersion(v)
		if got := b.IsSupported(cmdV2Get); !got.Known() {
			t.Fatalf("support reverted to unknown after SetVersion(%d)", v)
		}
	}
}

func TestVersionZero(t *testing.T) {
	b := NewBase(wire.ClassMeter, nil, testCommands())
	b.SetVersion(0)

	if v, known := b.Version(); v != 0 || !known {
		t.Errorf("Version() = %d, %v", v, known)
	}
	if got := b.IsSupported(cmdV2Get); got != SupportNo {
		t.Errorf("v2 command on unimplemented class = %v", got)
	}
	if b.EffectiveVersion() != 1 {
		t.Errorf("EffectiveVersion = %d, want 1", b.EffectiveVersion())
	}
}

func TestRequire(t *testing.T) {
	b := NewBase(wire.ClassMeter, nil, testCommands())

	if err := b.Require(cmdV3Get); err != nil {
		t.Errorf("unknown support should pass, got %v", err)
	}
	b.SetVersion(2)
	if err := b.Require(cmdV3Get); !errors.Is(err, ErrCommandNotSupported) {
		t.Errorf("expected ErrCommandNotSupported, got %v", err)
	}
}

func TestSupportAnd(t *testing.T) {
	tests := []struct {
		a, b, want Support
	}{
		{SupportYes, SupportYes, SupportYes},
		{SupportYes, SupportUnknown, SupportUnknown},
		{SupportUnknown, SupportNo, SupportNo},
		{SupportNo, SupportYes, SupportNo},
	}
	for _, tt := range tests {
		if got := tt.a.And(tt.b); got != tt.want {
			t.Errorf("%v.And(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
