package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshcc/meshcc-go/pkg/config"
	"github.com/meshcc/meshcc-go/pkg/service"
)

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()

	env, err := newEnvironment(context.Background(), config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(env.Close)

	var out bytes.Buffer
	return newShell(env.controller, &out, 2*time.Second), &out
}

func TestShell(t *testing.T) {
	sh, out := newTestShell(t)
	ctx := context.Background()

	run := func(line string) string {
		out.Reset()
		assert.False(t, sh.exec(ctx, line))
		return out.String()
	}

	t.Run("Nodes", func(t *testing.T) {
		assert.Contains(t, run("nodes"), "node 2")
	})

	t.Run("Interview", func(t *testing.T) {
		s := run("interview 2")
		assert.Contains(t, s, "Node 2 (READY)")
		assert.NotContains(t, s, "Error:")
	})

	t.Run("Show", func(t *testing.T) {
		assert.Contains(t, run("show 2"), `location "lab"`)
	})

	t.Run("Battery", func(t *testing.T) {
		assert.Contains(t, run("battery 2"), "level 87%")
	})

	t.Run("Meter", func(t *testing.T) {
		assert.Contains(t, run("meter 2 2"), "56.7 W")
		assert.Contains(t, run("meter-reset 2"), "Meter reset.")
	})

	t.Run("Sensor", func(t *testing.T) {
		assert.Contains(t, run("sensor 2 air_temperature 0"), "21.5")
		assert.Contains(t, run("sensor 2 nonsense"), "Error:")
	})

	t.Run("Setpoint", func(t *testing.T) {
		assert.Contains(t, run("setpoint 2 heating"), "20.5°C")
		assert.Contains(t, run("setpoint 2 heating 22.5"), "22.5°C")
		assert.Contains(t, run("setpoint 2 heating 40"), "Error:")
	})

	t.Run("Switch", func(t *testing.T) {
		assert.Contains(t, run("switch 2"), "current off")
		assert.Contains(t, run("switch 2 on"), "current on")
		assert.Contains(t, run("switch 2 maybe"), "Error:")
	})

	t.Run("Naming", func(t *testing.T) {
		assert.Contains(t, run("name 2 kitchen plug"), `name: "kitchen plug"`)
		assert.Contains(t, run("location 2"), `location: "lab"`)
	})

	t.Run("Association", func(t *testing.T) {
		assert.Contains(t, run("assoc 2 1"), "group 1: [1]")
		assert.Contains(t, run("assoc 2 1 add 3"), "group 1: [1 3]")
		assert.Contains(t, run("assoc 2 1 remove 1"), "group 1: [3]")
		assert.Contains(t, run("assoc 2 1 toggle 4"), "Error:")
	})

	t.Run("Errors", func(t *testing.T) {
		assert.Contains(t, run("battery"), "node id required")
		assert.Contains(t, run("battery 9"), "Error:")
		assert.Contains(t, run("frobnicate"), "Unknown command: frobnicate")
		assert.Empty(t, run("   "))
	})

	t.Run("Quit", func(t *testing.T) {
		assert.True(t, sh.exec(ctx, "quit"))
	})
}

func TestShellHandleEvent(t *testing.T) {
	var out bytes.Buffer
	sh := newShell(nil, &out, time.Second)

	sh.handleEvent(service.Event{Type: service.EventInterviewCompleted, NodeID: 2})
	sh.handleEvent(service.Event{Type: service.EventClassStateChanged, NodeID: 2})
	assert.Equal(t, "[event] "+service.EventInterviewCompleted.String()+" node 2\n", out.String())
}

func TestParseEnum(t *testing.T) {
	name := func(v uint8) string {
		if v == 1 {
			return "AIR_TEMPERATURE"
		}
		return "OTHER"
	}

	v, err := parseEnum("air-temperature", name)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), v)

	v, err = parseEnum("0x05", name)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), v)

	_, err = parseEnum("rain", name)
	assert.Error(t, err)
}

func TestParseNodeID(t *testing.T) {
	id, err := parseNodeID("12")
	require.NoError(t, err)
	assert.Equal(t, uint16(12), id)

	for _, s := range []string{"0", "-1", "70000", "x"} {
		_, err := parseNodeID(s)
		assert.Error(t, err, s)
	}
}
