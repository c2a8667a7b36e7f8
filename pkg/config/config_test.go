package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meshcc/meshcc-go/pkg/connection"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

const sample = `
gateway:
  transport: tcp
  address: 192.168.1.20:4123
  homeId: 0xC0FFEE01
  reconnect:
    initial: 250ms
    max: 10s
logging:
  level: debug
  protocolLog: /tmp/meshcc.mlog
interview:
  timeout: 5s
nodes:
  - id: 2
    frequentListening: true
    endpoints:
      - classes: [Version, Meter, 0x80]
      - classes: ["binary switch"]
  - id: 3
    endpoints:
      - classes: [Version]
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Gateway.Transport != TransportTCP || cfg.Gateway.Address != "192.168.1.20:4123" {
		t.Errorf("gateway = %+v", cfg.Gateway)
	}
	if cfg.Gateway.HomeID != 0xC0FFEE01 {
		t.Errorf("homeId = %#x", cfg.Gateway.HomeID)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.SlogLevel())
	}
	if cfg.Logging.ProtocolLog != "/tmp/meshcc.mlog" {
		t.Errorf("protocolLog = %q", cfg.Logging.ProtocolLog)
	}
	if time.Duration(cfg.Interview.Timeout) != 5*time.Second {
		t.Errorf("timeout = %v", time.Duration(cfg.Interview.Timeout))
	}
	// Unset keys keep their defaults.
	if cfg.Interview.Concurrency != 4 {
		t.Errorf("concurrency = %d, want default 4", cfg.Interview.Concurrency)
	}

	b := cfg.Gateway.Backoff()
	if b.Initial != 250*time.Millisecond || b.Max != 10*time.Second {
		t.Errorf("backoff = %+v", b)
	}
	if b.Multiplier != connection.DefaultMultiplier {
		t.Errorf("multiplier = %v, want default", b.Multiplier)
	}

	if len(cfg.Nodes) != 2 {
		t.Fatalf("nodes = %d", len(cfg.Nodes))
	}
	n := cfg.Nodes[0]
	if n.ID != 2 || !n.FrequentListening {
		t.Errorf("node = %+v", n)
	}
	classes := n.Classes()
	if len(classes) != 2 {
		t.Fatalf("endpoints = %d", len(classes))
	}
	want := []wire.ClassID{wire.ClassVersion, wire.ClassMeter, wire.ClassBattery}
	for i, id := range want {
		if classes[0][i] != id {
			t.Errorf("root class %d = %v, want %v", i, classes[0][i], id)
		}
	}
	if classes[1][0] != wire.ClassSwitchBinary {
		t.Errorf("endpoint 1 class = %v", classes[1][0])
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Gateway.Transport != TransportSimulated {
		t.Errorf("transport = %q", cfg.Gateway.Transport)
	}
	if len(cfg.Simulation.Devices) != 1 {
		t.Errorf("devices = %d", len(cfg.Simulation.Devices))
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("level = %v", cfg.SlogLevel())
	}
}

func TestParseDiscoveredGateway(t *testing.T) {
	cfg, err := Parse([]byte("gateway: {transport: tcp, homeId: 0x1234}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Gateway.Address != "" || cfg.Gateway.HomeID != 0x1234 {
		t.Errorf("gateway = %+v", cfg.Gateway)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if cfg.Gateway.Transport != TransportSimulated {
		t.Errorf("transport = %q", cfg.Gateway.Transport)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{"tcp without address", "gateway: {transport: tcp}", "gateway.address"},
		{"websocket without url", "gateway: {transport: websocket}", "gateway.url"},
		{"websocket http url", "gateway: {transport: websocket, url: 'http://x'}", "gateway.url"},
		{"websocket http url with home id", "gateway: {transport: websocket, homeId: 1, url: 'http://x'}", "ws://"},
		{"unknown transport", "gateway: {transport: serial}", "serial"},
		{"unknown level", "logging: {level: loud}", "loud"},
		{"zero timeout", "interview: {timeout: 0s}", "interview.timeout"},
		{"zero concurrency", "interview: {concurrency: 0}", "concurrency"},
		{"node id zero", "nodes: [{id: 0}]", "non-zero"},
		{"duplicate node", "nodes: [{id: 2}, {id: 2}]", "duplicate id 2"},
		{"duplicate device", "simulation: {devices: [{id: 5}, {id: 5}]}", "duplicate id 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("error = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not mention %q", err, tt.errMsg)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad duration", "interview: {timeout: soon}"},
		{"unknown class", "nodes: [{id: 2, endpoints: [{classes: [Toaster]}]}]"},
		{"class not scalar", "nodes: [{id: 2, endpoints: [{classes: [[1]]}]}]"},
		{"not yaml", "gateway: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshcc.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Nodes) != 2 {
		t.Errorf("nodes = %d", len(cfg.Nodes))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), "timeout: 5s") {
		t.Errorf("duration not written as string:\n%s", out)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse(Marshal): %v\n%s", err, out)
	}
	if back.Nodes[0].Classes()[0][1] != wire.ClassMeter {
		t.Errorf("class lost in round trip")
	}
}
