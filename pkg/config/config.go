package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meshcc/meshcc-go/pkg/connection"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Transport names accepted in gateway.transport.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
	TransportSimulated = "simulated"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root of a configuration file.
type Config struct {
	Gateway    GatewayConfig    `yaml:"gateway"`
	Logging    LoggingConfig    `yaml:"logging"`
	Interview  InterviewConfig  `yaml:"interview"`
	Nodes      []NodeConfig     `yaml:"nodes"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// GatewayConfig selects and addresses the transport driver.
type GatewayConfig struct {
	Transport string `yaml:"transport"`

	// Address is host:port for tcp.
	Address string `yaml:"address"`

	// URL is the ws:// endpoint for websocket.
	URL string `yaml:"url"`

	// HomeID locates the gateway through mDNS when Address or URL is
	// empty, and restricts discover to one network.
	HomeID uint32 `yaml:"homeId"`

	Reconnect BackoffConfig `yaml:"reconnect"`
}

// BackoffConfig mirrors connection.BackoffConfig.
type BackoffConfig struct {
	Initial    Duration `yaml:"initial"`
	Max        Duration `yaml:"max"`
	Multiplier float64  `yaml:"multiplier"`
	Jitter     float64  `yaml:"jitter"`
}

// LoggingConfig controls operational and protocol logging.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// ProtocolLog is the path of a .mlog capture file. Empty disables capture.
	ProtocolLog string `yaml:"protocolLog"`
}

// InterviewConfig tunes the interview orchestrator.
type InterviewConfig struct {
	// Timeout bounds each request of an interview.
	Timeout Duration `yaml:"timeout"`

	// Concurrency bounds how many nodes are interviewed at once.
	Concurrency int `yaml:"concurrency"`
}

// NodeConfig declares a node known to the gateway.
type NodeConfig struct {
	ID                uint16           `yaml:"id"`
	FrequentListening bool             `yaml:"frequentListening"`
	Endpoints         []EndpointConfig `yaml:"endpoints"`
}

// EndpointConfig lists the command classes of one endpoint. Endpoints are
// numbered in file order, root first.
type EndpointConfig struct {
	Classes []ClassRef `yaml:"classes"`
}

// SimulationConfig describes the devices behind the simulated gateway.
type SimulationConfig struct {
	Devices []SimulatedDevice `yaml:"devices"`
}

// SimulatedDevice is one demo device.
type SimulatedDevice struct {
	ID       uint16 `yaml:"id"`
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// Default returns a configuration for a single simulated demo device.
func Default() *Config {
	b := connection.DefaultBackoffConfig()
	return &Config{
		Gateway: GatewayConfig{
			Transport: TransportSimulated,
			Reconnect: BackoffConfig{
				Initial:    Duration(b.Initial),
				Max:        Duration(b.Max),
				Multiplier: b.Multiplier,
				Jitter:     b.Jitter,
			},
		},
		Logging:   LoggingConfig{Level: "info"},
		Interview: InterviewConfig{Timeout: Duration(30 * time.Second), Concurrency: 4},
		Simulation: SimulationConfig{
			Devices: []SimulatedDevice{{ID: 2}},
		},
	}
}

// Load reads and validates the file at path. Missing keys keep the values
// from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML on top of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Gateway.Transport {
	case TransportTCP:
		if c.Gateway.Address == "" && c.Gateway.HomeID == 0 {
			return fmt.Errorf("%w: gateway.address or gateway.homeId is required for tcp", ErrInvalid)
		}
	case TransportWebSocket:
		if c.Gateway.URL == "" && c.Gateway.HomeID == 0 {
			return fmt.Errorf("%w: gateway.url or gateway.homeId is required for websocket", ErrInvalid)
		}
		if c.Gateway.URL != "" && !strings.HasPrefix(c.Gateway.URL, "ws://") && !strings.HasPrefix(c.Gateway.URL, "wss://") {
			return fmt.Errorf("%w: gateway.url must be a ws:// or wss:// URL", ErrInvalid)
		}
	case TransportSimulated:
	default:
		return fmt.Errorf("%w: unknown gateway.transport %q", ErrInvalid, c.Gateway.Transport)
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Interview.Timeout <= 0 {
		return fmt.Errorf("%w: interview.timeout must be positive", ErrInvalid)
	}
	if c.Interview.Concurrency < 1 {
		return fmt.Errorf("%w: interview.concurrency must be at least 1", ErrInvalid)
	}

	seen := make(map[uint16]bool)
	for i, n := range c.Nodes {
		if n.ID == 0 {
			return fmt.Errorf("%w: nodes[%d]: id must be non-zero", ErrInvalid, i)
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: nodes[%d]: duplicate id %d", ErrInvalid, i, n.ID)
		}
		seen[n.ID] = true
		if len(n.Endpoints) > 256 {
			return fmt.Errorf("%w: nodes[%d]: too many endpoints", ErrInvalid, i)
		}
	}

	seen = make(map[uint16]bool)
	for i, d := range c.Simulation.Devices {
		if d.ID == 0 {
			return fmt.Errorf("%w: simulation.devices[%d]: id must be non-zero", ErrInvalid, i)
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: simulation.devices[%d]: duplicate id %d", ErrInvalid, i, d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.Logging.Level)
	return l
}

// Backoff converts the reconnect settings. Zero fields fall back to the
// connection defaults.
func (g GatewayConfig) Backoff() connection.BackoffConfig {
	return connection.BackoffConfig{
		Initial:    time.Duration(g.Reconnect.Initial),
		Max:        time.Duration(g.Reconnect.Max),
		Multiplier: g.Reconnect.Multiplier,
		Jitter:     g.Reconnect.Jitter,
	}
}

// Classes returns the class ids of each endpoint, root first.
func (n NodeConfig) Classes() [][]wire.ClassID {
	out := make([][]wire.ClassID, len(n.Endpoints))
	for i, ep := range n.Endpoints {
		ids := make([]wire.ClassID, len(ep.Classes))
		for j, c := range ep.Classes {
			ids[j] = wire.ClassID(c)
		}
		out[i] = ids
	}
	return out
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalid, s)
	}
}
