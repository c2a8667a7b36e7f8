package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meshcc/meshcc-go/internal/testharness/mock"
	"github.com/meshcc/meshcc-go/pkg/config"
	"github.com/meshcc/meshcc-go/pkg/discovery"
	"github.com/meshcc/meshcc-go/pkg/log"
	"github.com/meshcc/meshcc-go/pkg/service"
	"github.com/meshcc/meshcc-go/pkg/transport"
)

// environment is a running controller built from the configuration.
type environment struct {
	controller *service.Controller
	capture    *log.Session

	// network is set in simulated mode.
	network *mock.Network

	fileLog *log.FileLogger
}

// newEnvironment connects to the configured gateway, registers the
// configured nodes and starts the controller.
func newEnvironment(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*environment, error) {
	env := &environment{}

	if cfg.Logging.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.Logging.ProtocolLog)
		if err != nil {
			return nil, fmt.Errorf("open protocol log: %w", err)
		}
		env.fileLog = fl
		env.capture = log.NewSession(fl)
		logger.Info("protocol capture", "path", fl.Path(), "session", env.capture.ID())
	}

	driver, err := env.driver(ctx, cfg, logger)
	if err != nil {
		env.closeLog()
		return nil, err
	}

	svcCfg := service.DefaultControllerConfig()
	svcCfg.InterviewStepTimeout = time.Duration(cfg.Interview.Timeout)
	svcCfg.MaxConcurrentInterviews = cfg.Interview.Concurrency
	svcCfg.Logger = logger
	svcCfg.Capture = env.capture

	ctrl, err := service.NewController(driver, svcCfg)
	if err != nil {
		_ = driver.Close()
		env.closeLog()
		return nil, err
	}
	env.controller = ctrl

	for _, spec := range nodeSpecs(cfg, env.network) {
		if _, err := ctrl.AddNode(spec); err != nil {
			env.Close()
			return nil, fmt.Errorf("add node %d: %w", spec.ID, err)
		}
	}

	if err := ctrl.Start(ctx); err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

func (env *environment) driver(ctx context.Context, cfg *config.Config, logger *slog.Logger) (transport.Driver, error) {
	link := transport.DefaultLinkConfig()
	link.Reconnect.Backoff = cfg.Gateway.Backoff()
	link.Logger = logger
	link.Capture = env.capture

	gw := cfg.Gateway
	if gw.Transport != config.TransportSimulated && gw.Address == "" && gw.URL == "" {
		svc, err := resolveGateway(ctx, gw.HomeID)
		if err != nil {
			return nil, err
		}
		switch {
		case gw.Transport == config.TransportTCP && svc.Transport == discovery.TransportTCP:
			gw.Address = svc.Address()
		case gw.Transport == config.TransportWebSocket && svc.Transport == discovery.TransportWebSocket:
			gw.URL = svc.URL()
		default:
			return nil, fmt.Errorf("gateway %s speaks %s, configured for %s", svc.InstanceName, svc.Transport, gw.Transport)
		}
		logger.Info("discovered gateway", "instance", svc.InstanceName, "address", svc.Address())
	}

	switch gw.Transport {
	case config.TransportTCP:
		sc := transport.DefaultStreamConfig(gw.Address)
		sc.LinkConfig = link
		d := transport.NewStreamDriver(sc)
		if err := d.Connect(ctx); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("connect %s: %w", gw.Address, err)
		}
		return d, nil

	case config.TransportWebSocket:
		wc := transport.DefaultWebSocketConfig(gw.URL)
		wc.LinkConfig = link
		d := transport.NewWebSocketDriver(wc)
		if err := d.Connect(ctx); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("connect %s: %w", gw.URL, err)
		}
		return d, nil

	default:
		network, err := simulatedNetwork(cfg)
		if err != nil {
			return nil, err
		}
		env.network = network
		lb := transport.NewLoopback(network.Responder())
		lb.SetCapture(env.capture)
		return lb, nil
	}
}

// resolveGateway looks up the gateway of homeID through mDNS.
func resolveGateway(ctx context.Context, homeID uint32) (*discovery.GatewayService, error) {
	browser, err := newBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		return nil, err
	}
	defer browser.Stop()

	svc, err := browser.FindByHomeID(ctx, homeID)
	if err != nil {
		return nil, fmt.Errorf("find gateway %08x: %w", homeID, err)
	}
	return svc, nil
}

// simulatedNetwork builds the demo devices of the simulation section.
func simulatedNetwork(cfg *config.Config) (*mock.Network, error) {
	network := mock.NewNetwork()
	for _, sd := range cfg.Simulation.Devices {
		d := mock.NewDemoDevice(sd.ID)
		_ = d.Update(0, func(ep *mock.Endpoint) {
			if sd.Name != "" {
				ep.Name = sd.Name
			}
			if sd.Location != "" {
				ep.Location = sd.Location
			}
		})
		if err := network.Add(d); err != nil {
			return nil, err
		}
	}
	return network, nil
}

// nodeSpecs merges the configured nodes with the simulated devices. A
// configured node wins over a simulated device with the same id.
func nodeSpecs(cfg *config.Config, network *mock.Network) []service.NodeSpec {
	var specs []service.NodeSpec
	seen := make(map[uint16]bool)
	for _, n := range cfg.Nodes {
		specs = append(specs, service.NodeSpec{
			ID:                n.ID,
			FrequentListening: n.FrequentListening,
			Endpoints:         n.Classes(),
		})
		seen[n.ID] = true
	}
	if network == nil {
		return specs
	}
	for _, id := range network.IDs() {
		if seen[id] {
			continue
		}
		d, _ := network.Device(id)
		spec := service.NodeSpec{ID: id}
		for ep := 0; ep < 256; ep++ {
			classes := d.Classes(uint8(ep))
			if classes == nil {
				break
			}
			spec.Endpoints = append(spec.Endpoints, classes)
		}
		specs = append(specs, spec)
	}
	return specs
}

// Close stops the controller and flushes the capture file.
func (env *environment) Close() {
	if env.controller != nil {
		_ = env.controller.Close()
	}
	env.closeLog()
}

func (env *environment) closeLog() {
	if env.fileLog != nil {
		_ = env.fileLog.Close()
	}
}
