package discovery

import (
	"context"
	"time"
)

// Browser provides mDNS service browsing capabilities.
type Browser interface {
	// Browse searches for gateways.
	// Returns two channels: added (new gateways) and removed (gateways that
	// disappeared). Both channels are closed when the context is cancelled.
	Browse(ctx context.Context) (added, removed <-chan *GatewayService, err error)

	// FindByHomeID searches for the gateway of a specific network.
	// Returns when found or when context is cancelled/timeout.
	FindByHomeID(ctx context.Context, homeID uint32) (*GatewayService, error)

	// Stop stops all active browsing operations.
	Stop()
}

// Advertiser announces a gateway on the local network.
type Advertiser interface {
	Advertise(ctx context.Context, ad *GatewayAdvertisement) error
	StopAll()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for browse operations.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
	}
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the record TTL. Zero uses the library default.
	TTL time.Duration
}

// FilterFunc is a function that filters browse results.
type FilterFunc func(*GatewayService) bool

// FilterByHomeID returns a filter that matches gateways of one network.
func FilterByHomeID(homeID uint32) FilterFunc {
	return func(svc *GatewayService) bool {
		return svc.HomeID == homeID
	}
}

// FilterByTransport returns a filter that matches gateways speaking any of
// the given transports.
func FilterByTransport(transports ...Transport) FilterFunc {
	set := make(map[Transport]struct{}, len(transports))
	for _, t := range transports {
		set[t] = struct{}{}
	}
	return func(svc *GatewayService) bool {
		_, ok := set[svc.Transport]
		return ok
	}
}

// Collect drains added until it closes or ctx is done and returns the
// services accepted by filter. A nil filter accepts everything.
func Collect(ctx context.Context, added <-chan *GatewayService, filter FilterFunc) []*GatewayService {
	var out []*GatewayService
	for {
		select {
		case svc, ok := <-added:
			if !ok {
				return out
			}
			if filter == nil || filter(svc) {
				out = append(out, svc)
			}
		case <-ctx.Done():
			return out
		}
	}
}

// Discover browses with b until ctx is done and returns the gateways
// accepted by filter, in the order they were first seen.
func Discover(ctx context.Context, b Browser, filter FilterFunc) ([]*GatewayService, error) {
	defer b.Stop()

	added, _, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, added, filter), nil
}
