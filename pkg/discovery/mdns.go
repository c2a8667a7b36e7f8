package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// MDNSAdvertiser implements the Advertiser interface using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu sync.Mutex

	// Active services keyed by instance name
	servers map[string]*zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) (*MDNSAdvertiser, error) {
	return &MDNSAdvertiser{
		config:  config,
		servers: make(map[string]*zeroconf.Server),
	}, nil
}

// Advertise starts advertising a gateway, replacing an earlier
// advertisement with the same instance name.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, ad *GatewayAdvertisement) error {
	name := ad.InstanceName
	if name == "" {
		name = ad.GatewayInfo.InstanceName()
	}
	if err := ValidateInstanceName(name); err != nil {
		return err
	}

	port := int(ad.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.servers[name]; ok {
		existing.Shutdown()
		delete(a.servers, name)
	}

	server, err := zeroconf.Register(
		name,
		ServiceTypeGateway,
		Domain,
		port,
		TXTRecordsToStrings(EncodeGatewayTXT(&ad.GatewayInfo)),
		interfaces(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register gateway service: %w", err)
	}
	a.servers[name] = server
	return nil
}

// StopAll stops every advertisement.
func (a *MDNSAdvertiser) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for name, server := range a.servers {
		server.Shutdown()
		delete(a.servers, name)
	}
}

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	return &MDNSBrowser{config: config}, nil
}

// Browse searches for gateways until ctx is done or Stop is called.
// Services are aggregated by instance name: addresses from multiple
// interfaces are combined into a single entry.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *GatewayService, <-chan *GatewayService, error) {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	added := make(chan *GatewayService)
	gone := make(chan *GatewayService)

	go func() {
		defer close(added)
		defer close(gone)

		agg := newAggregator()
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if svc, isNew := agg.add(fromZeroconf(entry)); isNew {
					select {
					case added <- svc:
					case <-ctx.Done():
						return
					}
				}

			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				if svc, isGone := agg.remove(fromZeroconf(entry)); isGone {
					select {
					case gone <- svc:
					case <-ctx.Done():
						return
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// Start browsing in background
	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeGateway, Domain, entries, removed, b.browserOptions()...)
	}()

	return added, gone, nil
}

// FindByHomeID browses until the gateway of homeID shows up. Without a
// deadline on ctx the configured BrowseTimeout applies.
func (b *MDNSBrowser) FindByHomeID(ctx context.Context, homeID uint32) (*GatewayService, error) {
	if _, ok := ctx.Deadline(); !ok && b.config.BrowseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.BrowseTimeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	added, _, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	return findFirst(ctx, added, FilterByHomeID(homeID))
}

// Stop stops all active browsing operations.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if ifaces := interfaces(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}
	return opts
}

// interfaces returns the named interface, or nil for all interfaces.
func interfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

func findFirst(ctx context.Context, added <-chan *GatewayService, filter FilterFunc) (*GatewayService, error) {
	for {
		select {
		case svc, ok := <-added:
			if !ok {
				return nil, ErrNotFound
			}
			if filter(svc) {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrNotFound, ctx.Err())
		}
	}
}

// ServiceEntry is the library-independent view of one mDNS answer.
type ServiceEntry struct {
	Instance string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

func fromZeroconf(entry *zeroconf.ServiceEntry) ServiceEntry {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return ServiceEntry{
		Instance: entry.Instance,
		Host:     entry.HostName,
		Port:     uint16(entry.Port),
		Text:     entry.Text,
		Addrs:    addrs,
	}
}

// ToGatewayService decodes the entry's TXT records.
func (e ServiceEntry) ToGatewayService() (*GatewayService, error) {
	info, err := DecodeGatewayTXT(StringsToTXTRecords(e.Text))
	if err != nil {
		return nil, err
	}
	return &GatewayService{
		InstanceName: e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    append([]string(nil), e.Addrs...),
		GatewayInfo:  *info,
	}, nil
}

// aggregator tracks services by instance name.
type aggregator struct {
	services map[string]*GatewayService
}

func newAggregator() *aggregator {
	return &aggregator{services: make(map[string]*GatewayService)}
}

// add records an entry. It returns the service and true the first time an
// instance is seen; later entries only merge addresses. Entries with
// unusable TXT records are ignored.
func (a *aggregator) add(e ServiceEntry) (*GatewayService, bool) {
	if existing, found := a.services[e.Instance]; found {
		existing.Addresses = mergeAddresses(existing.Addresses, e.Addrs)
		return existing, false
	}
	svc, err := e.ToGatewayService()
	if err != nil {
		return nil, false
	}
	a.services[e.Instance] = svc
	return svc, true
}

// remove drops the entry's addresses. It returns the service and true when
// no address remains.
func (a *aggregator) remove(e ServiceEntry) (*GatewayService, bool) {
	existing, found := a.services[e.Instance]
	if !found {
		return nil, false
	}
	existing.Addresses = removeAddresses(existing.Addresses, e.Addrs)
	if len(existing.Addresses) > 0 {
		return existing, false
	}
	delete(a.services, e.Instance)
	return existing, true
}

// mergeAddresses adds new addresses to existing, skipping duplicates.
func mergeAddresses(existing, add []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range add {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes the given addresses from the list.
func removeAddresses(addresses, drop []string) []string {
	toRemove := make(map[string]bool, len(drop))
	for _, addr := range drop {
		toRemove[addr] = true
	}
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure MDNSAdvertiser implements Advertiser interface.
var _ Advertiser = (*MDNSAdvertiser)(nil)

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
