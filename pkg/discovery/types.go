package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceTypeGateway is the service type for mesh gateways.
	ServiceTypeGateway = "_zwcc._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default gateway port.
	DefaultPort = 4123
)

// TXT record key constants.
const (
	TXTKeyHomeID    = "hid"  // Home id, 8 hex digits
	TXTKeyVersion   = "ver"  // Gateway protocol version
	TXTKeyTransport = "tp"   // Transport: tcp or ws
	TXTKeyPath      = "path" // WebSocket path (optional)
)

// Timing constants.
const (
	// BrowseTimeout is the default browse duration.
	BrowseTimeout = 10 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS-SD instance label limit.
	MaxInstanceNameLen = 63
)

// Transport is the framing a gateway speaks.
type Transport string

// Transports.
const (
	TransportTCP       Transport = "tcp"
	TransportWebSocket Transport = "ws"
)

// Valid reports whether t is a known transport.
func (t Transport) Valid() bool {
	return t == TransportTCP || t == TransportWebSocket
}

// Errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInvalidHomeID       = errors.New("invalid home id")
	ErrInvalidTransport    = errors.New("invalid transport")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
)

// GatewayInfo is the content of a gateway's TXT records.
type GatewayInfo struct {
	// HomeID identifies the mesh network.
	HomeID uint32

	// Version is the gateway protocol version.
	Version string

	// Transport is the framing the gateway speaks.
	Transport Transport

	// Path is the WebSocket path, ws only.
	Path string
}

// InstanceName returns the default instance name for the gateway.
func (g *GatewayInfo) InstanceName() string {
	return fmt.Sprintf("meshcc-%08x", g.HomeID)
}

// GatewayService is a discovered gateway.
type GatewayService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the advertised host name.
	Host string

	// Port is the service port.
	Port uint16

	// Addresses contains resolved IP addresses from every interface the
	// gateway was seen on.
	Addresses []string

	GatewayInfo
}

// Address returns host:port using the first resolved address, or the
// host name if none resolved.
func (s *GatewayService) Address() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(int(s.Port)))
}

// URL returns the WebSocket URL of a ws gateway, or "" for tcp gateways.
func (s *GatewayService) URL() string {
	if s.Transport != TransportWebSocket {
		return ""
	}
	path := s.Path
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return "ws://" + s.Address() + path
}

// GatewayAdvertisement describes a gateway to advertise.
type GatewayAdvertisement struct {
	GatewayInfo

	// InstanceName overrides the default instance name.
	InstanceName string

	// Port is the listening port. Zero means DefaultPort.
	Port uint16
}
