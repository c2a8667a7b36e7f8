// Package discovery implements mDNS/DNS-SD discovery of mesh gateways.
//
// A gateway bridges the radio network to IP and advertises the
// _zwcc._tcp service. Instance name format: meshcc-<home id>.
//
// TXT records:
//   - hid: home id of the network, 8 hex digits (required)
//   - ver: gateway protocol version (required)
//   - tp: transport, "tcp" (length-prefixed stream) or "ws" (WebSocket).
//     Defaults to "tcp" when absent.
//   - path: WebSocket path (optional, ws only)
//
// Browsing aggregates addresses per instance: a gateway seen on several
// interfaces is reported once, and removed when its last address goes.
package discovery
