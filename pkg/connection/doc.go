// Package connection manages the link to a gateway: exponential backoff
// with jitter and a reconnecting state machine.
//
// A driver supplies a ConnectFunc that dials the gateway and starts its
// reader. When the reader fails, the driver calls Lost and the Manager
// redials in the background:
//
//	delay_n = min(Initial * Multiplier^n, Max) + random(0, delay_n * Jitter)
//
// The delay resets after a successful dial. The engine above the driver
// never retries a command; frames sent while the link is down fail with
// ErrNotConnected.
package connection
