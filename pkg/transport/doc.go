// Package transport carries command class frames between the controller
// and a gateway.
//
// Every frame travels in an Envelope that names the node and endpoint:
//
//	┌──────────────┬────────────┬────────────────────────────┐
//	│ node id (2B) │ endpoint   │ frame: class, command,     │
//	│ big-endian   │ (1B)       │ parameters                 │
//	└──────────────┴────────────┴────────────────────────────┘
//
// Drivers:
//   - StreamDriver: 4-byte big-endian length prefix per envelope over a
//     byte stream (TCP), redialing through package connection.
//   - WebSocketDriver: one binary WebSocket message per envelope.
//   - Loopback: in-memory, answers with a Responder. Used by tests and
//     the simulator.
//
// Radio framing, checksums and security encapsulation are below this
// layer and handled by the gateway.
package transport
