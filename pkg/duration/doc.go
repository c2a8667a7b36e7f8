// Package duration implements the one-byte transition duration used by
// actuator commands such as Binary Switch Set and reported back in their
// status reports.
//
// # Encoding
//
//	0x00        instant
//	0x01 - 0x7F 1 to 127 seconds
//	0x80 - 0xFD 1 to 126 minutes
//	0xFE        unknown (reports only)
//	0xFF        factory default
//
// Encode rounds to the nearest representable step. Durations above 127
// seconds switch to minute resolution; anything past 126 minutes is clamped.
package duration
