// Package wire defines the binary wire format of command class frames and
// the value encoding primitives shared by every command class.
//
// # Frame Layout
//
//	[classId: 1 byte][commandId: 1 byte][parameters: 0..N bytes]
//
// Class ids 0xF100-0xFFFF use a two-byte extended form, so the command id
// moves to byte 2. ParseFrame always reads the one-byte form; links that
// carry extended ids parse with ParseExtendedFrame. There is no length
// prefix or checksum at this layer.
//
// # Value Encodings
//
// All multi-byte integers are big-endian. The package provides:
//   - Signed and unsigned integers of width 1, 2 or 4 bytes
//   - Precision-scaled decimals (control byte + two's-complement mantissa)
//   - Bitmask <-> set conversion, LSB-first, optionally length-prefixed
//   - Escape-extended enumerations (value 7 = "7 + next byte")
//   - Selector-coded text (ASCII, ISO-8859-1, UTF-16BE)
//
// None of the primitives retain state; they operate on caller-owned slices.
package wire
