package wire

import (
	"encoding/hex"
	"fmt"
)

// Frame is a read-only view over an encoded command: class id, command id
// and parameter bytes. The zero value is not a valid frame.
//
// Frames returned by ParseFrame borrow the caller's buffer; callers must not
// modify it afterwards. Frames built with NewFrame own their buffer.
type Frame struct {
	raw []byte
	hdr int
}

// NewFrame builds a frame from its parts. The parameters are copied.
// Every one-byte id (0x00-0xFF) and every extended id (0xF100-0xFFFF) has a
// wire form. NewFrame is meant for protocol constants and panics for ids in
// between; use EncodeFrame for ids that come from outside the program.
func NewFrame(class ClassID, cmd CommandID, params []byte) Frame {
	f, err := EncodeFrame(class, cmd, params)
	if err != nil {
		panic("wire: " + err.Error())
	}
	return f
}

// EncodeFrame builds a frame from its parts. The parameters are copied.
// Returns ErrInvalidValue if class has no wire form (see ClassID.Valid).
func EncodeFrame(class ClassID, cmd CommandID, params []byte) (Frame, error) {
	if !class.Valid() {
		return Frame{}, fmt.Errorf("%w: class id 0x%04X has no wire form", ErrInvalidValue, uint16(class))
	}

	hdr := class.headerLen()
	raw := make([]byte, hdr+len(params))
	if class.IsExtended() {
		raw[0] = byte(class >> 8)
		raw[1] = byte(class)
	} else {
		raw[0] = byte(class)
	}
	raw[hdr-1] = byte(cmd)
	copy(raw[hdr:], params)

	return Frame{raw: raw, hdr: hdr}, nil
}

// ParseFrame wraps b as a frame without copying. The first byte is always
// a one-byte class id. Returns ErrMalformedFrame if b is shorter than 2
// bytes.
func ParseFrame(b []byte) (Frame, error) {
	if len(b) < 2 {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrMalformedFrame, len(b))
	}
	return Frame{raw: b, hdr: 2}, nil
}

// ParseExtendedFrame is ParseFrame for links that carry extended class ids:
// a first byte of 0xF1-0xFF starts a two-byte class id and the frame needs
// at least 3 bytes.
func ParseExtendedFrame(b []byte) (Frame, error) {
	if len(b) > 0 && b[0] >= ExtendedClassMarkerMin {
		if len(b) < 3 {
			return Frame{}, fmt.Errorf("%w: extended class id needs 3 bytes, have %d", ErrMalformedFrame, len(b))
		}
		return Frame{raw: b, hdr: 3}, nil
	}
	return ParseFrame(b)
}

// ClassID returns the command class identifier.
func (f Frame) ClassID() ClassID {
	if f.hdr == 3 {
		return ClassID(f.raw[0])<<8 | ClassID(f.raw[1])
	}
	return ClassID(f.raw[0])
}

// CommandID returns the command identifier.
func (f Frame) CommandID() CommandID {
	return CommandID(f.raw[f.hdr-1])
}

// Params returns the parameter bytes. The slice aliases the frame buffer.
func (f Frame) Params() []byte {
	return f.raw[f.hdr:]
}

// Bytes returns the encoded frame. The slice aliases the frame buffer.
func (f Frame) Bytes() []byte {
	return f.raw
}

// Len returns the encoded length in bytes.
func (f Frame) Len() int {
	return len(f.raw)
}

// IsZero reports whether f is the zero Frame.
func (f Frame) IsZero() bool {
	return f.raw == nil
}

// Is reports whether the frame carries the given class and command.
func (f Frame) Is(class ClassID, cmd CommandID) bool {
	return !f.IsZero() && f.ClassID() == class && f.CommandID() == cmd
}

// String returns a compact debug representation.
func (f Frame) String() string {
	if f.IsZero() {
		return "Frame{}"
	}
	return fmt.Sprintf("Frame{class=%s, cmd=%s, params=%s}",
		f.ClassID(), f.CommandID(), hex.EncodeToString(f.Params()))
}
