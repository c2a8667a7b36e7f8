package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// validSize reports whether size is a legal integer width.
func validSize(size int) bool {
	return size == 1 || size == 2 || size == 4
}

// ReadUint decodes a big-endian unsigned integer of width size from b.
func ReadUint(b []byte, size int) (uint32, error) {
	if !validSize(size) {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedValueSize, size)
	}
	if err := CheckLength(b, size, "integer"); err != nil {
		return 0, err
	}

	switch size {
	case 1:
		return uint32(b[0]), nil
	case 2:
		return uint32(binary.BigEndian.Uint16(b)), nil
	default:
		return binary.BigEndian.Uint32(b), nil
	}
}

// ReadInt decodes a big-endian two's-complement integer of width size from b.
func ReadInt(b []byte, size int) (int32, error) {
	u, err := ReadUint(b, size)
	if err != nil {
		return 0, err
	}

	switch size {
	case 1:
		return int32(int8(u)), nil
	case 2:
		return int32(int16(u)), nil
	default:
		return int32(u), nil
	}
}

// AppendUint appends v as a big-endian unsigned integer of width size.
func AppendUint(dst []byte, v uint32, size int) ([]byte, error) {
	if !validSize(size) {
		return dst, fmt.Errorf("%w: %d", ErrUnsupportedValueSize, size)
	}
	if size < 4 && v >= 1<<(8*size) {
		return dst, fmt.Errorf("%w: %d does not fit in %d unsigned bytes", ErrInvalidValue, v, size)
	}

	switch size {
	case 1:
		return append(dst, byte(v)), nil
	case 2:
		return binary.BigEndian.AppendUint16(dst, uint16(v)), nil
	default:
		return binary.BigEndian.AppendUint32(dst, v), nil
	}
}

// AppendInt appends v as a big-endian two's-complement integer of width size.
func AppendInt(dst []byte, v int64, size int) ([]byte, error) {
	if !validSize(size) {
		return dst, fmt.Errorf("%w: %d", ErrUnsupportedValueSize, size)
	}
	lo, hi := signedRange(size)
	if v < lo || v > hi {
		return dst, fmt.Errorf("%w: %d does not fit in %d signed bytes", ErrInvalidValue, v, size)
	}

	switch size {
	case 1:
		return append(dst, byte(int8(v))), nil
	case 2:
		return binary.BigEndian.AppendUint16(dst, uint16(int16(v))), nil
	default:
		return binary.BigEndian.AppendUint32(dst, uint32(int32(v))), nil
	}
}

// SignedSize returns the smallest width in {1, 2, 4} holding v in
// two's-complement form. Returns ErrInvalidValue if v needs more than 4 bytes.
func SignedSize(v int64) (int, error) {
	for _, size := range []int{1, 2, 4} {
		lo, hi := signedRange(size)
		if v >= lo && v <= hi {
			return size, nil
		}
	}
	return 0, fmt.Errorf("%w: %d exceeds 4 signed bytes", ErrInvalidValue, v)
}

func signedRange(size int) (int64, int64) {
	switch size {
	case 1:
		return math.MinInt8, math.MaxInt8
	case 2:
		return math.MinInt16, math.MaxInt16
	default:
		return math.MinInt32, math.MaxInt32
	}
}
