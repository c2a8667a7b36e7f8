package wire

import (
	"fmt"
	"math"
)

// Control byte layout shared by sensor, meter, setpoint and battery health
// values: precision in bits 7-5, scale in bits 4-3, size in bits 2-0.
const (
	precisionShift = 5
	precisionMask  = 0xE0
	scaleShift     = 3
	scaleMask      = 0x18
	sizeMask       = 0x07
)

// MaxEncodedPrecision is the largest precision chosen by DetermineEncoding.
// The decoder accepts any precision 0-7.
const MaxEncodedPrecision = 3

// precisionTolerance bounds the rounding error accepted when choosing a
// precision for encoding.
const precisionTolerance = 1e-4

// ScaledValue is a decoded precision-scaled decimal.
type ScaledValue struct {
	Value     float64
	Precision uint8
	Scale     uint8
	Size      uint8
}

// Control packs precision, scale and size into a control byte.
func Control(precision, scale, size uint8) byte {
	return (precision<<precisionShift)&precisionMask |
		(scale<<scaleShift)&scaleMask |
		size&sizeMask
}

// ParseControl splits a control byte into precision, scale and size.
func ParseControl(ctrl byte) (precision, scale, size uint8) {
	return (ctrl & precisionMask) >> precisionShift,
		(ctrl & scaleMask) >> scaleShift,
		ctrl & sizeMask
}

// DecodeDecimal interprets raw as a signed integer of width size divided by
// 10^precision.
func DecodeDecimal(raw []byte, precision, size uint8) (float64, error) {
	v, err := ReadInt(raw, int(size))
	if err != nil {
		return 0, err
	}
	return float64(v) / math.Pow10(int(precision)), nil
}

// ReadScaled decodes a control byte followed by its value. It returns the
// decoded value and the number of bytes consumed.
func ReadScaled(b []byte) (ScaledValue, int, error) {
	if err := CheckLength(b, 1, "control byte"); err != nil {
		return ScaledValue{}, 0, err
	}
	precision, scale, size := ParseControl(b[0])
	if !validSize(int(size)) {
		return ScaledValue{}, 0, fmt.Errorf("%w: %d", ErrUnsupportedValueSize, size)
	}
	if err := CheckLength(b[1:], int(size), "scaled value"); err != nil {
		return ScaledValue{}, 0, err
	}

	v, err := DecodeDecimal(b[1:1+int(size)], precision, size)
	if err != nil {
		return ScaledValue{}, 0, err
	}
	return ScaledValue{Value: v, Precision: precision, Scale: scale, Size: size}, 1 + int(size), nil
}

// DetermineEncoding picks the canonical encoding for v: the smallest
// precision in 0..3 that reproduces v within 1e-4, then the smallest width
// in {1, 2, 4} that holds the resulting mantissa. Values with more decimal
// digits are rounded at precision 3.
func DetermineEncoding(v float64) (precision, size uint8, err error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidValue, v)
	}

	precision = MaxEncodedPrecision
	for p := uint8(0); p <= MaxEncodedPrecision; p++ {
		scale := math.Pow10(int(p))
		if math.Abs(math.Round(v*scale)/scale-v) < precisionTolerance {
			precision = p
			break
		}
	}

	raw := math.Round(v * math.Pow10(int(precision)))
	if raw < math.MinInt32 || raw > math.MaxInt32 {
		return 0, 0, fmt.Errorf("%w: %v exceeds 4 signed bytes at precision %d", ErrInvalidValue, v, precision)
	}
	s, err := SignedSize(int64(raw))
	if err != nil {
		return 0, 0, err
	}
	return precision, uint8(s), nil
}

// AppendScaled appends the control byte and canonical encoding of v.
func AppendScaled(dst []byte, v float64, scale uint8) ([]byte, error) {
	precision, size, err := DetermineEncoding(v)
	if err != nil {
		return dst, err
	}
	raw := int64(math.Round(v * math.Pow10(int(precision))))

	dst = append(dst, Control(precision, scale, size))
	return AppendInt(dst, raw, int(size))
}

// ExtendEnum resolves an escape-extended enumeration: when value equals
// escape, the real value is escape plus the next byte. It returns the
// resolved value and the number of extra bytes consumed.
func ExtendEnum(value, escape uint8, rest []byte) (int, int, error) {
	if value != escape {
		return int(value), 0, nil
	}
	if err := CheckLength(rest, 1, "extended enumeration"); err != nil {
		return 0, 0, err
	}
	return int(escape) + int(rest[0]), 1, nil
}
