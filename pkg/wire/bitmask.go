package wire

import (
	"fmt"
	"sort"
)

// Enum is the set of integer types used for decoded enumerants.
type Enum interface {
	~uint8 | ~uint16 | ~int
}

// ParseBitMask decodes an LSB-first bitmask: bit n of byte k maps to
// k*8 + n + offset. Results are ascending. Bits whose value does not fit
// in T are ignored.
func ParseBitMask[T Enum](mask []byte, offset T) []T {
	var out []T
	for k, b := range mask {
		for n := 0; n < 8; n++ {
			if b&(1<<n) == 0 {
				continue
			}
			bit := k*8 + n
			v := T(bit) + offset
			if int(v) != int(offset)+bit {
				return out
			}
			out = append(out, v)
		}
	}
	return out
}

// EncodeBitMask is the inverse of ParseBitMask. The mask is as short as
// the highest value allows; values below offset are ignored.
func EncodeBitMask[T Enum](values []T, offset T) []byte {
	var mask []byte
	for _, v := range values {
		if v < offset {
			continue
		}
		bit := int(v - offset)
		for len(mask) <= bit/8 {
			mask = append(mask, 0)
		}
		mask[bit/8] |= 1 << (bit % 8)
	}
	return mask
}

// EncodeBitMaskLen is EncodeBitMask padded or limited to exactly n bytes.
// Values beyond n*8 return ErrInvalidValue.
func EncodeBitMaskLen[T Enum](values []T, offset T, n int) ([]byte, error) {
	mask := EncodeBitMask(values, offset)
	if len(mask) > n {
		return nil, fmt.Errorf("%w: bitmask needs %d bytes, limit %d", ErrInvalidValue, len(mask), n)
	}
	out := make([]byte, n)
	copy(out, mask)
	return out, nil
}

// ParseBitMaskTable decodes a bitmask through a lookup table: bit i maps
// to table[i]. Set bits beyond the table are ignored. Use this when the
// enumerant values are sparse.
func ParseBitMaskTable[T any](mask []byte, table []T) []T {
	var out []T
	for k, b := range mask {
		for n := 0; n < 8; n++ {
			i := k*8 + n
			if b&(1<<n) != 0 && i < len(table) {
				out = append(out, table[i])
			}
		}
	}
	return out
}

// EncodeBitMaskTable is the inverse of ParseBitMaskTable.
// Values not present in the table return ErrInvalidValue.
func EncodeBitMaskTable[T comparable](values []T, table []T) ([]byte, error) {
	bits := make([]int, 0, len(values))
	for _, v := range values {
		idx := -1
		for i, t := range table {
			if t == v {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %v not in bitmask table", ErrInvalidValue, v)
		}
		bits = append(bits, idx)
	}
	return EncodeBitMask(bits, 0), nil
}

// LengthPrefixMask selects the byte-count bits of a length-prefixed mask.
const LengthPrefixMask = 0x1F

// ParseLengthPrefixedBitMask decodes a mask whose first byte carries the
// mask length in its lower 5 bits. It returns the values and the number of
// bytes consumed, including the length byte.
func ParseLengthPrefixedBitMask[T Enum](b []byte, offset T) ([]T, int, error) {
	if err := CheckLength(b, 1, "bitmask length"); err != nil {
		return nil, 0, err
	}
	n := int(b[0] & LengthPrefixMask)
	if err := CheckLength(b[1:], n, "bitmask"); err != nil {
		return nil, 0, err
	}
	return ParseBitMask(b[1:1+n], offset), 1 + n, nil
}

// AppendLengthPrefixedBitMask appends a length byte and the mask.
func AppendLengthPrefixedBitMask[T Enum](dst []byte, values []T, offset T) ([]byte, error) {
	mask := EncodeBitMask(values, offset)
	if len(mask) > LengthPrefixMask {
		return dst, fmt.Errorf("%w: bitmask of %d bytes exceeds length field", ErrInvalidValue, len(mask))
	}
	dst = append(dst, byte(len(mask)))
	return append(dst, mask...), nil
}

// SortedSet returns a sorted copy of values without duplicates.
func SortedSet[T Enum](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
