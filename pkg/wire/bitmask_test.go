package wire

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

func TestParseBitMask(t *testing.T) {
	tests := []struct {
		name   string
		mask   []byte
		offset uint8
		want   []uint8
	}{
		{"single bit offset one", []byte{0x01}, 1, []uint8{1}},
		{"single bit offset zero", []byte{0x01}, 0, []uint8{0}},
		{"second byte", []byte{0x00, 0x80}, 0, []uint8{15}},
		{"several bits", []byte{0x05, 0x01}, 1, []uint8{1, 3, 9}},
		{"empty", nil, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBitMask(tt.mask, tt.offset)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseBitMask(% X, %d) = %v, want %v", tt.mask, tt.offset, got, tt.want)
			}
		})
	}
}

func TestParseBitMaskStopsAtTypeRange(t *testing.T) {
	mask := bytes.Repeat([]byte{0xFF}, 40)

	got := ParseBitMask(mask, uint8(1))
	if len(got) != 255 || got[0] != 1 || got[254] != 255 {
		t.Fatalf("uint8 values: len %d, first %d, last %d", len(got), got[0], got[len(got)-1])
	}
	if !slices.IsSorted(got) {
		t.Error("values wrapped around")
	}

	wide := ParseBitMask(mask, 1)
	if len(wide) != 320 || wide[319] != 320 {
		t.Errorf("int values: len %d", len(wide))
	}
}

func TestBitMaskRoundTrip(t *testing.T) {
	sets := [][]uint8{{1}, {1, 2, 3}, {8, 9}, {1, 17, 40}, {5}}
	for _, set := range sets {
		mask := EncodeBitMask(set, 1)
		got := ParseBitMask(mask, uint8(1))
		if !slices.Equal(got, set) {
			t.Errorf("round trip %v: got %v (mask % X)", set, got, mask)
		}
	}
}

func TestEncodeBitMaskLen(t *testing.T) {
	mask, err := EncodeBitMaskLen([]int{0, 2}, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(mask, []byte{0x05, 0x00, 0x00}) {
		t.Errorf("mask = % X", mask)
	}

	if _, err := EncodeBitMaskLen([]int{9}, 0, 1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestBitMaskTable(t *testing.T) {
	table := []uint8{0x00, 0x01, 0x02, 0x07, 0x08}

	got := ParseBitMaskTable([]byte{0b0001_1010}, table)
	want := []uint8{0x01, 0x07, 0x08}
	if !slices.Equal(got, want) {
		t.Errorf("ParseBitMaskTable = %v, want %v", got, want)
	}

	mask, err := EncodeBitMaskTable(want, table)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(mask, []byte{0b0001_1010}) {
		t.Errorf("EncodeBitMaskTable = %08b", mask)
	}

	if _, err := EncodeBitMaskTable([]uint8{0x03}, table); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestBitMaskTableIgnoresBitsPastTable(t *testing.T) {
	got := ParseBitMaskTable([]byte{0xFF, 0xFF}, []string{"a", "b"})
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("got %v", got)
	}
}

func TestLengthPrefixedBitMask(t *testing.T) {
	buf, err := AppendLengthPrefixedBitMask(nil, []uint8{0, 3, 9}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{0x02, 0x09, 0x02}) {
		t.Fatalf("encoded % X", buf)
	}

	// Reserved upper bits of the length byte are ignored.
	buf[0] |= 0xE0
	buf = append(buf, 0xAA)
	values, n, err := ParseLengthPrefixedBitMask(buf, uint8(0))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("consumed %d, want 3", n)
	}
	if !slices.Equal(values, []uint8{0, 3, 9}) {
		t.Errorf("values = %v", values)
	}
}

func TestLengthPrefixedBitMaskOverrun(t *testing.T) {
	if _, _, err := ParseLengthPrefixedBitMask([]byte{0x04, 0x01}, uint8(0)); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestSortedSet(t *testing.T) {
	got := SortedSet([]int{5, 1, 5, 3, 1})
	if !slices.Equal(got, []int{1, 3, 5}) {
		t.Errorf("got %v", got)
	}
}
