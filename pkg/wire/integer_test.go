package wire

import (
	"errors"
	"math"
	"testing"
)

func TestIntegerRoundTrip(t *testing.T) {
	values := map[int][]int64{
		1: {0, 1, -1, math.MaxInt8, math.MinInt8, 42},
		2: {0, 300, -300, math.MaxInt16, math.MinInt16},
		4: {0, 70000, -70000, math.MaxInt32, math.MinInt32},
	}

	for size, vs := range values {
		for _, v := range vs {
			buf, err := AppendInt(nil, v, size)
			if err != nil {
				t.Fatalf("AppendInt(%d, %d) failed: %v", v, size, err)
			}
			if len(buf) != size {
				t.Fatalf("AppendInt(%d, %d) produced %d bytes", v, size, len(buf))
			}
			got, err := ReadInt(buf, size)
			if err != nil {
				t.Fatalf("ReadInt failed: %v", err)
			}
			if int64(got) != v {
				t.Errorf("round trip size %d: got %d, want %d", size, got, v)
			}
		}
	}
}

func TestReadIntBigEndian(t *testing.T) {
	got, err := ReadInt([]byte{0xFF, 0x38}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != -200 {
		t.Errorf("got %d, want -200", got)
	}

	u, err := ReadUint([]byte{0x00, 0x01, 0x00, 0x00}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if u != 65536 {
		t.Errorf("got %d, want 65536", u)
	}
}

func TestUnsupportedValueSize(t *testing.T) {
	for _, size := range []int{0, 3, 5, 8} {
		if _, err := ReadInt([]byte{1, 2, 3, 4, 5, 6, 7, 8}, size); !errors.Is(err, ErrUnsupportedValueSize) {
			t.Errorf("ReadInt size %d: error = %v", size, err)
		}
		if _, err := AppendInt(nil, 1, size); !errors.Is(err, ErrUnsupportedValueSize) {
			t.Errorf("AppendInt size %d: error = %v", size, err)
		}
	}
}

func TestReadIntShortBuffer(t *testing.T) {
	if _, err := ReadInt([]byte{0x01}, 2); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("error = %v, want ErrMalformedPayload", err)
	}
}

func TestAppendOutOfRange(t *testing.T) {
	if _, err := AppendInt(nil, 128, 1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("AppendInt(128, 1) error = %v", err)
	}
	if _, err := AppendUint(nil, 256, 1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("AppendUint(256, 1) error = %v", err)
	}
}

func TestSignedSize(t *testing.T) {
	tests := []struct {
		v    int64
		want int
	}{
		{0, 1}, {127, 1}, {-128, 1}, {128, 2}, {-129, 2},
		{32767, 2}, {32768, 4}, {-32769, 4}, {math.MaxInt32, 4},
	}
	for _, tt := range tests {
		got, err := SignedSize(tt.v)
		if err != nil {
			t.Fatalf("SignedSize(%d) failed: %v", tt.v, err)
		}
		if got != tt.want {
			t.Errorf("SignedSize(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
	if _, err := SignedSize(math.MaxInt32 + 1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}
