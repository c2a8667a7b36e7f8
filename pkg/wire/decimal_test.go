package wire

import (
	"errors"
	"testing"
)

func TestDetermineEncoding(t *testing.T) {
	tests := []struct {
		v             float64
		wantPrecision uint8
		wantSize      uint8
	}{
		{12.5, 1, 1},
		{0, 0, 1},
		{21, 0, 1},
		{-3.25, 2, 2},
		{127, 0, 1},
		{128, 0, 2},
		{12.75, 2, 2},
		{1.001, 3, 2},
		{-40.5, 1, 2},
		{70000.5, 1, 4},
	}

	for _, tt := range tests {
		p, s, err := DetermineEncoding(tt.v)
		if err != nil {
			t.Fatalf("DetermineEncoding(%v) failed: %v", tt.v, err)
		}
		if p != tt.wantPrecision || s != tt.wantSize {
			t.Errorf("DetermineEncoding(%v) = (p=%d, s=%d), want (p=%d, s=%d)",
				tt.v, p, s, tt.wantPrecision, tt.wantSize)
		}
	}
}

func TestScaledRoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 12.5, 0.1, 99.999, -273.15, 1234.567, 2147483.647, -0.001, 21.3}

	for _, v := range values {
		buf, err := AppendScaled(nil, v, 2)
		if err != nil {
			t.Fatalf("AppendScaled(%v) failed: %v", v, err)
		}
		sv, n, err := ReadScaled(buf)
		if err != nil {
			t.Fatalf("ReadScaled(% X) failed: %v", buf, err)
		}
		if n != len(buf) {
			t.Errorf("consumed %d of %d bytes", n, len(buf))
		}
		if sv.Value != v {
			t.Errorf("round trip %v: got %v", v, sv.Value)
		}
		if sv.Scale != 2 {
			t.Errorf("scale = %d, want 2", sv.Scale)
		}
	}
}

func TestScaledWorkedExample(t *testing.T) {
	buf, err := AppendScaled(nil, 12.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	// precision 1, scale 0, size 1 => 0b001_00_001
	if len(buf) != 2 || buf[0] != 0x21 || buf[1] != 0x7D {
		t.Fatalf("encoded % X, want 21 7D", buf)
	}

	v, err := DecodeDecimal([]byte{0x7D}, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 12.5 {
		t.Errorf("decoded %v, want 12.5", v)
	}
}

func TestDecoderAcceptsNonCanonical(t *testing.T) {
	// 12.5 with precision 3 in 4 bytes: 12500
	sv, _, err := ReadScaled([]byte{Control(3, 1, 4), 0x00, 0x00, 0x30, 0xD4})
	if err != nil {
		t.Fatal(err)
	}
	if sv.Value != 12.5 || sv.Precision != 3 || sv.Size != 4 || sv.Scale != 1 {
		t.Errorf("got %+v", sv)
	}
}

func TestReadScaledErrors(t *testing.T) {
	tests := []struct {
		name string
		b    []byte
		want error
	}{
		{"empty", nil, ErrMalformedPayload},
		{"size overruns buffer", []byte{Control(0, 0, 4), 0x01, 0x02}, ErrMalformedPayload},
		{"size 3", []byte{Control(0, 0, 3), 0x01, 0x02, 0x03}, ErrUnsupportedValueSize},
		{"size 0", []byte{Control(0, 0, 0)}, ErrUnsupportedValueSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ReadScaled(tt.b); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestControlByte(t *testing.T) {
	c := Control(2, 3, 4)
	p, s, z := ParseControl(c)
	if p != 2 || s != 3 || z != 4 {
		t.Errorf("ParseControl(%08b) = %d %d %d", c, p, s, z)
	}
}

func TestExtendEnum(t *testing.T) {
	v, n, err := ExtendEnum(3, 7, []byte{0x09})
	if err != nil || v != 3 || n != 0 {
		t.Errorf("non-escaped: v=%d n=%d err=%v", v, n, err)
	}
	v, n, err = ExtendEnum(7, 7, []byte{0x02})
	if err != nil || v != 9 || n != 1 {
		t.Errorf("escaped: v=%d n=%d err=%v", v, n, err)
	}
	if _, _, err := ExtendEnum(7, 7, nil); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("missing extension byte: err=%v", err)
	}
}
