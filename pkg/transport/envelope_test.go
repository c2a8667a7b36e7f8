package transport

import (
	"bytes"
	"errors"
	"testing"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env := Envelope{
		NodeID:   0x0102,
		Endpoint: 3,
		Frame:    wire.NewFrame(wire.ClassBattery, 0x03, []byte{0x50}),
	}
	b := env.Bytes()
	want := []byte{0x01, 0x02, 0x03, 0x80, 0x03, 0x50}
	if !bytes.Equal(b, want) {
		t.Fatalf("Bytes() = % X, want % X", b, want)
	}

	got, err := ParseEnvelope(b)
	if err != nil {
		t.Fatal(err)
	}
	if got.NodeID != env.NodeID || got.Endpoint != env.Endpoint || !bytes.Equal(got.Frame.Bytes(), env.Frame.Bytes()) {
		t.Errorf("ParseEnvelope() = %v", got)
	}
}

func TestParseEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, ErrFrameTruncated},
		{"header only", []byte{0x00, 0x01}, ErrFrameTruncated},
		{"frame too short", []byte{0x00, 0x01, 0x00, 0x80}, wire.ErrMalformedFrame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEnvelope(tt.in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
