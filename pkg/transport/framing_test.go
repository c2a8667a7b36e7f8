package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestFrameWriterReader(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"single byte", []byte{0x42}},
		{"envelope", []byte{0x00, 0x05, 0x00, 0x25, 0x03, 0xFF}},
		{"max size", bytes.Repeat([]byte{0xAA}, DefaultMaxMessageSize)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			if err := NewFrameWriter(buf).WriteFrame(tt.payload); err != nil {
				t.Fatalf("WriteFrame: %v", err)
			}
			if buf.Len() != LengthPrefixSize+len(tt.payload) {
				t.Errorf("frame size = %d", buf.Len())
			}
			got, err := NewFrameReader(buf).ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("payload mismatch: %d bytes, want %d", len(got), len(tt.payload))
			}
		})
	}
}

func TestFrameWriterErrors(t *testing.T) {
	w := NewFrameWriterWithMaxSize(new(bytes.Buffer), 8)
	if err := w.WriteFrame(nil); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("empty: %v", err)
	}
	if err := w.WriteFrame(make([]byte, 9)); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("too large: %v", err)
	}
}

func TestFrameReaderErrors(t *testing.T) {
	prefix := func(n uint32) []byte {
		return binary.BigEndian.AppendUint32(nil, n)
	}

	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"clean eof", nil, io.EOF},
		{"partial prefix", []byte{0x00, 0x00}, ErrFrameTruncated},
		{"zero length", prefix(0), ErrMessageEmpty},
		{"too large", prefix(100), ErrMessageTooLarge},
		{"short payload", append(prefix(4), 0x01, 0x02), ErrFrameTruncated},
		{"missing payload", prefix(4), ErrFrameTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFrameReaderWithMaxSize(bytes.NewReader(tt.in), 16)
			if _, err := r.ReadFrame(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFramerSequence(t *testing.T) {
	var buf bytes.Buffer
	f := NewFramer(&buf)
	for i := range 3 {
		if err := f.WriteFrame([]byte{byte(i + 1)}); err != nil {
			t.Fatal(err)
		}
	}
	for i := range 3 {
		got, err := f.ReadFrame()
		if err != nil {
			t.Fatal(err)
		}
		if got[0] != byte(i+1) {
			t.Errorf("frame %d = %v", i, got)
		}
	}
}
