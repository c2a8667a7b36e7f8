package wire

import (
	"errors"
	"fmt"
)

// Wire format errors.
var (
	// ErrMalformedFrame indicates fewer bytes than a frame header requires.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrMalformedPayload indicates parameters shorter than the fields they
	// must carry, or a length field that overruns the buffer.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnsupportedValueSize indicates an integer width other than 1, 2 or 4.
	ErrUnsupportedValueSize = errors.New("unsupported value size")

	// ErrInvalidValue indicates a value that cannot be represented in the
	// requested encoding.
	ErrInvalidValue = errors.New("invalid value")
)

// CheckLength returns ErrMalformedPayload if b holds fewer than n bytes.
// The field name is included in the error for diagnostics.
func CheckLength(b []byte, n int, field string) error {
	if len(b) < n {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrMalformedPayload, field, n, len(b))
	}
	return nil
}
