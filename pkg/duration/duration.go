package duration

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDuration is returned for durations that cannot be sent.
var ErrInvalidDuration = errors.New("invalid duration")

// Wire byte boundaries.
const (
	byteInstant    = 0x00
	byteMaxSeconds = 0x7F
	byteMinMinutes = 0x80
	byteMaxMinutes = 0xFD
	byteUnknown    = 0xFE
	byteDefault    = 0xFF
)

// Representable limits.
const (
	MaxSeconds = byteMaxSeconds * time.Second
	MaxMinutes = (byteMaxMinutes - byteMinMinutes + 1) * time.Minute
)

// Kind distinguishes the special values from timed transitions.
type Kind uint8

const (
	// KindTimed is a timed transition (including instant, zero).
	KindTimed Kind = iota

	// KindUnknown means the node does not know the remaining time.
	KindUnknown

	// KindDefault selects the node's factory default transition.
	KindDefault
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTimed:
		return "TIMED"
	case KindUnknown:
		return "UNKNOWN"
	case KindDefault:
		return "DEFAULT"
	default:
		return "INVALID"
	}
}

// Duration is a decoded transition duration.
type Duration struct {
	Kind  Kind
	Value time.Duration
}

// Instant is the zero-length transition.
var Instant = Duration{}

// Default selects the factory default transition.
var Default = Duration{Kind: KindDefault}

// Unknown is reported when the remaining time is not known.
var Unknown = Duration{Kind: KindUnknown}

// Of returns a timed duration.
func Of(d time.Duration) Duration {
	return Duration{Value: d}
}

// String returns a readable form.
func (d Duration) String() string {
	switch d.Kind {
	case KindUnknown:
		return "unknown"
	case KindDefault:
		return "default"
	}
	return d.Value.String()
}

// Decode converts a duration byte.
func Decode(b byte) Duration {
	switch {
	case b == byteInstant:
		return Instant
	case b <= byteMaxSeconds:
		return Of(time.Duration(b) * time.Second)
	case b <= byteMaxMinutes:
		return Of(time.Duration(b-byteMaxSeconds) * time.Minute)
	case b == byteUnknown:
		return Unknown
	default:
		return Default
	}
}

// Encode converts d to its duration byte. Negative durations and the
// Unknown kind return ErrInvalidDuration since a controller never sends them.
func Encode(d Duration) (byte, error) {
	switch d.Kind {
	case KindDefault:
		return byteDefault, nil
	case KindUnknown:
		return 0, fmt.Errorf("%w: unknown is report-only", ErrInvalidDuration)
	}

	v := d.Value
	if v < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, v)
	}

	secs := v.Round(time.Second)
	if secs <= MaxSeconds {
		return byte(secs / time.Second), nil
	}

	mins := v.Round(time.Minute)
	if mins > MaxMinutes {
		mins = MaxMinutes
	}
	return byte(byteMaxSeconds + mins/time.Minute), nil
}

// EncodeReport converts d for use in a report, where Unknown is allowed.
func EncodeReport(d Duration) byte {
	if d.Kind == KindUnknown {
		return byteUnknown
	}
	b, err := Encode(d)
	if err != nil {
		return byteUnknown
	}
	return b
}
