package wire

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// CharPresentation selects the character encoding of a text payload. Only
// the low 3 bits of the selector byte are significant.
type CharPresentation uint8

const (
	// CharASCII is 7-bit ASCII.
	CharASCII CharPresentation = 0x00

	// CharLatin1 is 8-bit extended ASCII (ISO-8859-1).
	CharLatin1 CharPresentation = 0x01

	// CharUTF16 is 16-bit big-endian Unicode.
	CharUTF16 CharPresentation = 0x02
)

// CharPresentationMask selects the encoding bits of the selector byte.
const CharPresentationMask = 0x07

// String returns the encoding name.
func (c CharPresentation) String() string {
	switch c {
	case CharASCII:
		return "ASCII"
	case CharLatin1:
		return "ISO-8859-1"
	case CharUTF16:
		return "UTF-16BE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(c))
	}
}

func (c CharPresentation) codec() encoding.Encoding {
	switch c {
	case CharLatin1:
		return charmap.ISO8859_1
	case CharUTF16:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		return nil
	}
}

// DecodeText decodes text bytes using the encoding chosen by selector.
func DecodeText(selector byte, b []byte) (string, error) {
	cp := CharPresentation(selector & CharPresentationMask)
	switch cp {
	case CharASCII:
		for _, c := range b {
			if c >= utf8.RuneSelf {
				return "", fmt.Errorf("%w: non-ASCII byte 0x%02X in ASCII text", ErrMalformedPayload, c)
			}
		}
		return string(b), nil
	case CharLatin1, CharUTF16:
		if cp == CharUTF16 && len(b)%2 != 0 {
			return "", fmt.Errorf("%w: odd UTF-16 length %d", ErrMalformedPayload, len(b))
		}
		out, err := cp.codec().NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("%w: unknown char presentation %d", ErrMalformedPayload, cp)
	}
}

// EncodeText chooses the narrowest encoding able to represent s and
// returns it with the encoded bytes.
func EncodeText(s string) (CharPresentation, []byte, error) {
	cp := CharASCII
	for _, r := range s {
		if r > 0xFF {
			cp = CharUTF16
			break
		}
		if r >= utf8.RuneSelf {
			cp = CharLatin1
		}
	}
	if cp == CharASCII {
		return cp, []byte(s), nil
	}

	out, err := cp.codec().NewEncoder().Bytes([]byte(s))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return cp, out, nil
}

// TruncateText limits an encoded text to limit bytes without splitting a
// UTF-16 code unit or surrogate pair.
func TruncateText(cp CharPresentation, b []byte, limit int) []byte {
	if len(b) <= limit {
		return b
	}
	if cp == CharUTF16 {
		if limit%2 != 0 {
			limit--
		}
		// Big-endian: a high surrogate left last would lose its pair.
		if limit >= 2 && b[limit-2]&0xFC == 0xD8 {
			limit -= 2
		}
	}
	return b[:limit]
}
