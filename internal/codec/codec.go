// Package codec converts text to and from printable representations:
// space-separated binary octets, hex and base64. It is an encoding, not
// encryption; nothing here hides the text.
package codec

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"
)

// Format names an encoding.
type Format string

const (
	Binary Format = "binary"
	Hex    Format = "hex"
	Base64 Format = "base64"
)

// Formats lists the supported formats in display order.
var Formats = []Format{Binary, Hex, Base64}

// ParseFormat resolves a case-insensitive format name. Unknown names wrap
// ErrInvalidEncoding.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, kerrors.ErrInvalidEncoding)
}

// Encode renders text in format. Binary output is one 8-bit group per byte,
// separated by single spaces.
func Encode(text string, format Format) (string, error) {
	switch format {
	case Binary:
		groups := make([]string, len(text))
		for i := 0; i < len(text); i++ {
			groups[i] = fmt.Sprintf("%08b", text[i])
		}
		return strings.Join(groups, " "), nil
	case Hex:
		return hex.EncodeToString([]byte(text)), nil
	case Base64:
		return base64.StdEncoding.EncodeToString([]byte(text)), nil
	default:
		return "", fmt.Errorf("%q: %w", format, kerrors.ErrInvalidEncoding)
	}
}

// Decode reverses Encode. Binary input accepts groups of up to 8 bits
// separated by any whitespace.
func Decode(encoded string, format Format) (string, error) {
	encoded = strings.TrimSpace(encoded)

	switch format {
	case Binary:
		fields := strings.Fields(encoded)
		out := make([]byte, len(fields))
		for i, field := range fields {
			b, err := strconv.ParseUint(field, 2, 8)
			if err != nil {
				return "", fmt.Errorf("binary group %q: %w", field, kerrors.ErrInvalidEncoding)
			}
			out[i] = byte(b)
		}
		return string(out), nil
	case Hex:
		out, err := hex.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("%w: hex: %w", kerrors.ErrInvalidEncoding, err)
		}
		return string(out), nil
	case Base64:
		out, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("%w: base64: %w", kerrors.ErrInvalidEncoding, err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("%q: %w", format, kerrors.ErrInvalidEncoding)
	}
}
