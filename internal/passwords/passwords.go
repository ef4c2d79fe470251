package passwords

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"
)

// Class is a set of characters a password may draw from.
type Class int

const (
	Lowercase Class = iota
	Uppercase
	Digits
	Symbols
	Hex
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars     = "0123456789"
	symbolChars    = "!@#$%^&()-+=~[]{}/|:;?,.<>"
	hexChars       = "0123456789ABCDEF"
)

// DefaultMaxLength applies when a Policy leaves MaxLength unset.
const DefaultMaxLength = 1024

// Random lengths used when the caller does not pick one.
const (
	MinRandomLength = 32
	MaxRandomLength = 72
)

var classNames = map[string]Class{
	"lowercase": Lowercase,
	"uppercase": Uppercase,
	"digits":    Digits,
	"symbols":   Symbols,
	"hex":       Hex,
}

func (c Class) String() string {
	for name, class := range classNames {
		if class == c {
			return name
		}
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

func (c Class) chars() string {
	switch c {
	case Lowercase:
		return lowercaseChars
	case Uppercase:
		return uppercaseChars
	case Digits:
		return digitChars
	case Symbols:
		return symbolChars
	case Hex:
		return hexChars
	}
	return ""
}

// Policy describes the password to generate.
type Policy struct {
	Length  int
	Classes []Class

	// MaxLength caps Length; 0 means DefaultMaxLength.
	MaxLength int
}

// Validate reports whether the policy can be satisfied.
func (p Policy) Validate() error {
	maxLength := p.MaxLength
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	switch {
	case len(p.Classes) == 0:
		return fmt.Errorf("%w: at least one character class is required", kerrors.ErrInvalidPolicy)
	case p.Length <= 0:
		return fmt.Errorf("%w: length must be positive, got %d", kerrors.ErrInvalidPolicy, p.Length)
	case p.Length > maxLength:
		return fmt.Errorf("%w: length %d exceeds the maximum of %d", kerrors.ErrInvalidPolicy, p.Length, maxLength)
	}

	for _, c := range p.Classes {
		if c.chars() == "" {
			return fmt.Errorf("%w: unknown character class %d", kerrors.ErrInvalidPolicy, int(c))
		}
	}
	return nil
}

// Generate returns a random password drawn from crypto/rand. When Length is at
// least the number of classes, every class appears at least once.
func Generate(p Policy) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	classes := dedupe(p.Classes)

	var union strings.Builder
	seen := make(map[rune]bool)
	for _, c := range classes {
		for _, r := range c.chars() {
			if !seen[r] {
				seen[r] = true
				union.WriteRune(r)
			}
		}
	}
	pool := union.String()

	out := make([]byte, 0, p.Length)
	if p.Length >= len(classes) {
		for _, c := range classes {
			ch, err := pick(c.chars())
			if err != nil {
				return "", err
			}
			out = append(out, ch)
		}
	}
	for len(out) < p.Length {
		ch, err := pick(pool)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}

	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseClasses converts class names such as "digits" into Classes.
func ParseClasses(names []string) ([]Class, error) {
	classes := make([]Class, 0, len(names))
	for _, name := range names {
		c, ok := classNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown character class %q", kerrors.ErrInvalidPolicy, name)
		}
		classes = append(classes, c)
	}
	return classes, nil
}

// Preset returns the classes for a named sample: "ascii" (letters, digits and
// symbols), "nosymbols" (letters and digits) or "hex" (0-9, A-F).
func Preset(name string) ([]Class, error) {
	switch strings.ToLower(name) {
	case "ascii":
		return []Class{Lowercase, Uppercase, Digits, Symbols}, nil
	case "nosymbols":
		return []Class{Lowercase, Uppercase, Digits}, nil
	case "hex":
		return []Class{Hex}, nil
	}
	return nil, fmt.Errorf("%w: unknown preset %q", kerrors.ErrInvalidPolicy, name)
}

// RandomLength returns a length between MinRandomLength and MaxRandomLength inclusive.
func RandomLength() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(MaxRandomLength-MinRandomLength+1))
	if err != nil {
		return 0, fmt.Errorf("failed to read random data: %w", err)
	}
	return MinRandomLength + int(n.Int64()), nil
}

func dedupe(classes []Class) []Class {
	seen := make(map[Class]bool, len(classes))
	out := make([]Class, 0, len(classes))
	for _, c := range classes {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func pick(chars string) (byte, error) {
	i, err := randIndex(len(chars))
	if err != nil {
		return 0, err
	}
	return chars[i], nil
}

// shuffle is Fisher-Yates over crypto/rand.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random data: %w", err)
	}
	return int(v.Int64()), nil
}
