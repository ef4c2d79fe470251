package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"

	"golang.org/x/crypto/argon2"
)

const (
	keySize  = 32
	saltSize = 16
)

// Argon2id parameters for passphrase keys. Tokens do not record them, so
// changing them breaks every existing passphrase token.
var (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
)

// Key is the symmetric key material for one top-level operation. It is either
// a raw 32-byte key or a passphrase from which per-salt keys are derived.
// A Key is safe for concurrent use by the directory worker pool.
type Key struct {
	raw        *[keySize]byte
	passphrase []byte
	salt       [saltSize]byte

	mu      sync.Mutex
	derived map[[saltSize]byte]*[keySize]byte
}

// LoadOrDeriveKey turns the user's secret input into a Key. Input that is
// the URL-safe base64 encoding of exactly 32 bytes is used as a raw key; any
// other non-empty input is treated as a passphrase.
func LoadOrDeriveKey(input string) (*Key, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, kerrors.ErrKeyUnavailable
	}

	if decoded, err := base64.URLEncoding.DecodeString(input); err == nil && len(decoded) == keySize {
		key := &Key{raw: new([keySize]byte)}
		copy(key.raw[:], decoded)
		zero(decoded)
		return key, nil
	}

	key := &Key{
		passphrase: []byte(input),
		derived:    make(map[[saltSize]byte]*[keySize]byte),
	}
	if _, err := io.ReadFull(rand.Reader, key.salt[:]); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return key, nil
}

// GenerateKey creates a new random raw key and returns it with its text form,
// which LoadOrDeriveKey accepts.
func GenerateKey() (*Key, string, error) {
	key := &Key{raw: new([keySize]byte)}
	if _, err := io.ReadFull(rand.Reader, key.raw[:]); err != nil {
		return nil, "", fmt.Errorf("failed to generate key: %w", err)
	}
	return key, base64.URLEncoding.EncodeToString(key.raw[:]), nil
}

// IsPassphrase reports whether the key was derived from a passphrase.
func (k *Key) IsPassphrase() bool {
	return k.raw == nil
}

// UseSaltOf makes k seal new passphrase tokens with the salt recorded in
// token, so everything sharing that salt costs a single derivation. It is a
// no-op for raw keys and returns ErrInvalidToken if token is not a
// passphrase token.
func (k *Key) UseSaltOf(token string) error {
	if !k.IsPassphrase() {
		return nil
	}
	parsed, err := parseToken(token)
	if err != nil {
		return err
	}
	if parsed.version != versionPassphrase {
		return fmt.Errorf("%w: not a passphrase token", kerrors.ErrInvalidToken)
	}

	k.mu.Lock()
	k.salt = parsed.salt
	k.mu.Unlock()
	return nil
}

// Encrypt seals plaintext into a versioned token.
func (k *Key) Encrypt(plaintext []byte) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed on ReadFull method: %w", err)
	}

	if k.raw != nil {
		return sealToken(versionRawKey, nil, &nonce, k.raw, plaintext), nil
	}

	k.mu.Lock()
	salt := k.salt
	k.mu.Unlock()

	boxKey := k.deriveFor(salt)
	return sealToken(versionPassphrase, salt[:], &nonce, boxKey, plaintext), nil
}

// Decrypt opens a token produced by Encrypt. Every failure wraps
// ErrDecrypt; input that is not a token at all also wraps ErrInvalidToken.
func (k *Key) Decrypt(token string) ([]byte, error) {
	parsed, err := parseToken(token)
	if err != nil {
		return nil, err
	}

	var boxKey *[keySize]byte
	switch parsed.version {
	case versionRawKey:
		boxKey = k.raw
	case versionPassphrase:
		if k.passphrase != nil {
			boxKey = k.deriveFor(parsed.salt)
		}
	}
	if boxKey == nil {
		// A passphrase token cannot be opened with a raw key and vice versa;
		// report it like any other authentication failure.
		return nil, errDecrypt
	}

	return parsed.open(boxKey)
}

// Wipe zeroes all key material held by k.
func (k *Key) Wipe() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.raw != nil {
		zero(k.raw[:])
	}
	zero(k.passphrase)
	for salt, derived := range k.derived {
		zero(derived[:])
		delete(k.derived, salt)
	}
}

// String keeps key material out of logs and error messages.
func (k *Key) String() string {
	return "secrets.Key{redacted}"
}

// GoString keeps key material out of %#v output.
func (k *Key) GoString() string {
	return k.String()
}

func (k *Key) deriveFor(salt [saltSize]byte) *[keySize]byte {
	k.mu.Lock()
	defer k.mu.Unlock()

	if derived, ok := k.derived[salt]; ok {
		return derived
	}

	out := argon2.IDKey(k.passphrase, salt[:], argonTime, argonMemory, argonThreads, keySize)
	derived := new([keySize]byte)
	copy(derived[:], out)
	zero(out)
	k.derived[salt] = derived
	return derived
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
