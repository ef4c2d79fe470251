package secrets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"
)

// fastArgon lowers the passphrase work factor for the duration of a test.
func fastArgon(t *testing.T) {
	t.Helper()
	oldTime, oldMemory, oldThreads := argonTime, argonMemory, argonThreads
	argonTime, argonMemory, argonThreads = 1, 8*1024, 1
	t.Cleanup(func() {
		argonTime, argonMemory, argonThreads = oldTime, oldMemory, oldThreads
	})
}

func mustKey(t *testing.T, input string) *Key {
	t.Helper()
	key, err := LoadOrDeriveKey(input)
	if err != nil {
		t.Fatalf("Failed to load key: %v", err)
	}
	return key
}

func mustGenerateKey(t *testing.T) (*Key, string) {
	t.Helper()
	key, text, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	return key, text
}

func TestLoadOrDeriveKey_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n"} {
		if _, err := LoadOrDeriveKey(input); !errors.Is(err, kerrors.ErrKeyUnavailable) {
			t.Errorf("LoadOrDeriveKey(%q): expected ErrKeyUnavailable, got %v", input, err)
		}
	}
}

func TestLoadOrDeriveKey_RawKey(t *testing.T) {
	_, text := mustGenerateKey(t)
	if len(text) != 44 {
		t.Fatalf("Expected a 44 character key, got %d", len(text))
	}

	key := mustKey(t, text)
	if key.IsPassphrase() {
		t.Error("Expected a raw key, got a passphrase key")
	}

	// Trailing newline from a file or pipe is tolerated.
	if mustKey(t, text+"\n").IsPassphrase() {
		t.Error("Expected a raw key with trailing newline")
	}
}

func TestLoadOrDeriveKey_Passphrase(t *testing.T) {
	short := base64.URLEncoding.EncodeToString(make([]byte, 16))
	for _, input := range []string{"correct horse battery staple", short} {
		if !mustKey(t, input).IsPassphrase() {
			t.Errorf("Expected %q to be treated as a passphrase", input)
		}
	}
}

func TestEncryptDecrypt_RawKey(t *testing.T) {
	key, _ := mustGenerateKey(t)

	for _, plaintext := range [][]byte{[]byte("hello"), {}, bytes.Repeat([]byte{0, 1, 2, 0xff}, 4096)} {
		token, err := key.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		if !LooksLikeToken([]byte(token)) {
			t.Fatalf("Encrypt produced something that is not a token: %q", token)
		}

		got, err := key.Decrypt(token)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Errorf("Round trip mismatch for %d bytes", len(plaintext))
		}
	}
}

func TestEncrypt_IsNonDeterministic(t *testing.T) {
	key, _ := mustGenerateKey(t)

	a, _ := key.Encrypt([]byte("same"))
	b, _ := key.Encrypt([]byte("same"))
	if a == b {
		t.Error("Expected two encryptions of the same plaintext to differ")
	}
}

func TestEncryptDecrypt_Passphrase(t *testing.T) {
	fastArgon(t)

	writer := mustKey(t, "hunter2 but longer")
	token, err := writer.Encrypt([]byte("s3cret"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// A fresh key from the same passphrase has a different salt but reads
	// the salt from the token.
	reader := mustKey(t, "hunter2 but longer")
	got, err := reader.Decrypt(token)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(got) != "s3cret" {
		t.Errorf("Expected s3cret, got %q", got)
	}
}

func TestUseSaltOf(t *testing.T) {
	fastArgon(t)

	writer := mustKey(t, "shared passphrase")
	first, err := writer.Encrypt([]byte("one"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	session := mustKey(t, "shared passphrase")
	if err := session.UseSaltOf(first); err != nil {
		t.Fatalf("UseSaltOf failed: %v", err)
	}
	second, err := session.Encrypt([]byte("two"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	a, _ := parseToken(first)
	b, _ := parseToken(second)
	if a.salt != b.salt {
		t.Error("Expected the second token to reuse the first token's salt")
	}
	if len(session.derived) != 1 {
		t.Errorf("Expected one derivation, got %d", len(session.derived))
	}
	if got, err := writer.Decrypt(second); err != nil || string(got) != "two" {
		t.Errorf("Decrypt = %q, %v", got, err)
	}

	raw, _ := mustGenerateKey(t)
	rawToken, _ := raw.Encrypt([]byte("x"))
	if err := session.UseSaltOf(rawToken); !errors.Is(err, kerrors.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for a raw-key token, got %v", err)
	}
	if err := raw.UseSaltOf(first); err != nil {
		t.Errorf("Expected raw keys to ignore the salt, got %v", err)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	fastArgon(t)

	rawA, _ := mustGenerateKey(t)
	rawB, _ := mustGenerateKey(t)
	passA := mustKey(t, "first passphrase")
	passB := mustKey(t, "second passphrase")

	rawToken, _ := rawA.Encrypt([]byte("data"))
	passToken, _ := passA.Encrypt([]byte("data"))

	tests := []struct {
		name  string
		key   *Key
		token string
	}{
		{"raw with other raw key", rawB, rawToken},
		{"passphrase with other passphrase", passB, passToken},
		{"raw token with passphrase key", passA, rawToken},
		{"passphrase token with raw key", rawA, passToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.key.Decrypt(tt.token)
			if !errors.Is(err, kerrors.ErrDecrypt) {
				t.Fatalf("Expected ErrDecrypt, got %v", err)
			}
			if errors.Is(err, kerrors.ErrInvalidToken) {
				t.Error("A well formed token must not be reported as invalid")
			}
		})
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	key, _ := mustGenerateKey(t)
	token, _ := key.Encrypt([]byte("do not touch"))

	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("Token is not URL-safe base64: %v", err)
	}
	raw[len(raw)-1] ^= 0x01

	_, err = key.Decrypt(base64.URLEncoding.EncodeToString(raw))
	if !errors.Is(err, kerrors.ErrDecrypt) {
		t.Fatalf("Expected ErrDecrypt for tampered token, got %v", err)
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	key, _ := mustGenerateKey(t)

	inputs := []string{
		"",
		"not base64 at all!",
		base64.URLEncoding.EncodeToString([]byte{0x80, 1, 2, 3}),
		base64.URLEncoding.EncodeToString(append([]byte{0x42}, make([]byte, 64)...)),
	}
	for _, input := range inputs {
		_, err := key.Decrypt(input)
		if !errors.Is(err, kerrors.ErrDecrypt) || !errors.Is(err, kerrors.ErrInvalidToken) {
			t.Errorf("Decrypt(%q): expected ErrDecrypt and ErrInvalidToken, got %v", input, err)
		}
	}
}

func TestKey_Redacted(t *testing.T) {
	key, text := mustGenerateKey(t)

	for _, formatted := range []string{fmt.Sprintf("%v", key), fmt.Sprintf("%#v", key), fmt.Sprintf("%s", key)} {
		if strings.Contains(formatted, text) {
			t.Errorf("Formatted key leaks key material: %s", formatted)
		}
	}
}

func TestKey_Wipe(t *testing.T) {
	key, _ := mustGenerateKey(t)
	token, _ := key.Encrypt([]byte("data"))

	key.Wipe()

	if _, err := key.Decrypt(token); !errors.Is(err, kerrors.ErrDecrypt) {
		t.Errorf("Expected wiped key to fail decryption, got %v", err)
	}
}
