package secrets

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"

	"golang.org/x/crypto/nacl/secretbox"
)

// Token versions. The version is the first decoded byte of every token.
const (
	versionRawKey     byte = 0x80
	versionPassphrase byte = 0x81
)

const (
	nonceSize     = 24
	timestampSize = 8
)

var (
	errDecrypt      = fmt.Errorf("%w", kerrors.ErrDecrypt)
	errMalformedTok = fmt.Errorf("%w: %w", kerrors.ErrDecrypt, kerrors.ErrInvalidToken)
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

type token struct {
	version byte
	salt    [saltSize]byte
	nonce   [nonceSize]byte
	box     []byte
}

// sealToken lays out version | salt? | nonce | secretbox(timestamp | plaintext)
// and returns it URL-safe base64 encoded.
func sealToken(version byte, salt []byte, nonce *[nonceSize]byte, key *[keySize]byte, plaintext []byte) string {
	header := make([]byte, 0, 1+len(salt)+nonceSize)
	header = append(header, version)
	header = append(header, salt...)
	header = append(header, nonce[:]...)

	message := make([]byte, timestampSize+len(plaintext))
	binary.BigEndian.PutUint64(message[:timestampSize], uint64(nowFunc().Unix()))
	copy(message[timestampSize:], plaintext)

	sealed := secretbox.Seal(header, message, nonce, key)
	zero(message)

	return base64.URLEncoding.EncodeToString(sealed)
}

func parseToken(text string) (*token, error) {
	data, err := base64.URLEncoding.DecodeString(string(bytes.TrimSpace([]byte(text))))
	if err != nil || len(data) == 0 {
		return nil, errMalformedTok
	}

	t := &token{version: data[0]}
	rest := data[1:]

	switch t.version {
	case versionRawKey:
	case versionPassphrase:
		if len(rest) < saltSize {
			return nil, errMalformedTok
		}
		copy(t.salt[:], rest[:saltSize])
		rest = rest[saltSize:]
	default:
		return nil, errMalformedTok
	}

	if len(rest) < nonceSize+secretbox.Overhead+timestampSize {
		return nil, errMalformedTok
	}
	copy(t.nonce[:], rest[:nonceSize])
	t.box = rest[nonceSize:]

	return t, nil
}

func (t *token) open(key *[keySize]byte) ([]byte, error) {
	message, ok := secretbox.Open(nil, t.box, &t.nonce, key)
	if !ok {
		return nil, errDecrypt
	}
	return message[timestampSize:], nil
}

// LooksLikeToken reports whether data is structurally a token of a known
// version. It does not authenticate anything.
func LooksLikeToken(data []byte) bool {
	_, err := parseToken(string(data))
	return err == nil
}
