package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"
	"strconv"
	"time"
)

const (
	// SessionKeySize is the AES-256 key size.
	SessionKeySize = sha256.Size

	sessionNonceSize = 32
)

// now is the clock mixed into session keys.
var now = time.Now

// DeriveSessionKey returns SHA256(nonce || timestamp || material), a fresh
// single-use symmetric key bound to the caller's key material.
func DeriveSessionKey(material []byte) ([]byte, error) {
	nonce := make([]byte, sessionNonceSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, fmt.Errorf("failed to read session nonce: %w", err)
	}

	sec := sha256.New()
	sec.Write(nonce)
	sec.Write([]byte(strconv.FormatInt(now().UnixNano(), 10)))
	sec.Write(material)
	return sec.Sum(nil), nil
}

// NewSessionCipher returns the AES-256-CTR keystream for a session key.
// The IV is fixed at zero: a session key encrypts exactly one payload.
func NewSessionCipher(key []byte) (cipher.Stream, error) {
	if len(key) != SessionKeySize {
		return nil, fmt.Errorf("%w: session key is %d bytes, want %d", ErrInvalidKeySize, len(key), SessionKeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	return cipher.NewCTR(block, iv), nil
}
