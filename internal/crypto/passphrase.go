package crypto

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// DefaultScryptWorkFactor is the scrypt log2(N) used when none is configured.
const DefaultScryptWorkFactor = 18

// ageMagic prefixes every binary age file.
var ageMagic = []byte("age-encryption.org/")

// IsPassphraseProtected reports whether data is an age passphrase envelope.
func IsPassphraseProtected(data []byte) bool {
	return bytes.HasPrefix(data, ageMagic)
}

// EncryptWithPassphrase encrypts data using a passphrase
func EncryptWithPassphrase(data []byte, passphrase string, workFactor int) ([]byte, error) {
	// Create a new age recipient from the passphrase
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipient: %w", err)
	}
	if workFactor > 0 {
		recipient.SetWorkFactor(workFactor)
	}

	// Create a buffer to hold the encrypted data
	var buf bytes.Buffer

	// Create an age writer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypt writer: %w", err)
	}

	// Write the data
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	// Close the writer to finalize encryption
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize encryption: %w", err)
	}

	return buf.Bytes(), nil
}

// DecryptWithPassphrase decrypts data using a passphrase
func DecryptWithPassphrase(data []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrPassphrase
	}

	// Create a new age identity from the passphrase
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	// Create an age reader
	decrypted, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPassphrase, err)
	}

	// Read the decrypted data
	decryptedData, err := io.ReadAll(decrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to read decrypted data: %w", err)
	}

	return decryptedData, nil
}
