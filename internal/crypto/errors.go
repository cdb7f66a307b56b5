package crypto

import "errors"

var (
	// ErrInvalidKeySize is returned when an RSA key size is unsupported.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidKey is returned when serialized key material cannot be parsed.
	ErrInvalidKey = errors.New("invalid key material")

	// ErrPublicOnly is returned when an operation needs a private key but
	// the keypair only holds the public half.
	ErrPublicOnly = errors.New("private key not available")

	// ErrDecryptionFailed is returned when asymmetric unwrapping fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrPassphrase is returned when a passphrase envelope cannot be opened.
	ErrPassphrase = errors.New("wrong or missing passphrase")
)
