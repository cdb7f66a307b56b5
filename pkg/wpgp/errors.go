package wpgp

import (
	"errors"
	"fmt"

	"github.com/Mattddixo/wpgp/internal/container"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrFormat is returned for malformed containers: bad tag, offsets out of
	// range, undecodable segments, missing header fields or a wrong type.
	ErrFormat = container.ErrFormat

	// ErrIntegrity is returned when the container digest does not match.
	ErrIntegrity = container.ErrIntegrity

	// ErrExpiredKey is returned when a key container is past its validity
	// window. It wraps ErrFormat.
	ErrExpiredKey = fmt.Errorf("%w: key expired", ErrFormat)

	// ErrDecrypt is returned when asymmetric or symmetric decryption fails:
	// wrong key, wrong passphrase or corrupted ciphertext.
	ErrDecrypt = errors.New("decryption failed")

	// ErrPassphraseRequired is returned when a protected private key is
	// imported without a passphrase. It wraps ErrDecrypt.
	ErrPassphraseRequired = fmt.Errorf("%w: passphrase required", ErrDecrypt)

	// ErrPublicOnly is returned when an operation needs the private key of
	// an identity that only holds the public half.
	ErrPublicOnly = errors.New("identity has no private key")

	// ErrClosed is returned when a closed identity handle is used.
	ErrClosed = errors.New("identity handle is closed")

	// ErrSignatureUnsupported is returned by the signature stubs.
	ErrSignatureUnsupported = errors.New("signatures are not supported")
)
