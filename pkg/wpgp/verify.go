package wpgp

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Mattddixo/wpgp/internal/container"
	"github.com/Mattddixo/wpgp/internal/crypto"
)

// Verify checks the framing and digest of a container. Key containers are
// also checked for a well-formed header and an unexpired validity window.
// Message headers are wrapped and can only be checked by DecryptMessage.
func Verify(raw []byte) error {
	frame, err := container.Open(raw)
	if err != nil {
		return err
	}

	header, err := frame.DecodeHeader()
	if err != nil {
		return err
	}
	// A wrapped session key is never valid JSON.
	if !json.Valid(header) {
		if !wrappedHeader(header) {
			return fmt.Errorf("%w: unrecognised container header", ErrFormat)
		}
		return nil
	}

	h, err := parseKeyHeader(header)
	if err != nil {
		return err
	}
	return h.checkExpiration()
}

// VerifyContainer reports whether raw passes Verify.
func VerifyContainer(raw []byte) bool {
	return Verify(raw) == nil
}

// VerifyKey checks raw as a key container: framing, digest, header fields
// and validity window.
func VerifyKey(raw []byte) error {
	_, _, err := verifyKey(raw)
	return err
}

// VerifyKeyFile reports whether the file at path holds a valid key
// container.
func VerifyKeyFile(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return VerifyKey(raw) == nil
}

func verifyKey(raw []byte) (*container.Frame, *keyHeader, error) {
	frame, err := container.Open(raw)
	if err != nil {
		return nil, nil, err
	}

	header, err := frame.DecodeHeader()
	if err != nil {
		return nil, nil, err
	}
	if !json.Valid(header) {
		return nil, nil, fmt.Errorf("%w: not a key container", ErrFormat)
	}

	h, err := parseKeyHeader(header)
	if err != nil {
		return nil, nil, err
	}
	if err := h.checkExpiration(); err != nil {
		return nil, nil, err
	}
	return frame, h, nil
}

// wrappedHeader reports whether header has the shape of a message header:
// one or two RSA blocks of ciphertext. Mostly printable bytes point to a
// key header read with a damaged mask.
func wrappedHeader(header []byte) bool {
	const minBlock, maxBlock = crypto.MinKeySize / 8, crypto.MaxKeySize / 8

	n := len(header)
	single := n >= minBlock && n <= maxBlock
	double := n%2 == 0 && n/2 >= minBlock && n/2 <= maxBlock
	if !single && !double {
		return false
	}

	printable := 0
	for _, b := range header {
		if b >= 0x20 && b < 0x7f || b == '\n' || b == '\t' {
			printable++
		}
	}
	return printable*5 < n*3
}
