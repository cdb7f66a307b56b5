package wpgp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Mattddixo/wpgp/internal/crypto"
)

// KeyType is the type field of a container header.
type KeyType string

const (
	TypePrivate KeyType = "PRIVATE"
	TypePublic  KeyType = "PUBLIC"
	TypeMessage KeyType = "MESSAGE"
)

// keyHeader is the JSON header of a key container.
type keyHeader struct {
	Name       string   `json:"name"`
	Mail       string   `json:"mail"`
	Comment    string   `json:"comment"`
	Expiration []uint32 `json:"expiration"`
	Size       int      `json:"size"`
	Type       KeyType  `json:"type"`
}

func parseKeyHeader(data []byte) (*keyHeader, error) {
	var h keyHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: failed to parse key header: %v", ErrFormat, err)
	}

	switch {
	case h.Type != TypePrivate && h.Type != TypePublic:
		return nil, fmt.Errorf("%w: unexpected key type %q", ErrFormat, h.Type)
	case len(h.Expiration) != 2:
		return nil, fmt.Errorf("%w: missing expiration", ErrFormat)
	case h.Size <= 0:
		return nil, fmt.Errorf("%w: missing key size", ErrFormat)
	}
	return &h, nil
}

// checkExpiration rejects headers whose validity window ended before today.
func (h *keyHeader) checkExpiration() error {
	day, days := h.Expiration[0], h.Expiration[1]
	if days > MaxValidityDays {
		return fmt.Errorf("%w: validity of %d days exceeds %d", ErrFormat, days, MaxValidityDays)
	}
	if day != 0 && expired(day, days, today()) {
		return ErrExpiredKey
	}
	return nil
}

// messageHeader is the JSON header of a message container, stored wrapped
// under the recipient's public key.
type messageHeader struct {
	Type KeyType `json:"type"`
	Pass string  `json:"pass"`
	Size int64   `json:"size"`
}

func newMessageHeader(key []byte, size int64) ([]byte, error) {
	data, err := json.Marshal(messageHeader{
		Type: TypeMessage,
		Pass: base64.StdEncoding.EncodeToString(key),
		Size: size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode message header: %w", err)
	}
	return data, nil
}

// parseMessageHeader decodes a message header and returns it with its
// session key.
func parseMessageHeader(data []byte) (*messageHeader, []byte, error) {
	var h messageHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to parse message header: %v", ErrFormat, err)
	}
	if h.Type != TypeMessage {
		return nil, nil, fmt.Errorf("%w: unexpected container type %q", ErrFormat, h.Type)
	}
	if h.Size < 0 {
		return nil, nil, fmt.Errorf("%w: negative message size", ErrFormat)
	}

	key, err := base64.StdEncoding.DecodeString(h.Pass)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to decode session key: %v", ErrFormat, err)
	}
	if len(key) != crypto.SessionKeySize {
		return nil, nil, fmt.Errorf("%w: session key is %d bytes", ErrFormat, len(key))
	}
	return &h, key, nil
}
