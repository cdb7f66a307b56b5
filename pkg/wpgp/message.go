package wpgp

import (
	"crypto/cipher"
	"encoding/json"
	"fmt"

	"github.com/Mattddixo/wpgp/internal/container"
	"github.com/Mattddixo/wpgp/internal/crypto"
	"github.com/Mattddixo/wpgp/internal/stream"
)

// sealer holds the state of one message being encrypted.
type sealer struct {
	id   *Identity
	mask container.Mask
	key  []byte
	enc  *stream.Encoder
}

func newSealer(id *Identity) (*sealer, error) {
	material, err := id.material()
	if err != nil {
		return nil, fmt.Errorf("failed to encode key material: %w", err)
	}
	key, err := crypto.DeriveSessionKey(material)
	clear(material)
	if err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}

	c, err := crypto.NewSessionCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cipher: %w", err)
	}
	mask, err := container.NewMask()
	if err != nil {
		return nil, fmt.Errorf("failed to create mask: %w", err)
	}

	return &sealer{
		id:   id,
		mask: mask,
		key:  key,
		enc:  stream.NewEncoder(mask, c),
	}, nil
}

// close wraps the session key with the plaintext size and returns the
// bytes that follow the body.
func (s *sealer) close() ([]byte, error) {
	header, err := newMessageHeader(s.key, s.enc.PlainLen())
	clear(s.key)
	if err != nil {
		return nil, err
	}

	wrapped, err := s.id.key.pair.Wrap(header)
	clear(header)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap session key: %w", err)
	}
	return s.enc.Close(container.EncodeSegment(s.mask, wrapped))
}

// EncryptMessage encrypts plaintext to id and returns a MESSAGE container.
// A public-only identity is enough.
func EncryptMessage(id *Identity, plaintext []byte) ([]byte, error) {
	if err := id.usable(); err != nil {
		return nil, err
	}

	s, err := newSealer(id)
	if err != nil {
		return nil, err
	}

	body, err := s.enc.Advance(plaintext)
	if err != nil {
		return nil, err
	}
	tail, err := s.enc.Flush()
	if err != nil {
		return nil, err
	}
	closing, err := s.close()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+len(tail)+len(closing))
	out = append(out, body...)
	out = append(out, tail...)
	out = append(out, closing...)
	return out, nil
}

// DecryptMessage checks and decrypts a MESSAGE container with the private
// key of id.
func DecryptMessage(id *Identity, raw []byte) ([]byte, error) {
	if err := id.usable(); err != nil {
		return nil, err
	}

	frame, err := container.Open(raw)
	if err != nil {
		return nil, err
	}
	h, c, err := id.openMessageHeader(frame.Trailer.Mask, frame.Header)
	if err != nil {
		return nil, err
	}

	body, err := frame.DecodeBody()
	if err != nil {
		return nil, err
	}
	if int64(len(body)) != h.Size {
		return nil, fmt.Errorf("%w: body is %d bytes, header declares %d", ErrFormat, len(body), h.Size)
	}
	c.XORKeyStream(body, body)
	return body, nil
}

// openMessageHeader unwraps a message header segment and returns the
// header with a cipher keyed for the body.
func (id *Identity) openMessageHeader(mask container.Mask, headerWire []byte) (*messageHeader, cipher.Stream, error) {
	if !id.private {
		return nil, nil, fmt.Errorf("%w: %w", ErrDecrypt, ErrPublicOnly)
	}

	wrapped, err := container.DecodeSegment(mask, headerWire)
	if err != nil {
		return nil, nil, err
	}
	if json.Valid(wrapped) {
		return nil, nil, fmt.Errorf("%w: not a message container", ErrFormat)
	}

	header, err := id.key.pair.Unwrap(wrapped)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	h, key, err := parseMessageHeader(header)
	clear(header)
	if err != nil {
		return nil, nil, err
	}

	c, err := crypto.NewSessionCipher(key)
	clear(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session cipher: %w", err)
	}
	return h, c, nil
}
