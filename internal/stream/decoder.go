package stream

import (
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"hash"

	"github.com/Mattddixo/wpgp/internal/container"
)

// Decoder is the read-side state machine for a container body.
type Decoder struct {
	mask   container.Mask
	cipher cipher.Stream
	digest hash.Hash
	limit  int64 // declared body length on the wire
	done   bool

	// pending holds encoded bytes not yet forming a whole base64 quantum.
	pending  []byte
	offset   int64 // decoded bytes produced, the mask position
	consumed int64 // wire bytes consumed
}

// NewDecoder returns a decoder for a body segment of bodyLen wire bytes.
func NewDecoder(mask container.Mask, c cipher.Stream, bodyLen int64) *Decoder {
	return &Decoder{
		mask:   mask,
		cipher: c,
		digest: sha256.New(),
		limit:  bodyLen,
	}
}

// Consumed returns the number of wire bytes consumed so far.
func (d *Decoder) Consumed() int64 {
	return d.consumed
}

// Remaining returns the number of body bytes still expected.
func (d *Decoder) Remaining() int64 {
	return d.limit - d.consumed
}

// Advance consumes one chunk of body wire bytes and returns the plaintext
// ready for emission.
func (d *Decoder) Advance(wire []byte) ([]byte, error) {
	if d.done {
		return nil, ErrState
	}
	if int64(len(wire)) > d.Remaining() {
		return nil, fmt.Errorf("%w: body exceeds declared length", container.ErrFormat)
	}

	d.digest.Write(wire)
	d.consumed += int64(len(wire))

	buf := make([]byte, 0, len(d.pending)+len(wire))
	buf = append(buf, d.pending...)
	buf = append(buf, wire...)

	n := len(buf) / 4 * 4
	d.pending = append(d.pending[:0], buf[n:]...)
	if n == 0 {
		return nil, nil
	}

	out := make([]byte, container.Encoding.DecodedLen(n))
	m, err := container.Encoding.Decode(out, buf[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode body: %v", container.ErrFormat, err)
	}
	out = out[:m]

	d.mask.Apply(out, out, d.offset)
	d.offset += int64(m)
	d.cipher.XORKeyStream(out, out)
	return out, nil
}

// Finish checks that the whole body was consumed on a quantum boundary.
func (d *Decoder) Finish() error {
	if d.done {
		return ErrState
	}
	d.done = true

	if d.consumed != d.limit {
		return fmt.Errorf("%w: body truncated at %d of %d bytes", container.ErrFormat, d.consumed, d.limit)
	}
	if len(d.pending) != 0 {
		return fmt.Errorf("%w: body ends mid quantum", container.ErrFormat)
	}
	return nil
}

// Check completes the running digest with the header segment and compares
// it with the stored digest.
func (d *Decoder) Check(headerWire, stored []byte) error {
	d.digest.Write(headerWire)
	if subtle.ConstantTimeCompare(d.digest.Sum(nil), stored) != 1 {
		return container.ErrIntegrity
	}
	return nil
}
