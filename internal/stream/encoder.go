package stream

import (
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"hash"

	"github.com/Mattddixo/wpgp/internal/container"
)

// ErrState is returned when an encoder or decoder is driven out of order.
var ErrState = errors.New("stream codec used out of order")

type encoderState int

const (
	encodingBody encoderState = iota
	encodingFlushed
	encodingClosed
)

// Encoder is the write-side state machine for a container body.
type Encoder struct {
	mask   container.Mask
	cipher cipher.Stream
	digest hash.Hash
	state  encoderState

	// pending holds masked bytes not yet forming a whole base64 quantum.
	pending []byte
	offset  int64 // masked bytes produced, the mask position
	wire    int64 // encoded body bytes emitted
}

// NewEncoder returns an encoder applying c, then mask, then base64.
func NewEncoder(mask container.Mask, c cipher.Stream) *Encoder {
	return &Encoder{
		mask:   mask,
		cipher: c,
		digest: sha256.New(),
	}
}

// PlainLen returns the number of plaintext bytes consumed so far.
func (e *Encoder) PlainLen() int64 {
	return e.offset
}

// WireLen returns the number of body bytes emitted so far.
func (e *Encoder) WireLen() int64 {
	return e.wire
}

// Advance consumes one plaintext chunk and returns the encoded bytes ready
// for emission. The returned slice may be empty.
func (e *Encoder) Advance(chunk []byte) ([]byte, error) {
	if e.state != encodingBody {
		return nil, ErrState
	}

	buf := make([]byte, len(e.pending)+len(chunk))
	copy(buf, e.pending)
	masked := buf[len(e.pending):]
	e.cipher.XORKeyStream(masked, chunk)
	e.mask.Apply(masked, masked, e.offset)
	e.offset += int64(len(chunk))

	n := len(buf) / 3 * 3
	e.pending = append(e.pending[:0], buf[n:]...)
	return e.emit(buf[:n]), nil
}

// Flush ends the body and returns the final, padded base64 quantum.
func (e *Encoder) Flush() ([]byte, error) {
	if e.state != encodingBody {
		return nil, ErrState
	}
	e.state = encodingFlushed

	out := e.emit(e.pending)
	e.pending = nil
	return out, nil
}

// Close appends the encoded header segment and returns header, digest
// and trailer: everything that follows the body on the wire.
func (e *Encoder) Close(headerWire []byte) ([]byte, error) {
	if e.state != encodingFlushed {
		return nil, ErrState
	}
	e.state = encodingClosed

	e.digest.Write(headerWire)
	trailer := container.NewTrailer(e.mask, uint64(e.wire), uint64(len(headerWire)))

	out := make([]byte, 0, len(headerWire)+container.DigestSize+container.TrailerSize)
	out = append(out, headerWire...)
	out = e.digest.Sum(out)
	out = append(out, trailer.MarshalBinary()...)
	return out, nil
}

func (e *Encoder) emit(masked []byte) []byte {
	if len(masked) == 0 {
		return nil
	}

	out := make([]byte, container.Encoding.EncodedLen(len(masked)))
	container.Encoding.Encode(out, masked)
	e.digest.Write(out)
	e.wire += int64(len(out))
	return out
}
