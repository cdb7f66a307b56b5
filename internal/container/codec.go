package container

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// Encoding is the text-safe alphabet applied to masked segments.
var Encoding = base64.StdEncoding

// Frame is a parsed container whose framing and digest have been checked.
// Header and Body hold the segments exactly as transmitted.
type Frame struct {
	Trailer Trailer
	Header  []byte
	Body    []byte
	Digest  []byte
}

// EncodeSegment masks data from position zero and encodes it to text.
func EncodeSegment(mask Mask, data []byte) []byte {
	masked := make([]byte, len(data))
	mask.Apply(masked, data, 0)

	out := make([]byte, Encoding.EncodedLen(len(masked)))
	Encoding.Encode(out, masked)
	return out
}

// DecodeSegment reverses EncodeSegment.
func DecodeSegment(mask Mask, wire []byte) ([]byte, error) {
	out := make([]byte, Encoding.DecodedLen(len(wire)))
	n, err := Encoding.Decode(out, wire)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode segment: %v", ErrFormat, err)
	}
	out = out[:n]
	mask.Apply(out, out, 0)
	return out, nil
}

// Digest computes the integrity digest over the wire body and header.
func Digest(body, header []byte) []byte {
	sha := sha256.New()
	sha.Write(body)
	sha.Write(header)
	return sha.Sum(nil)
}

// Seal encodes header and body with mask and assembles a complete
// container. The output is deterministic for a given mask.
func Seal(mask Mask, header, body []byte) []byte {
	bodyWire := EncodeSegment(mask, body)
	headerWire := EncodeSegment(mask, header)
	return Assemble(mask, bodyWire, headerWire)
}

// Assemble concatenates already encoded segments with their digest and
// trailer.
func Assemble(mask Mask, bodyWire, headerWire []byte) []byte {
	trailer := NewTrailer(mask, uint64(len(bodyWire)), uint64(len(headerWire)))

	out := make([]byte, 0, len(bodyWire)+len(headerWire)+DigestSize+TrailerSize)
	out = append(out, bodyWire...)
	out = append(out, headerWire...)
	out = append(out, Digest(bodyWire, headerWire)...)
	out = append(out, trailer.MarshalBinary()...)
	return out
}

// Open parses the trailer of raw, validates the offset table and checks
// the digest before returning any segment.
func Open(raw []byte) (*Frame, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty container", ErrFormat)
	}
	if len(raw) < TrailerSize {
		return nil, fmt.Errorf("%w: container shorter than trailer", ErrFormat)
	}

	t, err := ParseTrailer(raw[len(raw)-TrailerSize:])
	if err != nil {
		return nil, err
	}
	if err := t.Validate(uint64(len(raw))); err != nil {
		return nil, err
	}

	frame := &Frame{
		Trailer: t,
		Body:    raw[t.Body.Start:t.Body.End],
		Header:  raw[t.Header.Start:t.Header.End],
		Digest:  raw[t.Hash.Start:t.Hash.End],
	}

	sum := sha256.Sum256(raw[t.Body.Start:t.Header.End])
	if subtle.ConstantTimeCompare(sum[:], frame.Digest) != 1 {
		return nil, ErrIntegrity
	}
	return frame, nil
}

// DecodeHeader unmasks and decodes the header segment.
func (f *Frame) DecodeHeader() ([]byte, error) {
	return DecodeSegment(f.Trailer.Mask, f.Header)
}

// DecodeBody unmasks and decodes the body segment.
func (f *Frame) DecodeBody() ([]byte, error) {
	return DecodeSegment(f.Trailer.Mask, f.Body)
}
