package container

import (
	"encoding/binary"
	"fmt"
)

const (
	// Tag identifies the container scheme.
	Tag = "WPGP"

	// DigestSize is the size of the SHA-256 digest segment.
	DigestSize = 32

	// TrailerSize is the fixed size of the offset table closing every
	// container: tag, mask and three [start, end) pairs of uint64.
	TrailerSize = len(Tag) + MaskSize + 6*8
)

// Segment is a [Start, End) byte range inside a container.
type Segment struct {
	Start uint64
	End   uint64
}

// Len returns the segment length.
func (s Segment) Len() uint64 {
	return s.End - s.Start
}

// Trailer is the offset table written after the digest.
//
// Layout (big-endian):
//
//	tag(4) | mask(4) | header.start | header.end | body.start | body.end | hash.start | hash.end
type Trailer struct {
	Mask   Mask
	Header Segment
	Body   Segment
	Hash   Segment
}

// NewTrailer lays out body, header and digest back to back starting at
// offset zero.
func NewTrailer(mask Mask, bodyLen, headerLen uint64) Trailer {
	t := Trailer{Mask: mask}
	t.Body = Segment{Start: 0, End: bodyLen}
	t.Header = Segment{Start: t.Body.End, End: t.Body.End + headerLen}
	t.Hash = Segment{Start: t.Header.End, End: t.Header.End + DigestSize}
	return t
}

// MarshalBinary encodes the trailer in its fixed wire layout.
func (t Trailer) MarshalBinary() []byte {
	buf := make([]byte, 0, TrailerSize)
	buf = append(buf, Tag...)
	buf = append(buf, t.Mask[:]...)
	for _, seg := range []Segment{t.Header, t.Body, t.Hash} {
		buf = binary.BigEndian.AppendUint64(buf, seg.Start)
		buf = binary.BigEndian.AppendUint64(buf, seg.End)
	}
	return buf
}

// ParseTrailer decodes a trailer from exactly TrailerSize bytes.
func ParseTrailer(b []byte) (Trailer, error) {
	var t Trailer
	if len(b) != TrailerSize {
		return t, fmt.Errorf("%w: trailer is %d bytes, want %d", ErrFormat, len(b), TrailerSize)
	}
	if string(b[:len(Tag)]) != Tag {
		return t, fmt.Errorf("%w: unknown format tag %q", ErrFormat, b[:len(Tag)])
	}
	b = b[len(Tag):]
	copy(t.Mask[:], b[:MaskSize])
	b = b[MaskSize:]

	for _, seg := range []*Segment{&t.Header, &t.Body, &t.Hash} {
		seg.Start = binary.BigEndian.Uint64(b[0:8])
		seg.End = binary.BigEndian.Uint64(b[8:16])
		b = b[16:]
	}
	return t, nil
}

// Validate checks that the segments are contiguous, ordered body, header,
// digest, and end exactly where the trailer begins in a container of
// total bytes.
func (t Trailer) Validate(total uint64) error {
	if total < uint64(TrailerSize) {
		return fmt.Errorf("%w: container shorter than trailer", ErrFormat)
	}
	limit := total - uint64(TrailerSize)

	for _, seg := range []Segment{t.Body, t.Header, t.Hash} {
		if seg.Start > seg.End || seg.End > limit {
			return fmt.Errorf("%w: segment [%d, %d) out of range", ErrFormat, seg.Start, seg.End)
		}
	}

	switch {
	case t.Body.Start != 0:
		return fmt.Errorf("%w: body does not start at offset zero", ErrFormat)
	case t.Header.Start != t.Body.End:
		return fmt.Errorf("%w: header does not follow body", ErrFormat)
	case t.Hash.Start != t.Header.End:
		return fmt.Errorf("%w: digest does not follow header", ErrFormat)
	case t.Hash.Len() != DigestSize:
		return fmt.Errorf("%w: digest is %d bytes, want %d", ErrFormat, t.Hash.Len(), DigestSize)
	case t.Hash.End != limit:
		return fmt.Errorf("%w: digest does not end at trailer", ErrFormat)
	}
	return nil
}
