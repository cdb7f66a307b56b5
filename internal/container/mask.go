package container

import (
	"crypto/rand"
	"fmt"
	"io"
)

// MaskSize is the length of the obfuscation mask stored in the trailer.
const MaskSize = 4

// randReader is the random source used for mask generation.
var randReader io.Reader = rand.Reader

// Mask is the per-container XOR obfuscation key. It is stored in clear next
// to the format tag and only hides the JSON header from casual inspection.
type Mask [MaskSize]byte

// NewMask draws a fresh random mask.
func NewMask() (Mask, error) {
	var m Mask
	if _, err := io.ReadFull(randReader, m[:]); err != nil {
		return m, fmt.Errorf("failed to generate mask: %w", err)
	}
	return m, nil
}

// Apply XORs src into dst using the mask, where offset is the position of
// src[0] within its segment. dst and src may overlap exactly.
func (m Mask) Apply(dst, src []byte, offset int64) {
	pos := int(offset % MaskSize)
	for i := range src {
		dst[i] = src[i] ^ m[pos]
		pos++
		if pos == MaskSize {
			pos = 0
		}
	}
}
