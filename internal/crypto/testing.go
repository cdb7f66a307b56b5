package crypto

import (
	"io"
	"time"
)

// SetRandReaderForTesting sets the random reader used for key generation
// and session nonces. Returns a function to restore the original reader.
func SetRandReaderForTesting(r io.Reader) func() {
	original := randReader
	randReader = r
	return func() { randReader = original }
}

// SetNowForTesting overrides the clock mixed into session keys.
func SetNowForTesting(fn func() time.Time) func() {
	original := now
	now = fn
	return func() { now = original }
}
