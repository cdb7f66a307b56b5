package container

import "io"

// SetRandReaderForTesting sets the random source used for mask generation.
// Returns a function that restores the original reader.
func SetRandReaderForTesting(r io.Reader) func() {
	original := randReader
	randReader = r
	return func() { randReader = original }
}
