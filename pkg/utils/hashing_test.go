package utils

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHasher(t *testing.T) {
	for _, algorithm := range HashAlgorithms {
		t.Run(algorithm, func(t *testing.T) {
			h, err := GetHasher(algorithm)
			require.NoError(t, err)
			assert.NotNil(t, h)
		})
	}

	_, err := GetHasher("md5")
	assert.Error(t, err)
}

func TestHashBytesMatchesReaderAndFile(t *testing.T) {
	data := []byte("Hello World")
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, data, 0644))

	for _, algorithm := range HashAlgorithms {
		t.Run(algorithm, func(t *testing.T) {
			fromBytes, err := HashBytes(data, algorithm)
			require.NoError(t, err)

			fromReader, err := HashReader(strings.NewReader(string(data)), algorithm)
			require.NoError(t, err)

			fromFile, err := HashFile(path, algorithm)
			require.NoError(t, err)

			assert.Equal(t, fromBytes, fromReader)
			assert.Equal(t, fromBytes, fromFile)
		})
	}
}

func TestHashBytesSHA256(t *testing.T) {
	got, err := HashBytes([]byte("abc"), "sha256")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%x", sha256.Sum256([]byte("abc"))), got)
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "missing"), "blake3")
	assert.Error(t, err)
}
