package wpgp

import (
	"log/slog"

	"github.com/Mattddixo/wpgp/internal/crypto"
	"github.com/Mattddixo/wpgp/internal/logging"
)

const (
	defaultChunkSize = 32 * 1024
	minChunkSize     = 3 * 1024
)

// options holds the settings shared by export and stream operations.
type options struct {
	logger           *slog.Logger
	chunkSize        int
	scryptWorkFactor int
	bestEffort       bool
	tempDir          string
}

// Option configures an export or stream operation.
type Option func(*options)

// WithLogger sets the logger used for debug events. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithChunkSize sets the read size of stream pipelines. Sizes below 3 KiB
// are raised to 3 KiB.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = max(size, minChunkSize)
	}
}

// WithScryptWorkFactor sets log2(N) for passphrase-protected private keys.
func WithScryptWorkFactor(logN int) Option {
	return func(o *options) {
		o.scryptWorkFactor = logN
	}
}

// WithBestEffort makes DecryptStream emit plaintext in a single pass and
// check the digest only at the end. Bytes emitted before an integrity
// failure cannot be retracted.
func WithBestEffort() Option {
	return func(o *options) {
		o.bestEffort = true
	}
}

// WithTempDir sets the directory used to spool non-seekable sources.
func WithTempDir(dir string) Option {
	return func(o *options) {
		o.tempDir = dir
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:           logging.Discard(),
		chunkSize:        defaultChunkSize,
		scryptWorkFactor: crypto.DefaultScryptWorkFactor,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
