package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Mattddixo/wpgp/config"
	"github.com/Mattddixo/wpgp/internal/keyring"
	"github.com/Mattddixo/wpgp/internal/logging"
	"github.com/Mattddixo/wpgp/pkg/wpgp"
)

// GetConfig retrieves the config from the context
func GetConfig(c *cli.Context) (*config.Config, error) {
	return config.GetConfigFromContext(c.Context)
}

// Logger retrieves the logger from the context
func Logger(c *cli.Context) *slog.Logger {
	return logging.FromContext(c.Context)
}

// OpenKeyring opens the keyring named by the config
func OpenKeyring(c *cli.Context) (*config.Config, *keyring.Keyring, error) {
	cfg, err := GetConfig(c)
	if err != nil {
		return nil, nil, err
	}

	k, err := keyring.Open(cfg.KeyringDir, cfg.FingerprintAlgorithm)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return cfg, k, nil
}

// Options builds library options from the config and logger
func Options(c *cli.Context, cfg *config.Config) []wpgp.Option {
	return []wpgp.Option{
		wpgp.WithLogger(Logger(c)),
		wpgp.WithChunkSize(cfg.ChunkSize),
		wpgp.WithScryptWorkFactor(cfg.ScryptWorkFactor),
	}
}

// Passphrase returns the passphrase from --passphrase or --passphrase-file
func Passphrase(c *cli.Context) (string, error) {
	if path := c.String("passphrase-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase file: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return c.String("passphrase"), nil
}

// OpenInput opens path for reading, or stdin when path is empty or "-"
func OpenInput(c *cli.Context, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(c.App.Reader), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

// Output is a destination that can be discarded when the command fails
type Output struct {
	io.Writer
	file *os.File
}

// CreateOutput creates path for writing, or uses stdout when path is empty
// or "-"
func CreateOutput(c *cli.Context, path string, perm os.FileMode) (*Output, error) {
	if path == "" || path == "-" {
		return &Output{Writer: c.App.Writer}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return &Output{Writer: f, file: f}, nil
}

// Finish closes the output, removing a partial file when err is set
func (o *Output) Finish(err error) error {
	if o.file == nil {
		return err
	}
	closeErr := o.file.Close()
	if err != nil {
		os.Remove(o.file.Name())
		return err
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output: %w", closeErr)
	}
	return nil
}
