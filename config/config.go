package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigKeyType is the type for the config context key
type ConfigKeyType struct{}

// ConfigKey is the context key for storing the config
var ConfigKey = ConfigKeyType{}

// Config holds all configuration values for wpgp
type Config struct {
	// KeyringDir is the directory holding the own identity and known recipients
	KeyringDir string `yaml:"keyring_dir"`

	// KeySize is the RSA modulus size in bits for new identities
	KeySize int `yaml:"key_size"`

	// ValidityDays is the validity window of new identities, 0 for none
	ValidityDays uint32 `yaml:"validity_days"`

	// FingerprintAlgorithm is the algorithm used for key fingerprints
	FingerprintAlgorithm string `yaml:"fingerprint_algorithm"`

	// ChunkSize is the read size of encrypt and decrypt streams
	ChunkSize int `yaml:"chunk_size"`

	// ScryptWorkFactor is log2(N) for passphrase-protected private keys
	ScryptWorkFactor int `yaml:"scrypt_work_factor"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// normalizePath converts a path to the OS-specific format, expands a
// leading ~ and cleans it
func normalizePath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	// Convert to OS-specific path separators
	path = filepath.FromSlash(path)
	return filepath.Clean(path)
}

// New creates a new Config with values from config file, environment variables, or defaults
func New() (*Config, error) {
	return NewWithKeyring("")
}

// NewWithKeyring creates a new Config for a specific keyring directory
func NewWithKeyring(keyringDir string) (*Config, error) {
	// Create config with defaults from embedded YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(DefaultConfigYAML), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}

	// The keyring location decides where the config file lives, so it is
	// resolved before the file is read
	if keyringDir == "" {
		keyringDir = os.Getenv("WPGP_KEYRING_DIR")
	}
	if keyringDir != "" {
		cfg.KeyringDir = keyringDir
	}
	cfg.KeyringDir = normalizePath(cfg.KeyringDir)

	// Overlay the keyring config file if present
	configPath := filepath.Join(cfg.KeyringDir, ConfigFileName)
	if data, err := os.ReadFile(configPath); err == nil {
		dir := cfg.KeyringDir
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
		cfg.KeyringDir = dir
	}

	// Override with environment variables if they exist
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("WPGP_KEY_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WPGP_KEY_SIZE: %w", err)
		}
		c.KeySize = size
	}
	if v := os.Getenv("WPGP_VALIDITY_DAYS"); v != "" {
		days, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid WPGP_VALIDITY_DAYS: %w", err)
		}
		c.ValidityDays = uint32(days)
	}
	if v := os.Getenv("WPGP_FINGERPRINT_ALGORITHM"); v != "" {
		c.FingerprintAlgorithm = v
	}
	if v := os.Getenv("WPGP_CHUNK_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WPGP_CHUNK_SIZE: %w", err)
		}
		c.ChunkSize = size
	}
	if v := os.Getenv("WPGP_SCRYPT_WORK_FACTOR"); v != "" {
		factor, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WPGP_SCRYPT_WORK_FACTOR: %w", err)
		}
		c.ScryptWorkFactor = factor
	}
	if v := os.Getenv("WPGP_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

// Save saves the current configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if !slices.Contains(ValidKeySizes, c.KeySize) {
		return fmt.Errorf("invalid key size: %d, must be one of: %v", c.KeySize, ValidKeySizes)
	}

	if c.ValidityDays > MaxValidityDays {
		return fmt.Errorf("invalid validity: %d days, must be at most %d", c.ValidityDays, MaxValidityDays)
	}

	if !slices.Contains(ValidFingerprintAlgorithms, c.FingerprintAlgorithm) {
		return fmt.Errorf("invalid fingerprint algorithm: %s, must be one of: %s",
			c.FingerprintAlgorithm, strings.Join(ValidFingerprintAlgorithms, ", "))
	}

	if c.ChunkSize < MinChunkSize || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("invalid chunk size: %d, must be between %d and %d",
			c.ChunkSize, MinChunkSize, MaxChunkSize)
	}

	if c.ScryptWorkFactor < MinScryptWorkFactor || c.ScryptWorkFactor > MaxScryptWorkFactor {
		return fmt.Errorf("invalid scrypt work factor: %d, must be between %d and %d",
			c.ScryptWorkFactor, MinScryptWorkFactor, MaxScryptWorkFactor)
	}

	if !slices.Contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s, must be one of: %s",
			c.LogLevel, strings.Join(ValidLogLevels, ", "))
	}

	return nil
}

// EnsureKeyringDir creates the keyring directory if it doesn't exist
func (c *Config) EnsureKeyringDir() error {
	if err := os.MkdirAll(c.KeyringDir, 0700); err != nil {
		return fmt.Errorf("failed to create keyring directory: %w", err)
	}
	return nil
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("Configuration:\n")
	sb.WriteString(fmt.Sprintf("  Keyring Directory: %s\n", c.KeyringDir))
	sb.WriteString(fmt.Sprintf("  Key Size: %d\n", c.KeySize))
	sb.WriteString(fmt.Sprintf("  Validity Days: %d\n", c.ValidityDays))
	sb.WriteString(fmt.Sprintf("  Fingerprint Algorithm: %s\n", c.FingerprintAlgorithm))
	sb.WriteString(fmt.Sprintf("  Chunk Size: %d\n", c.ChunkSize))
	sb.WriteString(fmt.Sprintf("  Scrypt Work Factor: %d\n", c.ScryptWorkFactor))
	sb.WriteString(fmt.Sprintf("  Log Level: %s\n", c.LogLevel))
	return sb.String()
}

// WithContext adds the config to the context
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConfigKey, c)
}

// GetConfigFromContext retrieves the config from a context
func GetConfigFromContext(ctx context.Context) (*Config, error) {
	if cfg, ok := ctx.Value(ConfigKey).(*Config); ok {
		return cfg, nil
	}
	return nil, fmt.Errorf("no config found in context")
}
