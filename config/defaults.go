package config

// Default configuration values
const (
	// DefaultKeyringDir is the default keyring location
	DefaultKeyringDir = "~/.wpgp"

	// ConfigFileName is the config file looked up inside the keyring directory
	ConfigFileName = "config.yaml"

	// DefaultKeySize is the default RSA modulus size in bits
	DefaultKeySize = 2048

	// DefaultFingerprintAlgorithm is the default algorithm for key fingerprints
	DefaultFingerprintAlgorithm = "blake3"
)

// ValidKeySizes contains the accepted RSA modulus sizes
var ValidKeySizes = []int{1024, 2048, 3072, 4096}

// ValidFingerprintAlgorithms contains the list of supported fingerprint algorithms
var ValidFingerprintAlgorithms = []string{
	"blake3",
	"sha256",
	"sha512",
}

// ValidLogLevels contains the accepted log levels
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Bounds for numeric settings
const (
	MaxValidityDays = 365

	MinChunkSize = 1 << 10
	MaxChunkSize = 16 << 20

	MinScryptWorkFactor = 10
	MaxScryptWorkFactor = 22
)
