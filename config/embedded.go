package config

// DefaultConfigYAML is the embedded default configuration
const DefaultConfigYAML = `# wpgp Configuration
# Values here can be overridden by <keyring_dir>/config.yaml and WPGP_* variables

# Directory holding the own identity and known recipients
keyring_dir: ~/.wpgp

# RSA modulus size for new identities
# Supported sizes: 1024, 2048, 3072, 4096
key_size: 2048

# Validity of new identities in days (0 = never expires, max 365)
validity_days: 0

# Hash algorithm for key fingerprints
# Supported algorithms: blake3, sha256, sha512
fingerprint_algorithm: blake3

# Read size of encrypt and decrypt streams in bytes (1 KiB - 16 MiB)
chunk_size: 32768

# scrypt log2(N) for passphrase-protected private keys (10-22)
scrypt_work_factor: 18

# Log level: debug, info, warn, error
log_level: warn
`
