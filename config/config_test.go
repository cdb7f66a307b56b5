package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WPGP_KEYRING_DIR", "")

	cfg, err := NewWithKeyring(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.KeyringDir)
	assert.Equal(t, DefaultKeySize, cfg.KeySize)
	assert.Equal(t, uint32(0), cfg.ValidityDays)
	assert.Equal(t, DefaultFingerprintAlgorithm, cfg.FingerprintAlgorithm)
	assert.Equal(t, 32768, cfg.ChunkSize)
	assert.Equal(t, 18, cfg.ScryptWorkFactor)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestDefaultKeyringDirExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("WPGP_KEYRING_DIR", "")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".wpgp"), cfg.KeyringDir)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WPGP_KEYRING_DIR", dir)
	t.Setenv("WPGP_KEY_SIZE", "4096")
	t.Setenv("WPGP_VALIDITY_DAYS", "90")
	t.Setenv("WPGP_FINGERPRINT_ALGORITHM", "sha256")
	t.Setenv("WPGP_CHUNK_SIZE", "4096")
	t.Setenv("WPGP_SCRYPT_WORK_FACTOR", "12")
	t.Setenv("WPGP_LOG_LEVEL", "DEBUG")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.KeyringDir)
	assert.Equal(t, 4096, cfg.KeySize)
	assert.Equal(t, uint32(90), cfg.ValidityDays)
	assert.Equal(t, "sha256", cfg.FingerprintAlgorithm)
	assert.Equal(t, 4096, cfg.ChunkSize)
	assert.Equal(t, 12, cfg.ScryptWorkFactor)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestKeyringConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WPGP_KEYRING_DIR", "")
	t.Setenv("WPGP_KEY_SIZE", "")

	file := "key_size: 3072\nlog_level: info\nkeyring_dir: /elsewhere\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(file), 0644))

	cfg, err := NewWithKeyring(dir)
	require.NoError(t, err)

	assert.Equal(t, 3072, cfg.KeySize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, dir, cfg.KeyringDir)
	assert.Equal(t, DefaultFingerprintAlgorithm, cfg.FingerprintAlgorithm)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"key size", "WPGP_KEY_SIZE", "1000"},
		{"key size not a number", "WPGP_KEY_SIZE", "big"},
		{"validity", "WPGP_VALIDITY_DAYS", "366"},
		{"negative validity", "WPGP_VALIDITY_DAYS", "-1"},
		{"algorithm", "WPGP_FINGERPRINT_ALGORITHM", "md5"},
		{"chunk too small", "WPGP_CHUNK_SIZE", "512"},
		{"chunk too large", "WPGP_CHUNK_SIZE", "33554432"},
		{"work factor", "WPGP_SCRYPT_WORK_FACTOR", "30"},
		{"log level", "WPGP_LOG_LEVEL", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WPGP_KEYRING_DIR", t.TempDir())
			t.Setenv(tt.env, tt.val)

			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WPGP_KEYRING_DIR", "")
	t.Setenv("WPGP_CHUNK_SIZE", "")

	cfg, err := NewWithKeyring(dir)
	require.NoError(t, err)
	cfg.ChunkSize = 8192
	require.NoError(t, cfg.Save(filepath.Join(dir, ConfigFileName)))

	loaded, err := NewWithKeyring(dir)
	require.NoError(t, err)
	assert.Equal(t, 8192, loaded.ChunkSize)
	assert.Contains(t, loaded.String(), "Chunk Size: 8192")
}

func TestContext(t *testing.T) {
	_, err := GetConfigFromContext(context.Background())
	assert.Error(t, err)

	cfg := &Config{KeySize: 2048}
	got, err := GetConfigFromContext(cfg.WithContext(context.Background()))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestEnsureKeyringDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "keyring")
	t.Setenv("WPGP_KEYRING_DIR", "")

	cfg, err := NewWithKeyring(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.EnsureKeyringDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

	require.NoError(t, cfg.EnsureKeyringDir())
}
