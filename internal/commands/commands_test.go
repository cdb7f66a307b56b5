package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// run executes the app with args against keyring and returns its output.
func run(t *testing.T, keyring string, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := NewApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}

	argv := append([]string{"wpgp", "--keyring", keyring}, args...)
	err := app.Run(argv)
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Setenv("WPGP_KEY_SIZE", "1024")
	t.Setenv("WPGP_SCRYPT_WORK_FACTOR", "10")
	t.Setenv("WPGP_PASSPHRASE", "")
}

func TestRoundTrip(t *testing.T) {
	setupEnv(t)
	alice := t.TempDir()
	bob := t.TempDir()
	work := t.TempDir()

	out, err := run(t, alice, "", "keyring", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "No identity yet")
	assert.FileExists(t, filepath.Join(alice, "config.yaml"))

	_, err = run(t, alice, "", "key", "create", "--name", "Alice", "--mail", "alice@example.com", "--days", "30")
	require.NoError(t, err)
	out, err = run(t, bob, "", "key", "create", "--name", "Bob", "--passphrase", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Identity created successfully!")

	// A second create without --force keeps the identity
	_, err = run(t, alice, "", "key", "create", "--name", "Mallory")
	assert.Error(t, err)

	bobPub := filepath.Join(work, "bob.pub")
	_, err = run(t, bob, "", "key", "public", "-o", bobPub)
	require.NoError(t, err)

	out, err = run(t, alice, "", "keyring", "add", "--alias", "b", bobPub)
	require.NoError(t, err)
	assert.Contains(t, out, "Added recipient 'Bob'")

	out, err = run(t, alice, "", "keyring", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Bob")
	assert.Contains(t, out, "Alias: b")

	plain := filepath.Join(work, "plain.txt")
	require.NoError(t, os.WriteFile(plain, []byte("Hello World"), 0644))
	sealed := filepath.Join(work, "plain.txt.wpgp")
	_, err = run(t, alice, "", "encrypt", "--to", "b", "-i", plain, "-o", sealed)
	require.NoError(t, err)

	out, err = run(t, alice, "", "verify", "--checksum", sealed, bobPub)
	require.NoError(t, err)
	assert.Contains(t, out, sealed+": OK blake3:")

	// Bob's key is protected
	opened := filepath.Join(work, "opened.txt")
	_, err = run(t, bob, "", "decrypt", "-i", sealed, "-o", opened)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protected")

	_, err = run(t, bob, "", "decrypt", "-i", sealed, "-o", opened, "--passphrase", "pw")
	require.NoError(t, err)
	got, err := os.ReadFile(opened)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", string(got))

	// Alice cannot read what she sent to Bob
	_, err = run(t, alice, "", "decrypt", "-i", sealed, "-o", filepath.Join(work, "nope"))
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(work, "nope"))

	_, err = run(t, alice, "", "keyring", "remove", "Bob")
	require.NoError(t, err)
	_, err = run(t, alice, "", "encrypt", "--to", "b", "-i", plain)
	assert.Error(t, err)
}

func TestEncryptToSelfViaStdio(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	work := t.TempDir()

	_, err := run(t, dir, "", "key", "create", "--name", "Self")
	require.NoError(t, err)

	sealed := filepath.Join(work, "msg.wpgp")
	_, err = run(t, dir, "streamed through stdin", "encrypt", "-o", sealed)
	require.NoError(t, err)

	raw, err := os.ReadFile(sealed)
	require.NoError(t, err)

	// stdin has no random access, so decrypt spools it
	out, err := run(t, dir, string(raw), "decrypt")
	require.NoError(t, err)
	assert.Equal(t, "streamed through stdin", out)
}

func TestVerifyReportsFailures(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	bad := filepath.Join(t.TempDir(), "bad.wpgp")
	require.NoError(t, os.WriteFile(bad, []byte("definitely not a container"), 0644))

	out, err := run(t, dir, "", "verify", bad)
	assert.Error(t, err)
	assert.Contains(t, out, "FAILED")
}

func TestKeyShow(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	work := t.TempDir()
	priv := filepath.Join(work, "ci.key")
	pub := filepath.Join(work, "ci.pub")

	_, err := run(t, dir, "", "key", "create", "--name", "CI", "--comment", "build bot", "--out", priv, "--pub-out", pub)
	require.NoError(t, err)

	out, err := run(t, dir, "", "key", "show", pub)
	require.NoError(t, err)
	assert.Contains(t, out, "Name: CI")
	assert.Contains(t, out, "Comment: build bot")
	assert.Contains(t, out, "Type: PUBLIC")
	assert.Contains(t, out, "Expires: never")

	out, err = run(t, dir, "", "key", "show", priv)
	require.NoError(t, err)
	assert.Contains(t, out, "Type: PRIVATE")
	assert.Contains(t, out, "Size: 1024 bits")
}
