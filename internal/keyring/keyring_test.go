package keyring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mattddixo/wpgp/pkg/wpgp"
)

func newIdentity(t *testing.T, name string) *wpgp.Identity {
	t.Helper()
	id, err := wpgp.Create(name, name+"@example.com", "", 0, 1024)
	require.NoError(t, err)
	t.Cleanup(func() { id.Close() })
	return id
}

func publicKey(t *testing.T, id *wpgp.Identity) []byte {
	t.Helper()
	raw, err := wpgp.ExportPublicKey(id)
	require.NoError(t, err)
	return raw
}

func TestIdentity(t *testing.T) {
	k, err := Open(t.TempDir(), "blake3")
	require.NoError(t, err)

	assert.False(t, k.HasIdentity())
	_, err = k.Identity("")
	assert.ErrorIs(t, err, ErrNoIdentity)
	_, err = k.PublicIdentity()
	assert.ErrorIs(t, err, ErrNoIdentity)

	alice := newIdentity(t, "alice")
	require.NoError(t, k.SetIdentity(alice, "", false))
	assert.True(t, k.HasIdentity())
	assert.ErrorIs(t, k.SetIdentity(alice, "", false), ErrIdentityExists)
	require.NoError(t, k.SetIdentity(alice, "", true))

	priv, err := k.Identity("")
	require.NoError(t, err)
	defer priv.Close()
	assert.True(t, priv.IsPrivate())
	assert.Equal(t, "alice", priv.Name())

	pub, err := k.PublicIdentity()
	require.NoError(t, err)
	defer pub.Close()
	assert.False(t, pub.IsPrivate())

	info, err := os.Stat(k.PrivateKeyPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestProtectedIdentity(t *testing.T) {
	k, err := Open(t.TempDir(), "blake3")
	require.NoError(t, err)

	alice := newIdentity(t, "alice")
	require.NoError(t, k.SetIdentity(alice, "pw", false, wpgp.WithScryptWorkFactor(10)))

	_, err = k.Identity("")
	assert.ErrorIs(t, err, wpgp.ErrPassphraseRequired)

	id, err := k.Identity("pw")
	require.NoError(t, err)
	id.Close()
}

func TestRecipients(t *testing.T) {
	dir := t.TempDir()
	k, err := Open(dir, "sha256")
	require.NoError(t, err)

	bob := newIdentity(t, "bob")
	carol := newIdentity(t, "carol")

	r, err := k.Add(publicKey(t, bob), "", "b", "met at conference")
	require.NoError(t, err)
	assert.Equal(t, "bob", r.Name)
	assert.Equal(t, "bob@example.com", r.Mail)
	assert.Equal(t, "sha256", r.Algorithm)
	assert.True(t, r.Trusted)

	want, err := bob.Fingerprint("sha256")
	require.NoError(t, err)
	assert.Equal(t, want, r.Fingerprint)

	_, err = k.Add(publicKey(t, carol), "carol", "", "")
	require.NoError(t, err)

	t.Run("duplicates", func(t *testing.T) {
		_, err := k.Add(publicKey(t, bob), "bobby", "", "")
		assert.ErrorIs(t, err, ErrRecipientExists)

		_, err = k.Add(publicKey(t, carol), "bob", "", "")
		assert.ErrorIs(t, err, ErrRecipientExists)
	})

	t.Run("rejects non public keys", func(t *testing.T) {
		raw, err := wpgp.ExportPrivateKey(bob, "")
		require.NoError(t, err)
		_, err = k.Add(raw, "x", "", "")
		assert.ErrorIs(t, err, wpgp.ErrFormat)

		_, err = k.Add([]byte("not a key"), "y", "", "")
		assert.ErrorIs(t, err, wpgp.ErrFormat)
	})

	t.Run("list is sorted", func(t *testing.T) {
		list := k.List()
		require.Len(t, list, 2)
		assert.Equal(t, "bob", list[0].Name)
		assert.Equal(t, "carol", list[1].Name)
	})

	t.Run("load by alias", func(t *testing.T) {
		id, err := k.Load("b")
		require.NoError(t, err)
		defer id.Close()

		ciphertext, err := wpgp.EncryptMessage(id, []byte("hi bob"))
		require.NoError(t, err)
		plaintext, err := wpgp.DecryptMessage(bob, ciphertext)
		require.NoError(t, err)
		assert.Equal(t, "hi bob", string(plaintext))

		got, err := k.Get("bob")
		require.NoError(t, err)
		assert.False(t, got.LastUsed.IsZero())
	})

	t.Run("persisted", func(t *testing.T) {
		reopened, err := Open(dir, "sha256")
		require.NoError(t, err)
		assert.Len(t, reopened.List(), 2)
	})

	t.Run("tampered key file", func(t *testing.T) {
		got, err := k.Get("carol")
		require.NoError(t, err)
		path := filepath.Join(dir, RecipientsDir, got.File)
		require.NoError(t, os.WriteFile(path, publicKey(t, bob), 0644))

		_, err = k.Load("carol")
		assert.Error(t, err)
	})

	t.Run("remove", func(t *testing.T) {
		got, err := k.Get("carol")
		require.NoError(t, err)

		require.NoError(t, k.Remove("carol"))
		assert.ErrorIs(t, k.Remove("carol"), ErrRecipientNotFound)
		_, err = k.Get("carol")
		assert.ErrorIs(t, err, ErrRecipientNotFound)

		_, err = os.Stat(filepath.Join(dir, RecipientsDir, got.File))
		assert.True(t, os.IsNotExist(err))
	})
}
