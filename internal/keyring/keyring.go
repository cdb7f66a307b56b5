// Package keyring stores the own identity and the public keys of known
// recipients in one directory.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Mattddixo/wpgp/pkg/wpgp"
)

// Keyring manages the key containers under one directory
type Keyring struct {
	dir       string
	algorithm string
	index     Index
}

// Open opens the keyring at dir, creating it if needed. Fingerprints of
// new recipients use algorithm.
func Open(dir, algorithm string) (*Keyring, error) {
	if err := os.MkdirAll(filepath.Join(dir, RecipientsDir), 0700); err != nil {
		return nil, fmt.Errorf("failed to create keyring directory: %w", err)
	}

	k := &Keyring{
		dir:       dir,
		algorithm: algorithm,
	}
	if err := k.load(); err != nil {
		return nil, err
	}
	return k, nil
}

// Dir returns the keyring directory
func (k *Keyring) Dir() string {
	return k.dir
}

// PrivateKeyPath returns the path to the own private key container
func (k *Keyring) PrivateKeyPath() string {
	return filepath.Join(k.dir, PrivateKeyFile)
}

// PublicKeyPath returns the path to the own public key container
func (k *Keyring) PublicKeyPath() string {
	return filepath.Join(k.dir, PublicKeyFile)
}

// load reads the recipients index
func (k *Keyring) load() error {
	path := filepath.Join(k.dir, IndexFile)

	// If the index doesn't exist, start empty
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		k.index = Index{Recipients: []Recipient{}}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read recipients index: %w", err)
	}

	if err := yaml.Unmarshal(data, &k.index); err != nil {
		return fmt.Errorf("failed to parse recipients index: %w", err)
	}
	return nil
}

// save writes the recipients index
func (k *Keyring) save() error {
	data, err := yaml.Marshal(k.index)
	if err != nil {
		return fmt.Errorf("failed to marshal recipients index: %w", err)
	}

	if err := os.WriteFile(filepath.Join(k.dir, IndexFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write recipients index: %w", err)
	}
	return nil
}

// HasIdentity reports whether the keyring holds an own identity
func (k *Keyring) HasIdentity() bool {
	_, err := os.Stat(k.PrivateKeyPath())
	return err == nil
}

// SetIdentity stores id as the own identity. An existing identity is only
// replaced when force is set.
func (k *Keyring) SetIdentity(id *wpgp.Identity, passphrase string, force bool, opts ...wpgp.Option) error {
	if k.HasIdentity() && !force {
		return ErrIdentityExists
	}

	if err := wpgp.WritePrivateKey(k.PrivateKeyPath(), id, passphrase, opts...); err != nil {
		return err
	}
	return wpgp.WritePublicKey(k.PublicKeyPath(), id)
}

// Identity loads the own private identity
func (k *Keyring) Identity(passphrase string) (*wpgp.Identity, error) {
	if !k.HasIdentity() {
		return nil, ErrNoIdentity
	}
	return wpgp.ReadPrivateKey(k.PrivateKeyPath(), passphrase)
}

// PublicIdentity loads the own public identity, which needs no passphrase
func (k *Keyring) PublicIdentity() (*wpgp.Identity, error) {
	if _, err := os.Stat(k.PublicKeyPath()); err != nil {
		return nil, ErrNoIdentity
	}
	return wpgp.ReadPublicKey(k.PublicKeyPath())
}

// Add verifies raw as a PUBLIC key container and stores it. An empty name
// defaults to the name inside the key.
func (k *Keyring) Add(raw []byte, name, alias, notes string) (*Recipient, error) {
	id, err := wpgp.ImportPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to import recipient key: %w", err)
	}
	defer id.Close()

	if name == "" {
		name = id.Name()
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidRecipientID
	}

	fingerprint, err := id.Fingerprint(k.algorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint recipient key: %w", err)
	}

	for _, r := range k.index.Recipients {
		switch {
		case r.Name == name:
			return nil, fmt.Errorf("%w: %s", ErrRecipientExists, name)
		case alias != "" && r.Alias == alias:
			return nil, fmt.Errorf("%w: alias %s", ErrRecipientExists, alias)
		case r.Algorithm == k.algorithm && r.Fingerprint == fingerprint:
			return nil, fmt.Errorf("%w: key already stored as %s", ErrRecipientExists, r.Name)
		}
	}

	// Save the key container under its fingerprint
	file := fingerprint[:min(len(fingerprint), 32)] + ".pub"
	if err := os.WriteFile(filepath.Join(k.dir, RecipientsDir, file), raw, 0644); err != nil {
		return nil, fmt.Errorf("failed to save recipient key: %w", err)
	}

	r := Recipient{
		Name:        name,
		Mail:        id.Mail(),
		Alias:       alias,
		Fingerprint: fingerprint,
		Algorithm:   k.algorithm,
		File:        file,
		Added:       time.Now().UTC(),
		Notes:       notes,
		Trusted:     true,
	}
	k.index.Recipients = append(k.index.Recipients, r)
	if err := k.save(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Get finds a recipient by name or alias
func (k *Keyring) Get(name string) (*Recipient, error) {
	i := k.find(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, name)
	}
	r := k.index.Recipients[i]
	return &r, nil
}

func (k *Keyring) find(name string) int {
	return slices.IndexFunc(k.index.Recipients, func(r Recipient) bool {
		return r.Name == name || (r.Alias != "" && r.Alias == name)
	})
}

// Load imports the stored key of a recipient, checks that it still matches
// the recorded fingerprint and marks the recipient as used.
func (k *Keyring) Load(name string) (*wpgp.Identity, error) {
	i := k.find(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, name)
	}
	r := &k.index.Recipients[i]

	id, err := wpgp.ReadPublicKey(filepath.Join(k.dir, RecipientsDir, r.File))
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient %s: %w", r.Name, err)
	}

	fingerprint, err := id.Fingerprint(r.Algorithm)
	if err != nil {
		id.Close()
		return nil, fmt.Errorf("failed to fingerprint recipient key: %w", err)
	}
	if fingerprint != r.Fingerprint {
		id.Close()
		return nil, fmt.Errorf("stored key for %s does not match its fingerprint", r.Name)
	}

	r.LastUsed = time.Now().UTC()
	if err := k.save(); err != nil {
		id.Close()
		return nil, err
	}
	return id, nil
}

// List returns all recipients sorted by name
func (k *Keyring) List() []Recipient {
	out := slices.Clone(k.index.Recipients)
	slices.SortFunc(out, func(a, b Recipient) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Remove deletes a recipient and its key file
func (k *Keyring) Remove(name string) error {
	i := k.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRecipientNotFound, name)
	}

	// Remove the key file
	path := filepath.Join(k.dir, RecipientsDir, k.index.Recipients[i].File)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove key file: %w", err)
	}

	k.index.Recipients = slices.Delete(k.index.Recipients, i, i+1)
	return k.save()
}
