package keyring

import (
	"errors"
	"time"
)

// Sentinel errors for errors.Is() checks
var (
	ErrNoIdentity         = errors.New("no identity in keyring")
	ErrIdentityExists     = errors.New("identity already exists")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrRecipientExists    = errors.New("recipient already exists")
	ErrInvalidRecipientID = errors.New("invalid recipient name")
)

// File names inside the keyring directory
const (
	PrivateKeyFile = "identity.key"
	PublicKeyFile  = "identity.pub"
	IndexFile      = "recipients.yaml"
	RecipientsDir  = "recipients"
)

// Recipient is a known public key that messages can be encrypted to
type Recipient struct {
	Name        string    `yaml:"name"`
	Mail        string    `yaml:"mail,omitempty"`
	Alias       string    `yaml:"alias,omitempty"` // Short alias for quick reference
	Fingerprint string    `yaml:"fingerprint"`
	Algorithm   string    `yaml:"algorithm"` // Fingerprint algorithm
	File        string    `yaml:"file"`      // Key container, relative to the recipients directory
	Added       time.Time `yaml:"added"`
	LastUsed    time.Time `yaml:"last_used,omitempty"`
	Notes       string    `yaml:"notes,omitempty"`
	Trusted     bool      `yaml:"trusted"`
}

// Index is the on-disk list of known recipients
type Index struct {
	Recipients []Recipient `yaml:"recipients"`
}
