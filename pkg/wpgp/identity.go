package wpgp

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Mattddixo/wpgp/internal/crypto"
	"github.com/Mattddixo/wpgp/pkg/utils"
)

const (
	// MaxValidityDays bounds the validity window of a new identity.
	MaxValidityDays = 365

	secondsPerDay = 24 * 60 * 60
)

// now is replaced in tests to move the calendar.
var now = time.Now

// today returns the number of whole days since the Unix epoch.
func today() uint32 {
	return dayOf(now())
}

func dayOf(t time.Time) uint32 {
	return uint32(t.Unix() / secondsPerDay)
}

// keyHandle is key material shared by every Identity handle that refers to
// the same key.
type keyHandle struct {
	refs atomic.Int32
	pair *crypto.KeyPair
}

func newKeyHandle(pair *crypto.KeyPair) *keyHandle {
	h := &keyHandle{pair: pair}
	h.refs.Store(1)
	return h
}

// retain adds a reference unless the key has already been wiped.
func (h *keyHandle) retain() bool {
	for {
		n := h.refs.Load()
		if n <= 0 {
			return false
		}
		if h.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops one reference and wipes the key once none remain.
func (h *keyHandle) release() {
	if h.refs.Add(-1) == 0 {
		h.pair.Wipe()
	}
}

// Identity is an RSA keypair with its descriptive metadata.
//
// Identities are immutable after construction and safe for concurrent use.
// Each handle must be closed; the key material is wiped when the last
// handle sharing it is closed.
type Identity struct {
	name     string
	mail     string
	comment  string
	size     int
	created  uint32 // days since epoch, 0 when the identity never expires
	validity uint32 // days, 0 when the identity never expires
	private  bool

	key    *keyHandle
	closed atomic.Bool
}

// Create generates a new identity with a fresh keypair of keySize bits.
// A validity of 0 means the identity never expires; longer validities are
// capped at MaxValidityDays.
func Create(name, mail, comment string, validityDays uint32, keySize int) (*Identity, error) {
	validityDays = min(validityDays, MaxValidityDays)

	pair, err := crypto.GenerateKeyPair(keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	id := &Identity{
		name:     name,
		mail:     mail,
		comment:  comment,
		size:     pair.Bits(),
		validity: validityDays,
		private:  true,
		key:      newKeyHandle(pair),
	}
	if validityDays != 0 {
		id.created = today()
	}
	return id, nil
}

// Name returns the identity's name.
func (id *Identity) Name() string { return id.name }

// Mail returns the identity's mail address.
func (id *Identity) Mail() string { return id.mail }

// Comment returns the identity's comment.
func (id *Identity) Comment() string { return id.comment }

// Size returns the modulus size in bits.
func (id *Identity) Size() int { return id.size }

// IsPrivate reports whether the handle can decrypt.
func (id *Identity) IsPrivate() bool { return id.private }

// Expiration returns the creation day and validity in days. Both are zero
// when the identity never expires.
func (id *Identity) Expiration() (day, days uint32) {
	return id.created, id.validity
}

// ExpiresAt returns the first instant at which the identity is expired, or
// the zero time when it never expires.
func (id *Identity) ExpiresAt() time.Time {
	if id.validity == 0 {
		return time.Time{}
	}
	return time.Unix(int64(id.created+id.validity+1)*secondsPerDay, 0).UTC()
}

// Expired reports whether the day of at is past the validity window.
func (id *Identity) Expired(at time.Time) bool {
	return expired(id.created, id.validity, dayOf(at))
}

func expired(day, days, current uint32) bool {
	return days != 0 && current > day+days
}

// Fingerprint returns the hex digest of the DER public key using algorithm
// (blake3, sha256 or sha512).
func (id *Identity) Fingerprint(algorithm string) (string, error) {
	if err := id.usable(); err != nil {
		return "", err
	}

	der, err := id.key.pair.PublicDER()
	if err != nil {
		return "", fmt.Errorf("failed to encode public key: %w", err)
	}
	return utils.HashBytes(der, algorithm)
}

// Share returns a new handle to the same identity. Both handles must be
// closed.
func (id *Identity) Share() (*Identity, error) {
	if err := id.usable(); err != nil {
		return nil, err
	}
	return id.clone(id.private)
}

// Public returns a handle that shares the key but can only encrypt and
// export the public half.
func (id *Identity) Public() (*Identity, error) {
	if err := id.usable(); err != nil {
		return nil, err
	}
	return id.clone(false)
}

func (id *Identity) clone(private bool) (*Identity, error) {
	if !id.key.retain() {
		return nil, ErrClosed
	}
	return &Identity{
		name:     id.name,
		mail:     id.mail,
		comment:  id.comment,
		size:     id.size,
		created:  id.created,
		validity: id.validity,
		private:  private,
		key:      id.key,
	}, nil
}

// Close releases the handle. Closing twice is a no-op.
func (id *Identity) Close() error {
	if id.closed.CompareAndSwap(false, true) {
		id.key.release()
	}
	return nil
}

func (id *Identity) usable() error {
	if id == nil || id.closed.Load() {
		return ErrClosed
	}
	return nil
}

// material returns the bytes mixed into session keys: the private key
// when the handle holds it, the public key otherwise.
func (id *Identity) material() ([]byte, error) {
	if id.private {
		return id.key.pair.Material()
	}
	return id.key.pair.PublicDER()
}

func (id *Identity) header(typ KeyType) *keyHeader {
	return &keyHeader{
		Name:       id.name,
		Mail:       id.mail,
		Comment:    id.comment,
		Expiration: []uint32{id.created, id.validity},
		Size:       id.size,
		Type:       typ,
	}
}
