package wpgp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Mattddixo/wpgp/internal/container"
	"github.com/Mattddixo/wpgp/internal/crypto"
)

// ExportPrivateKey encodes the identity and its private key as a PRIVATE
// key container. A non-empty passphrase wraps the key in a scrypt
// envelope.
func ExportPrivateKey(id *Identity, passphrase string, opts ...Option) ([]byte, error) {
	if err := id.usable(); err != nil {
		return nil, err
	}
	if !id.private {
		return nil, ErrPublicOnly
	}
	o := newOptions(opts)

	body, err := id.key.pair.MarshalPrivatePEM()
	if err != nil {
		return nil, fmt.Errorf("failed to encode private key: %w", err)
	}
	if passphrase != "" {
		sealed, err := crypto.EncryptWithPassphrase(body, passphrase, o.scryptWorkFactor)
		clear(body)
		if err != nil {
			return nil, fmt.Errorf("failed to protect private key: %w", err)
		}
		body = sealed
	}

	raw, err := sealKey(id.header(TypePrivate), body)
	clear(body)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("exported private key", "name", id.name, "protected", passphrase != "")
	return raw, nil
}

// ExportPublicKey encodes the identity and its public key as a PUBLIC key
// container.
func ExportPublicKey(id *Identity) ([]byte, error) {
	if err := id.usable(); err != nil {
		return nil, err
	}

	body, err := id.key.pair.MarshalPublicPEM()
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}
	return sealKey(id.header(TypePublic), body)
}

func sealKey(h *keyHeader, body []byte) ([]byte, error) {
	header, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("failed to encode key header: %w", err)
	}

	mask, err := container.NewMask()
	if err != nil {
		return nil, fmt.Errorf("failed to create mask: %w", err)
	}
	return container.Seal(mask, header, body), nil
}

// ImportPrivateKey loads an identity from a PRIVATE key container. The
// passphrase is only consulted when the key is protected.
func ImportPrivateKey(raw []byte, passphrase string) (*Identity, error) {
	frame, h, err := openKey(raw, TypePrivate)
	if err != nil {
		return nil, err
	}

	body, err := frame.DecodeBody()
	if err != nil {
		return nil, err
	}
	if crypto.IsPassphraseProtected(body) {
		if passphrase == "" {
			return nil, ErrPassphraseRequired
		}
		plain, err := crypto.DecryptWithPassphrase(body, passphrase)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
		}
		body = plain
	}

	pair, err := crypto.ParsePrivatePEM(body)
	clear(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return newIdentity(h, pair, true)
}

// ImportPublicKey loads a public-only identity from a PUBLIC key container.
func ImportPublicKey(raw []byte) (*Identity, error) {
	frame, h, err := openKey(raw, TypePublic)
	if err != nil {
		return nil, err
	}

	body, err := frame.DecodeBody()
	if err != nil {
		return nil, err
	}
	pair, err := crypto.ParsePublicPEM(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return newIdentity(h, pair, false)
}

// openKey runs the verification gate and checks the container type.
func openKey(raw []byte, want KeyType) (*container.Frame, *keyHeader, error) {
	frame, h, err := verifyKey(raw)
	if err != nil {
		return nil, nil, err
	}
	if h.Type != want {
		return nil, nil, fmt.Errorf("%w: expected %s key, got %s", ErrFormat, want, h.Type)
	}
	return frame, h, nil
}

func newIdentity(h *keyHeader, pair *crypto.KeyPair, private bool) (*Identity, error) {
	if pair.Bits() != h.Size {
		size := pair.Bits()
		pair.Wipe()
		return nil, fmt.Errorf("%w: header declares %d bits, key has %d", ErrFormat, h.Size, size)
	}

	return &Identity{
		name:     h.Name,
		mail:     h.Mail,
		comment:  h.Comment,
		size:     h.Size,
		created:  h.Expiration[0],
		validity: h.Expiration[1],
		private:  private,
		key:      newKeyHandle(pair),
	}, nil
}

// WritePrivateKey exports the private key container to path with owner-only
// permissions.
func WritePrivateKey(path string, id *Identity, passphrase string, opts ...Option) error {
	raw, err := ExportPrivateKey(id, passphrase, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	return nil
}

// WritePublicKey exports the public key container to path.
func WritePublicKey(path string, id *Identity) error {
	raw, err := ExportPublicKey(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}
	return nil
}

// ReadPrivateKey imports a private key container from path.
func ReadPrivateKey(path string, passphrase string) (*Identity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	return ImportPrivateKey(raw, passphrase)
}

// ReadPublicKey imports a public key container from path.
func ReadPublicKey(path string) (*Identity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	return ImportPublicKey(raw)
}

// IsPassphraseRequired reports whether err was caused by a protected key
// imported without a passphrase.
func IsPassphraseRequired(err error) bool {
	return errors.Is(err, ErrPassphraseRequired)
}
