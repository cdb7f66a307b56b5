package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"math/big"
)

// randReader is the random source used for key generation and nonces.
var randReader io.Reader = rand.Reader

const (
	// MinKeySize is the smallest RSA modulus accepted for new identities.
	MinKeySize = 1024
	// MaxKeySize is the largest RSA modulus accepted for new identities.
	MaxKeySize = 8192

	privatePEMType = "PRIVATE KEY"
	publicPEMType  = "PUBLIC KEY"
)

// KeyPair holds an RSA key. Private is nil for a public-only keypair.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// GenerateKeyPair generates a new RSA keypair of the given size in bits.
func GenerateKeyPair(bits int) (*KeyPair, error) {
	if bits < MinKeySize || bits > MaxKeySize {
		return nil, fmt.Errorf("%w: %d bits, must be between %d and %d", ErrInvalidKeySize, bits, MinKeySize, MaxKeySize)
	}

	priv, err := rsa.GenerateKey(randReader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	return &KeyPair{Private: priv, Public: &priv.PublicKey}, nil
}

// HasPrivate reports whether the private half is present.
func (k *KeyPair) HasPrivate() bool {
	return k.Private != nil
}

// Bits returns the modulus size.
func (k *KeyPair) Bits() int {
	return k.Public.N.BitLen()
}

// MarshalPrivatePEM encodes the private key as a PKCS#8 PEM block.
func (k *KeyPair) MarshalPrivatePEM() ([]byte, error) {
	if k.Private == nil {
		return nil, ErrPublicOnly
	}

	der, err := x509.MarshalPKCS8PrivateKey(k.Private)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: privatePEMType, Bytes: der}), nil
}

// MarshalPublicPEM encodes the public key as a PKIX PEM block.
func (k *KeyPair) MarshalPublicPEM() ([]byte, error) {
	der, err := k.PublicDER()
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: publicPEMType, Bytes: der}), nil
}

// PublicDER returns the PKIX encoding of the public key.
func (k *KeyPair) PublicDER() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(k.Public)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return der, nil
}

// Material returns the serialized key used as session-key input: the
// private key when present, the public key otherwise.
func (k *KeyPair) Material() ([]byte, error) {
	if k.Private != nil {
		der, err := x509.MarshalPKCS8PrivateKey(k.Private)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal private key: %w", err)
		}
		return der, nil
	}
	return k.PublicDER()
}

// ParsePrivatePEM parses a PKCS#8 PEM private key.
func ParsePrivatePEM(data []byte) (*KeyPair, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != privatePEMType {
		return nil, fmt.Errorf("%w: failed to decode private key PEM", ErrInvalidKey)
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is not an RSA key", ErrInvalidKey)
	}
	return &KeyPair{Private: priv, Public: &priv.PublicKey}, nil
}

// ParsePublicPEM parses a PKIX PEM public key.
func ParsePublicPEM(data []byte) (*KeyPair, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != publicPEMType {
		return nil, fmt.Errorf("%w: failed to decode public key PEM", ErrInvalidKey)
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is not an RSA key", ErrInvalidKey)
	}
	return &KeyPair{Public: pub}, nil
}

// wrapBlockSize is the largest plaintext RSA-OAEP(SHA-256) accepts per block.
func (k *KeyPair) wrapBlockSize() int {
	return k.Public.Size() - 2*sha256.Size - 2
}

// Wrap encrypts data under the public key with RSA-OAEP(SHA-256). Data
// longer than one block is split and the ciphertext blocks concatenated.
func (k *KeyPair) Wrap(data []byte) ([]byte, error) {
	step := k.wrapBlockSize()
	out := make([]byte, 0, (len(data)/step+1)*k.Public.Size())

	for start := 0; ; {
		end := min(start+step, len(data))
		block, err := rsa.EncryptOAEP(sha256.New(), randReader, k.Public, data[start:end], nil)
		if err != nil {
			return nil, fmt.Errorf("failed to wrap block: %w", err)
		}
		out = append(out, block...)
		if end == len(data) {
			return out, nil
		}
		start = end
	}
}

// Unwrap reverses Wrap with the private key.
func (k *KeyPair) Unwrap(data []byte) ([]byte, error) {
	if k.Private == nil {
		return nil, ErrPublicOnly
	}

	size := k.Public.Size()
	if len(data) == 0 || len(data)%size != 0 {
		return nil, fmt.Errorf("%w: wrapped data is not a whole number of blocks", ErrDecryptionFailed)
	}

	out := make([]byte, 0, len(data))
	for start := 0; start < len(data); start += size {
		block, err := rsa.DecryptOAEP(sha256.New(), nil, k.Private, data[start:start+size], nil)
		if err != nil {
			return nil, ErrDecryptionFailed
		}
		out = append(out, block...)
	}
	return out, nil
}

// Wipe zeroes the private exponent and primes. The keypair must not be
// used afterwards.
func (k *KeyPair) Wipe() {
	if k.Private == nil {
		return
	}

	zero := new(big.Int)
	k.Private.D.Set(zero)
	for _, p := range k.Private.Primes {
		p.Set(zero)
	}
	for _, v := range []*big.Int{k.Private.Precomputed.Dp, k.Private.Precomputed.Dq, k.Private.Precomputed.Qinv} {
		if v != nil {
			v.Set(zero)
		}
	}
	k.Private = nil
}
