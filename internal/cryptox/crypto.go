// Package cryptox implements at-rest encryption for the client's secure
// store: AES-256-GCM sealing with a storage key derived via argon2id from
// a per-install secret kept in a key file.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/vitaltrack/vitaltrack/internal/common"
)

const (
	secretSize = 32
	saltSize   = 16
	keySize    = 32
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveStorageKey stretches the install secret into an AES-256 key.
// Parameters follow the argon2id recommendations (t=1, m=64MiB, p=4).
func DeriveStorageKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, keySize)
}

// Sealer encrypts and decrypts small blobs with AES-GCM. The nonce is
// generated per Seal call and prepended to the ciphertext.
type Sealer struct {
	aead cipher.AEAD
}

func NewSealer(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := common.GenerateRandByteArray(s.aead.NonceSize())
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns {
		return nil, ErrCiphertextTooShort
	}
	return s.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
}
