// Package secret seals user-provided API keys before they are stored.
//
// Keys are encrypted with NaCl secretbox (XSalsa20-Poly1305) under a key
// derived from the configured encryption secret. Sealed values carry their own
// random nonce, so sealing the same key twice yields different ciphertext.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	nonceSize = 24
	keySize   = 32
	// MinSecretLength is the shortest encryption secret accepted.
	MinSecretLength = 32
)

var (
	// ErrSecretTooShort indicates the configured encryption secret is too weak.
	ErrSecretTooShort = errors.New("encryption secret too short")

	// ErrMalformed indicates sealed data is too short to contain a nonce and tag.
	ErrMalformed = errors.New("sealed value is malformed")

	// ErrTampered indicates authentication of sealed data failed. The value was
	// modified or sealed under a different secret.
	ErrTampered = errors.New("sealed value failed authentication")
)

// Sealer encrypts and decrypts short secrets.
type Sealer struct {
	key    [keySize]byte
	random io.Reader
}

// NewSealer derives a sealing key from secret.
func NewSealer(secret string) (*Sealer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrSecretTooShort, MinSecretLength)
	}
	return &Sealer{
		key:    sha256.Sum256([]byte(secret)),
		random: rand.Reader,
	}, nil
}

// Seal encrypts plaintext. The result is nonce || box.
func (s *Sealer) Seal(plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.random, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", ErrMalformed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrTampered
	}
	return string(plaintext), nil
}

// Hint returns the last four characters of key for display, or "" when key is
// too short to reveal any part of it safely.
func Hint(key string) string {
	key = strings.TrimSpace(key)
	if len(key) < 8 {
		return ""
	}
	return key[len(key)-4:]
}
