// Package secrets encrypts platform credentials before they reach the database.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// sealedPrefix marks values written by a Cipher. Values without it are read
// back verbatim, which keeps rows written before a key was configured usable.
const sealedPrefix = "enc:v1:"

var ErrMalformed = errors.New("secrets: malformed ciphertext")

// Cipher is an XChaCha20-Poly1305 AEAD keyed from an operator passphrase.
type Cipher struct {
	key []byte
}

// NewCipher derives a 256-bit key from passphrase with HKDF-SHA256.
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("secrets: empty key")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, []byte(passphrase), nil, []byte("recruitsync credentials"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("secrets: derive key: %w", err)
	}
	return &Cipher{key: key}, nil
}

func (c *Cipher) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secrets: nonce: %w", err)
	}

	out := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

func (c *Cipher) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", ErrMalformed
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrMalformed
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("secrets: open: %w", err)
	}
	return string(plain), nil
}

// ============================================
// Process-wide cipher used by Sealed columns
// ============================================

var (
	active *Cipher
	mu     sync.RWMutex
)

// Configure installs the cipher used by Sealed. An empty passphrase disables
// encryption.
func Configure(passphrase string) error {
	if passphrase == "" {
		mu.Lock()
		active = nil
		mu.Unlock()
		return nil
	}

	c, err := NewCipher(passphrase)
	if err != nil {
		return err
	}

	mu.Lock()
	active = c
	mu.Unlock()
	return nil
}

func current() *Cipher {
	mu.RLock()
	defer mu.RUnlock()
	return active
}
