// Package reference turns a booking number and its verification token into a
// single opaque, URL-safe string and back.
//
// The encoding is base64url(nonce || ciphertext || tag) where the ciphertext
// is AES-256-GCM over "bookingNumber|token" with a 16-byte random nonce and a
// 16-byte authentication tag.
package reference

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	KeySize   = 32
	NonceSize = 16
	TagSize   = 16

	delimiter = "|"
)

var ErrKeyTooShort = fmt.Errorf("encryption key must be at least %d characters", KeySize)

// Reference is a decoded booking reference.
type Reference struct {
	BookingNumber string
	Token         string
}

// Codec encrypts and decrypts booking references with one process-wide key.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec builds a Codec from the configured key. Only the first 32 bytes
// are used, so existing references stay readable when the configured string
// is longer.
func NewCodec(key string) (*Codec, error) {
	if len(key) < KeySize {
		return nil, ErrKeyTooShort
	}

	block, err := aes.NewCipher([]byte(key[:KeySize]))
	if err != nil {
		return nil, fmt.Errorf("create cipher failed: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("create gcm failed: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// Encode returns the opaque reference for a booking number and token.
func (c *Codec) Encode(bookingNumber, token string) (string, error) {
	if bookingNumber == "" || token == "" {
		return "", errors.New("booking number and token are required")
	}
	if strings.Contains(bookingNumber, delimiter) {
		return "", fmt.Errorf("booking number must not contain %q", delimiter)
	}

	nonce := make([]byte, NonceSize, NonceSize+len(bookingNumber)+len(token)+1+TagSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce failed: %w", err)
	}

	plaintext := []byte(bookingNumber + delimiter + token)
	// Seal appends ciphertext||tag to the nonce slice.
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)

	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode reverses Encode. It reports false for anything that does not
// authenticate under the current key or does not carry both parts.
func (c *Codec) Decode(ref string) (Reference, bool) {
	// Strict rejects non-zero trailing bits, so every reference has exactly
	// one accepted spelling.
	raw, err := base64.RawURLEncoding.Strict().DecodeString(strings.TrimRight(ref, "="))
	if err != nil {
		return Reference{}, false
	}
	if len(raw) <= NonceSize+TagSize {
		return Reference{}, false
	}

	nonce, sealed := raw[:NonceSize], raw[NonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return Reference{}, false
	}

	number, token, ok := strings.Cut(string(plaintext), delimiter)
	if !ok || number == "" || token == "" {
		return Reference{}, false
	}

	return Reference{BookingNumber: number, Token: token}, true
}
