// Package cryptox encrypts OAuth tokens at rest with AES-256-GCM.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// TokenCipher seals and opens token strings. The AES key is derived from the
// server secret with SHA-256, so any secret string yields a valid 32-byte key.
type TokenCipher struct {
	key []byte
}

func NewTokenCipher(secret string) *TokenCipher {
	key := sha256.Sum256([]byte(secret))
	return &TokenCipher{key: key[:]}
}

// Encrypt returns base64(nonce || ciphertext). A fresh random nonce is
// generated for every call.
func (c *TokenCipher) Encrypt(token string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aesgcm.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Tampered or truncated input fails the GCM tag
// check and returns an error.
func (c *TokenCipher) Decrypt(encrypted string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(sealed) < aesgcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := sealed[:aesgcm.NonceSize()], sealed[aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt token: %w", err)
	}
	return string(plaintext), nil
}
