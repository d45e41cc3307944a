package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/cashstate/backend/internal/errs"
)

const keySize = 32 // AES-256

type aesGCM struct {
	aead cipher.AEAD
}

// NewAESGCM builds a TokenCipher from a 256-bit key. The ciphertext format
// is base64(nonce || sealed), with a 12-byte nonce and 16-byte tag.
func NewAESGCM(key []byte) (*aesGCM, error) {
	if len(key) != keySize {
		return nil, errs.NewConfigError(fmt.Sprintf("encryption key must be %d bytes, got %d", keySize, len(key)))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.NewConfigError(err.Error())
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errs.NewConfigError(err.Error())
	}
	return &aesGCM{aead: aead}, nil
}

func (c *aesGCM) Encrypt(_ context.Context, plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errs.NewEncryptionError("nonce generation failed: " + err.Error())
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *aesGCM) Decrypt(_ context.Context, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errs.NewEncryptionError("malformed ciphertext encoding")
	}
	if len(raw) < c.aead.NonceSize() {
		return "", errs.NewEncryptionError("ciphertext too short")
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		// Tampered blob or wrong key; never return partial output.
		return "", errs.NewEncryptionError("ciphertext authentication failed")
	}
	return string(plaintext), nil
}
