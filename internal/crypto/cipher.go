package crypto

import "context"

// TokenCipher encrypts and decrypts provider credentials before they touch
// the store. Implementations: local AES-GCM (default) and Cloud KMS.
type TokenCipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}
