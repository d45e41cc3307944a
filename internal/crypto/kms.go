package crypto

import (
	"context"
	"encoding/base64"

	gcpkms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"

	"github.com/cashstate/backend/internal/errs"
)

// kmsCipher is a TokenCipher backed by a Cloud KMS key. Used in deployments
// where the key material must not leave KMS; the local AES-GCM cipher is the
// default.
type kmsCipher struct {
	client  *gcpkms.KeyManagementClient
	keyName string
}

func NewKMS(client *gcpkms.KeyManagementClient, keyName string) *kmsCipher {
	return &kmsCipher{client: client, keyName: keyName}
}

func (k *kmsCipher) Encrypt(ctx context.Context, plaintext string) (string, error) {
	resp, err := k.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:      k.keyName,
		Plaintext: []byte(plaintext),
	})
	if err != nil {
		return "", errs.NewEncryptionError("kms encrypt failed: " + err.Error())
	}
	return base64.StdEncoding.EncodeToString(resp.Ciphertext), nil
}

func (k *kmsCipher) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errs.NewEncryptionError("malformed ciphertext encoding")
	}
	resp, err := k.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:       k.keyName,
		Ciphertext: raw,
	})
	if err != nil {
		return "", errs.NewEncryptionError("kms decrypt failed: " + err.Error())
	}
	return string(resp.Plaintext), nil
}
