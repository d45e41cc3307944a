package bootstrap

import (
	"context"
	"strings"

	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	"github.com/cashstate/backend/internal/config"
	"github.com/cashstate/backend/internal/crypto"
	"github.com/cashstate/backend/internal/errs"
)

// InitCipher builds the credential cipher from configuration: a KMS key
// when one is named, otherwise a local AES-GCM key supplied either inline
// or through a Secret Manager secret. The KMS client is returned so the
// caller can close it.
func InitCipher(ctx context.Context, cfg *config.Config) (crypto.TokenCipher, *gcpkms.KeyManagementClient, error) {
	if cfg.KMSKeyName != "" {
		client, err := gcpkms.NewKeyManagementClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		return crypto.NewKMS(client, cfg.KMSKeyName), client, nil
	}

	encoded := cfg.EncryptionKey
	if encoded == "" {
		fetched, err := fetchSecret(ctx, cfg.EncryptionKeySecret)
		if err != nil {
			return nil, nil, err
		}
		encoded = fetched
	}

	key, err := config.DecodeKey(encoded)
	if err != nil {
		return nil, nil, err
	}
	cipher, err := crypto.NewAESGCM(key)
	if err != nil {
		return nil, nil, err
	}
	return cipher, nil, nil
}

// fetchSecret reads the latest version of a Secret Manager secret.
func fetchSecret(ctx context.Context, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}
	res, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return "", errs.NewConfigError("fetching encryption key secret failed: " + err.Error())
	}
	return strings.TrimSpace(string(res.Payload.Data)), nil
}
