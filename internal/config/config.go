package config

import (
	"encoding/base64"
	"os"
	"time"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
)

type Config struct {
	ProjectID string
	LogLevel  string

	// Exactly one credential-cipher source must be configured:
	// a base64 256-bit key, a Secret Manager secret holding one, or
	// a Cloud KMS key name.
	EncryptionKey       string
	EncryptionKeySecret string
	KMSKeyName          string

	PlaidClientID    string
	PlaidSecret      string
	PlaidEnvironment dto.PlaidEnvironment

	// SimplefinAccessURL is a pre-claimed access URL for development only.
	SimplefinAccessURL string

	SyncInterval time.Duration
}

func New() *Config {
	return &Config{
		ProjectID:           os.Getenv("PROJECTID"),
		LogLevel:            os.Getenv("LOGLEVEL"),
		EncryptionKey:       os.Getenv("ENCRYPTIONKEY"),
		EncryptionKeySecret: os.Getenv("ENCRYPTIONKEYSECRET"),
		KMSKeyName:          os.Getenv("KMSKEYNAME"),
		PlaidClientID:       os.Getenv("PLAIDCLIENTID"),
		PlaidSecret:         os.Getenv("PLAIDSECRET"),
		PlaidEnvironment:    getPlaidEnvironment(os.Getenv("PLAIDENVIRONMENT")),
		SimplefinAccessURL:  os.Getenv("SIMPLEFINACCESSURL"),
		SyncInterval:        getSyncInterval(os.Getenv("SYNCINTERVAL")),
	}
}

// Validate rejects unusable configuration at startup, before any network
// or store access.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return errs.NewConfigError("PROJECTID is required")
	}
	if c.EncryptionKey == "" && c.EncryptionKeySecret == "" && c.KMSKeyName == "" {
		return errs.NewConfigError("one of ENCRYPTIONKEY, ENCRYPTIONKEYSECRET or KMSKEYNAME is required")
	}
	if c.EncryptionKey != "" {
		if _, err := DecodeKey(c.EncryptionKey); err != nil {
			return err
		}
	}
	return nil
}

// DecodeKey decodes a base64 encryption key; the cipher validates length.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errs.NewConfigError("encryption key is not valid base64")
	}
	return key, nil
}

func getPlaidEnvironment(env string) dto.PlaidEnvironment {
	if env == "sandbox" {
		return dto.PlaidSandbox
	}
	return dto.PlaidProduction
}

func getSyncInterval(raw string) time.Duration {
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}
