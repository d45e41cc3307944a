package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/cashstate/backend/internal/errs"
)

func TestValidate(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))

	cfg := &Config{ProjectID: "test-project", EncryptionKey: key}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg = &Config{EncryptionKey: key}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing project id")
	} else if _, ok := err.(*errs.ConfigError); !ok {
		t.Fatalf("expected ConfigError, got %T", err)
	}

	cfg = &Config{ProjectID: "test-project"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no cipher source is configured")
	}

	cfg = &Config{ProjectID: "test-project", EncryptionKey: "%%%"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed key")
	}

	// KMS alone satisfies the cipher requirement.
	cfg = &Config{ProjectID: "test-project", KMSKeyName: "projects/p/locations/l/keyRings/r/cryptoKeys/k"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSyncIntervalDefault(t *testing.T) {
	if got := getSyncInterval(""); got != 24*time.Hour {
		t.Fatalf("expected 24h default, got %v", got)
	}
	if got := getSyncInterval("-5m"); got != 24*time.Hour {
		t.Fatalf("expected default for negative interval, got %v", got)
	}
	if got := getSyncInterval("90m"); got != 90*time.Minute {
		t.Fatalf("expected 90m, got %v", got)
	}
}
