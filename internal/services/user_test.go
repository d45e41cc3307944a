package services

import (
	"testing"

	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/store"
	"github.com/cashstate/backend/pkg/helpers"
)

func TestRegisterAndGetUser(t *testing.T) {
	ctx := helpers.TestCtx()
	mem := store.NewMemory()
	svc := NewUserService(mem)

	if err := svc.Register(ctx, "uid-1", "alex@example.org", "Alex"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, err := svc.GetUser(ctx, "uid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "alex@example.org" || user.DisplayName != "Alex" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := helpers.TestCtx()
	mem := store.NewMemory()
	svc := NewUserService(mem)

	if err := svc.Register(ctx, "uid-1", "alex@example.org", "Alex"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.Register(ctx, "uid-1", "alex@example.org", "Alex")
	if _, ok := err.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := helpers.TestCtx()
	mem := store.NewMemory()
	svc := NewUserService(mem)

	if err := svc.Register(ctx, "uid-1", "alex@example.org", "Alex"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, err := svc.UpdateProfile(ctx, "uid-1", "Alexis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.DisplayName != "Alexis" || user.Email != "alex@example.org" {
		t.Fatalf("unexpected user %+v", user)
	}

	stored, _ := svc.GetUser(ctx, "uid-1")
	if stored.DisplayName != "Alexis" {
		t.Fatalf("update not persisted: %+v", stored)
	}

	if _, err := svc.UpdateProfile(ctx, "missing", "Nobody"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestGetUnknownUser(t *testing.T) {
	ctx := helpers.TestCtx()
	svc := NewUserService(store.NewMemory())

	_, err := svc.GetUser(ctx, "missing")
	if _, ok := err.(*errs.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %T (%v)", err, err)
	}
}
