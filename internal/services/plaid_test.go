package services

import (
	"context"
	"testing"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/models"
	"github.com/cashstate/backend/internal/store"
	"github.com/cashstate/backend/pkg/helpers"
)

type fakePlaidClient struct {
	accounts   []dto.Account
	pages      []dto.PlaidSyncPage
	gotCursors []*string
}

func (f *fakePlaidClient) CreateLinkToken(_ context.Context, _ string) (string, error) {
	return "link-sandbox-token", nil
}

func (f *fakePlaidClient) ExchangePublicToken(_ context.Context, _ string) (string, string, error) {
	return "plaid-item-1", "access-sandbox-token", nil
}

func (f *fakePlaidClient) FetchAccounts(_ context.Context, _ string) ([]dto.Account, error) {
	return f.accounts, nil
}

func (f *fakePlaidClient) SyncTransactions(_ context.Context, _ string, cursor *string) (dto.PlaidSyncPage, error) {
	f.gotCursors = append(f.gotCursors, cursor)
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func TestExchangePublicTokenEncryptsToken(t *testing.T) {
	ctx := helpers.TestCtx()
	mem := store.NewMemory()
	svc := NewPlaidService(&fakePlaidClient{}, plainCipher{}, mem, mem, mem, mem)

	itemID, err := svc.ExchangePublicToken(ctx, "user-1", "public-sandbox-token", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item, err := mem.Get(ctx, "user-1", itemID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Provider != models.ProviderPlaid || item.Institution != "Plaid Bank" {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.AccessToken != "enc:access-sandbox-token" {
		t.Fatalf("expected encrypted access token, got %q", item.AccessToken)
	}
}

func TestPlaidSyncTransactions(t *testing.T) {
	ctx := helpers.TestCtx()
	mem := store.NewMemory()

	client := &fakePlaidClient{
		accounts: []dto.Account{
			{ExternalID: "PA1", Name: "Checking", Currency: "USD", Balance: helpers.Ptr(250.0)},
		},
		pages: []dto.PlaidSyncPage{
			{
				Transactions: map[string][]dto.Transaction{
					"PA1": {{ExternalID: "PT1", Amount: -20.00, Posted: 1700000000000}},
				},
				Cursor:  "cursor-1",
				HasMore: true,
			},
			{
				Transactions: map[string][]dto.Transaction{
					"PA1": {{ExternalID: "PT2", Amount: -30.00, Posted: 1700000100000}},
				},
				Cursor:  "cursor-2",
				HasMore: false,
			},
		},
	}
	svc := NewPlaidService(client, plainCipher{}, mem, mem, mem, mem)

	itemID, err := svc.ExchangePublicToken(ctx, "user-1", "public-sandbox-token", "Example Bank")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.SyncTransactions(ctx, "user-1", itemID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success || result.AccountsSynced != 1 || result.TransactionsAdded != 2 {
		t.Fatalf("unexpected result %+v", result)
	}

	// First call has no cursor, second continues from the returned one.
	if len(client.gotCursors) != 2 {
		t.Fatalf("expected 2 pages fetched, got %d", len(client.gotCursors))
	}
	if client.gotCursors[0] != nil {
		t.Fatalf("expected nil initial cursor, got %q", *client.gotCursors[0])
	}
	if client.gotCursors[1] == nil || *client.gotCursors[1] != "cursor-1" {
		t.Fatalf("expected cursor-1 on second page, got %v", client.gotCursors[1])
	}

	item, _ := mem.Get(ctx, "user-1", itemID)
	if item.Cursor != "cursor-2" {
		t.Fatalf("expected final cursor persisted, got %q", item.Cursor)
	}
	if item.LastSyncedAt == nil {
		t.Fatal("expected last synced timestamp")
	}

	job, err := mem.GetJob(ctx, "user-1", result.SyncJobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != models.SyncJobCompleted {
		t.Fatalf("expected completed job, got %q", job.Status)
	}
}

func TestPlaidSyncUnknownAccountIsolated(t *testing.T) {
	ctx := helpers.TestCtx()
	mem := store.NewMemory()

	client := &fakePlaidClient{
		accounts: []dto.Account{
			{ExternalID: "PA1", Name: "Checking", Currency: "USD"},
		},
		pages: []dto.PlaidSyncPage{
			{
				Transactions: map[string][]dto.Transaction{
					"PA1":     {{ExternalID: "PT1", Amount: -20.00, Posted: 1700000000000}},
					"unknown": {{ExternalID: "PT2", Amount: -30.00, Posted: 1700000100000}},
				},
				Cursor: "cursor-1",
			},
		},
	}
	svc := NewPlaidService(client, plainCipher{}, mem, mem, mem, mem)

	itemID, err := svc.ExchangePublicToken(ctx, "user-1", "public-sandbox-token", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := svc.SyncTransactions(ctx, "user-1", itemID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TransactionsAdded != 1 {
		t.Fatalf("expected only the known account's transaction, got %d", result.TransactionsAdded)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one scoped error, got %v", result.Errors)
	}
}

func TestPlaidSyncRejectsSimplefinItem(t *testing.T) {
	ctx := helpers.TestCtx()
	mem := store.NewMemory()
	item := seedItem(t, mem, "user-1") // simplefin provider

	svc := NewPlaidService(&fakePlaidClient{}, plainCipher{}, mem, mem, mem, mem)
	_, err := svc.SyncTransactions(ctx, "user-1", item.ItemID)
	if _, ok := err.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
}
