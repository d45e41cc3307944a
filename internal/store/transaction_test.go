package store

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/models"
)

func TestTransactionUpsertWithEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	defer client.Close()

	store := NewTransactionStore(client)
	uid := "user"

	batch := []dto.Transaction{
		{ExternalID: "t1", Amount: -5.00, Currency: "USD", Posted: 1700000000000, Description: "Coffee"},
		{ExternalID: "t2", Amount: 12.34, Currency: "USD", Posted: 1700000100000, Pending: true},
	}

	added, updated, err := store.UpsertBatch(ctx, uid, "acct-1", "Checking", batch)
	if err != nil {
		t.Fatalf("upsert error: %v", err)
	}
	if added != 2 || updated != 0 {
		t.Fatalf("expected 2 added / 0 updated, got %d / %d", added, updated)
	}

	// Mark t1 categorized, as the downstream pipeline would.
	_, err = client.Collection("users").Doc(uid).Collection("transactions").Doc("t1").
		Set(ctx, map[string]any{"category": "Dining", "categorySource": "user"}, firestore.MergeAll)
	if err != nil {
		t.Fatalf("seed category error: %v", err)
	}

	// Re-sync the same batch with a changed description.
	batch[0].Description = "Coffee Shop"
	added, updated, err = store.UpsertBatch(ctx, uid, "acct-1", "Checking", batch)
	if err != nil {
		t.Fatalf("upsert error: %v", err)
	}
	if added != 0 || updated != 2 {
		t.Fatalf("expected 0 added / 2 updated, got %d / %d", added, updated)
	}

	snap, err := client.Collection("users").Doc(uid).Collection("transactions").Doc("t1").Get(ctx)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	var tx models.Transaction
	if err := snap.DataTo(&tx); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if tx.Category != "Dining" || tx.CategorySource != "user" {
		t.Fatalf("category fields clobbered: %+v", tx)
	}
	if tx.Description != "Coffee Shop" {
		t.Fatalf("expected description to update, got %q", tx.Description)
	}
	if tx.AccountName != "Checking" {
		t.Fatalf("unexpected account name %q", tx.AccountName)
	}

	pending := true
	var results []models.Transaction
	err = store.Query(ctx, uid, dto.TransactionQuery{Pending: &pending}, func(tx *models.Transaction) error {
		results = append(results, *tx)
		return nil
	})
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	if len(results) != 1 || results[0].TransactionID != "t2" {
		t.Fatalf("unexpected query results: %+v", results)
	}
}
