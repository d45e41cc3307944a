package store

import (
	"testing"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/models"
	"github.com/cashstate/backend/pkg/helpers"
)

const testUID = "user-1"

func TestAccountUpsertIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := helpers.TestCtx()

	incoming := []dto.Account{
		{ExternalID: "A1", Name: "Checking", Currency: "USD", Balance: helpers.Ptr(100.0)},
		{ExternalID: "A2", Name: "Savings", Currency: "USD"},
	}

	ids, err := m.Upsert(ctx, testUID, "item-1", incoming)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
	if ids[0] != AccountDocID("item-1", "A1") {
		t.Fatalf("unexpected doc id %q", ids[0])
	}

	// Upsert the same accounts again with a new balance.
	incoming[0].Balance = helpers.Ptr(80.0)
	if _, err := m.Upsert(ctx, testUID, "item-1", incoming); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accounts, err := m.ListByItem(ctx, testUID, "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts after re-upsert, got %d", len(accounts))
	}
	if accounts[0].Balance == nil || *accounts[0].Balance != 80.0 {
		t.Fatalf("expected updated balance, got %v", accounts[0].Balance)
	}
}

func TestAccountDocIDScopedByItem(t *testing.T) {
	m := NewMemory()
	ctx := helpers.TestCtx()

	// The same external ID under two items is two distinct accounts.
	incoming := []dto.Account{{ExternalID: "A1", Name: "Checking", Currency: "USD"}}
	if _, err := m.Upsert(ctx, testUID, "item-1", incoming); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Upsert(ctx, testUID, "item-2", incoming); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, _ := m.ListByItem(ctx, testUID, "item-1")
	second, _ := m.ListByItem(ctx, testUID, "item-2")
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one account per item, got %d and %d", len(first), len(second))
	}
	if first[0].AccountID == second[0].AccountID {
		t.Fatal("expected distinct account ids across items")
	}
}

func TestTransactionUpsertBatchCounts(t *testing.T) {
	m := NewMemory()
	ctx := helpers.TestCtx()

	batch := []dto.Transaction{
		{ExternalID: "T1", Amount: -5.00, Currency: "USD", Posted: 1700000000000, Description: "Coffee"},
		{ExternalID: "T2", Amount: 12.34, Currency: "USD", Posted: 1700000100000, Pending: true},
	}

	added, updated, err := m.UpsertBatch(ctx, testUID, "acct-1", "Checking", batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 2 || updated != 0 {
		t.Fatalf("expected 2 added / 0 updated, got %d / %d", added, updated)
	}

	// Second run: T1 unchanged, T2 cleared, T3 new.
	batch[1].Pending = false
	batch = append(batch, dto.Transaction{ExternalID: "T3", Amount: 1.00, Currency: "USD", Posted: 1700000200000})

	added, updated, err = m.UpsertBatch(ctx, testUID, "acct-1", "Checking", batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 1 || updated != 2 {
		t.Fatalf("expected 1 added / 2 updated, got %d / %d", added, updated)
	}

	tx, ok := m.GetTransaction(testUID, "T2")
	if !ok {
		t.Fatal("expected T2 to exist")
	}
	if tx.Pending {
		t.Fatal("expected pending flag to clear on update")
	}
}

func TestTransactionUpdatePreservesCategory(t *testing.T) {
	m := NewMemory()
	ctx := helpers.TestCtx()

	batch := []dto.Transaction{
		{ExternalID: "T1", Amount: -5.00, Currency: "USD", Posted: 1700000000000, Description: "Coffee"},
	}
	if _, _, err := m.UpsertBatch(ctx, testUID, "acct-1", "Checking", batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.SetCategory(testUID, "T1", "Dining", "user"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-sync the same transaction with a changed description.
	batch[0].Description = "Coffee Shop"
	if _, _, err := m.UpsertBatch(ctx, testUID, "acct-1", "Checking", batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tx, ok := m.GetTransaction(testUID, "T1")
	if !ok {
		t.Fatal("expected T1 to exist")
	}
	if tx.Category != "Dining" || tx.CategorySource != "user" {
		t.Fatalf("category fields clobbered: %+v", tx)
	}
	if tx.Description != "Coffee Shop" {
		t.Fatalf("expected description to update, got %q", tx.Description)
	}
	if tx.AccountName != "Checking" {
		t.Fatalf("expected account name snapshot to survive, got %q", tx.AccountName)
	}
}

func TestTransactionQuery(t *testing.T) {
	m := NewMemory()
	ctx := helpers.TestCtx()

	batch := []dto.Transaction{
		{ExternalID: "T1", Amount: -5.00, Posted: 1000, Pending: false},
		{ExternalID: "T2", Amount: -6.00, Posted: 3000, Pending: true},
		{ExternalID: "T3", Amount: -7.00, Posted: 2000, Pending: false},
	}
	if _, _, err := m.UpsertBatch(ctx, testUID, "acct-1", "Checking", batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := m.UpsertBatch(ctx, testUID, "acct-2", "Savings", []dto.Transaction{
		{ExternalID: "T4", Amount: 9.99, Posted: 4000},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	collect := func(q dto.TransactionQuery) []string {
		var ids []string
		if err := m.Query(ctx, testUID, q, func(tx *models.Transaction) error {
			ids = append(ids, tx.TransactionID)
			return nil
		}); err != nil {
			t.Fatalf("query failed: %v", err)
		}
		return ids
	}

	// Newest first across accounts.
	got := collect(dto.TransactionQuery{})
	want := []string{"T4", "T2", "T3", "T1"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if got := collect(dto.TransactionQuery{AccountID: helpers.Ptr("acct-1")}); len(got) != 3 {
		t.Fatalf("expected 3 for acct-1, got %v", got)
	}
	if got := collect(dto.TransactionQuery{Pending: helpers.Ptr(true)}); len(got) != 1 || got[0] != "T2" {
		t.Fatalf("expected only T2, got %v", got)
	}
	if got := collect(dto.TransactionQuery{DateFrom: helpers.Ptr(int64(2000)), DateTo: helpers.Ptr(int64(3000))}); len(got) != 2 {
		t.Fatalf("expected T2 and T3, got %v", got)
	}
	if got := collect(dto.TransactionQuery{Limit: 2, Offset: 1}); len(got) != 2 || got[0] != "T2" {
		t.Fatalf("expected pagination window starting at T2, got %v", got)
	}
}

func TestItemLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := helpers.TestCtx()

	item := &models.Item{
		Provider:    models.ProviderSimplefin,
		Institution: "Example Bank",
		Status:      models.ItemStatusActive,
		AccessToken: "ciphertext",
	}
	if err := m.Create(ctx, testUID, item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ItemID == "" {
		t.Fatal("expected generated item id")
	}

	got, err := m.Get(ctx, testUID, item.ItemID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Institution != "Example Bank" || got.UID != testUID {
		t.Fatalf("unexpected item %+v", got)
	}

	if err := m.SetStatus(ctx, testUID, item.ItemID, models.ItemStatusError); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	active, err := m.ListActive(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active items, got %d", len(active))
	}

	if err := m.Delete(ctx, testUID, item.ItemID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Get(ctx, testUID, item.ItemID); err == nil {
		t.Fatal("expected not found after delete")
	} else if _, ok := err.(*errs.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
}

func TestSyncJobLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := helpers.TestCtx()

	jobID, err := m.CreateJob(ctx, testUID, "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job, err := m.GetJob(ctx, testUID, jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != models.SyncJobRunning {
		t.Fatalf("expected running, got %q", job.Status)
	}

	if err := m.CompleteJob(ctx, testUID, jobID, 2, 10, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	job, _ = m.GetJob(ctx, testUID, jobID)
	if job.Status != models.SyncJobCompleted || job.AccountsSynced != 2 || job.TransactionsAdded != 10 || job.TransactionsUpdated != 3 {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.CompletedAt == nil {
		t.Fatal("expected completion timestamp")
	}

	failedID, _ := m.CreateJob(ctx, testUID, "item-1")
	if err := m.FailJob(ctx, testUID, failedID, "decryption failed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	job, _ = m.GetJob(ctx, testUID, failedID)
	if job.Status != models.SyncJobFailed || job.ErrorMessage != "decryption failed" {
		t.Fatalf("unexpected job %+v", job)
	}
}
