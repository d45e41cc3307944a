package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cashstate/backend/internal/crypto"
	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/models"
	"github.com/cashstate/backend/pkg/logger"
)

// SimpleFin allows 24 syncs per day; one non-forced sync per item per window.
const syncCooldown = 24 * time.Hour

// --- Dependencies (minimal interfaces scoped to this service) ---

type simplefinFetcher interface {
	FetchAccounts(ctx context.Context, accessURL string, startDate *int64) (dto.AccountSet, error)
}

type itemSyncStore interface {
	Get(ctx context.Context, uid, itemID string) (*models.Item, error)
	ListActive(ctx context.Context) ([]*models.Item, error)
	SetLastSynced(ctx context.Context, uid, itemID string, t time.Time) error
	SetStatus(ctx context.Context, uid, itemID, itemStatus string) error
}

type accountSyncStore interface {
	Upsert(ctx context.Context, uid, itemID string, accounts []dto.Account) ([]string, error)
}

type transactionSyncStore interface {
	UpsertBatch(ctx context.Context, uid, accountID, accountName string, txs []dto.Transaction) (added, updated int, err error)
}

type syncJobStore interface {
	CreateJob(ctx context.Context, uid, itemID string) (string, error)
	CompleteJob(ctx context.Context, uid, jobID string, accounts, added, updated int) error
	FailJob(ctx context.Context, uid, jobID, message string) error
}

type syncService struct {
	simplefin simplefinFetcher
	cipher    crypto.TokenCipher
	items     itemSyncStore
	accounts  accountSyncStore
	txs       transactionSyncStore
	jobs      syncJobStore
	clockNow  func() time.Time
}

func NewSyncService(simplefin simplefinFetcher, cipher crypto.TokenCipher, items itemSyncStore, accounts accountSyncStore, txs transactionSyncStore, jobs syncJobStore) *syncService {
	return &syncService{
		simplefin: simplefin,
		cipher:    cipher,
		items:     items,
		accounts:  accounts,
		txs:       txs,
		jobs:      jobs,
		clockNow:  time.Now,
	}
}

// Sync fetches the item's accounts from SimpleFin and reconciles them into
// the store. startDate is Unix seconds; force bypasses the cooldown. A
// failure for one account's transactions is recorded and does not abort the
// rest; decrypt, fetch, and account upsert failures fail the whole job.
func (s *syncService) Sync(ctx context.Context, uid, itemID string, startDate *int64, force bool) (dto.SyncResult, error) {
	result := dto.SyncResult{Errors: []string{}}
	log := logger.FromContext(ctx)

	item, err := s.items.Get(ctx, uid, itemID)
	if err != nil {
		return result, err
	}
	if item.UID != uid {
		return result, errs.NewAccessDeniedError("item belongs to another user")
	}
	if item.Provider != models.ProviderSimplefin {
		return result, errs.NewValidationError("item is not a simplefin connection")
	}

	if !force && item.LastSyncedAt != nil {
		elapsed := s.clockNow().Sub(*item.LastSyncedAt)
		if elapsed < syncCooldown {
			return result, errs.NewRateLimitedError((syncCooldown - elapsed).Hours())
		}
	}

	// Every attempt past the guards leaves a job record, even if the very
	// next step fails.
	jobID, err := s.jobs.CreateJob(ctx, uid, itemID)
	if err != nil {
		return result, err
	}
	result.SyncJobID = jobID
	log.Info("sync started", "item_id", itemID, "job_id", jobID, "forced", force)

	accessURL, err := s.cipher.Decrypt(ctx, item.AccessToken)
	if err != nil {
		return result, s.failJob(ctx, uid, itemID, jobID, err)
	}

	set, err := s.simplefin.FetchAccounts(ctx, accessURL, startDate)
	if err != nil {
		return result, s.failJob(ctx, uid, itemID, jobID, err)
	}
	result.Errors = append(result.Errors, set.Errors...)

	accountIDs, err := s.accounts.Upsert(ctx, uid, itemID, set.Accounts)
	if err != nil {
		return result, s.failJob(ctx, uid, itemID, jobID, err)
	}
	result.AccountsSynced = len(set.Accounts)

	for i, account := range set.Accounts {
		if len(account.Transactions) == 0 {
			continue
		}
		added, updated, err := s.txs.UpsertBatch(ctx, uid, accountIDs[i], account.Name, account.Transactions)
		result.TransactionsAdded += added
		result.TransactionsUpdated += updated
		if err != nil {
			// One bad account must not abort the sync.
			log.Warn("account transactions failed", "item_id", itemID, "account", account.Name, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", account.Name, err.Error()))
			continue
		}
		log.Info("account synced", "item_id", itemID, "account", account.Name, "added", added, "updated", updated)
	}

	if err := s.jobs.CompleteJob(ctx, uid, jobID, result.AccountsSynced, result.TransactionsAdded, result.TransactionsUpdated); err != nil {
		return result, err
	}
	if err := s.items.SetLastSynced(ctx, uid, itemID, s.clockNow()); err != nil {
		return result, err
	}
	if item.Status != models.ItemStatusActive {
		if err := s.items.SetStatus(ctx, uid, itemID, models.ItemStatusActive); err != nil {
			return result, err
		}
	}

	result.Success = true
	log.Info("sync completed", "item_id", itemID, "job_id", jobID,
		"accounts_synced", result.AccountsSynced,
		"transactions_added", result.TransactionsAdded,
		"transactions_updated", result.TransactionsUpdated,
		"account_errors", len(result.Errors))
	return result, nil
}

// failJob finalizes the job as failed before the error propagates. The item
// is flagged so the next listing shows the connection needs attention.
func (s *syncService) failJob(ctx context.Context, uid, itemID, jobID string, cause error) error {
	log := logger.FromContext(ctx)
	if err := s.jobs.FailJob(ctx, uid, jobID, cause.Error()); err != nil {
		log.Error("failed to finalize sync job", "job_id", jobID, "error", err)
	}
	if err := s.items.SetStatus(ctx, uid, itemID, models.ItemStatusError); err != nil {
		log.Error("failed to flag item", "item_id", itemID, "error", err)
	}
	log.Warn("sync failed", "item_id", itemID, "job_id", jobID, "error", cause)
	return cause
}

// SyncAll sweeps every active SimpleFin item without forcing. Items still in
// cooldown are skipped; one item's failure never stops the sweep.
func (s *syncService) SyncAll(ctx context.Context) []dto.SyncResult {
	log := logger.FromContext(ctx)

	items, err := s.items.ListActive(ctx)
	if err != nil {
		log.Error("sweep aborted: listing active items failed", "error", err)
		return nil
	}

	var results []dto.SyncResult
	for _, item := range items {
		if item.Provider != models.ProviderSimplefin {
			continue
		}
		res, err := s.Sync(ctx, item.UID, item.ItemID, nil, false)
		if err != nil {
			var rateLimited *errs.RateLimitedError
			if errors.As(err, &rateLimited) {
				log.Info("sweep skipped item in cooldown", "item_id", item.ItemID)
			} else {
				log.Warn("sweep item failed", "item_id", item.ItemID, "error", err)
			}
			continue
		}
		results = append(results, res)
	}

	log.Info("sweep completed", "items_considered", len(items), "items_synced", len(results))
	return results
}
