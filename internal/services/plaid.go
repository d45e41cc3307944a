package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cashstate/backend/internal/crypto"
	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/models"
	"github.com/cashstate/backend/pkg/logger"
)

// --- Dependencies (minimal interfaces scoped to this service) ---

type plaidClient interface {
	CreateLinkToken(ctx context.Context, uid string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (itemID, accessToken string, err error)
	FetchAccounts(ctx context.Context, accessToken string) ([]dto.Account, error)
	SyncTransactions(ctx context.Context, accessToken string, cursor *string) (dto.PlaidSyncPage, error)
}

type itemPlaidStore interface {
	Create(ctx context.Context, uid string, item *models.Item) error
	Get(ctx context.Context, uid, itemID string) (*models.Item, error)
	SetCursor(ctx context.Context, uid, itemID, cursor string) error
	SetLastSynced(ctx context.Context, uid, itemID string, t time.Time) error
}

type plaidService struct {
	plaid    plaidClient
	cipher   crypto.TokenCipher
	items    itemPlaidStore
	accounts accountSyncStore
	txs      transactionSyncStore
	jobs     syncJobStore
	clockNow func() time.Time
}

func NewPlaidService(plaid plaidClient, cipher crypto.TokenCipher, items itemPlaidStore, accounts accountSyncStore, txs transactionSyncStore, jobs syncJobStore) *plaidService {
	return &plaidService{
		plaid:    plaid,
		cipher:   cipher,
		items:    items,
		accounts: accounts,
		txs:      txs,
		jobs:     jobs,
		clockNow: time.Now,
	}
}

func (s *plaidService) CreateLinkToken(ctx context.Context, uid string) (string, error) {
	return s.plaid.CreateLinkToken(ctx, uid)
}

// ExchangePublicToken links a bank through Plaid. The access token is
// encrypted before it is stored, like any other provider credential.
func (s *plaidService) ExchangePublicToken(ctx context.Context, uid, publicToken, institutionName string) (string, error) {
	_, accessToken, err := s.plaid.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return "", err
	}

	encrypted, err := s.cipher.Encrypt(ctx, accessToken)
	if err != nil {
		return "", err
	}

	if institutionName == "" {
		institutionName = "Plaid Bank"
	}
	item := &models.Item{
		Provider:    models.ProviderPlaid,
		Institution: institutionName,
		Status:      models.ItemStatusActive,
		AccessToken: encrypted,
	}
	if err := s.items.Create(ctx, uid, item); err != nil {
		return "", err
	}

	log := logger.FromContext(ctx)
	log.Info("plaid item linked", "item_id", item.ItemID, "institution", institutionName)
	return item.ItemID, nil
}

// SyncTransactions runs a cursor-based Plaid sync for one item. Plaid tracks
// deltas server-side, so there is no cooldown; the same job record and
// reconciliation path as SimpleFin are used.
func (s *plaidService) SyncTransactions(ctx context.Context, uid, itemID string) (dto.SyncResult, error) {
	result := dto.SyncResult{Errors: []string{}}
	log := logger.FromContext(ctx)

	item, err := s.items.Get(ctx, uid, itemID)
	if err != nil {
		return result, err
	}
	if item.UID != uid {
		return result, errs.NewAccessDeniedError("item belongs to another user")
	}
	if item.Provider != models.ProviderPlaid {
		return result, errs.NewValidationError("item is not a plaid connection")
	}

	jobID, err := s.jobs.CreateJob(ctx, uid, itemID)
	if err != nil {
		return result, err
	}
	result.SyncJobID = jobID
	log.Info("plaid sync started", "item_id", itemID, "job_id", jobID)

	accessToken, err := s.cipher.Decrypt(ctx, item.AccessToken)
	if err != nil {
		return result, s.finalizeFailed(ctx, uid, jobID, err)
	}

	fetched, err := s.plaid.FetchAccounts(ctx, accessToken)
	if err != nil {
		return result, s.finalizeFailed(ctx, uid, jobID, err)
	}
	accountIDs, err := s.accounts.Upsert(ctx, uid, itemID, fetched)
	if err != nil {
		return result, s.finalizeFailed(ctx, uid, jobID, err)
	}
	result.AccountsSynced = len(fetched)

	// external account id -> (internal id, display name)
	type accountRef struct{ id, name string }
	refs := make(map[string]accountRef, len(fetched))
	for i, account := range fetched {
		refs[account.ExternalID] = accountRef{id: accountIDs[i], name: account.Name}
	}

	var cursor *string
	if item.Cursor != "" {
		c := item.Cursor
		cursor = &c
	}
	latestCursor := item.Cursor

	hasMore := true
	for hasMore {
		page, err := s.plaid.SyncTransactions(ctx, accessToken, cursor)
		if err != nil {
			return result, s.finalizeFailed(ctx, uid, jobID, err)
		}

		for externalID, txs := range page.Transactions {
			ref, ok := refs[externalID]
			if !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("unknown account %s: %d transactions skipped", externalID, len(txs)))
				continue
			}
			added, updated, err := s.txs.UpsertBatch(ctx, uid, ref.id, ref.name, txs)
			result.TransactionsAdded += added
			result.TransactionsUpdated += updated
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", ref.name, err.Error()))
			}
		}

		latestCursor = page.Cursor
		cursor = &latestCursor
		hasMore = page.HasMore
	}

	if latestCursor != "" {
		if err := s.items.SetCursor(ctx, uid, itemID, latestCursor); err != nil {
			return result, s.finalizeFailed(ctx, uid, jobID, err)
		}
	}

	if err := s.jobs.CompleteJob(ctx, uid, jobID, result.AccountsSynced, result.TransactionsAdded, result.TransactionsUpdated); err != nil {
		return result, err
	}
	if err := s.items.SetLastSynced(ctx, uid, itemID, s.clockNow()); err != nil {
		return result, err
	}

	result.Success = true
	log.Info("plaid sync completed", "item_id", itemID, "job_id", jobID,
		"transactions_added", result.TransactionsAdded,
		"transactions_updated", result.TransactionsUpdated)
	return result, nil
}

func (s *plaidService) finalizeFailed(ctx context.Context, uid, jobID string, cause error) error {
	if err := s.jobs.FailJob(ctx, uid, jobID, cause.Error()); err != nil {
		logger.FromContext(ctx).Error("failed to finalize sync job", "job_id", jobID, "error", err)
	}
	return cause
}
