package services

import (
	"context"
	"time"

	simplefinclient "github.com/cashstate/backend/internal/client/simplefin"
	"github.com/cashstate/backend/internal/crypto"
	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/models"
	"github.com/cashstate/backend/pkg/logger"
)

// --- Dependencies (minimal interfaces scoped to this service) ---

type simplefinClaimer interface {
	ClaimAccessURL(ctx context.Context, setupToken string) (string, error)
}

type itemSFStore interface {
	Create(ctx context.Context, uid string, item *models.Item) error
	Get(ctx context.Context, uid, itemID string) (*models.Item, error)
	List(ctx context.Context, uid string) ([]*models.Item, error)
	Delete(ctx context.Context, uid, itemID string) error
}

type accountSFStore interface {
	ListByItem(ctx context.Context, uid, itemID string) ([]*models.Account, error)
	DeleteByItem(ctx context.Context, uid, itemID string) error
}

type transactionSFStore interface {
	Query(ctx context.Context, uid string, q dto.TransactionQuery, fn func(*models.Transaction) error) error
	DeleteByAccount(ctx context.Context, uid, accountID string) error
}

type simplefinService struct {
	client simplefinClaimer
	cipher crypto.TokenCipher
	items  itemSFStore
	accts  accountSFStore
	txs    transactionSFStore

	// devAccessURL is a pre-claimed access URL for development; when set,
	// setup skips the one-shot claim exchange.
	devAccessURL string
	clockNow     func() time.Time
}

func NewSimplefinService(client simplefinClaimer, cipher crypto.TokenCipher, items itemSFStore, accts accountSFStore, txs transactionSFStore, devAccessURL string) *simplefinService {
	return &simplefinService{
		client:       client,
		cipher:       cipher,
		items:        items,
		accts:        accts,
		txs:          txs,
		devAccessURL: devAccessURL,
		clockNow:     time.Now,
	}
}

// SetupItem exchanges a setup token for an access URL and stores it
// encrypted. Claim tokens are one-shot, so an existing active connection is
// returned instead of burning the token again.
func (s *simplefinService) SetupItem(ctx context.Context, uid, setupToken, institutionName string) (dto.SetupResult, error) {
	log := logger.FromContext(ctx)

	existing, err := s.items.List(ctx, uid)
	if err != nil {
		return dto.SetupResult{}, err
	}
	for _, item := range existing {
		if item.Provider == models.ProviderSimplefin && item.Status == models.ItemStatusActive {
			return dto.SetupResult{ItemID: item.ItemID, Institution: item.Institution}, nil
		}
	}

	accessURL := s.devAccessURL
	if accessURL == "" {
		accessURL, err = s.client.ClaimAccessURL(ctx, setupToken)
		if err != nil {
			return dto.SetupResult{}, err
		}
	}
	if !simplefinclient.ValidateAccessURL(accessURL) {
		return dto.SetupResult{}, errs.NewValidationError("invalid access URL received from simplefin")
	}

	encrypted, err := s.cipher.Encrypt(ctx, accessURL)
	if err != nil {
		return dto.SetupResult{}, err
	}

	if institutionName == "" {
		institutionName = "SimpleFin Bank"
	}
	item := &models.Item{
		Provider:    models.ProviderSimplefin,
		Institution: institutionName,
		Status:      models.ItemStatusActive,
		AccessToken: encrypted,
	}
	if err := s.items.Create(ctx, uid, item); err != nil {
		return dto.SetupResult{}, err
	}

	log.Info("simplefin item linked", "item_id", item.ItemID, "institution", institutionName)
	return dto.SetupResult{ItemID: item.ItemID, Institution: institutionName}, nil
}

func (s *simplefinService) ListItems(ctx context.Context, uid string) ([]*models.Item, error) {
	return s.items.List(ctx, uid)
}

// DeleteItem removes an item with its accounts and transactions.
func (s *simplefinService) DeleteItem(ctx context.Context, uid, itemID string) error {
	item, err := s.items.Get(ctx, uid, itemID)
	if err != nil {
		return err
	}
	if item.UID != uid {
		return errs.NewAccessDeniedError("item belongs to another user")
	}

	accounts, err := s.accts.ListByItem(ctx, uid, itemID)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if err := s.txs.DeleteByAccount(ctx, uid, account.AccountID); err != nil {
			return err
		}
	}
	if err := s.accts.DeleteByItem(ctx, uid, itemID); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, uid, itemID); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info("item deleted", "item_id", itemID, "accounts_removed", len(accounts))
	return nil
}

func (s *simplefinService) ListAccounts(ctx context.Context, uid, itemID string) ([]*models.Account, error) {
	item, err := s.items.Get(ctx, uid, itemID)
	if err != nil {
		return nil, err
	}
	if item.UID != uid {
		return nil, errs.NewAccessDeniedError("item belongs to another user")
	}
	return s.accts.ListByItem(ctx, uid, itemID)
}

func (s *simplefinService) ListTransactions(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error) {
	if q.Limit == 0 {
		q.Limit = 50
	}
	transactions := make([]models.Transaction, 0, q.Limit)
	err := s.txs.Query(ctx, uid, q, func(tx *models.Transaction) error {
		transactions = append(transactions, *tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transactions, nil
}
