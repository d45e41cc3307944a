package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/models"
)

type accountStore struct {
	client *firestore.Client
}

func NewAccountStore(client *firestore.Client) *accountStore {
	return &accountStore{client: client}
}

func (s *accountStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("accounts")
}

// AccountDocID builds the reconciliation key for an account. The document ID
// encodes (item, external id) under the owner's collection, so the triple is
// unique by construction and concurrent syncs cannot create duplicates.
func AccountDocID(itemID, externalID string) string {
	return itemID + ":" + externalID
}

// Upsert inserts or updates each account by its reconciliation key and
// returns internal account IDs parallel to the input order.
func (s *accountStore) Upsert(ctx context.Context, uid, itemID string, accounts []dto.Account) ([]string, error) {
	ids := make([]string, 0, len(accounts))
	now := time.Now()

	for _, a := range accounts {
		docID := AccountDocID(itemID, a.ExternalID)
		doc := s.collection(uid).Doc(docID)

		snap, err := doc.Get(ctx)
		switch {
		case status.Code(err) == codes.NotFound:
			account := models.Account{
				AccountID:        docID,
				ItemID:           itemID,
				ExternalID:       a.ExternalID,
				Name:             a.Name,
				Currency:         a.Currency,
				Balance:          a.Balance,
				AvailableBalance: a.AvailableBalance,
				BalanceDate:      a.BalanceDate,
				Institution:      a.Institution,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if _, err := doc.Set(ctx, account); err != nil {
				return nil, errs.NewDatabaseError("account.upsert", err.Error())
			}
		case err != nil:
			return nil, errs.NewDatabaseError("account.upsert", err.Error())
		case snap.Exists():
			// Refresh only the mutable fields.
			updates := map[string]any{
				"name":             a.Name,
				"currency":         a.Currency,
				"balance":          a.Balance,
				"availableBalance": a.AvailableBalance,
				"balanceDate":      a.BalanceDate,
				"institution":      a.Institution,
				"updatedAt":        now,
			}
			if _, err := doc.Set(ctx, updates, firestore.MergeAll); err != nil {
				return nil, errs.NewDatabaseError("account.upsert", err.Error())
			}
		}

		ids = append(ids, docID)
	}

	return ids, nil
}

func (s *accountStore) ListByItem(ctx context.Context, uid, itemID string) ([]*models.Account, error) {
	docs, err := s.collection(uid).Where("itemId", "==", itemID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("account.listByItem", err.Error())
	}
	accounts := make([]*models.Account, 0, len(docs))
	for _, d := range docs {
		var a models.Account
		if err := d.DataTo(&a); err != nil {
			return nil, errs.NewDatabaseError("account.listByItem", err.Error())
		}
		accounts = append(accounts, &a)
	}
	return accounts, nil
}

func (s *accountStore) DeleteByItem(ctx context.Context, uid, itemID string) error {
	docs, err := s.collection(uid).Where("itemId", "==", itemID).Documents(ctx).GetAll()
	if err != nil {
		return errs.NewDatabaseError("account.deleteByItem", err.Error())
	}
	for _, d := range docs {
		if _, err := d.Ref.Delete(ctx); err != nil {
			return errs.NewDatabaseError("account.deleteByItem", err.Error())
		}
	}
	return nil
}
