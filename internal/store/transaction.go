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

type transactionStore struct {
	client *firestore.Client
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{client: client}
}

func (s *transactionStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("transactions")
}

// UpsertBatch inserts or updates each transaction by its external ID.
// The document ID is the external ID, so (owner, external id) is unique by
// construction. Updates merge only the synced fields: category fields and the
// account-name snapshot are never rewritten. Returns inserted and updated
// counts for job telemetry.
func (s *transactionStore) UpsertBatch(ctx context.Context, uid, accountID, accountName string, txs []dto.Transaction) (added, updated int, err error) {
	now := time.Now()

	for _, t := range txs {
		doc := s.collection(uid).Doc(t.ExternalID)

		snap, err := doc.Get(ctx)
		switch {
		case status.Code(err) == codes.NotFound:
			tx := models.Transaction{
				TransactionID: t.ExternalID,
				AccountID:     accountID,
				AccountName:   accountName,
				Amount:        t.Amount,
				Currency:      t.Currency,
				Posted:        t.Posted,
				TransactedAt:  t.TransactedAt,
				Description:   t.Description,
				Payee:         t.Payee,
				Memo:          t.Memo,
				Pending:       t.Pending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if _, err := doc.Set(ctx, tx); err != nil {
				return added, updated, errs.NewDatabaseError("transaction.upsert", err.Error())
			}
			added++
		case err != nil:
			return added, updated, errs.NewDatabaseError("transaction.upsert", err.Error())
		case snap.Exists():
			updates := map[string]any{
				"accountId":    accountID,
				"amount":       t.Amount,
				"currency":     t.Currency,
				"posted":       t.Posted,
				"transactedAt": t.TransactedAt,
				"description":  t.Description,
				"payee":        t.Payee,
				"memo":         t.Memo,
				"pending":      t.Pending,
				"updatedAt":    now,
			}
			if _, err := doc.Set(ctx, updates, firestore.MergeAll); err != nil {
				return added, updated, errs.NewDatabaseError("transaction.upsert", err.Error())
			}
			updated++
		}
	}

	return added, updated, nil
}

// Query streams matching transactions to fn, most recent first.
func (s *transactionStore) Query(ctx context.Context, uid string, q dto.TransactionQuery, fn func(*models.Transaction) error) error {
	query := s.collection(uid).Query
	if q.AccountID != nil {
		query = query.Where("accountId", "==", *q.AccountID)
	}
	if q.Pending != nil {
		query = query.Where("pending", "==", *q.Pending)
	}
	if q.DateFrom != nil {
		query = query.Where("posted", ">=", *q.DateFrom)
	}
	if q.DateTo != nil {
		query = query.Where("posted", "<=", *q.DateTo)
	}
	query = query.OrderBy("posted", firestore.Desc)
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return errs.NewDatabaseError("transaction.query", err.Error())
	}
	for _, d := range docs {
		var tx models.Transaction
		if err := d.DataTo(&tx); err != nil {
			return errs.NewDatabaseError("transaction.query", err.Error())
		}
		if err := fn(&tx); err != nil {
			return err
		}
	}
	return nil
}

func (s *transactionStore) DeleteByAccount(ctx context.Context, uid, accountID string) error {
	docs, err := s.collection(uid).Where("accountId", "==", accountID).Documents(ctx).GetAll()
	if err != nil {
		return errs.NewDatabaseError("transaction.deleteByAccount", err.Error())
	}
	for _, d := range docs {
		if _, err := d.Ref.Delete(ctx); err != nil {
			return errs.NewDatabaseError("transaction.deleteByAccount", err.Error())
		}
	}
	return nil
}
