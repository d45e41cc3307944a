package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/models"
)

type itemStore struct {
	client *firestore.Client
}

func NewItemStore(client *firestore.Client) *itemStore {
	return &itemStore{client: client}
}

func (s *itemStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("items")
}

func (s *itemStore) Create(ctx context.Context, uid string, item *models.Item) error {
	now := time.Now()
	item.UID = uid
	item.CreatedAt = now
	item.UpdatedAt = now

	doc := s.collection(uid).NewDoc()
	item.ItemID = doc.ID
	if _, err := doc.Set(ctx, item); err != nil {
		return errs.NewDatabaseError("item.create", err.Error())
	}
	return nil
}

func (s *itemStore) Get(ctx context.Context, uid, itemID string) (*models.Item, error) {
	doc, err := s.collection(uid).Doc(itemID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("item not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("item.get", err.Error())
	}
	var item models.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errs.NewDatabaseError("item.get", err.Error())
	}
	return &item, nil
}

func (s *itemStore) List(ctx context.Context, uid string) ([]*models.Item, error) {
	docs, err := s.collection(uid).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("item.list", err.Error())
	}
	items := make([]*models.Item, 0, len(docs))
	for _, d := range docs {
		var item models.Item
		if err := d.DataTo(&item); err != nil {
			return nil, errs.NewDatabaseError("item.list", err.Error())
		}
		items = append(items, &item)
	}
	return items, nil
}

// ListActive returns every active item across all owners. Used by the
// scheduled sweep; requires a collection-group index on status.
func (s *itemStore) ListActive(ctx context.Context) ([]*models.Item, error) {
	docs, err := s.client.CollectionGroup("items").
		Where("status", "==", models.ItemStatusActive).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("item.listActive", err.Error())
	}
	items := make([]*models.Item, 0, len(docs))
	for _, d := range docs {
		var item models.Item
		if err := d.DataTo(&item); err != nil {
			return nil, errs.NewDatabaseError("item.listActive", err.Error())
		}
		items = append(items, &item)
	}
	return items, nil
}

func (s *itemStore) Delete(ctx context.Context, uid, itemID string) error {
	if _, err := s.collection(uid).Doc(itemID).Delete(ctx); err != nil {
		return errs.NewDatabaseError("item.delete", err.Error())
	}
	return nil
}

func (s *itemStore) SetLastSynced(ctx context.Context, uid, itemID string, t time.Time) error {
	_, err := s.collection(uid).Doc(itemID).Update(ctx, []firestore.Update{
		{Path: "lastSyncedAt", Value: t},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errs.NewDatabaseError("item.setLastSynced", err.Error())
	}
	return nil
}

func (s *itemStore) SetStatus(ctx context.Context, uid, itemID, itemStatus string) error {
	_, err := s.collection(uid).Doc(itemID).Update(ctx, []firestore.Update{
		{Path: "status", Value: itemStatus},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errs.NewDatabaseError("item.setStatus", err.Error())
	}
	return nil
}

func (s *itemStore) SetCursor(ctx context.Context, uid, itemID, cursor string) error {
	_, err := s.collection(uid).Doc(itemID).Update(ctx, []firestore.Update{
		{Path: "cursor", Value: cursor},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errs.NewDatabaseError("item.setCursor", err.Error())
	}
	return nil
}
