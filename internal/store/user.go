package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/models"
)

type userStore struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
}

func NewUserStore(client *firestore.Client) *userStore {
	return &userStore{
		client:     client,
		collection: client.Collection("users"),
	}
}

func (s *userStore) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := s.collection.Doc(user.UID).Create(ctx, user); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewValidationError("user already exists")
		}
		return errs.NewDatabaseError("user.create", err.Error())
	}
	return nil
}

func (s *userStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	doc, err := s.collection.Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("user.get", err.Error())
	}
	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errs.NewDatabaseError("user.get", err.Error())
	}
	return &user, nil
}

func (s *userStore) UpdateUser(ctx context.Context, user *models.User) error {
	if _, err := s.collection.Doc(user.UID).Set(ctx, user, firestore.MergeAll); err != nil {
		return errs.NewDatabaseError("user.update", err.Error())
	}
	return nil
}
