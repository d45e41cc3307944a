package services

import (
	"context"
	"time"

	"github.com/cashstate/backend/internal/models"
	"github.com/cashstate/backend/pkg/logger"
)

type userUSStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

type userService struct {
	store userUSStore
}

func NewUserService(store userUSStore) *userService {
	return &userService{store: store}
}

func (s *userService) Register(ctx context.Context, uid, email, displayName string) error {
	log := logger.FromContext(ctx)

	now := time.Now()
	user := &models.User{
		UID:         uid,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		log.Error("failed to create user in store", "error", err)
		return err
	}

	log.Info("user registered", "display_name", displayName)
	return nil
}

func (s *userService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return s.store.GetUser(ctx, uid)
}

func (s *userService) UpdateProfile(ctx context.Context, uid, displayName string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	user.DisplayName = displayName
	user.UpdatedAt = time.Now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("profile updated", "display_name", displayName)
	return user, nil
}
