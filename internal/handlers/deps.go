package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/cashstate/backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client
	UserSvc         UserService
	SimplefinSvc    SimplefinService
	SyncSvc         SyncService
	PlaidSvc        PlaidService
}
