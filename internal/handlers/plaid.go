package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/middleware"
	"github.com/cashstate/backend/internal/response"
)

type PlaidService interface {
	CreateLinkToken(ctx context.Context, uid string) (string, error)
	ExchangePublicToken(ctx context.Context, uid, publicToken, institutionName string) (string, error)
	SyncTransactions(ctx context.Context, uid, itemID string) (dto.SyncResult, error)
}

type plaidHandlers struct {
	ResponseHandler response.ResponseHandler
	PlaidSvc        PlaidService
}

func NewPlaidHandlers(deps *Deps) *plaidHandlers {
	return &plaidHandlers{
		ResponseHandler: deps.ResponseHandler,
		PlaidSvc:        deps.PlaidSvc,
	}
}

func (h *plaidHandlers) PlaidRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/link-token", h.CreateLinkToken)
	r.Post("/banks", h.LinkBank)
	r.Post("/items/{itemId}/sync", h.SyncTransactions)
	return r
}

func (h *plaidHandlers) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	linkToken, err := h.PlaidSvc.CreateLinkToken(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"linkToken": linkToken})
}

func (h *plaidHandlers) LinkBank(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PublicToken     string `json:"publicToken"`
		InstitutionName string `json:"institutionName,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}

	uid := middleware.UID(r.Context())
	itemID, err := h.PlaidSvc.ExchangePublicToken(r.Context(), uid, body.PublicToken, body.InstitutionName)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"itemId": itemID})
}

func (h *plaidHandlers) SyncTransactions(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	itemID := chi.URLParam(r, "itemId")

	result, err := h.PlaidSvc.SyncTransactions(r.Context(), uid, itemID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}
