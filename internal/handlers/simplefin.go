package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/middleware"
	"github.com/cashstate/backend/internal/models"
	"github.com/cashstate/backend/internal/response"
)

type SimplefinService interface {
	SetupItem(ctx context.Context, uid, setupToken, institutionName string) (dto.SetupResult, error)
	ListItems(ctx context.Context, uid string) ([]*models.Item, error)
	DeleteItem(ctx context.Context, uid, itemID string) error
	ListAccounts(ctx context.Context, uid, itemID string) ([]*models.Account, error)
	ListTransactions(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error)
}

type SyncService interface {
	Sync(ctx context.Context, uid, itemID string, startDate *int64, force bool) (dto.SyncResult, error)
}

type simplefinHandlers struct {
	ResponseHandler response.ResponseHandler
	SimplefinSvc    SimplefinService
	SyncSvc         SyncService
}

func NewSimplefinHandlers(deps *Deps) *simplefinHandlers {
	return &simplefinHandlers{
		ResponseHandler: deps.ResponseHandler,
		SimplefinSvc:    deps.SimplefinSvc,
		SyncSvc:         deps.SyncSvc,
	}
}

func (h *simplefinHandlers) SimplefinRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/setup", h.Setup)
	r.Get("/items", h.ListItems)
	r.Delete("/items/{itemId}", h.DeleteItem)
	r.Get("/items/{itemId}/accounts", h.ListAccounts)
	r.Post("/items/{itemId}/sync", h.Sync)
	r.Get("/transactions", h.ListTransactions)
	return r
}

func (h *simplefinHandlers) Setup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SetupToken      string `json:"setupToken"`
		InstitutionName string `json:"institutionName,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if body.SetupToken == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("setupToken is required"))
		return
	}

	uid := middleware.UID(r.Context())
	result, err := h.SimplefinSvc.SetupItem(r.Context(), uid, body.SetupToken, body.InstitutionName)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}

func (h *simplefinHandlers) ListItems(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	items, err := h.SimplefinSvc.ListItems(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, items)
}

func (h *simplefinHandlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	itemID := chi.URLParam(r, "itemId")

	if err := h.SimplefinSvc.DeleteItem(r.Context(), uid, itemID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *simplefinHandlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	itemID := chi.URLParam(r, "itemId")

	accounts, err := h.SimplefinSvc.ListAccounts(r.Context(), uid, itemID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, accounts)
}

func (h *simplefinHandlers) Sync(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	itemID := chi.URLParam(r, "itemId")

	var startDate *int64
	if raw := r.URL.Query().Get("start-date"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("start-date must be Unix seconds"))
			return
		}
		startDate = &parsed
	}
	force := r.URL.Query().Get("force") == "true"

	result, err := h.SyncSvc.Sync(r.Context(), uid, itemID, startDate, force)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}

func (h *simplefinHandlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	q := dto.TransactionQuery{Limit: 50}
	params := r.URL.Query()
	if raw := params.Get("accountId"); raw != "" {
		q.AccountID = &raw
	}
	if raw := params.Get("dateFrom"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("dateFrom must be Unix millis"))
			return
		}
		q.DateFrom = &v
	}
	if raw := params.Get("dateTo"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("dateTo must be Unix millis"))
			return
		}
		q.DateTo = &v
	}
	if raw := params.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			q.Limit = v
		}
	}
	if raw := params.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			q.Offset = v
		}
	}

	transactions, err := h.SimplefinSvc.ListTransactions(r.Context(), uid, q)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, transactions)
}
