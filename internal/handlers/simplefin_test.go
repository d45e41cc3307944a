package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/middleware"
	"github.com/cashstate/backend/internal/models"
	"github.com/cashstate/backend/internal/response"
)

// fakes implementing handler interfaces
type fakeSimplefinSvc struct {
	setupRes dto.SetupResult
	items    []*models.Item
	accounts []*models.Account
	txs      []models.Transaction
	err      error

	gotSetup struct {
		uid   string
		token string
		inst  string
	}
	gotQuery dto.TransactionQuery
}

func (f *fakeSimplefinSvc) SetupItem(ctx context.Context, uid, setupToken, institutionName string) (dto.SetupResult, error) {
	f.gotSetup.uid = uid
	f.gotSetup.token = setupToken
	f.gotSetup.inst = institutionName
	return f.setupRes, f.err
}
func (f *fakeSimplefinSvc) ListItems(ctx context.Context, uid string) ([]*models.Item, error) {
	return f.items, f.err
}
func (f *fakeSimplefinSvc) DeleteItem(ctx context.Context, uid, itemID string) error { return f.err }
func (f *fakeSimplefinSvc) ListAccounts(ctx context.Context, uid, itemID string) ([]*models.Account, error) {
	return f.accounts, f.err
}
func (f *fakeSimplefinSvc) ListTransactions(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error) {
	f.gotQuery = q
	return f.txs, f.err
}

type fakeSyncSvc struct {
	result dto.SyncResult
	err    error

	gotSync struct {
		uid       string
		itemID    string
		startDate *int64
		force     bool
	}
}

func (f *fakeSyncSvc) Sync(ctx context.Context, uid, itemID string, startDate *int64, force bool) (dto.SyncResult, error) {
	f.gotSync.uid = uid
	f.gotSync.itemID = itemID
	f.gotSync.startDate = startDate
	f.gotSync.force = force
	return f.result, f.err
}

// helper to build handler
func newTestSimplefinHandler(s *fakeSimplefinSvc, sync *fakeSyncSvc) *simplefinHandlers {
	log := slog.New(slog.NewTextHandler(testDiscard{}, nil))
	deps := &Deps{
		ResponseHandler: response.New(log),
		SimplefinSvc:    s,
		SyncSvc:         sync,
	}
	return NewSimplefinHandlers(deps)
}

func ctxWithUID(ctx context.Context) context.Context {
	return context.WithValue(ctx, middleware.UIDKey, "uid-123")
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestSetupHandler(t *testing.T) {
	s := &fakeSimplefinSvc{setupRes: dto.SetupResult{ItemID: "item-1", Institution: "Example Bank"}}
	h := newTestSimplefinHandler(s, &fakeSyncSvc{})

	body := `{"setupToken":"c2V0dXA=","institutionName":"Example Bank"}`
	req := httptest.NewRequest(http.MethodPost, "/simplefin/setup", bytes.NewBufferString(body)).WithContext(ctxWithUID(context.Background()))
	rr := httptest.NewRecorder()

	h.Setup(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	if s.gotSetup.uid != "uid-123" || s.gotSetup.token != "c2V0dXA=" || s.gotSetup.inst != "Example Bank" {
		t.Fatalf("setup called with %+v", s.gotSetup)
	}
	var resp struct {
		Success bool
		Data    dto.SetupResult
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if !resp.Success || resp.Data.ItemID != "item-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSetupHandlerRequiresToken(t *testing.T) {
	h := newTestSimplefinHandler(&fakeSimplefinSvc{}, &fakeSyncSvc{})

	req := httptest.NewRequest(http.MethodPost, "/simplefin/setup", bytes.NewBufferString(`{}`)).WithContext(ctxWithUID(context.Background()))
	rr := httptest.NewRecorder()

	h.Setup(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestSyncHandler(t *testing.T) {
	sync := &fakeSyncSvc{result: dto.SyncResult{Success: true, SyncJobID: "job-1", AccountsSynced: 2}}
	h := newTestSimplefinHandler(&fakeSimplefinSvc{}, sync)

	req := httptest.NewRequest(http.MethodPost, "/simplefin/items/item-1/sync?start-date=1690000000&force=true", nil).
		WithContext(ctxWithUID(context.Background()))
	req = withURLParam(req, "itemId", "item-1")
	rr := httptest.NewRecorder()

	h.Sync(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	if sync.gotSync.uid != "uid-123" || sync.gotSync.itemID != "item-1" {
		t.Fatalf("sync called with %+v", sync.gotSync)
	}
	if sync.gotSync.startDate == nil || *sync.gotSync.startDate != 1690000000 {
		t.Fatalf("start date not forwarded: %v", sync.gotSync.startDate)
	}
	if !sync.gotSync.force {
		t.Fatal("force flag not forwarded")
	}
}

func TestSyncHandlerRejectsBadStartDate(t *testing.T) {
	h := newTestSimplefinHandler(&fakeSimplefinSvc{}, &fakeSyncSvc{})

	req := httptest.NewRequest(http.MethodPost, "/simplefin/items/item-1/sync?start-date=yesterday", nil).
		WithContext(ctxWithUID(context.Background()))
	req = withURLParam(req, "itemId", "item-1")
	rr := httptest.NewRecorder()

	h.Sync(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestSyncHandlerRateLimited(t *testing.T) {
	sync := &fakeSyncSvc{err: errs.NewRateLimitedError(21.5)}
	h := newTestSimplefinHandler(&fakeSimplefinSvc{}, sync)

	req := httptest.NewRequest(http.MethodPost, "/simplefin/items/item-1/sync", nil).
		WithContext(ctxWithUID(context.Background()))
	req = withURLParam(req, "itemId", "item-1")
	rr := httptest.NewRecorder()

	h.Sync(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestListTransactionsHandlerParsesQuery(t *testing.T) {
	s := &fakeSimplefinSvc{txs: []models.Transaction{}}
	h := newTestSimplefinHandler(s, &fakeSyncSvc{})

	req := httptest.NewRequest(http.MethodGet, "/simplefin/transactions?accountId=acct-1&dateFrom=1000&dateTo=2000&limit=10&offset=5", nil).
		WithContext(ctxWithUID(context.Background()))
	rr := httptest.NewRecorder()

	h.ListTransactions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	q := s.gotQuery
	if q.AccountID == nil || *q.AccountID != "acct-1" {
		t.Fatalf("accountId not forwarded: %+v", q)
	}
	if q.DateFrom == nil || *q.DateFrom != 1000 || q.DateTo == nil || *q.DateTo != 2000 {
		t.Fatalf("date range not forwarded: %+v", q)
	}
	if q.Limit != 10 || q.Offset != 5 {
		t.Fatalf("pagination not forwarded: %+v", q)
	}
}

// discard logger output in tests
type testDiscard struct{}

func (testDiscard) Write(p []byte) (int, error) { return len(p), nil }
