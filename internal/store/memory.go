package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/models"
)

// Memory is an in-memory implementation of every store surface. It backs
// tests and local runs; reconciliation semantics match the Firestore stores.
type Memory struct {
	mu       sync.RWMutex
	items    map[string]map[string]*models.Item        // uid -> itemID
	accounts map[string]map[string]*models.Account     // uid -> accountID
	txs      map[string]map[string]*models.Transaction // uid -> external txID
	jobs     map[string]map[string]*models.SyncJob     // uid -> jobID
	users    map[string]*models.User
	seq      int
}

func NewMemory() *Memory {
	return &Memory{
		items:    make(map[string]map[string]*models.Item),
		accounts: make(map[string]map[string]*models.Account),
		txs:      make(map[string]map[string]*models.Transaction),
		jobs:     make(map[string]map[string]*models.SyncJob),
		users:    make(map[string]*models.User),
	}
}

func (m *Memory) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

// --- items ---

func (m *Memory) Create(_ context.Context, uid string, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	item.UID = uid
	item.ItemID = m.nextID("item")
	item.CreatedAt = now
	item.UpdatedAt = now

	if m.items[uid] == nil {
		m.items[uid] = make(map[string]*models.Item)
	}
	stored := *item
	m.items[uid][item.ItemID] = &stored
	return nil
}

func (m *Memory) Get(_ context.Context, uid, itemID string) (*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[uid][itemID]
	if !ok {
		return nil, errs.NewNotFoundError("item not found")
	}
	copied := *item
	return &copied, nil
}

func (m *Memory) List(_ context.Context, uid string) ([]*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]*models.Item, 0, len(m.items[uid]))
	for _, item := range m.items[uid] {
		copied := *item
		items = append(items, &copied)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}

func (m *Memory) ListActive(_ context.Context) ([]*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []*models.Item
	for _, byID := range m.items {
		for _, item := range byID {
			if item.Status == models.ItemStatusActive {
				copied := *item
				items = append(items, &copied)
			}
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}

func (m *Memory) Delete(_ context.Context, uid, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items[uid], itemID)
	return nil
}

func (m *Memory) SetLastSynced(_ context.Context, uid, itemID string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[uid][itemID]
	if !ok {
		return errs.NewNotFoundError("item not found")
	}
	item.LastSyncedAt = &t
	item.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) SetStatus(_ context.Context, uid, itemID, itemStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[uid][itemID]
	if !ok {
		return errs.NewNotFoundError("item not found")
	}
	item.Status = itemStatus
	item.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) SetCursor(_ context.Context, uid, itemID, cursor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[uid][itemID]
	if !ok {
		return errs.NewNotFoundError("item not found")
	}
	item.Cursor = cursor
	item.UpdatedAt = time.Now()
	return nil
}

// --- accounts ---

func (m *Memory) Upsert(_ context.Context, uid, itemID string, accounts []dto.Account) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.accounts[uid] == nil {
		m.accounts[uid] = make(map[string]*models.Account)
	}

	ids := make([]string, 0, len(accounts))
	now := time.Now()

	for _, a := range accounts {
		docID := AccountDocID(itemID, a.ExternalID)
		if existing, ok := m.accounts[uid][docID]; ok {
			existing.Name = a.Name
			existing.Currency = a.Currency
			existing.Balance = a.Balance
			existing.AvailableBalance = a.AvailableBalance
			existing.BalanceDate = a.BalanceDate
			existing.Institution = a.Institution
			existing.UpdatedAt = now
		} else {
			m.accounts[uid][docID] = &models.Account{
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
		}
		ids = append(ids, docID)
	}

	return ids, nil
}

func (m *Memory) ListByItem(_ context.Context, uid, itemID string) ([]*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var accounts []*models.Account
	for _, a := range m.accounts[uid] {
		if a.ItemID == itemID {
			copied := *a
			accounts = append(accounts, &copied)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountID < accounts[j].AccountID })
	return accounts, nil
}

func (m *Memory) DeleteByItem(_ context.Context, uid, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, a := range m.accounts[uid] {
		if a.ItemID == itemID {
			delete(m.accounts[uid], id)
		}
	}
	return nil
}

// --- transactions ---

func (m *Memory) UpsertBatch(_ context.Context, uid, accountID, accountName string, txs []dto.Transaction) (added, updated int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.txs[uid] == nil {
		m.txs[uid] = make(map[string]*models.Transaction)
	}
	now := time.Now()

	for _, t := range txs {
		if existing, ok := m.txs[uid][t.ExternalID]; ok {
			existing.AccountID = accountID
			existing.Amount = t.Amount
			existing.Currency = t.Currency
			existing.Posted = t.Posted
			existing.TransactedAt = t.TransactedAt
			existing.Description = t.Description
			existing.Payee = t.Payee
			existing.Memo = t.Memo
			existing.Pending = t.Pending
			existing.UpdatedAt = now
			// AccountName snapshot and category fields stay untouched.
			updated++
		} else {
			m.txs[uid][t.ExternalID] = &models.Transaction{
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
			added++
		}
	}

	return added, updated, nil
}

func (m *Memory) Query(_ context.Context, uid string, q dto.TransactionQuery, fn func(*models.Transaction) error) error {
	m.mu.RLock()
	var matched []*models.Transaction
	for _, t := range m.txs[uid] {
		if q.AccountID != nil && t.AccountID != *q.AccountID {
			continue
		}
		if q.Pending != nil && t.Pending != *q.Pending {
			continue
		}
		if q.DateFrom != nil && t.Posted < *q.DateFrom {
			continue
		}
		if q.DateTo != nil && t.Posted > *q.DateTo {
			continue
		}
		copied := *t
		matched = append(matched, &copied)
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Posted > matched[j].Posted })
	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	for _, t := range matched {
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) DeleteByAccount(_ context.Context, uid, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, t := range m.txs[uid] {
		if t.AccountID == accountID {
			delete(m.txs[uid], id)
		}
	}
	return nil
}

// GetTransaction provides direct record access for tests and tooling.
func (m *Memory) GetTransaction(uid, txID string) (*models.Transaction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.txs[uid][txID]
	if !ok {
		return nil, false
	}
	copied := *t
	return &copied, true
}

// SetCategory simulates the downstream categorization pipeline, which owns
// the category fields on a transaction.
func (m *Memory) SetCategory(uid, txID, category, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.txs[uid][txID]
	if !ok {
		return errs.NewNotFoundError("transaction not found")
	}
	t.Category = category
	t.CategorySource = source
	return nil
}

// --- sync jobs ---

func (m *Memory) CreateJob(_ context.Context, uid, itemID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.jobs[uid] == nil {
		m.jobs[uid] = make(map[string]*models.SyncJob)
	}
	jobID := m.nextID("job")
	m.jobs[uid][jobID] = &models.SyncJob{
		JobID:     jobID,
		ItemID:    itemID,
		Status:    models.SyncJobRunning,
		CreatedAt: time.Now(),
	}
	return jobID, nil
}

func (m *Memory) CompleteJob(_ context.Context, uid, jobID string, accounts, added, updated int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[uid][jobID]
	if !ok {
		return errs.NewNotFoundError("sync job not found")
	}
	now := time.Now()
	job.Status = models.SyncJobCompleted
	job.AccountsSynced = accounts
	job.TransactionsAdded = added
	job.TransactionsUpdated = updated
	job.CompletedAt = &now
	return nil
}

func (m *Memory) FailJob(_ context.Context, uid, jobID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[uid][jobID]
	if !ok {
		return errs.NewNotFoundError("sync job not found")
	}
	now := time.Now()
	job.Status = models.SyncJobFailed
	job.ErrorMessage = message
	job.CompletedAt = &now
	return nil
}

func (m *Memory) GetJob(_ context.Context, uid, jobID string) (*models.SyncJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[uid][jobID]
	if !ok {
		return nil, errs.NewNotFoundError("sync job not found")
	}
	copied := *job
	return &copied, nil
}

// --- users ---

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.UID]; ok {
		return errs.NewValidationError("user already exists")
	}
	copied := *user
	m.users[user.UID] = &copied
	return nil
}

func (m *Memory) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.UID]; !ok {
		return errs.NewNotFoundError("user not found")
	}
	copied := *user
	m.users[user.UID] = &copied
	return nil
}

func (m *Memory) GetUser(_ context.Context, uid string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[uid]
	if !ok {
		return nil, errs.NewNotFoundError("user not found")
	}
	copied := *user
	return &copied, nil
}
