package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/payshield/payshield/internal/domain"
	"github.com/payshield/payshield/internal/models"
	"github.com/payshield/payshield/internal/risk"
)

// memStore is an in-memory Store used to exercise the services without a
// database. RunInTx snapshots all state up front and restores it when fn
// fails, mirroring transactional rollback.
type memStore struct {
	mu sync.Mutex

	accounts  map[uuid.UUID]*models.Account
	txns      map[string]*models.Transaction
	alerts    []*models.Alert
	blacklist map[string]bool

	nextAlertID int64
	ledgerErr   error
}

func newMemStore() *memStore {
	return &memStore{
		accounts:  make(map[uuid.UUID]*models.Account),
		txns:      make(map[string]*models.Transaction),
		blacklist: make(map[string]bool),
	}
}

func (m *memStore) Accounts() AccountStore         { return m }
func (m *memStore) Transactions() TransactionStore { return m }
func (m *memStore) Alerts() AlertStore             { return m }
func (m *memStore) Ledger() risk.LedgerReader      { return m }
func (m *memStore) Blacklist() BlacklistChecker    { return m }

func (m *memStore) RunInTx(_ context.Context, fn func(s Store) error) error {
	m.mu.Lock()
	accounts := make(map[uuid.UUID]*models.Account, len(m.accounts))
	for id, a := range m.accounts {
		cp := *a
		accounts[id] = &cp
	}
	txns := make(map[string]*models.Transaction, len(m.txns))
	for id, t := range m.txns {
		cp := *t
		txns[id] = &cp
	}
	alerts := make([]*models.Alert, len(m.alerts))
	for i, a := range m.alerts {
		cp := *a
		alerts[i] = &cp
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.accounts = accounts
		m.txns = txns
		m.alerts = alerts
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) seedAccount(t *testing.T, userID uuid.UUID, number string, balance int64, primary bool) *models.Account {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	account := &models.Account{
		ID:             uuid.New(),
		UserID:         userID,
		AccountNumber:  number,
		BankName:       "Test Bank",
		ExpiryDate:     "12/30",
		Balance:        balance,
		OpeningBalance: balance,
		IsPrimary:      primary,
		Status:         domain.AccountStatusActive,
		CreatedAt:      time.Now().UTC(),
	}
	m.accounts[account.ID] = account
	return account
}

func (m *memStore) GetAccount(_ context.Context, id uuid.UUID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) GetPrimaryAccount(_ context.Context, userID uuid.UUID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.UserID == userID && a.IsPrimary {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (m *memStore) ResolveByNumber(_ context.Context, accountNumber string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.AccountNumber == accountNumber {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (m *memStore) AdjustBalance(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return 0, models.ErrAccountNotFound
	}
	if a.Balance+delta < 0 {
		return 0, models.ErrInsufficientFunds
	}
	a.Balance += delta
	return a.Balance, nil
}

func (m *memStore) CreateTransaction(_ context.Context, txn *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *txn
	m.txns[txn.ID] = &cp
	return nil
}

func (m *memStore) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.txns[id]
	if !ok {
		return nil, models.ErrTransactionNotFound
	}
	cp := *txn
	return &cp, nil
}

func (m *memStore) GetTransactionForUpdate(ctx context.Context, id string) (*models.Transaction, error) {
	return m.GetTransaction(ctx, id)
}

func (m *memStore) MarkSettled(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.txns[id]
	if !ok {
		return false, models.ErrTransactionNotFound
	}
	if txn.SettledAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	txn.SettledAt = &now
	return true, nil
}

func (m *memStore) SetAdminApproved(_ context.Context, id string, adminID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.txns[id]
	if !ok {
		return models.ErrTransactionNotFound
	}
	now := time.Now().UTC()
	txn.Decision = domain.DecisionApprove
	txn.RiskLevel = domain.RiskAdminApproved
	txn.ApprovedBy = &adminID
	txn.ApprovedAt = &now
	return nil
}

func (m *memStore) SetAdminRejected(_ context.Context, id string, adminID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.txns[id]
	if !ok {
		return models.ErrTransactionNotFound
	}
	now := time.Now().UTC()
	txn.Decision = domain.DecisionBlock
	txn.RiskLevel = domain.RiskAdminRejected
	txn.RejectedBy = &adminID
	txn.RejectedAt = &now
	return nil
}

func (m *memStore) ListUserTransactions(_ context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, txn := range m.txns {
		if txn.UserID == userID {
			out = append(out, *txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) DashboardStats(_ context.Context) (*models.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.DashboardStats{}
	for _, txn := range m.txns {
		stats.TotalTransactions++
		switch txn.Decision {
		case domain.DecisionApprove:
			stats.Approved++
			stats.ApprovedVolume += txn.Amount
		case domain.DecisionBlock:
			stats.Blocked++
		case domain.DecisionReview:
			stats.UnderReview++
		}
	}
	if stats.Approved > 0 {
		stats.AverageTransaction = stats.ApprovedVolume / stats.Approved
	}
	if stats.TotalTransactions > 0 {
		stats.FraudDetectionRate = float64(stats.Blocked+stats.UnderReview) / float64(stats.TotalTransactions)
	}
	return stats, nil
}

func (m *memStore) SettlementImbalances(_ context.Context) ([]models.SettlementImbalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	numberToID := make(map[string]uuid.UUID, len(m.accounts))
	for id, a := range m.accounts {
		numberToID[a.AccountNumber] = id
	}
	expected := make(map[uuid.UUID]int64, len(m.accounts))
	for id, a := range m.accounts {
		expected[id] = a.OpeningBalance
	}
	for _, txn := range m.txns {
		if txn.SettledAt == nil {
			continue
		}
		expected[txn.SenderAccountID] -= txn.Amount
		if rid, ok := numberToID[txn.ReceiverAccount]; ok {
			expected[rid] += txn.Amount
		}
	}
	var out []models.SettlementImbalance
	for id, a := range m.accounts {
		if drift := a.Balance - expected[id]; drift != 0 {
			out = append(out, models.SettlementImbalance{AccountID: id, Drift: drift})
		}
	}
	return out, nil
}

func (m *memStore) CreateAlert(_ context.Context, alert *models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAlertID++
	cp := *alert
	cp.ID = m.nextAlertID
	m.alerts = append(m.alerts, &cp)
	return nil
}

func (m *memStore) MarkAlertRejected(_ context.Context, transactionID string, adminID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.TransactionID == transactionID {
			id := adminID
			a.RejectedBy = &id
		}
	}
	return nil
}

func (m *memStore) DeleteAlertsByTransaction(_ context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.alerts[:0]
	for _, a := range m.alerts {
		if a.TransactionID != transactionID {
			kept = append(kept, a)
		}
	}
	m.alerts = kept
	return nil
}

func (m *memStore) ListAlerts(_ context.Context, limit int) ([]models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CountOpenReviews(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.alerts {
		if a.Decision == domain.DecisionReview && a.RejectedBy == nil {
			n++
		}
	}
	return n, nil
}

func (m *memStore) IsBlacklisted(_ context.Context, accountNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blacklist[accountNumber], nil
}

func (m *memStore) CountSince(_ context.Context, userID uuid.UUID, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ledgerErr != nil {
		return 0, m.ledgerErr
	}
	n := 0
	for _, txn := range m.txns {
		if txn.UserID == userID && !txn.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) SumAmountSince(_ context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ledgerErr != nil {
		return 0, m.ledgerErr
	}
	var sum int64
	for _, txn := range m.txns {
		if txn.UserID == userID && !txn.CreatedAt.Before(since) {
			sum += txn.Amount
		}
	}
	return sum, nil
}

func alertCount(m *memStore, transactionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.alerts {
		if a.TransactionID == transactionID {
			n++
		}
	}
	return n
}
