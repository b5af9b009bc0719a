package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/payshield/payshield/internal/models"
	"github.com/payshield/payshield/internal/risk"
)

// AccountStore is the account access contract required by the engine.
type AccountStore interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetPrimaryAccount(ctx context.Context, userID uuid.UUID) (*models.Account, error)
	// ResolveByNumber returns models.ErrAccountNotFound for account numbers
	// outside the system; settlement treats those as funds exiting.
	ResolveByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	// AdjustBalance applies an atomic signed delta. Debits are guarded:
	// a delta that would take the balance negative fails with
	// models.ErrInsufficientFunds and no mutation.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}

// TransactionStore persists the transaction records that are the sole
// source of truth for settlement.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	// GetTransactionForUpdate locks the row for the duration of the
	// surrounding unit of work.
	GetTransactionForUpdate(ctx context.Context, id string) (*models.Transaction, error)
	// MarkSettled stamps settled_at exactly once. It returns false when the
	// transaction was already settled, making settlement idempotent.
	MarkSettled(ctx context.Context, id string) (bool, error)
	SetAdminApproved(ctx context.Context, id string, adminID uuid.UUID) error
	SetAdminRejected(ctx context.Context, id string, adminID uuid.UUID) error
	ListUserTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	// SettlementImbalances reports accounts whose balance drifted from the
	// net of their settled transactions.
	SettlementImbalances(ctx context.Context) ([]models.SettlementImbalance, error)
}

// AlertStore is the alert sink for BLOCK and REVIEW decisions.
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.Alert) error
	MarkAlertRejected(ctx context.Context, transactionID string, adminID uuid.UUID) error
	DeleteAlertsByTransaction(ctx context.Context, transactionID string) error
	ListAlerts(ctx context.Context, limit int) ([]models.Alert, error)
	CountOpenReviews(ctx context.Context) (int64, error)
}

// BlacklistChecker reports whether an account number is blocked outright.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, accountNumber string) (bool, error)
}

// Store aggregates the data access contracts and transaction scoping the
// services require. RunInTx hands fn a store whose operations share one
// unit of work; fn returning an error rolls everything back.
type Store interface {
	Accounts() AccountStore
	Transactions() TransactionStore
	Alerts() AlertStore
	Ledger() risk.LedgerReader
	Blacklist() BlacklistChecker
	RunInTx(ctx context.Context, fn func(s Store) error) error
}
