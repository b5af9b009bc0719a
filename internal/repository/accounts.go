package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/payshield/payshield/internal/models"
)

const accountColumns = `id, user_id, account_number, bank_name, expiry_date, balance_micros, opening_balance_micros, is_primary, status, created_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.UserID, &account.AccountNumber, &account.BankName,
		&account.ExpiryDate, &account.Balance, &account.OpeningBalance, &account.IsPrimary,
		&account.Status, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return account, nil
}

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (id, user_id, account_number, bank_name, expiry_date, balance_micros, opening_balance_micros, is_primary, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()) RETURNING created_at`
	err := s.db.QueryRow(ctx, query, account.ID, account.UserID, account.AccountNumber, account.BankName,
		account.ExpiryDate, account.Balance, account.OpeningBalance, account.IsPrimary, account.Status).
		Scan(&account.CreatedAt)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(s.db.QueryRow(ctx, query, id))
}

func (s *Store) GetPrimaryAccount(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND is_primary ORDER BY created_at LIMIT 1`
	return scanAccount(s.db.QueryRow(ctx, query, userID))
}

func (s *Store) ResolveByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return scanAccount(s.db.QueryRow(ctx, query, accountNumber))
}

// AdjustBalance applies a signed delta atomically. The WHERE clause is the
// overdraft guard: a debit that would take the balance negative matches no
// row and leaves the account untouched.
func (s *Store) AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	query := `UPDATE accounts SET balance_micros = balance_micros + $2
		WHERE id = $1 AND balance_micros + $2 >= 0
		RETURNING balance_micros`
	var balance int64
	err := s.db.QueryRow(ctx, query, id, delta).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("adjust balance: %w", err)
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, fmt.Errorf("adjust balance: %w", err)
	}
	if !exists {
		return 0, models.ErrAccountNotFound
	}
	return 0, models.ErrInsufficientFunds
}

func (s *Store) IsBlacklisted(ctx context.Context, accountNumber string) (bool, error) {
	var blocked bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM blacklisted_accounts WHERE account_number = $1)`, accountNumber).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("blacklist lookup: %w", err)
	}
	return blocked, nil
}
