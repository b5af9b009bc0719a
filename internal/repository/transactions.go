package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/payshield/payshield/internal/models"
)

const transactionColumns = `id, user_id, sender_account_id, receiver_account, amount_micros, payment_type, purpose,
	decision, risk_level, rule_score, ml_score, final_score, risk_factors, is_critical,
	transactions_1h, transactions_24h, volume_24h_micros, high_velocity,
	settled_at, approved_by, approved_at, rejected_by, rejected_at, created_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	txn := &models.Transaction{}
	err := row.Scan(&txn.ID, &txn.UserID, &txn.SenderAccountID, &txn.ReceiverAccount, &txn.Amount,
		&txn.PaymentType, &txn.Purpose,
		&txn.Decision, &txn.RiskLevel, &txn.Assessment.RuleScore, &txn.Assessment.MLScore,
		&txn.Assessment.FinalScore, &txn.Assessment.RiskFactors, &txn.Assessment.IsCritical,
		&txn.Velocity.Transactions1h, &txn.Velocity.Transactions24h, &txn.Velocity.Volume24h,
		&txn.Velocity.HighVelocity,
		&txn.SettledAt, &txn.ApprovedBy, &txn.ApprovedAt, &txn.RejectedBy, &txn.RejectedAt, &txn.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return txn, nil
}

func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `INSERT INTO transactions (id, user_id, sender_account_id, receiver_account, amount_micros, payment_type, purpose,
			decision, risk_level, rule_score, ml_score, final_score, risk_factors, is_critical,
			transactions_1h, transactions_24h, volume_24h_micros, high_velocity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := s.db.Exec(ctx, query, txn.ID, txn.UserID, txn.SenderAccountID, txn.ReceiverAccount, txn.Amount,
		txn.PaymentType, txn.Purpose,
		txn.Decision, txn.RiskLevel, txn.Assessment.RuleScore, txn.Assessment.MLScore,
		txn.Assessment.FinalScore, txn.Assessment.RiskFactors, txn.Assessment.IsCritical,
		txn.Velocity.Transactions1h, txn.Velocity.Transactions24h, txn.Velocity.Volume24h,
		txn.Velocity.HighVelocity, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(s.db.QueryRow(ctx, query, id))
}

func (s *Store) GetTransactionForUpdate(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return scanTransaction(s.db.QueryRow(ctx, query, id))
}

func (s *Store) MarkSettled(ctx context.Context, id string) (bool, error) {
	tag, err := s.db.Exec(ctx, `UPDATE transactions SET settled_at = NOW() WHERE id = $1 AND settled_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("mark settled: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("mark settled: %w", err)
	}
	if !exists {
		return false, models.ErrTransactionNotFound
	}
	return false, nil
}

func (s *Store) SetAdminApproved(ctx context.Context, id string, adminID uuid.UUID) error {
	query := `UPDATE transactions SET decision = 'APPROVE', risk_level = 'ADMIN_APPROVED', approved_by = $2, approved_at = NOW()
		WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, adminID)
	if err != nil {
		return fmt.Errorf("set approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) SetAdminRejected(ctx context.Context, id string, adminID uuid.UUID) error {
	query := `UPDATE transactions SET decision = 'BLOCK', risk_level = 'ADMIN_REJECTED', rejected_by = $2, rejected_at = NOW()
		WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, adminID)
	if err != nil {
		return fmt.Errorf("set rejected: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) ListUserTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *txn)
	}
	return out, rows.Err()
}

func (s *Store) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	query := `SELECT COUNT(*),
			COUNT(*) FILTER (WHERE decision = 'APPROVE'),
			COUNT(*) FILTER (WHERE decision = 'BLOCK'),
			COUNT(*) FILTER (WHERE decision = 'REVIEW'),
			COALESCE(SUM(amount_micros) FILTER (WHERE decision = 'APPROVE'), 0)
		FROM transactions`
	stats := &models.DashboardStats{}
	err := s.db.QueryRow(ctx, query).
		Scan(&stats.TotalTransactions, &stats.Approved, &stats.Blocked, &stats.UnderReview, &stats.ApprovedVolume)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	if stats.Approved > 0 {
		stats.AverageTransaction = stats.ApprovedVolume / stats.Approved
	}
	if stats.TotalTransactions > 0 {
		stats.FraudDetectionRate = float64(stats.Blocked+stats.UnderReview) / float64(stats.TotalTransactions)
	}
	return stats, nil
}

// SettlementImbalances compares each balance against the opening balance
// plus the net of settled transactions. Credits only count for receivers
// that resolve to an account in the system.
func (s *Store) SettlementImbalances(ctx context.Context) ([]models.SettlementImbalance, error) {
	query := `
		WITH debits AS (
			SELECT sender_account_id AS account_id, SUM(amount_micros) AS total
			FROM transactions WHERE settled_at IS NOT NULL GROUP BY sender_account_id
		), credits AS (
			SELECT a.id AS account_id, SUM(t.amount_micros) AS total
			FROM transactions t
			JOIN accounts a ON a.account_number = t.receiver_account
			WHERE t.settled_at IS NOT NULL GROUP BY a.id
		)
		SELECT a.id,
			a.balance_micros - (a.opening_balance_micros - COALESCE(d.total, 0) + COALESCE(c.total, 0)) AS drift
		FROM accounts a
		LEFT JOIN debits d ON d.account_id = a.id
		LEFT JOIN credits c ON c.account_id = a.id
		WHERE a.balance_micros <> a.opening_balance_micros - COALESCE(d.total, 0) + COALESCE(c.total, 0)`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("settlement imbalances: %w", err)
	}
	defer rows.Close()

	var out []models.SettlementImbalance
	for rows.Next() {
		var row models.SettlementImbalance
		if err := rows.Scan(&row.AccountID, &row.Drift); err != nil {
			return nil, fmt.Errorf("scan imbalance: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND created_at >= $2`, userID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (s *Store) SumAmountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var sum int64
	err := s.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount_micros), 0) FROM transactions WHERE user_id = $1 AND created_at >= $2`, userID, since).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transaction amounts: %w", err)
	}
	return sum, nil
}
