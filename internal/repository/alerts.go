package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/payshield/payshield/internal/models"
)

func (s *Store) CreateAlert(ctx context.Context, alert *models.Alert) error {
	query := `INSERT INTO alerts (transaction_id, user_id, decision, risk_level, risk_score, risk_factors, amount_micros, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := s.db.QueryRow(ctx, query, alert.TransactionID, alert.UserID, alert.Decision, alert.RiskLevel,
		alert.RiskScore, alert.RiskFactors, alert.Amount, alert.CreatedAt).Scan(&alert.ID)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *Store) MarkAlertRejected(ctx context.Context, transactionID string, adminID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `UPDATE alerts SET rejected_by = $2 WHERE transaction_id = $1`, transactionID, adminID)
	if err != nil {
		return fmt.Errorf("mark alert rejected: %w", err)
	}
	return nil
}

func (s *Store) DeleteAlertsByTransaction(ctx context.Context, transactionID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM alerts WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("delete alerts: %w", err)
	}
	return nil
}

func (s *Store) ListAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	query := `SELECT id, transaction_id, user_id, decision, risk_level, risk_score, risk_factors, amount_micros, rejected_by, created_at
		FROM alerts ORDER BY id DESC LIMIT $1`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []models.Alert
	for rows.Next() {
		var alert models.Alert
		err := rows.Scan(&alert.ID, &alert.TransactionID, &alert.UserID, &alert.Decision, &alert.RiskLevel,
			&alert.RiskScore, &alert.RiskFactors, &alert.Amount, &alert.RejectedBy, &alert.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, alert)
	}
	return out, rows.Err()
}

func (s *Store) CountOpenReviews(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM alerts WHERE decision = 'REVIEW' AND rejected_by IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open reviews: %w", err)
	}
	return n, nil
}
