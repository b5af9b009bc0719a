package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/payshield/payshield/internal/domain"
	"github.com/payshield/payshield/internal/models"
	"github.com/payshield/payshield/internal/observability"
)

// settle applies the balance mutation for an approved transaction inside
// the caller's unit of work. It is idempotent: the settled_at stamp is
// taken first and a transaction that already carries one is left alone,
// so a retried approval can never move money twice.
//
// The debit is guarded at the store: it fails with ErrInsufficientFunds
// rather than overdrawing. A receiver outside the system means the funds
// exit; the debit still stands and no credit is applied.
func settle(ctx context.Context, s Store, txn *models.Transaction) error {
	stamped, err := s.Transactions().MarkSettled(ctx, txn.ID)
	if err != nil {
		return fmt.Errorf("mark settled: %w", err)
	}
	if !stamped {
		zap.L().Info("settlement skipped, already settled", zap.String("transaction_id", txn.ID))
		return nil
	}

	if _, err := s.Accounts().AdjustBalance(ctx, txn.SenderAccountID, -txn.Amount); err != nil {
		observability.IncrementSettlement("failed")
		if errors.Is(err, models.ErrInsufficientFunds) {
			return fmt.Errorf("%w: debit %s: %w", models.ErrSettlementFailed, txn.ID, err)
		}
		return fmt.Errorf("debit sender: %w", err)
	}

	receiver, err := s.Accounts().ResolveByNumber(ctx, txn.ReceiverAccount)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			observability.IncrementSettlement("external")
			zap.L().Info("funds exited to external receiver",
				zap.String("transaction_id", txn.ID),
				zap.String("receiver_account", domain.MaskAccountNumber(txn.ReceiverAccount)),
			)
			return nil
		}
		return fmt.Errorf("resolve receiver: %w", err)
	}

	if _, err := s.Accounts().AdjustBalance(ctx, receiver.ID, txn.Amount); err != nil {
		observability.IncrementSettlement("failed")
		return fmt.Errorf("credit receiver: %w", err)
	}

	observability.IncrementSettlement("internal")
	return nil
}
