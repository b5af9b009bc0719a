package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/payshield/payshield/internal/domain"
	"github.com/payshield/payshield/internal/models"
	"github.com/payshield/payshield/internal/observability"
)

// AdminService resolves transactions held for review. Every transition is
// validated against the decision state machine and applied atomically with
// its settlement and alert bookkeeping.
type AdminService struct {
	store Store
	now   func() time.Time
}

func NewAdminService(store Store) *AdminService {
	return &AdminService{store: store, now: time.Now}
}

// ApproveResult distinguishes a fresh approval from a repeated one.
// Approving an already-approved transaction is not an error; it simply
// changes nothing.
type ApproveResult struct {
	Transaction     *models.Transaction
	AlreadyApproved bool
}

// ApproveTransaction moves a REVIEW transaction to APPROVE and settles it
// in the same unit of work. Funds are re-checked at approval time: the
// balance may have moved since the transaction was scored, and an
// approval that can no longer be covered leaves the transaction in
// REVIEW with ErrInsufficientFunds.
func (s *AdminService) ApproveTransaction(ctx context.Context, adminID uuid.UUID, transactionID string) (*ApproveResult, error) {
	var result ApproveResult

	err := s.store.RunInTx(ctx, func(st Store) error {
		txn, err := st.Transactions().GetTransactionForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}

		switch txn.Decision {
		case domain.DecisionApprove:
			result.Transaction = txn
			result.AlreadyApproved = true
			return nil
		case domain.DecisionBlock:
			return models.ErrTransactionBlocked
		case domain.DecisionReview:
		default:
			return models.ErrNotReviewable
		}
		if !canTransition(txn.Decision, domain.DecisionApprove) {
			return models.ErrNotReviewable
		}

		sender, err := st.Accounts().GetAccount(ctx, txn.SenderAccountID)
		if err != nil {
			return fmt.Errorf("load sender for approval: %w", err)
		}
		if sender.Balance < txn.Amount {
			return fmt.Errorf("%w: %s available, %s required",
				models.ErrInsufficientFunds, domain.NewMoney(sender.Balance), domain.NewMoney(txn.Amount))
		}

		if err := st.Transactions().SetAdminApproved(ctx, transactionID, adminID); err != nil {
			return fmt.Errorf("set approved: %w", err)
		}
		now := s.now().UTC()
		txn.Decision = domain.DecisionApprove
		txn.RiskLevel = domain.RiskAdminApproved
		txn.ApprovedBy = &adminID
		txn.ApprovedAt = &now

		if err := settle(ctx, st, txn); err != nil {
			return err
		}
		if err := st.Alerts().DeleteAlertsByTransaction(ctx, transactionID); err != nil {
			return fmt.Errorf("clear alerts: %w", err)
		}

		result.Transaction = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyApproved {
		zap.L().Info("approval repeated, no effect", zap.String("transaction_id", transactionID))
		return &result, nil
	}

	observability.IncrementAdminOverride("approve")
	zap.L().Info("transaction approved by admin",
		zap.String("transaction_id", transactionID),
		zap.String("admin_id", adminID.String()),
	)
	return &result, nil
}

// RejectTransaction moves a REVIEW transaction to BLOCK. Blocked and
// approved transactions are terminal and cannot be rejected.
func (s *AdminService) RejectTransaction(ctx context.Context, adminID uuid.UUID, transactionID string) (*models.Transaction, error) {
	var rejected *models.Transaction

	err := s.store.RunInTx(ctx, func(st Store) error {
		txn, err := st.Transactions().GetTransactionForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.Decision != domain.DecisionReview || !canTransition(txn.Decision, domain.DecisionBlock) {
			return models.ErrNotReviewable
		}

		if err := st.Transactions().SetAdminRejected(ctx, transactionID, adminID); err != nil {
			return fmt.Errorf("set rejected: %w", err)
		}
		if err := st.Alerts().MarkAlertRejected(ctx, transactionID, adminID); err != nil {
			return fmt.Errorf("mark alert rejected: %w", err)
		}

		now := s.now().UTC()
		txn.Decision = domain.DecisionBlock
		txn.RiskLevel = domain.RiskAdminRejected
		txn.RejectedBy = &adminID
		txn.RejectedAt = &now
		rejected = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.IncrementAdminOverride("reject")
	zap.L().Info("transaction rejected by admin",
		zap.String("transaction_id", transactionID),
		zap.String("admin_id", adminID.String()),
	)
	return rejected, nil
}
