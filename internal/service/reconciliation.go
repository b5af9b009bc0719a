package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/payshield/payshield/internal/observability"
)

// ReconciliationService verifies the settlement integrity invariant:
// every account balance must equal its opening balance plus the net of
// its settled transactions. Settlement state lives on the transaction
// record, never inferred from balances, so drift means a bug or manual
// interference and is reported loudly rather than repaired.
type ReconciliationService struct {
	store Store
}

func NewReconciliationService(store Store) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Run scans for accounts whose balance drifted from their settled
// transaction history.
func (s *ReconciliationService) Run(ctx context.Context) error {
	imbalances, err := s.store.Transactions().SettlementImbalances(ctx)
	if err != nil {
		return fmt.Errorf("run settlement imbalance query: %w", err)
	}

	if len(imbalances) == 0 {
		zap.L().Info("settlement ledger balanced")
		return nil
	}

	for _, row := range imbalances {
		observability.IncrementSettlementDrift()
		zap.L().Error("CRITICAL: settlement drift detected",
			zap.String("account_id", row.AccountID.String()),
			zap.Int64("drift_micros", row.Drift),
		)
	}
	return nil
}
