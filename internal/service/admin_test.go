package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payshield/payshield/internal/domain"
	"github.com/payshield/payshield/internal/models"
)

// seedReviewTransaction plants a REVIEW transaction with its alert, the
// state the engine leaves behind for a medium or high risk decision.
func seedReviewTransaction(t *testing.T, store *memStore, userID uuid.UUID, sender *models.Account, amount int64) *models.Transaction {
	t.Helper()
	ctx := context.Background()

	txn := &models.Transaction{
		ID:              newTransactionID(),
		UserID:          userID,
		SenderAccountID: sender.ID,
		ReceiverAccount: "9999000011112222",
		Amount:          amount,
		PaymentType:     domain.PaymentTransfer,
		Decision:        domain.DecisionReview,
		RiskLevel:       domain.RiskHigh,
		Assessment:      models.RiskAssessment{RuleScore: 0.6, FinalScore: 0.6, RiskFactors: []string{"High account drain: 80.0% of balance"}},
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, store.CreateTransaction(ctx, txn))
	require.NoError(t, store.CreateAlert(ctx, alertFor(txn)))
	return txn
}

func TestApproveTransaction_SettlesAndClearsAlert(t *testing.T) {
	store := newMemStore()
	svc := NewAdminService(store)
	ctx := context.Background()

	userID := uuid.New()
	sender := store.seedAccount(t, userID, "1111222233334444", micros(100_000), true)
	txn := seedReviewTransaction(t, store, userID, sender, micros(80_000))
	adminID := uuid.New()

	res, err := svc.ApproveTransaction(ctx, adminID, txn.ID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyApproved)
	assert.Equal(t, domain.DecisionApprove, res.Transaction.Decision)
	assert.Equal(t, domain.RiskAdminApproved, res.Transaction.RiskLevel)
	require.NotNil(t, res.Transaction.ApprovedBy)
	assert.Equal(t, adminID, *res.Transaction.ApprovedBy)

	stored, err := store.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, stored.Settled())

	senderAfter, err := store.GetAccount(ctx, sender.ID)
	require.NoError(t, err)
	assert.Equal(t, micros(20_000), senderAfter.Balance)

	assert.Equal(t, 0, alertCount(store, txn.ID))
}

func TestApproveTransaction_RepeatIsDistinctNoOp(t *testing.T) {
	store := newMemStore()
	svc := NewAdminService(store)
	ctx := context.Background()

	userID := uuid.New()
	sender := store.seedAccount(t, userID, "1111222233334444", micros(100_000), true)
	txn := seedReviewTransaction(t, store, userID, sender, micros(50_000))
	adminID := uuid.New()

	_, err := svc.ApproveTransaction(ctx, adminID, txn.ID)
	require.NoError(t, err)

	res, err := svc.ApproveTransaction(ctx, adminID, txn.ID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyApproved)

	senderAfter, err := store.GetAccount(ctx, sender.ID)
	require.NoError(t, err)
	assert.Equal(t, micros(50_000), senderAfter.Balance, "second approval must not settle again")
}

func TestApproveTransaction_BlockedIsTerminal(t *testing.T) {
	store := newMemStore()
	svc := NewAdminService(store)
	ctx := context.Background()

	userID := uuid.New()
	sender := store.seedAccount(t, userID, "1111222233334444", micros(100_000), true)
	txn := seedReviewTransaction(t, store, userID, sender, micros(50_000))

	adminID := uuid.New()
	_, err := svc.RejectTransaction(ctx, adminID, txn.ID)
	require.NoError(t, err)

	_, err = svc.ApproveTransaction(ctx, adminID, txn.ID)
	assert.ErrorIs(t, err, models.ErrTransactionBlocked)

	senderAfter, err := store.GetAccount(ctx, sender.ID)
	require.NoError(t, err)
	assert.Equal(t, micros(100_000), senderAfter.Balance)
}

func TestApproveTransaction_RechecksFunds(t *testing.T) {
	store := newMemStore()
	svc := NewAdminService(store)
	ctx := context.Background()

	userID := uuid.New()
	sender := store.seedAccount(t, userID, "1111222233334444", micros(100_000), true)
	txn := seedReviewTransaction(t, store, userID, sender, micros(80_000))

	// Balance moved between scoring and approval.
	_, err := store.AdjustBalance(ctx, sender.ID, -micros(90_000))
	require.NoError(t, err)

	_, err = svc.ApproveTransaction(ctx, uuid.New(), txn.ID)
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	stored, err := store.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionReview, stored.Decision, "failed approval leaves the transaction in review")
	assert.False(t, stored.Settled())
	assert.Equal(t, 1, alertCount(store, txn.ID), "alert survives a failed approval")
}

func TestApproveTransaction_NotFound(t *testing.T) {
	svc := NewAdminService(newMemStore())
	_, err := svc.ApproveTransaction(context.Background(), uuid.New(), "TXNDEADBEEF0000")
	assert.ErrorIs(t, err, models.ErrTransactionNotFound)
}

func TestRejectTransaction(t *testing.T) {
	store := newMemStore()
	svc := NewAdminService(store)
	ctx := context.Background()

	userID := uuid.New()
	sender := store.seedAccount(t, userID, "1111222233334444", micros(100_000), true)
	txn := seedReviewTransaction(t, store, userID, sender, micros(80_000))
	adminID := uuid.New()

	rejected, err := svc.RejectTransaction(ctx, adminID, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionBlock, rejected.Decision)
	assert.Equal(t, domain.RiskAdminRejected, rejected.RiskLevel)
	require.NotNil(t, rejected.RejectedBy)
	assert.Equal(t, adminID, *rejected.RejectedBy)

	stored, err := store.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.False(t, stored.Settled())

	senderAfter, err := store.GetAccount(ctx, sender.ID)
	require.NoError(t, err)
	assert.Equal(t, micros(100_000), senderAfter.Balance)

	open, err := store.CountOpenReviews(ctx)
	require.NoError(t, err)
	assert.Zero(t, open, "rejected alert no longer counts as open")
}

func TestRejectTransaction_ApprovedIsTerminal(t *testing.T) {
	store := newMemStore()
	svc := NewAdminService(store)
	ctx := context.Background()

	userID := uuid.New()
	sender := store.seedAccount(t, userID, "1111222233334444", micros(100_000), true)
	txn := seedReviewTransaction(t, store, userID, sender, micros(10_000))

	_, err := svc.ApproveTransaction(ctx, uuid.New(), txn.ID)
	require.NoError(t, err)

	_, err = svc.RejectTransaction(ctx, uuid.New(), txn.ID)
	assert.ErrorIs(t, err, models.ErrNotReviewable)
}
