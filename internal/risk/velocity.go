// Package risk implements the transaction risk decision core: velocity
// feature aggregation, deterministic rule scoring, classifier feature
// extraction, and score fusion.
package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/payshield/payshield/internal/models"
)

// Velocity thresholds above which fund movement is considered rapid.
const (
	VelocityHourlyLimit = 5
	VelocityDailyLimit  = 20
)

// LedgerReader provides read-only access to committed historical
// transactions for a user.
type LedgerReader interface {
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	SumAmountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}

// VelocityAggregator derives trailing-window transaction counts and volume
// from the ledger. It holds no state and has no side effects.
type VelocityAggregator struct {
	ledger LedgerReader
}

func NewVelocityAggregator(ledger LedgerReader) *VelocityAggregator {
	return &VelocityAggregator{ledger: ledger}
}

// Collect computes the 1h/24h counts and 24h volume for a user as of now.
// An empty history yields all zeroes. A ledger failure fails closed: the
// returned error wraps models.ErrVelocityUnavailable and callers must treat
// it as inability to score, never as zero velocity.
func (a *VelocityAggregator) Collect(ctx context.Context, userID uuid.UUID, now time.Time) (models.VelocityFeatures, error) {
	var features models.VelocityFeatures

	count1h, err := a.ledger.CountSince(ctx, userID, now.Add(-time.Hour))
	if err != nil {
		return features, fmt.Errorf("%w: count 1h window: %v", models.ErrVelocityUnavailable, err)
	}
	count24h, err := a.ledger.CountSince(ctx, userID, now.Add(-24*time.Hour))
	if err != nil {
		return features, fmt.Errorf("%w: count 24h window: %v", models.ErrVelocityUnavailable, err)
	}
	volume24h, err := a.ledger.SumAmountSince(ctx, userID, now.Add(-24*time.Hour))
	if err != nil {
		return features, fmt.Errorf("%w: sum 24h window: %v", models.ErrVelocityUnavailable, err)
	}

	features.Transactions1h = count1h
	features.Transactions24h = count24h
	features.Volume24h = volume24h
	features.HighVelocity = count1h > VelocityHourlyLimit || count24h > VelocityDailyLimit
	return features, nil
}
