package service

import (
	"context"
	"fmt"

	"github.com/payshield/payshield/internal/models"
	"github.com/payshield/payshield/internal/observability"
)

// AnalyticsService serves the admin dashboard and alert feeds.
type AnalyticsService struct {
	store Store
}

func NewAnalyticsService(store Store) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Dashboard aggregates decision outcomes across all transactions.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.store.Transactions().DashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

// Alerts lists the most recent fraud alerts, newest first.
func (s *AnalyticsService) Alerts(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	alerts, err := s.store.Alerts().ListAlerts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// RefreshReviewQueueGauge publishes the current review backlog size.
func (s *AnalyticsService) RefreshReviewQueueGauge(ctx context.Context) error {
	count, err := s.store.Alerts().CountOpenReviews(ctx)
	if err != nil {
		return fmt.Errorf("count open reviews: %w", err)
	}
	observability.SetReviewQueueSize(count)
	return nil
}
