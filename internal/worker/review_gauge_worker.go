package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/payshield/payshield/internal/observability"
	"github.com/payshield/payshield/internal/service"
)

// ReviewGaugeWorker keeps the review queue size metric current so the
// backlog of transactions waiting on an admin is visible on dashboards.
type ReviewGaugeWorker struct {
	svc      *service.AnalyticsService
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewReviewGaugeWorker(svc *service.AnalyticsService) *ReviewGaugeWorker {
	return &ReviewGaugeWorker{
		svc:      svc,
		interval: 30 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

func (w *ReviewGaugeWorker) WithInterval(interval time.Duration) *ReviewGaugeWorker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// Start blocks and refreshes the gauge at the configured interval.
func (w *ReviewGaugeWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReviewGaugeWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the worker in a goroutine and returns a stop function.
func (w *ReviewGaugeWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *ReviewGaugeWorker) runOnce(ctx context.Context) {
	if err := w.svc.RefreshReviewQueueGauge(ctx); err != nil {
		observability.IncrementWorkerRun("review_gauge", "failed")
		zap.L().Warn("review gauge refresh failed", zap.Error(err))
		return
	}
	observability.IncrementWorkerRun("review_gauge", "success")
}
