package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	httpDurationHistogram     *prometheus.HistogramVec
	decisionCounter           *prometheus.CounterVec
	classifierDegradedCounter prometheus.Counter
	settlementCounter         *prometheus.CounterVec
	settlementDriftCounter    prometheus.Counter
	reviewQueueGauge          prometheus.Gauge
	adminOverrideCounter      *prometheus.CounterVec
	idempotencyCounter        *prometheus.CounterVec
	workerRunCounter          *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		decisionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_decisions_total",
			Help: "Transaction decisions by outcome and risk level",
		}, []string{"decision", "risk_level"})

		classifierDegradedCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classifier_degraded_total",
			Help: "Transactions scored without a classifier probability",
		})

		settlementCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Settlement attempts by result",
		}, []string{"result"})

		settlementDriftCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_drift_accounts_total",
			Help: "Accounts found with a balance drifted from settled transactions",
		})

		reviewQueueGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "review_queue_size",
			Help: "Current number of transactions waiting for admin review",
		})

		adminOverrideCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_overrides_total",
			Help: "Admin review resolutions",
		}, []string{"action"})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			decisionCounter,
			classifierDegradedCounter,
			settlementCounter,
			settlementDriftCounter,
			reviewQueueGauge,
			adminOverrideCounter,
			idempotencyCounter,
			workerRunCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementDecision(decision, riskLevel string) {
	if decisionCounter == nil {
		return
	}
	decisionCounter.WithLabelValues(decision, riskLevel).Inc()
}

func IncrementClassifierDegraded() {
	if classifierDegradedCounter == nil {
		return
	}
	classifierDegradedCounter.Inc()
}

func IncrementSettlement(result string) {
	if settlementCounter == nil {
		return
	}
	settlementCounter.WithLabelValues(result).Inc()
}

func IncrementSettlementDrift() {
	if settlementDriftCounter == nil {
		return
	}
	settlementDriftCounter.Inc()
}

func SetReviewQueueSize(size int64) {
	if reviewQueueGauge == nil {
		return
	}
	reviewQueueGauge.Set(float64(size))
}

func IncrementAdminOverride(action string) {
	if adminOverrideCounter == nil {
		return
	}
	adminOverrideCounter.WithLabelValues(action).Inc()
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}
