package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/payshield/payshield/internal/api/handler"
	"github.com/payshield/payshield/internal/api/middleware"
	"github.com/payshield/payshield/internal/api/spec"
	"github.com/payshield/payshield/internal/classifier"
	"github.com/payshield/payshield/internal/config"
	"github.com/payshield/payshield/internal/gateway"
	"github.com/payshield/payshield/internal/idempotency"
	"github.com/payshield/payshield/internal/repository"
	"github.com/payshield/payshield/internal/service"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	store     *repository.Store
	idemStore *idempotency.Store
	redis     redis.Cmdable
}

func NewRouter(cfg *config.Config, logger *zap.Logger, db *pgxpool.Pool, store *repository.Store, idemStore *idempotency.Store, redisClient redis.Cmdable) *Router {
	return &Router{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		store:     store,
		idemStore: idemStore,
		redis:     redisClient,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))

	// Services
	var cls classifier.Classifier = classifier.NewMockClassifier()
	if api.cfg.ClassifierURL != "" {
		cls = classifier.NewHTTPClassifier(api.cfg.ClassifierURL, api.cfg.ClassifierTimeout)
	}
	engine := service.NewRiskEngine(api.store, cls, gateway.NewMockValidator(), api.cfg.ClassifierTimeout)
	adminSvc := service.NewAdminService(api.store)
	analyticsSvc := service.NewAnalyticsService(api.store)
	accountSvc := service.NewAccountService(api.store)

	// Handlers
	healthHandler := handler.NewHealthHandler(api.db, api.redis)
	authHandler := handler.NewAuthHandler(api.store)
	txnHandler := handler.NewTransactionHandler(engine)
	adminHandler := handler.NewAdminHandler(adminSvc, analyticsSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Get("/health/live", healthHandler.Live)
		r.Get("/health/ready", healthHandler.Ready)
		r.Get("/openapi.yaml", spec.OpenAPIHandler())
		r.Post("/api/v1/auth/login", authHandler.Login)
	})
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Post("/api/v1/transactions/score", txnHandler.Score)
		r.Get("/api/v1/transactions", txnHandler.History)
		r.Get("/api/v1/transactions/{id}", txnHandler.Get)
		r.Get("/api/v1/accounts/balance", accountHandler.Balance)

		// Money movement requires an idempotency key.
		r.With(middleware.IdempotencyMiddleware(api.idemStore, api.logger)).
			Post("/api/v2/transactions/process", txnHandler.Process)

		// Admin surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/api/v1/admin/alerts", adminHandler.Alerts)
			r.Get("/api/v1/admin/dashboard", adminHandler.Dashboard)
			r.Post("/api/v1/admin/transactions/{id}/approve", adminHandler.Approve)
			r.Post("/api/v1/admin/transactions/{id}/reject", adminHandler.Reject)
		})
	})

	return r
}
