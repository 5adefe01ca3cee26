package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/iho/duesledger/internal/adapter/http/handler"
	"github.com/iho/duesledger/internal/adapter/http/middleware"
	"github.com/iho/duesledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	EntryHandler     *handler.EntryHandler
	LedgerHandler    *handler.LedgerHandler
	MemberHandler    *handler.MemberHandler
	ChargeHandler    *handler.ChargeHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(log.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.AccountHandler.Balance)
			r.Get("/{id}/entries", cfg.AccountHandler.Statement)
		})

		// Entries
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Post)
			r.Get("/{id}", cfg.EntryHandler.Get)
		})

		// Ledger-wide checks
		r.Get("/ledger/consistency", cfg.LedgerHandler.Consistency)

		// Membership plans
		r.Route("/plans", func(r chi.Router) {
			r.Post("/", cfg.MemberHandler.CreatePlan)
			r.Get("/", cfg.MemberHandler.ListPlans)
			r.Get("/{id}", cfg.MemberHandler.GetPlan)
		})

		// Members
		r.Route("/members", func(r chi.Router) {
			r.Post("/", cfg.MemberHandler.CreateMember)
			r.Get("/", cfg.MemberHandler.ListMembers)
			r.Get("/{id}", cfg.MemberHandler.GetMember)
			r.Put("/{id}/plan", cfg.MemberHandler.AssignPlan)
			r.Get("/{id}/billing", cfg.MemberHandler.BillingStatus)
			r.Post("/{id}/billing/run", cfg.MemberHandler.RunMemberBilling)
			r.Post("/{id}/customer", cfg.ChargeHandler.EnsureCustomer)
			r.Get("/{id}/charges", cfg.ChargeHandler.ListByMember)
		})

		// Billing across all members
		r.Post("/billing/run", cfg.MemberHandler.RunAllBilling)

		// Payment methods
		r.Route("/payment-methods", func(r chi.Router) {
			r.Post("/", cfg.ChargeHandler.CreatePaymentMethod)
			r.Get("/", cfg.ChargeHandler.ListPaymentMethods)
		})

		// Charges
		r.Route("/charges", func(r chi.Router) {
			r.Post("/", cfg.ChargeHandler.Submit)
			r.Post("/sync", cfg.ChargeHandler.SyncAll)
			r.Get("/{id}", cfg.ChargeHandler.Get)
			r.Post("/{id}/sync", cfg.ChargeHandler.Sync)
		})
	})

	return r
}
