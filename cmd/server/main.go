package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iho/duesledger/internal/adapter/gateway/stripeapi"
	httpAdapter "github.com/iho/duesledger/internal/adapter/http"
	"github.com/iho/duesledger/internal/adapter/http/handler"
	"github.com/iho/duesledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/duesledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/duesledger/internal/adapter/repository/redis"
	"github.com/iho/duesledger/internal/infrastructure/config"
	"github.com/iho/duesledger/internal/infrastructure/eventpublisher"
	"github.com/iho/duesledger/internal/infrastructure/logger"
	"github.com/iho/duesledger/internal/infrastructure/metrics"
	"github.com/iho/duesledger/internal/infrastructure/postgres"
	"github.com/iho/duesledger/internal/infrastructure/redis"
	"github.com/iho/duesledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Run migrations when a path is configured
	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	memberRepo := postgresRepo.NewMemberRepository(pool)
	planRepo := postgresRepo.NewPlanRepository(pool)
	methodRepo := postgresRepo.NewPaymentMethodRepository(pool)
	chargeRepo := postgresRepo.NewChargeRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	billingLock := redisRepo.NewBillingLock(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Metrics
	appMetrics := metrics.New()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			appMetrics.DBConnections.Set(float64(pool.Stat().TotalConns()))
		}
	}()

	// Payment gateway client
	gateway := newMeteredGateway(stripeapi.NewClient(cfg.GatewayBaseURL, cfg.GatewaySecretKey), appMetrics)

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, entryRepo, outboxRepo, idGen)
	memberUC := usecase.NewMemberUseCase(memberRepo, planRepo, accountRepo, idGen)
	billingUC := usecase.NewBillingUseCase(txManager, memberRepo, planRepo, entryRepo, outboxRepo, idGen, billingLock)
	chargeUC := usecase.NewChargeUseCase(txManager, chargeRepo, memberRepo, methodRepo, accountRepo, entryRepo, outboxRepo, gateway, idGen, cfg.DefaultCurrency).
		WithRetrier(postgresRepo.NewRetrier())

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(ledgerUC)
	entryHandler := handler.NewEntryHandler(ledgerUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	memberHandler := handler.NewMemberHandler(memberUC, billingUC)
	chargeHandler := handler.NewChargeHandler(chargeUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Outbox publisher drains committed events in the background
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(nil),
	})
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		EntryHandler:     entryHandler,
		LedgerHandler:    ledgerHandler,
		MemberHandler:    memberHandler,
		ChargeHandler:    chargeHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
