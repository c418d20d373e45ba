package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/config"
	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/joaodariop/foour-tax-sub000/internal/handler"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/cache"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/observability"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/resilience"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/supabase"
	"github.com/joaodariop/foour-tax-sub000/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required: the classifier has no local store")
	}
	if cfg.ServiceKeyHash == "" {
		logger.Fatal("SERVICE_KEY_HASH is required to guard the classification trigger")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "eligibility-classifier")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	priceCache := cache.New[*domain.DeclarationPrice](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Record store ---
	store := supabase.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	// --- Services ---
	policySvc := service.NewPolicyService(store, priceCache, metrics, logger)
	incSvc := service.NewInconsistencyService(store, metrics, logger)
	aggregator := service.NewMetricsAggregator(store, cfg.MaxConcurrency, metrics, logger)
	classSvc := service.NewClassificationService(aggregator, policySvc, incSvc, metrics, logger)
	authSvc := service.NewAuthService([]byte(cfg.JWTSecret), []byte(cfg.ServiceKeyHash))

	// --- First-run policy seeding ---
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := policySvc.EnsureDefaults(seedCtx); err != nil {
		seedCancel()
		logger.Fatal("failed to seed default policy", zap.Error(err))
	}
	seedCancel()

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Classification:  classSvc,
		Policy:          policySvc,
		Inconsistencies: incSvc,
		Auth:            authSvc,
		Metrics:         metrics,
		Logger:          logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
