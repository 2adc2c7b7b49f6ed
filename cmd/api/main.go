package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/odontoflow/economics-engine/internal/api/router"
	"github.com/odontoflow/economics-engine/internal/clinic"
	appconfig "github.com/odontoflow/economics-engine/internal/config"
	"github.com/odontoflow/economics-engine/internal/costing"
	"github.com/odontoflow/economics-engine/internal/equilibrium"
	"github.com/odontoflow/economics-engine/internal/export"
	"github.com/odontoflow/economics-engine/internal/http/handlers"
	"github.com/odontoflow/economics-engine/internal/observability/metrics"
	"github.com/odontoflow/economics-engine/internal/profitability"
	"github.com/odontoflow/economics-engine/internal/roi"
	"github.com/odontoflow/economics-engine/internal/tariffs"
	"github.com/odontoflow/economics-engine/pkg/logging"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting economics engine API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool == nil {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	defer pool.Close()

	// The admin overview uses database/sql; everything tenant-facing
	// goes through the pgx pool.
	adminDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open admin database handle", "error", err)
		os.Exit(1)
	}
	defer adminDB.Close()

	redisClient := newRedisClient(cfg)
	defer redisClient.Close()

	metricsHandler, engineMetrics := setupEngineMetrics()

	// Cost model.
	costStore := costing.NewStore(pool)
	resolver := costing.NewResolver(costStore, logger)

	// Tariffs.
	tariffStore := tariffs.NewStore(pool)
	tariffEngine := tariffs.NewEngine(resolver, costStore, tariffStore, logger, engineMetrics)
	tariffsHandler := tariffs.NewHandler(tariffEngine, logger)

	// Profitability.
	profitStore := profitability.NewStore(pool)
	profitAnalyzer := profitability.NewAnalyzer(profitStore, costStore, logger, engineMetrics)
	profitHandler := profitability.NewHandler(profitAnalyzer, logger)

	// Service ROI.
	roiStore := roi.NewStore(pool)
	roiAnalyzer := roi.NewAnalyzer(roiStore, logger, engineMetrics)
	roiHandler := roi.NewHandler(roiAnalyzer, logger)

	// Clinic profiles back the equilibrium defaults chain.
	profileStore := clinic.NewStore(redisClient)
	profileHandler := clinic.NewHandler(profileStore, logger)

	// Equilibrium.
	revenueStore := equilibrium.NewStore(pool)
	equilibriumDefaults := equilibrium.Defaults{
		WorkDays:        cfg.DefaultWorkDays,
		VariableCostPct: cfg.DefaultVariableCostPct,
		SafetyMarginPct: cfg.DefaultSafetyMarginPct,
	}
	equilibriumService := equilibrium.NewService(costStore, revenueStore, profileStore,
		equilibriumDefaults, logger, engineMetrics)
	equilibriumHandler := equilibrium.NewHandler(equilibriumService, logger)

	// Workbook export.
	exporter := export.NewExporter(tariffEngine, roiAnalyzer)
	exportHandler := export.NewHandler(exporter, logger)

	overviewHandler := handlers.NewAdminOverviewHandler(adminDB, logger)

	routerCfg := &router.Config{
		Logger:               logger,
		TariffsHandler:       tariffsHandler,
		ProfitabilityHandler: profitHandler,
		ROIHandler:           roiHandler,
		EquilibriumHandler:   equilibriumHandler,
		ProfileHandler:       profileHandler,
		ExportHandler:        exportHandler,
		AdminOverview:        overviewHandler,
		AdminAuthSecret:      cfg.AdminJWTSecret,
		MetricsHandler:       metricsHandler,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		RateLimitPerSecond:   cfg.RateLimitPerSecond,
		RateLimitBurst:       cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// connectPostgresPool opens a pgx pool, or returns nil when no URL is
// configured or the connection cannot be established.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		logger.Warn("no DATABASE_URL configured")
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	return pool
}

func newRedisClient(cfg *appconfig.Config) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

// setupEngineMetrics builds the engine's Prometheus registry and the handler
// that exports it.
func setupEngineMetrics() (http.Handler, *metrics.EngineMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return handler, engineMetrics
}
