package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/postpulse/internal/adapter/httpserver"
	"github.com/pscheid92/postpulse/internal/adapter/metrics"
	"github.com/pscheid92/postpulse/internal/adapter/postgres"
	"github.com/pscheid92/postpulse/internal/adapter/redis"
	"github.com/pscheid92/postpulse/internal/adapter/sentimentapi"
	"github.com/pscheid92/postpulse/internal/app"
	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/platform/config"
	"github.com/pscheid92/postpulse/internal/platform/logging"
	"github.com/pscheid92/postpulse/internal/schedule"
	goredis "github.com/redis/go-redis/v9"
)

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireServer(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config, m *metrics.StorageMetrics) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, m)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

// setupRedis returns nil when no REDIS_URL is configured; recommendations are then cached in-process only.
func setupRedis(cfg *config.Config, m *metrics.StorageMetrics) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, using in-process recommendation cache only")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL, m)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupSentimentProvider(cfg *config.Config, m *metrics.SentimentMetrics) domain.SentimentProvider {
	if cfg.SentimentAPIURL == "" {
		slog.Info("SENTIMENT_API_URL not set, using the rule-based analyzer")
		return nil
	}
	return sentimentapi.NewClient(sentimentapi.Config{
		URL:     cfg.SentimentAPIURL,
		APIKey:  cfg.SentimentAPIKey,
		Timeout: cfg.SentimentAPITimeout,
		Retry:   sentimentapi.DefaultRetryPolicy,
	}, m)
}

func healthChecks(pool *pgxpool.Pool, rdb *goredis.Client) []httpserver.HealthCheck {
	checks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
	}
	if rdb != nil {
		checks = append(checks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}

func main() {
	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "timezone", cfg.Timezone)

	reg := metrics.NewRegistry()
	storageMetrics := metrics.NewStorageMetrics(reg)

	pool := setupDB(cfg, storageMetrics)
	defer pool.Close()

	rdb := setupRedis(cfg, storageMetrics)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	// Pass a plain nil client to the cache when Redis is off so it stays local-only.
	var cacheBackend goredis.Cmdable
	if rdb != nil {
		cacheBackend = rdb
	}
	cache := redis.NewRecommendationCache(cacheBackend, cfg.LocalCacheSize, cfg.CacheTTL, metrics.NewCacheMetrics(reg))

	engine, err := schedule.NewEngine(cfg.ScheduleParams())
	if err != nil {
		slog.Error("Failed to create scoring engine", "error", err)
		os.Exit(1)
	}

	history := postgres.NewHistoryRepo(pool)
	appSvc := app.NewService(app.Options{
		Engine:             engine,
		History:            history,
		Writer:             history,
		Provider:           setupSentimentProvider(cfg, metrics.NewSentimentMetrics(reg)),
		Cache:              cache,
		Clock:              clockwork.NewRealClock(),
		Metrics:            metrics.NewRecommendationMetrics(reg),
		Lookback:           cfg.Lookback(),
		CacheTTL:           cfg.CacheTTL,
		SentimentThreshold: cfg.SentimentThreshold,
	})

	srv := httpserver.NewServer(cfg, appSvc, metrics.NewHTTPMetrics(reg), metrics.Handler(reg), healthChecks(pool, rdb))

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
