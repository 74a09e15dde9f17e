// cmd/analytics-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hongngoc-nguyen/brandpulse/internal/analytics"
	"github.com/hongngoc-nguyen/brandpulse/internal/api"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/config"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/database"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/logger"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/observability"
	"github.com/hongngoc-nguyen/brandpulse/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting analytics server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	var tracer *observability.Tracing
	if cfg.Tracing.Enabled {
		tracer, err = observability.NewTracing(cfg.Tracing.ServiceName, cfg.Tracing.JaegerURL)
		if err != nil {
			zapLog.Fatal("tracing init failed", zap.Error(err))
		}
		defer tracer.Shutdown()
	}

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Wire the engine ---
	pgStore := store.NewPostgresStore(pg.GetDB(), log)
	service := analytics.NewService(pgStore, cfg.Analytics, log)

	handler := api.NewAnalyticsHandler(
		service,
		config.GetDuration(cfg.Server.RequestTimeout),
		obs,
		tracer,
		log,
	)
	limiter := api.NewRateLimiter(
		rdb.GetClient(),
		cfg.Server.RateLimit,
		time.Duration(cfg.Server.RateWindow)*time.Second,
		log,
	)

	app := api.NewApp(api.RouterOptions{
		Handler: handler,
		Limiter: limiter,
		Logger:  log,
		Version: cfg.App.Version,
	})

	go func() {
		if err := app.Listen(cfg.Server.Address); err != nil {
			zapLog.Fatal("server stopped", zap.Error(err))
		}
	}()
	zapLog.Info("Analytics server listening", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	zapLog.Info("Analytics server stopped")
}
