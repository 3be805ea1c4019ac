// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"voice-command-workers/internal/common/camunda"
	"voice-command-workers/internal/common/config"
	"voice-command-workers/internal/common/database"
	"voice-command-workers/internal/common/logger"
	"voice-command-workers/internal/common/observability"
	"voice-command-workers/pkg/registry"
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
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting voice command workers...",
		zap.String("environment", cfg.App.Environment),
		zap.String("genaiBackend", cfg.APIs.GenAI.Backend),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
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

	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("postgres schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Activity registry ---
	var reg *registry.Registry
	if cfg.RegistryPath != "" {
		reg, err = registry.Open(cfg.RegistryPath)
		if err != nil {
			zapLog.Warn("activity registry unavailable, job variables will not be schema-checked",
				zap.String("path", cfg.RegistryPath), zap.Error(err))
		} else if err := reg.Validate(); err != nil {
			zapLog.Fatal("activity registry is invalid", zap.Error(err))
		}
	}

	// --- Workers ---
	handlers, err := buildHandlers(ctx, cfg, deps{pg: pg, redis: redis}, log)
	if err != nil {
		zapLog.Fatal("failed to build handlers", zap.Error(err))
	}

	manager := camunda.NewManager(zeebe.GetClient(), log)
	for _, h := range handlers {
		runner := h.handler.Runner()
		runner.Obs = obs
		if reg != nil {
			runner.Validator = reg
		}
		manager.Start(h.taskType, config.GetWorkerConfig(cfg, h.taskType), h.handler)
	}
	zapLog.Info("Workers registered", zap.Strings("running", manager.Running()))

	// --- Health & Metrics Server ---
	srv := newServer(cfg.Server.Address, map[string]readinessCheck{
		"zeebe":    zeebe.HealthCheck,
		"postgres": pg.Ping,
		"redis":    redis.Ping,
	}, zapLog)
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := srv.Start(); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	manager.Stop()
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
