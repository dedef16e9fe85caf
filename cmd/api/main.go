package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/internal/events"
	apphttp "leadboard_backend/internal/http"
	"leadboard_backend/internal/http/router"
	"leadboard_backend/internal/leads"
	"leadboard_backend/internal/prefs"
	"leadboard_backend/internal/scheduler"
	"leadboard_backend/platform/config"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	attachmentStore := initAttachmentStore(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule, err := leads.NewModule(eventBus, attachmentStore, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	// First pull of the canonical collection. The server still starts when
	// the remote service is down; the refetch chain catches up later.
	if err := withRetry(ctx, log, "initial lead fetch", 5, 2*time.Second, func() error {
		return leadsModule.Store().Refresh(ctx)
	}); err != nil {
		log.Error("initial lead fetch failed, starting with an empty store", "error", err)
	} else {
		log.Info("canonical store loaded", "leads", leadsModule.Store().Len())
	}

	modules := []apphttp.Module{leadsModule}

	var health apphttp.HealthChecker
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("invalid REDIS_URL", "error", err)
			panic("invalid REDIS_URL: " + err.Error())
		}
		rdb := redis.NewClient(opt)
		defer func() { _ = rdb.Close() }()
		health = redisHealth{rdb}

		modules = append(modules, prefs.NewModule(rdb, val, log))

		runRefetchScheduler(ctx, cfg, leadsModule, log)
	} else {
		log.Warn("REDIS_URL not configured; preferences and periodic refetch disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initAttachmentStore builds the MinIO adapter when object storage is
// configured. A nil return disables attachment uploads; reassignments still
// work and report the documents as failed uploads.
func initAttachmentStore(ctx context.Context, cfg *config.Config, log *logger.Logger) storage.Service {
	if !cfg.IsMinioEnabled() {
		log.Warn("MinIO not configured; attachment uploads disabled")
		return nil
	}

	svc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize attachment storage", "error", err)
		return nil
	}

	if err := withRetry(ctx, log, "ensure attachment bucket", 5, 2*time.Second, func() error {
		return svc.EnsureBucket(ctx)
	}); err != nil {
		log.Error("failed to ensure attachment bucket exists", "error", err, "bucket", cfg.MinioBucket)
		panic("failed to ensure attachment bucket exists: " + err.Error())
	}

	return svc
}

// runRefetchScheduler starts the embedded asynq worker and plants the first
// periodic refetch. The worker shares the in-process store, so it runs inside
// the API binary rather than as a separate one.
func runRefetchScheduler(ctx context.Context, cfg *config.Config, leadsModule *leads.Module, log *logger.Logger) {
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize refetch scheduler client", "error", err)
		return
	}

	worker, err := scheduler.NewWorker(cfg, leadsModule.Store(), client, log)
	if err != nil {
		log.Error("failed to initialize refetch worker", "error", err)
		_ = client.Close()
		return
	}

	if err := worker.Kickoff(ctx); err != nil {
		log.Error("failed to schedule initial refetch", "error", err)
	}

	go func() {
		defer func() { _ = client.Close() }()
		worker.Run(ctx)
	}()
}

type redisHealth struct {
	rdb *redis.Client
}

func (h redisHealth) Ping(ctx context.Context) error {
	return h.rdb.Ping(ctx).Err()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
