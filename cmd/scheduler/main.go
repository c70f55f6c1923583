package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nurture_backend/internal/dispatch"
	"nurture_backend/internal/email"
	"nurture_backend/internal/enrollments"
	"nurture_backend/internal/events"
	"nurture_backend/internal/leads"
	"nurture_backend/internal/scheduler"
	"nurture_backend/internal/sequences"
	"nurture_backend/internal/tracking"
	"nurture_backend/internal/unsubscribe"
	"nurture_backend/internal/webhook"
	"nurture_backend/platform/config"
	"nurture_backend/platform/db"
	"nurture_backend/platform/logger"
	"nurture_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	sender := email.NewSender(cfg)
	val := validator.New()

	// Worker-side dispatch wiring (no HTTP handlers required).
	leadsRepo := leads.New(pool)
	sequencesModule := sequences.NewModule(pool, val, log)
	enrollmentsModule := enrollments.NewModule(pool, sequencesModule.Repository(), leadsRepo, val, log)
	trackingModule := tracking.NewModule(cfg, enrollmentsModule.Repository(), log)
	unsubscribeModule := unsubscribe.NewModule(cfg, leadsRepo, enrollmentsModule.Repository(), eventBus, log)

	// Webhook broadcaster relays dispatch events raised in this process.
	if _, err := webhook.NewModule(cfg, eventBus, log); err != nil {
		log.Error("failed to initialize webhook module", "error", err)
		panic("failed to initialize webhook module: " + err.Error())
	}

	engine := dispatch.New(
		cfg,
		enrollmentsModule.Repository(),
		sequencesModule.Repository(),
		leadsRepo,
		sender,
		trackingModule.URLs(),
		unsubscribeModule.Codec(),
		eventBus,
		log,
	)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	tickLoop := scheduler.NewTickLoop(cfg, client, log)
	go tickLoop.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, engine, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
