package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghuser/orderdesk/pkg/app"
	"github.com/ghuser/orderdesk/pkg/cache"
	"github.com/ghuser/orderdesk/pkg/config"
	"github.com/ghuser/orderdesk/pkg/database"
	"github.com/ghuser/orderdesk/pkg/events"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/storage"
	"github.com/ghuser/orderdesk/pkg/telemetry"
	"github.com/ghuser/orderdesk/pkg/workflows"
	accountsvcs "github.com/ghuser/orderdesk/services/account/application/services"
	exportsvcs "github.com/ghuser/orderdesk/services/export/application/services"
	exportevents "github.com/ghuser/orderdesk/services/export/domain/events"
	exportqueue "github.com/ghuser/orderdesk/services/export/infrastructure/queue"
	ordersvcs "github.com/ghuser/orderdesk/services/order/application/services"
	orderevents "github.com/ghuser/orderdesk/services/order/domain/events"
	orderqueue "github.com/ghuser/orderdesk/services/order/infrastructure/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer tel.Shutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DefinitionDatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize file storage", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	appConfig := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
		Storage:  store,
		Metrics:  tel.Metrics,
	}
	orders := ordersvcs.New(appConfig)

	if err := registerSubscribers(ctx, appConfig, orders); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	if cfg.TemporalEnabled {
		stopMaintenance, err := startMaintenance(ctx, appConfig, orders)
		if err != nil {
			log.Error("failed to start maintenance worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer stopMaintenance()
	}

	workerID := workerName()
	go runHeartbeat(ctx, cache.NewWorkerHeartbeat(redisClient, cache.HeartbeatTTL), workerID, log)
	go runSweeper(ctx, orders.Sweeper, cfg.SweepInterval, log)
	log.Info("worker started", "worker_id", workerID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires the work queue topics to their handlers.
// Handlers must be idempotent: delivery is at least once.
func registerSubscribers(ctx context.Context, a *app.Application, orders *ordersvcs.Services) error {
	exports := exportsvcs.New(a)

	handlers := map[string]events.Handler{
		orderevents.TopicProcessOrder:    orderqueue.ProcessOrderHandler(orders.Processor, a.Logger),
		exportevents.TopicGenerateExport: exportqueue.GenerateExportHandler(exports.Generator, a.Logger),
	}

	topics := make([]string, 0, len(handlers))
	for topic, h := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, h)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go drain(ctx, a.Logger, topic, errCh)
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// drain reports subscriber errors so the channel never blocks.
func drain(ctx context.Context, log logger.Logger, topic string, errCh <-chan error) {
	for err := range errCh {
		log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
		telemetry.CaptureError(err, map[string]string{"topic": topic})
	}
}

// startMaintenance connects to Temporal and runs the maintenance workflow
// worker next to the event subscribers.
func startMaintenance(ctx context.Context, a *app.Application, orders *ordersvcs.Services) (func(), error) {
	tc, err := workflows.NewTemporalClient(ctx, a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	stop, err := tc.StartMaintenance(ctx, a.Config.ReconcileCron, &workflows.Activities{
		Sweeper:    orders.Sweeper,
		Reconciler: accountsvcs.New(a).Blocking,
		Log:        a.Logger,
	})
	if err != nil {
		tc.Close()
		return nil, err
	}
	return func() {
		stop()
		tc.Close()
	}, nil
}

// runHeartbeat refreshes the worker heartbeat read by the API health check.
func runHeartbeat(ctx context.Context, hb *cache.WorkerHeartbeat, workerID string, log logger.Logger) {
	ticker := time.NewTicker(cache.HeartbeatInterval)
	defer ticker.Stop()

	for {
		if err := hb.Beat(ctx, workerID); err != nil && ctx.Err() == nil {
			log.WarnContext(ctx, "heartbeat failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runSweeper fails orders stuck in processing every interval until ctx is
// cancelled.
func runSweeper(ctx context.Context, sweeper *ordersvcs.Sweeper, interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper shutting down")
			return
		case <-ticker.C:
			if _, err := sweeper.Sweep(ctx); err != nil && ctx.Err() == nil {
				log.ErrorContext(ctx, "stuck order sweep failed", "error", err)
				telemetry.CaptureError(err, map[string]string{"job": "sweeper"})
			}
		}
	}
}

func workerName() string {
	host, err := os.Hostname()
	if err != nil {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
