package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/hrdocs-compliance/internal/bootstrap"
	"github.com/kirillkom/hrdocs-compliance/internal/config"
	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/observability/logging"
	"github.com/kirillkom/hrdocs-compliance/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.EventsEnabled {
		slog.Error("worker_requires_events", "detail", "set EVENTS_ENABLED=true")
		os.Exit(1)
	}
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("worker_memory_store", "detail", "the worker cannot see documents saved by the api process")
	}

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Name: "hrdocs-worker"})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Events.SubscribeDocumentSaved(ctx, func(handlerCtx context.Context, event domain.DocumentSavedEvent) error {
		recomputeCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		if !event.SavedAt.IsZero() {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(event.SavedAt))
		}
		workerMetrics.StartEvent()
		start := time.Now()
		status, err := app.Compliance.Recompute(recomputeCtx, event)
		workerMetrics.FinishEvent(serviceName, time.Since(start), err)
		if status != nil {
			workerMetrics.ObserveScore(serviceName, status.Score)
		}
		return err
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
