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

	httpadapter "github.com/kirillkom/hrdocs-compliance/internal/adapters/http"
	mcpadapter "github.com/kirillkom/hrdocs-compliance/internal/adapters/mcp"
	"github.com/kirillkom/hrdocs-compliance/internal/bootstrap"
	"github.com/kirillkom/hrdocs-compliance/internal/config"
	"github.com/kirillkom/hrdocs-compliance/internal/observability/logging"
	"github.com/kirillkom/hrdocs-compliance/internal/observability/metrics"
)

const (
	serviceName = "api"
	version     = "0.1.0"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := httpadapter.LoadContract(ctx); err != nil {
		slog.Error("openapi_contract_invalid", "error", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Name: "hrdocs-api",
		RetryObserver: func(operation string, _ int, _ error) {
			httpMetrics.RecordRetry(serviceName, operation)
		},
	})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()
	httpMetrics.RecordUnknownRuleDocuments(serviceName, len(app.UnknownRuleDocuments))

	router := httpadapter.NewRouter(cfg, app.Compliance, app.Documents, app.Profiles, app.Exporter).
		WithMetrics(httpMetrics)
	if cfg.MCPEnabled {
		mcpServer := mcpadapter.NewServer("hrdocs-compliance", version, app.Compliance, func(tool, status string) {
			httpMetrics.RecordMCPToolCall(serviceName, tool, status)
		})
		router = router.WithMCPHandler(mcpServer.Handler())
	}

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening",
			"port", cfg.APIPort,
			"store_driver", cfg.StoreDriver,
			"events_enabled", cfg.EventsEnabled,
			"mcp_enabled", cfg.MCPEnabled,
			"catalog_entries", app.Engine.Catalog().Len(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
