package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/hrdocs-compliance/internal/config"
	"github.com/kirillkom/hrdocs-compliance/internal/core/compliance"
	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/core/ports"
	"github.com/kirillkom/hrdocs-compliance/internal/core/usecase"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/extractor"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/queue/nats"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/repository/memory"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/resilience"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/storage/localfs"
)

// Options carries process-specific hooks into the shared wiring.
type Options struct {
	// Name identifies the process to the broker.
	Name string
	// RetryObserver sees every retried store or broker call.
	RetryObserver resilience.RetryObserver
}

type App struct {
	Config config.Config

	Engine     *compliance.Engine
	Compliance *usecase.ComplianceUseCase
	Documents  *usecase.DocumentUseCase
	Profiles   *usecase.ProfileUseCase
	Exporter   *xlsx.Exporter

	// Events is nil when EVENTS_ENABLED=false.
	Events ports.EventSubscriber

	// UnknownRuleDocuments lists rule ids missing from the catalog.
	UnknownRuleDocuments []domain.DocumentTypeID

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	engine, err := compliance.LoadEngine(cfg.CatalogPath, cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load compliance tables: %w", err)
	}
	unknown := engine.Rules().UnknownDocuments(engine.Catalog())
	if len(unknown) > 0 {
		slog.Warn("rules_reference_unknown_documents", "count", len(unknown), "document_ids", unknown)
	}

	var (
		docs     ports.DocumentRepository
		profiles ports.ProfileRepository
		closers  []func()
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		docs, profiles = store, store
		slog.Warn("store_driver_memory", "detail", "documents are lost on restart and not shared between processes")
	default:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewDocumentRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		docs, profiles = repo, postgres.NewProfileRepository(db)
		closers = append(closers, closeDB(db))
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		runClosers(closers)
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	saveExecutor := resilience.NewExecutor(saveRetryConfig(cfg)).WithRetryObserver(opts.RetryObserver)

	var (
		publisher ports.EventPublisher
		events    ports.EventSubscriber
	)
	if cfg.EventsEnabled {
		brokerExecutor := resilience.NewExecutor(brokerRetryConfig(cfg)).WithRetryObserver(opts.RetryObserver)
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			Name:               opts.Name,
			ResilienceExecutor: brokerExecutor,
		})
		if err != nil {
			runClosers(closers)
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		publisher, events = queue, queue
		closers = append(closers, queue.Close)
	}

	textExtractor := extractor.NewRouter().
		Register(plaintext.NewExtractor(), "text/plain", "text/markdown", "text/x-markdown").
		Register(pdf.NewExtractor(cfg.ImportMaxBytes), "application/pdf")

	return &App{
		Config: cfg,

		Engine:     engine,
		Compliance: usecase.NewComplianceUseCase(engine, profiles, docs),
		Documents: usecase.NewDocumentUseCase(docs, engine.Catalog(), usecase.DocumentDeps{
			Storage:   storage,
			Extractor: textExtractor,
			Publisher: publisher,
			Retrier:   saveExecutor,
		}),
		Profiles: usecase.NewProfileUseCase(profiles),
		Exporter: xlsx.NewExporter(),
		Events:   events,

		UnknownRuleDocuments: unknown,

		closeFn: func() { runClosers(closers) },
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func saveRetryConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.SaveRetryMaxAttempts
	out.RetryInitialBackoff = cfg.SaveRetryBackoff
	out.RetryMaxBackoff = 16 * cfg.SaveRetryBackoff
	out.BreakerEnabled = cfg.BreakerEnabled
	return out
}

func brokerRetryConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = 3
	out.RetryInitialBackoff = 100 * time.Millisecond
	out.RetryMaxBackoff = 2 * time.Second
	out.BreakerEnabled = cfg.BreakerEnabled
	return out
}

func closeDB(db *sql.DB) func() {
	return func() { _ = db.Close() }
}

// runClosers releases resources in reverse acquisition order.
func runClosers(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
