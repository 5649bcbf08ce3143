package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookworm/internal/clean"
	"bookworm/internal/config"
	"bookworm/internal/infrastructure/report"
	"bookworm/internal/infrastructure/scheduler"
	"bookworm/internal/infrastructure/scrape"
	"bookworm/internal/infrastructure/storage"
	"bookworm/internal/logging"
	"bookworm/internal/metrics"
	"bookworm/internal/ports"
	"bookworm/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	store    *storage.Store
	metrics  *metrics.Metrics
	pipeline *usecase.Pipeline
	reporter *usecase.Reporter
}

// New builds a runnable application instance and opens the database.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	m := metrics.New()
	store := storage.New(db, baseLogger.With("component", "storage"))
	extractor := scrape.New(cfg.Scraper, nil, baseLogger.With("component", "scraper"), m)
	cleaner := clean.New(baseLogger.With("component", "cleaner"), m.IncDropped)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:  extractor,
		Store:   store,
		Cleaner: cleaner,
		Logger:  baseLogger.With("component", "pipeline"),
		Metrics: m,
	})

	var reporter *usecase.Reporter
	if len(cfg.SMTP.Recipients) > 0 {
		var sender ports.ReportSender = report.NewMailer(cfg.SMTP)
		reporter = usecase.NewReporter(store, sender, baseLogger.With("component", "reporter"))
	}

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		db:       db,
		store:    store,
		metrics:  m,
		pipeline: pipeline,
		reporter: reporter,
	}, nil
}

// RunOnce executes a single pipeline pass: one author URL when given,
// otherwise every tracked author.
func (a *Application) RunOnce(ctx context.Context, authorURL string) error {
	defer a.Close()

	if authorURL != "" {
		return a.pipeline.Run(ctx, authorURL)
	}
	return a.pipeline.RunAll(ctx)
}

// AddAuthor handles a single add-author request and exits.
func (a *Application) AddAuthor(ctx context.Context, rawURL string) error {
	defer a.Close()
	return a.pipeline.AddAuthor(ctx, rawURL)
}

// Run starts the recurring schedule (and the metrics endpoint when
// configured) and blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.Close()

	var metricsServer *http.Server
	if a.cfg.Metrics.Addr != "" {
		metricsServer = &http.Server{
			Addr:    a.cfg.Metrics.Addr,
			Handler: promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
		a.logger.Info("metrics server enabled", "addr", a.cfg.Metrics.Addr)
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval)
	sched := usecase.NewScheduler(driver, a.pipeline, a.reporter, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	if err := sched.Stop(context.Background()); err != nil {
		a.logger.Error("scheduler stop failed", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(context.Background()); err != nil {
			a.logger.Error("metrics server shutdown failed", "error", err)
		}
	}
	return nil
}

// EnsureSchema creates the database tables when missing.
func (a *Application) EnsureSchema(ctx context.Context) error {
	return a.store.EnsureSchema(ctx)
}

// Close releases the database connection. Run, RunOnce and AddAuthor close
// on their own; callers only need it when none of them ran.
func (a *Application) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("close database", "error", err)
	} else {
		a.logger.Info("disconnected from database")
	}
}
