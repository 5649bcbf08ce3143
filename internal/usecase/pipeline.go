package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bookworm/internal/clean"
	"bookworm/internal/domain"
	"bookworm/internal/metrics"
	"bookworm/internal/ports"
	"bookworm/internal/validate"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source  ports.AuthorSource
	Store   ports.AuthorStore
	Cleaner *clean.Cleaner
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Pipeline sequences extract, clean and load for author units.
type Pipeline struct {
	source  ports.AuthorSource
	store   ports.AuthorStore
	cleaner *clean.Cleaner
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cleaner := deps.Cleaner
	if cleaner == nil {
		cleaner = clean.New(logger.With("component", "cleaner"), deps.Metrics.IncDropped)
	}
	return &Pipeline{
		source:  deps.Source,
		store:   deps.Store,
		cleaner: cleaner,
		logger:  logger,
		metrics: deps.Metrics,
	}
}

// Run executes one full pipeline pass for a single author URL. Any stage
// failure fails the whole run; nothing is retried in-process.
func (p *Pipeline) Run(ctx context.Context, authorURL string) error {
	if err := p.run(ctx, authorURL); err != nil {
		p.metrics.IncRun("fail")
		p.logger.Error("pipeline run failed", "url", authorURL, "error", err)
		return err
	}
	p.metrics.IncRun("success")
	return nil
}

func (p *Pipeline) run(ctx context.Context, authorURL string) error {
	raw, err := p.source.FetchAuthor(ctx, authorURL)
	if err != nil {
		return fmt.Errorf("extract %s: %w", authorURL, err)
	}
	p.logger.Info("author data extracted", "url", authorURL, "books", len(raw.Books))

	cleaned := p.cleaner.Authors([]domain.RawAuthor{raw})
	if len(cleaned) == 0 {
		return fmt.Errorf("author record from %s failed validation", authorURL)
	}

	if err := p.store.Load(ctx, cleaned); err != nil {
		return fmt.Errorf("load %s: %w", authorURL, err)
	}
	p.logger.Info("author data loaded", "url", authorURL)
	return nil
}

// RunAll processes every tracked author as an independent sequential unit.
// A failed unit is logged and does not abort the rest; the aggregate error
// marks the scheduled run failed when any unit failed.
func (p *Pipeline) RunAll(ctx context.Context) error {
	urls, err := p.store.AuthorURLs(ctx)
	if err != nil {
		return fmt.Errorf("list author urls: %w", err)
	}
	p.logger.Info("starting pipeline run", "authors", len(urls))

	var failed []error
	for _, url := range urls {
		if err := p.Run(ctx, url); err != nil {
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

// AddAuthor is the write path behind the "add author" request form: it
// scrapes only name and image, standardizes the URL and inserts the author
// row so the next full run picks them up. A URL already tracked returns
// domain.ErrDuplicateAuthor.
func (p *Pipeline) AddAuthor(ctx context.Context, rawURL string) error {
	canonical, err := validate.StandardizeAuthorURL(rawURL)
	if err != nil {
		return fmt.Errorf("author url: %w", err)
	}

	exists, err := p.store.HasAuthor(ctx, canonical)
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		return fmt.Errorf("%s: %w", canonical, domain.ErrDuplicateAuthor)
	}

	name, image, err := p.source.FetchProfile(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("fetch profile %s: %w", rawURL, err)
	}
	imageURL, err := validate.ImageURL(image)
	if err != nil {
		return fmt.Errorf("author image: %w", err)
	}

	if err := p.store.InsertAuthor(ctx, domain.Author{
		Name:     name,
		URL:      canonical,
		ImageURL: imageURL,
	}); err != nil {
		return fmt.Errorf("insert author: %w", err)
	}

	p.logger.Info("author added", "name", name, "url", canonical)
	return nil
}
