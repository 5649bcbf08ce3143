package ports

import (
	"context"
	"time"

	"bookworm/internal/domain"
)

// AuthorSource pulls raw author records from the source site.
type AuthorSource interface {
	// FetchAuthor scrapes the full author unit: profile, book list and every
	// book detail page.
	FetchAuthor(ctx context.Context, authorURL string) (domain.RawAuthor, error)
	// FetchProfile scrapes only the author's display name and image URL.
	FetchProfile(ctx context.Context, authorURL string) (name, imageURL string, err error)
}

// AuthorStore reconciles cleaned records against storage and appends
// measurement history. Load is the only write API the core exposes.
type AuthorStore interface {
	// Load upserts authors and their books, then appends one measurement row
	// per author and per surviving book.
	Load(ctx context.Context, authors []domain.Author) error
	// AuthorURLs lists the canonical URLs of every tracked author.
	AuthorURLs(ctx context.Context) ([]string, error)
	// HasAuthor reports whether a canonical URL is already tracked.
	HasAuthor(ctx context.Context, canonicalURL string) (bool, error)
	// InsertAuthor adds a single author row without books or measurements.
	InsertAuthor(ctx context.Context, author domain.Author) error
	// TrackedAuthors lists tracked authors with their resolved ids.
	TrackedAuthors(ctx context.Context) ([]domain.Author, error)
	// RecentAuthorMeasurements returns up to limit rows for an author,
	// newest first.
	RecentAuthorMeasurements(ctx context.Context, authorID int64, limit int) ([]domain.AuthorMeasurement, error)
}

// ReportSender delivers a rendered tracking report to subscribers.
type ReportSender interface {
	Send(ctx context.Context, subject, body string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
