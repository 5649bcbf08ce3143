// Package storage reconciles cleaned records against the Postgres schema
// and appends measurement history.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"bookworm/internal/domain"
	"bookworm/internal/ports"
)

//go:embed schema.sql
var schema string

// ErrAuthorIDNotFound indicates a cleaned author could not be resolved to a
// stored id after the insert that should have produced one. The affected
// author's books and measurements are skipped; other authors proceed.
var ErrAuthorIDNotFound = errors.New("unable to find author id with name provided")

const uniqueViolation = "23505"

// Store implements ports.AuthorStore on Postgres.
type Store struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	clock  func() time.Time
	logger *slog.Logger
}

var _ ports.AuthorStore = (*Store)(nil)

// New wires a sql.DB implementation.
func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		clock:  time.Now,
		logger: logger,
	}
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Load reconciles cleaned authors against storage and writes the minimal
// set of rows in strict order: author, book, author_measurement,
// book_measurement. Each table batch commits on its own; a later failure
// never rolls earlier tables back.
func (s *Store) Load(ctx context.Context, authors []domain.Author) error {
	if len(authors) == 0 {
		return nil
	}

	existing, err := s.fetchAuthors(ctx)
	if err != nil {
		return err
	}

	changes := partitionAuthors(authors, existing)
	s.logger.Info("reconciled authors",
		"new", len(changes.New),
		"image_updates", len(changes.ImageUpdates),
		"unchanged", len(changes.Unchanged),
	)

	if err := s.insertAuthors(ctx, changes.New); err != nil {
		return err
	}
	for _, author := range changes.ImageUpdates {
		if err := s.updateAuthorImage(ctx, author.ID, author.ImageURL); err != nil {
			return err
		}
	}

	now := s.clock()
	var skipped []error
	for _, author := range authors {
		id, err := s.resolveAuthorID(ctx, author)
		if errors.Is(err, ErrAuthorIDNotFound) {
			s.logger.Error("skipping author unit", "author", author.Name, "error", err)
			skipped = append(skipped, fmt.Errorf("author %s: %w", author.Name, err))
			continue
		}
		if err != nil {
			return err
		}

		author.ID = id
		for i := range author.Books {
			author.Books[i].AuthorID = id
		}

		bookIDs, err := s.loadBooks(ctx, author)
		if err != nil {
			return err
		}
		if err := s.insertAuthorMeasurement(ctx, author, now); err != nil {
			return err
		}
		if err := s.insertBookMeasurements(ctx, author.Books, bookIDs, now); err != nil {
			return err
		}
	}

	return errors.Join(skipped...)
}

// AuthorURLs lists the canonical URLs of every tracked author.
func (s *Store) AuthorURLs(ctx context.Context) ([]string, error) {
	query, args, err := s.sb.Select("author_url").From("author").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build author urls query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query author urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan author url: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate author urls: %w", err)
	}
	return urls, nil
}

// HasAuthor reports whether a canonical URL is already tracked.
func (s *Store) HasAuthor(ctx context.Context, canonicalURL string) (bool, error) {
	query, args, err := s.sb.Select("COUNT(*)").From("author").
		Where(sq.Eq{"author_url": canonicalURL}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build author count query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("count author: %w", err)
	}
	return count > 0, nil
}

// InsertAuthor adds a single author row. A unique violation on the
// canonical URL surfaces as ErrDuplicateAuthor.
func (s *Store) InsertAuthor(ctx context.Context, author domain.Author) error {
	query, args, err := s.sb.Insert("author").
		Columns("author_name", "author_url", "author_image_url").
		Values(author.Name, author.URL, author.ImageURL).ToSql()
	if err != nil {
		return fmt.Errorf("build author insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("%s: %w", author.URL, domain.ErrDuplicateAuthor)
		}
		return fmt.Errorf("insert author: %w", err)
	}
	return nil
}

// TrackedAuthors lists tracked authors with their resolved ids.
func (s *Store) TrackedAuthors(ctx context.Context) ([]domain.Author, error) {
	rows, err := s.fetchAuthors(ctx)
	if err != nil {
		return nil, err
	}

	authors := make([]domain.Author, 0, len(rows))
	for _, row := range rows {
		authors = append(authors, domain.Author{
			ID:       row.ID,
			Name:     row.Name,
			URL:      row.URL,
			ImageURL: row.ImageURL,
		})
	}
	return authors, nil
}

// RecentAuthorMeasurements returns up to limit measurement rows for an
// author, newest first.
func (s *Store) RecentAuthorMeasurements(ctx context.Context, authorID int64, limit int) ([]domain.AuthorMeasurement, error) {
	query, args, err := s.sb.
		Select("author_measurement_id", "author_id", "date_recorded",
			"rating_count", "average_rating", "review_count", "shelved_count").
		From("author_measurement").
		Where(sq.Eq{"author_id": authorID}).
		OrderBy("date_recorded DESC").
		Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build measurements query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	var measurements []domain.AuthorMeasurement
	for rows.Next() {
		var m domain.AuthorMeasurement
		if err := rows.Scan(&m.ID, &m.AuthorID, &m.DateRecorded,
			&m.RatingCount, &m.AverageRating, &m.ReviewCount, &m.ShelvedCount); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		measurements = append(measurements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurements: %w", err)
	}
	return measurements, nil
}

func (s *Store) fetchAuthors(ctx context.Context) ([]existingAuthor, error) {
	query, args, err := s.sb.
		Select("author_id", "author_name", "author_url", "author_image_url").
		From("author").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build authors query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	var authors []existingAuthor
	for rows.Next() {
		var row existingAuthor
		if err := rows.Scan(&row.ID, &row.Name, &row.URL, &row.ImageURL); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authors: %w", err)
	}
	return authors, nil
}

func (s *Store) insertAuthors(ctx context.Context, authors []domain.Author) error {
	if len(authors) == 0 {
		return nil
	}

	builder := s.sb.Insert("author").
		Columns("author_name", "author_url", "author_image_url")
	for _, author := range authors {
		builder = builder.Values(author.Name, author.URL, author.ImageURL)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build authors insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert authors: %w", err)
	}

	s.logger.Info("inserted authors", "count", len(authors))
	return nil
}

func (s *Store) updateAuthorImage(ctx context.Context, authorID int64, imageURL string) error {
	query, args, err := s.sb.Update("author").
		Set("author_image_url", imageURL).
		Where(sq.Eq{"author_id": authorID}).ToSql()
	if err != nil {
		return fmt.Errorf("build author update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update author image: %w", err)
	}
	return nil
}

// resolveAuthorID looks the author up by name and disambiguates by
// canonical URL when several stored rows share the name. Zero usable
// matches fail loudly rather than guessing.
func (s *Store) resolveAuthorID(ctx context.Context, author domain.Author) (int64, error) {
	query, args, err := s.sb.Select("author_id", "author_url").From("author").
		Where(sq.Eq{"author_name": author.Name}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build author id query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("query author id: %w", err)
	}
	defer rows.Close()

	type match struct {
		id  int64
		url string
	}
	var matches []match
	for rows.Next() {
		var m match
		if err := rows.Scan(&m.id, &m.url); err != nil {
			return 0, fmt.Errorf("scan author id: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate author ids: %w", err)
	}

	switch {
	case len(matches) == 0:
		return 0, ErrAuthorIDNotFound
	case len(matches) == 1:
		return matches[0].id, nil
	}
	for _, m := range matches {
		if m.url == author.URL {
			return m.id, nil
		}
	}
	return 0, ErrAuthorIDNotFound
}

// loadBooks inserts the author's not-yet-stored books and returns the id of
// every stored book keyed by (title, url).
func (s *Store) loadBooks(ctx context.Context, author domain.Author) (map[bookKey]int64, error) {
	existing, err := s.fetchBooks(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	fresh := newBooks(author.Books, existing)
	if len(fresh) > 0 {
		builder := s.sb.Insert("book").
			Columns("author_id", "book_title", "book_url_path",
				"year_published", "small_image_url", "big_image_url")
		for _, book := range fresh {
			builder = builder.Values(book.AuthorID, book.Title, book.URL,
				book.YearPublished, book.SmallImageURL, book.BigImageURL)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build books insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("insert books: %w", err)
		}
		s.logger.Info("inserted books", "author", author.Name, "count", len(fresh))

		// refetch to pick up the ids the insert produced
		existing, err = s.fetchBooks(ctx, author.ID)
		if err != nil {
			return nil, err
		}
	}
	return existing, nil
}

func (s *Store) fetchBooks(ctx context.Context, authorID int64) (map[bookKey]int64, error) {
	query, args, err := s.sb.Select("book_id", "book_title", "book_url_path").
		From("book").Where(sq.Eq{"author_id": authorID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build books query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := make(map[bookKey]int64)
	for rows.Next() {
		var (
			id         int64
			title, url string
		)
		if err := rows.Scan(&id, &title, &url); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books[bookKey{Title: title, URL: url}] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func (s *Store) insertAuthorMeasurement(ctx context.Context, author domain.Author, now time.Time) error {
	query, args, err := s.sb.Insert("author_measurement").
		Columns("author_id", "date_recorded", "rating_count",
			"average_rating", "review_count", "shelved_count").
		Values(author.ID, now, author.Stats.RatingCount,
			author.Stats.AverageRating, author.Stats.ReviewCount, author.Stats.ShelvedCount).ToSql()
	if err != nil {
		return fmt.Errorf("build author measurement insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert author measurement: %w", err)
	}
	return nil
}

func (s *Store) insertBookMeasurements(ctx context.Context, books []domain.Book, ids map[bookKey]int64, now time.Time) error {
	if len(books) == 0 {
		return nil
	}

	builder := s.sb.Insert("book_measurement").
		Columns("book_id", "date_recorded", "rating_count", "average_rating", "review_count")
	for _, book := range books {
		id, ok := ids[bookKey{Title: book.Title, URL: book.URL}]
		if !ok {
			return fmt.Errorf("book %q: no stored id after insert", book.Title)
		}
		builder = builder.Values(id, now, book.Stats.RatingCount,
			book.Stats.AverageRating, book.Stats.ReviewCount)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build book measurements insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert book measurements: %w", err)
	}
	return nil
}
