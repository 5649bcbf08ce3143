// Package clean turns raw scraped records into typed domain records,
// discarding whole records on any field failure. Failures are logged and
// non-fatal to the batch.
package clean

import (
	"fmt"
	"log/slog"

	"bookworm/internal/domain"
	"bookworm/internal/validate"
)

// authorKeys is the exact shape a raw author record must have before any
// field validator runs.
var authorKeys = []string{
	domain.FieldAuthorName,
	domain.FieldAuthorURL,
	domain.FieldAverageRating,
	domain.FieldRatingCount,
	domain.FieldReviewCount,
	domain.FieldFollowers,
	domain.FieldAuthorImageURL,
	domain.FieldShelvedCount,
}

// Cleaner validates raw records and reports drops.
type Cleaner struct {
	logger  *slog.Logger
	dropped func(kind string)
}

// New builds a Cleaner. dropped is invoked with "author" or "book" for every
// discarded record; pass nil when no counter is wired.
func New(logger *slog.Logger, dropped func(kind string)) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger, dropped: dropped}
}

// Authors cleans a batch of raw authors. Invalid authors (and invalid books
// within valid authors) are dropped; a valid author may survive with zero
// books.
func (c *Cleaner) Authors(raw []domain.RawAuthor) []domain.Author {
	cleaned := make([]domain.Author, 0, len(raw))
	for _, rawAuthor := range raw {
		author, err := c.Author(rawAuthor)
		if err != nil {
			c.drop("author", rawAuthor.Fields[domain.FieldAuthorName], err)
			continue
		}
		cleaned = append(cleaned, author)
	}
	return cleaned
}

// Author validates a single raw author record. The shape check runs before
// any field validator: a record with missing or extra keys is rejected
// outright. Book cleaning failures do not fail the author.
func (c *Cleaner) Author(raw domain.RawAuthor) (domain.Author, error) {
	if err := checkShape(raw.Fields); err != nil {
		return domain.Author{}, err
	}

	var (
		author domain.Author
		err    error
	)

	author.Name = raw.Fields[domain.FieldAuthorName]

	if author.URL, err = validate.StandardizeAuthorURL(raw.Fields[domain.FieldAuthorURL]); err != nil {
		return domain.Author{}, fmt.Errorf("%s: %w", domain.FieldAuthorURL, err)
	}
	if author.ImageURL, err = validate.ImageURL(raw.Fields[domain.FieldAuthorImageURL]); err != nil {
		return domain.Author{}, fmt.Errorf("%s: %w", domain.FieldAuthorImageURL, err)
	}
	if author.Stats.AverageRating, err = validate.Rating(raw.Fields[domain.FieldAverageRating]); err != nil {
		return domain.Author{}, fmt.Errorf("%s: %w", domain.FieldAverageRating, err)
	}
	if author.Stats.RatingCount, err = validate.Int(raw.Fields[domain.FieldRatingCount]); err != nil {
		return domain.Author{}, fmt.Errorf("%s: %w", domain.FieldRatingCount, err)
	}
	if author.Stats.ReviewCount, err = validate.Int(raw.Fields[domain.FieldReviewCount]); err != nil {
		return domain.Author{}, fmt.Errorf("%s: %w", domain.FieldReviewCount, err)
	}
	if author.Stats.Followers, err = validate.Int(raw.Fields[domain.FieldFollowers]); err != nil {
		return domain.Author{}, fmt.Errorf("%s: %w", domain.FieldFollowers, err)
	}
	if author.Stats.ShelvedCount, err = validate.Int(raw.Fields[domain.FieldShelvedCount]); err != nil {
		return domain.Author{}, fmt.Errorf("%s: %w", domain.FieldShelvedCount, err)
	}

	if author.Name == "" || author.URL == "" || author.ImageURL == "" {
		return domain.Author{}, fmt.Errorf("author %q still has empty fields after validation", author.Name)
	}

	author.Books = make([]domain.Book, 0, len(raw.Books))
	for _, rawBook := range raw.Books {
		book, err := c.Book(rawBook)
		if err != nil {
			c.drop("book", rawBook[domain.FieldBookTitle], err)
			continue
		}
		author.Books = append(author.Books, book)
	}

	return author, nil
}

// Book validates a single raw book record. Books are more loosely shaped
// than authors, so only field validation applies.
func (c *Cleaner) Book(raw domain.RawBook) (domain.Book, error) {
	var (
		book domain.Book
		err  error
	)

	if book.Title, err = validate.BookTitle(raw[domain.FieldBookTitle]); err != nil {
		return domain.Book{}, fmt.Errorf("%s: %w", domain.FieldBookTitle, err)
	}
	if book.URL, err = validate.URL(raw[domain.FieldBookURLPath]); err != nil {
		return domain.Book{}, fmt.Errorf("%s: %w", domain.FieldBookURLPath, err)
	}
	if book.YearPublished, err = validate.Year(raw[domain.FieldYearPublished]); err != nil {
		return domain.Book{}, fmt.Errorf("%s: %w", domain.FieldYearPublished, err)
	}
	if book.Stats.AverageRating, err = validate.Rating(raw[domain.FieldAverageRating]); err != nil {
		return domain.Book{}, fmt.Errorf("%s: %w", domain.FieldAverageRating, err)
	}
	if book.Stats.RatingCount, err = validate.Int(raw[domain.FieldRatingCount]); err != nil {
		return domain.Book{}, fmt.Errorf("%s: %w", domain.FieldRatingCount, err)
	}
	if book.Stats.ReviewCount, err = validate.Int(raw[domain.FieldReviewCount]); err != nil {
		return domain.Book{}, fmt.Errorf("%s: %w", domain.FieldReviewCount, err)
	}
	if book.BigImageURL, err = validate.ImageURL(raw[domain.FieldBigImageURL]); err != nil {
		return domain.Book{}, fmt.Errorf("%s: %w", domain.FieldBigImageURL, err)
	}
	if book.SmallImageURL, err = validate.ImageURL(raw[domain.FieldSmallImageURL]); err != nil {
		return domain.Book{}, fmt.Errorf("%s: %w", domain.FieldSmallImageURL, err)
	}

	return book, nil
}

func checkShape(fields map[string]string) error {
	if len(fields) != domain.AuthorFieldCount {
		return fmt.Errorf("author record has %d fields, want %d", len(fields), domain.AuthorFieldCount)
	}
	for _, key := range authorKeys {
		if _, ok := fields[key]; !ok {
			return fmt.Errorf("author record missing field %s", key)
		}
	}
	return nil
}

func (c *Cleaner) drop(kind, name string, err error) {
	if name == "" {
		name = "(unknown)"
	}
	c.logger.Warn("dropping invalid record", "kind", kind, "name", name, "error", err)
	if c.dropped != nil {
		c.dropped(kind)
	}
}
