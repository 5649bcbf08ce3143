package domain

import (
	"errors"
	"time"
)

// ErrDuplicateAuthor indicates a request to track an author whose canonical
// URL is already stored. Callers surface this distinctly from generic
// failures.
var ErrDuplicateAuthor = errors.New("author already in database")

// Raw record field names as they come off the source site. The extractor
// produces exactly these keys; the cleaner checks them before validating.
const (
	FieldAuthorName     = "author_name"
	FieldAuthorURL      = "author_url"
	FieldAverageRating  = "average_rating"
	FieldRatingCount    = "rating_count"
	FieldReviewCount    = "review_count"
	FieldFollowers      = "goodreads_followers"
	FieldAuthorImageURL = "author_image_url"
	FieldShelvedCount   = "shelved_count"

	FieldBookTitle     = "book_title"
	FieldBookURLPath   = "book_url_path"
	FieldBigImageURL   = "big_image_url"
	FieldSmallImageURL = "small_image_url"
	FieldYearPublished = "year_published"
)

// AuthorFieldCount is the exact number of scalar keys a raw author carries.
const AuthorFieldCount = 8

// RawBook holds unvalidated string fields scraped from a book row and its
// detail page.
type RawBook map[string]string

// RawAuthor is the extractor's output for one author profile: scalar fields
// as scraped plus the raw book list. No value has been validated yet.
type RawAuthor struct {
	Fields map[string]string
	Books  []RawBook
}

// Author is a cleaned, typed author record ready for loading. ID is zero
// until the loader resolves it against storage.
type Author struct {
	ID       int64
	Name     string
	URL      string // canonical profile URL, the natural key
	ImageURL string
	Stats    AuthorStats
	Books    []Book
}

// AuthorStats is the snapshot of aggregate popularity numbers taken during
// one pipeline run.
type AuthorStats struct {
	AverageRating float64
	RatingCount   int
	ReviewCount   int
	Followers     int
	ShelvedCount  int
}

// Book is a cleaned book record. Bibliographic fields are immutable once
// persisted; Stats feeds the measurement table only.
type Book struct {
	ID            int64
	AuthorID      int64
	Title         string
	URL           string
	YearPublished int
	SmallImageURL string
	BigImageURL   string
	Stats         BookStats
}

// BookStats is the per-run popularity snapshot for a book.
type BookStats struct {
	AverageRating float64
	RatingCount   int
	ReviewCount   int
}

// AuthorMeasurement is one append-only time-series row for an author.
type AuthorMeasurement struct {
	ID            int64
	AuthorID      int64
	DateRecorded  time.Time
	RatingCount   int
	AverageRating float64
	ReviewCount   int
	ShelvedCount  int
}

// BookMeasurement is one append-only time-series row for a book.
type BookMeasurement struct {
	ID            int64
	BookID        int64
	DateRecorded  time.Time
	RatingCount   int
	AverageRating float64
	ReviewCount   int
}
