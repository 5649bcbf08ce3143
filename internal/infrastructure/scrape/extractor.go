// Package scrape fetches author and book pages from the source site and
// turns them into raw string records. No validation happens here; every
// scalar leaves as scraped, thousands separators and all.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bookworm/internal/config"
	"bookworm/internal/domain"
	"bookworm/internal/metrics"
	"bookworm/internal/ports"
)

// Extractor crawls an author profile, the paginated book list and each
// book's detail page.
type Extractor struct {
	client    *http.Client
	baseURL   string
	perPage   int
	userAgent string
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

var _ ports.AuthorSource = (*Extractor)(nil)

// New wires an HTTP client; a nil client gets the configured timeout.
func New(cfg config.ScraperConfig, client *http.Client, logger *slog.Logger, m *metrics.Metrics) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		client:    client,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		perPage:   cfg.PerPage,
		userAgent: cfg.UserAgent,
		logger:    logger,
		metrics:   m,
	}
}

// FetchAuthor produces the raw record for one author profile URL. Any
// missing expected node is a hard failure for the whole author.
func (e *Extractor) FetchAuthor(ctx context.Context, authorURL string) (domain.RawAuthor, error) {
	profile, err := e.fetchDocument(ctx, authorURL, "profile")
	if err != nil {
		return domain.RawAuthor{}, err
	}

	fields, listURL, err := e.parseProfile(profile, authorURL)
	if err != nil {
		return domain.RawAuthor{}, err
	}

	list, err := e.fetchDocument(ctx, listURL, "book list")
	if err != nil {
		return domain.RawAuthor{}, err
	}

	shelved, err := parseShelvedCount(list)
	if err != nil {
		return domain.RawAuthor{}, err
	}
	fields[domain.FieldShelvedCount] = shelved

	books, err := e.parseBookList(ctx, list)
	if err != nil {
		return domain.RawAuthor{}, err
	}

	e.logger.Debug("author extracted", "url", authorURL, "books", len(books))
	return domain.RawAuthor{Fields: fields, Books: books}, nil
}

// FetchProfile scrapes only the author's name and image, enough for the
// add-author request path.
func (e *Extractor) FetchProfile(ctx context.Context, authorURL string) (string, string, error) {
	profile, err := e.fetchDocument(ctx, authorURL, "profile")
	if err != nil {
		return "", "", err
	}

	name, err := authorName(profile)
	if err != nil {
		return "", "", err
	}
	image, err := attrOf(profile.Selection, `img[itemprop="image"]`, "src", "author profile")
	if err != nil {
		return "", "", err
	}
	return name, image, nil
}

func (e *Extractor) parseProfile(doc *goquery.Document, authorURL string) (map[string]string, string, error) {
	name, err := authorName(doc)
	if err != nil {
		return nil, "", err
	}

	aggregate := doc.Find("div.hreview-aggregate").First()
	if aggregate.Length() == 0 {
		return nil, "", NodeError{Page: "author profile", Node: "div.hreview-aggregate"}
	}
	average, err := textOf(aggregate, "span.average", "author profile")
	if err != nil {
		return nil, "", err
	}
	votes, err := textOf(aggregate, "span.votes", "author profile")
	if err != nil {
		return nil, "", err
	}
	count, err := textOf(aggregate, "span.count", "author profile")
	if err != nil {
		return nil, "", err
	}

	header, err := textOf(doc.Selection, "div.h2Container.gradientHeaderContainer h2.brownBackground", "author profile")
	if err != nil {
		return nil, "", err
	}
	followers, err := followerCount(header)
	if err != nil {
		return nil, "", err
	}

	image, err := attrOf(doc.Selection, `img[itemprop="image"]`, "src", "author profile")
	if err != nil {
		return nil, "", err
	}

	listHref, err := attrOf(doc.Selection, `a[href*="/author/list"]`, "href", "author profile")
	if err != nil {
		return nil, "", err
	}
	listURL := fmt.Sprintf("%s%s?page=1&per_page=%d", e.baseURL, listHref, e.perPage)

	fields := map[string]string{
		domain.FieldAuthorName:     name,
		domain.FieldAuthorURL:      authorURL,
		domain.FieldAverageRating:  average,
		domain.FieldRatingCount:    votes,
		domain.FieldReviewCount:    count,
		domain.FieldFollowers:      followers,
		domain.FieldAuthorImageURL: image,
	}
	return fields, listURL, nil
}

func (e *Extractor) parseBookList(ctx context.Context, list *goquery.Document) ([]domain.RawBook, error) {
	var (
		books    []domain.RawBook
		parseErr error
	)

	list.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		book, err := e.parseBookRow(ctx, row)
		if err != nil {
			parseErr = err
			return false
		}
		books = append(books, book)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return books, nil
}

func (e *Extractor) parseBookRow(ctx context.Context, row *goquery.Selection) (domain.RawBook, error) {
	title, err := textOf(row, `span[itemprop="name"]`, "book list")
	if err != nil {
		return nil, err
	}
	path, err := attrOf(row, `a[itemprop="url"]`, "href", "book list")
	if err != nil {
		return nil, err
	}
	bookURL := e.baseURL + path

	smallImage, err := attrOf(row, "img.bookCover", "src", "book list")
	if err != nil {
		return nil, err
	}

	minirating, err := textOf(row, "span.minirating", "book list")
	if err != nil {
		return nil, err
	}
	average, err := bookAverageRating(minirating)
	if err != nil {
		return nil, err
	}
	ratings, err := bookRatingCount(minirating)
	if err != nil {
		return nil, err
	}

	yearBlob, err := textOf(row, "span.greyText.smallText.uitext", "book list")
	if err != nil {
		return nil, err
	}
	year, err := yearPublishedToken(yearBlob)
	if err != nil {
		return nil, err
	}

	bigImage, reviews, err := e.fetchBookDetail(ctx, bookURL)
	if err != nil {
		return nil, err
	}

	return domain.RawBook{
		domain.FieldBookTitle:     title,
		domain.FieldBookURLPath:   bookURL,
		domain.FieldBigImageURL:   bigImage,
		domain.FieldSmallImageURL: smallImage,
		domain.FieldReviewCount:   reviews,
		domain.FieldYearPublished: year,
		domain.FieldAverageRating: average,
		domain.FieldRatingCount:   ratings,
	}, nil
}

func (e *Extractor) fetchBookDetail(ctx context.Context, bookURL string) (string, string, error) {
	detail, err := e.fetchDocument(ctx, bookURL, "book detail")
	if err != nil {
		return "", "", err
	}

	bigImage, err := attrOf(detail.Selection, "div.BookCover__image img", "src", "book detail")
	if err != nil {
		return "", "", err
	}

	label, err := attrOf(detail.Selection, "div.RatingStatistics__meta", "aria-label", "book detail")
	if err != nil {
		return "", "", err
	}
	reviews, err := bookReviewCount(label)
	if err != nil {
		return "", "", err
	}
	return bigImage, reviews, nil
}

func parseShelvedCount(list *goquery.Document) (string, error) {
	left := list.Find("div.leftContainer").First()
	if left.Length() == 0 {
		return "", NodeError{Page: "book list", Node: "div.leftContainer"}
	}
	summary := left.Find("div").First()
	if summary.Length() == 0 {
		return "", NodeError{Page: "book list", Node: "div.leftContainer div"}
	}
	return shelvedCountToken(summary.Text())
}

func authorName(doc *goquery.Document) (string, error) {
	return textOf(doc.Selection, "h1.authorName", "author profile")
}

func (e *Extractor) fetchDocument(ctx context.Context, pageURL, page string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	e.metrics.IncRequest(page)
	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	e.metrics.ObserveDuration(time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, StatusError{URL: pageURL, Code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

func textOf(scope *goquery.Selection, selector, page string) (string, error) {
	sel := scope.Find(selector).First()
	if sel.Length() == 0 {
		return "", NodeError{Page: page, Node: selector}
	}
	return strings.TrimSpace(sel.Text()), nil
}

func attrOf(scope *goquery.Selection, selector, attr, page string) (string, error) {
	sel := scope.Find(selector).First()
	if sel.Length() == 0 {
		return "", NodeError{Page: page, Node: selector}
	}
	value, ok := sel.Attr(attr)
	if !ok {
		return "", NodeError{Page: page, Node: selector + "[" + attr + "]"}
	}
	return value, nil
}
