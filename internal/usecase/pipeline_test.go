package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"bookworm/internal/domain"
)

type fakeSource struct {
	raw          map[string]domain.RawAuthor
	err          error
	profileName  string
	profileImage string
	profileErr   error
	profileCalls int
}

func (f *fakeSource) FetchAuthor(_ context.Context, authorURL string) (domain.RawAuthor, error) {
	if f.err != nil {
		return domain.RawAuthor{}, f.err
	}
	raw, ok := f.raw[authorURL]
	if !ok {
		return domain.RawAuthor{}, errors.New("unexpected url " + authorURL)
	}
	return raw, nil
}

func (f *fakeSource) FetchProfile(_ context.Context, _ string) (string, string, error) {
	f.profileCalls++
	return f.profileName, f.profileImage, f.profileErr
}

type fakeStore struct {
	urls         []string
	has          bool
	hasErr       error
	loadErr      error
	loads        [][]domain.Author
	inserted     []domain.Author
	authors      []domain.Author
	measurements map[int64][]domain.AuthorMeasurement
}

func (f *fakeStore) Load(_ context.Context, authors []domain.Author) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loads = append(f.loads, authors)
	return nil
}

func (f *fakeStore) AuthorURLs(_ context.Context) ([]string, error) { return f.urls, nil }

func (f *fakeStore) HasAuthor(_ context.Context, _ string) (bool, error) { return f.has, f.hasErr }

func (f *fakeStore) InsertAuthor(_ context.Context, author domain.Author) error {
	f.inserted = append(f.inserted, author)
	return nil
}

func (f *fakeStore) TrackedAuthors(_ context.Context) ([]domain.Author, error) {
	return f.authors, nil
}

func (f *fakeStore) RecentAuthorMeasurements(_ context.Context, authorID int64, limit int) ([]domain.AuthorMeasurement, error) {
	rows := f.measurements[authorID]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

const (
	rawAuthorURL = "https://example.test/author/show/153394.Suzanne_Collins"
	canonicalURL = "https://example.test/author/show/153394"
)

func validRawAuthor() domain.RawAuthor {
	return domain.RawAuthor{
		Fields: map[string]string{
			domain.FieldAuthorName:     "Suzanne Collins",
			domain.FieldAuthorURL:      rawAuthorURL,
			domain.FieldAverageRating:  "4.28",
			domain.FieldRatingCount:    "2,736,936",
			domain.FieldReviewCount:    "112,505",
			domain.FieldFollowers:      "112,666",
			domain.FieldAuthorImageURL: "https://images.example.test/authors/153394.jpg",
			domain.FieldShelvedCount:   "26,364,555",
		},
		Books: []domain.RawBook{{
			domain.FieldBookTitle:     "The Hunger Games",
			domain.FieldBookURLPath:   "https://example.test/book/show/2767052",
			domain.FieldBigImageURL:   "https://images.example.test/books/big.jpg",
			domain.FieldSmallImageURL: "https://images.example.test/books/small.jpg",
			domain.FieldReviewCount:   "237,766",
			domain.FieldYearPublished: "2008",
			domain.FieldAverageRating: "4.34",
			domain.FieldRatingCount:   "9,365,720",
		}},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(source *fakeSource, store *fakeStore) *Pipeline {
	return NewPipeline(PipelineDeps{
		Source: source,
		Store:  store,
		Logger: testLogger(),
	})
}

func TestPipelineRun(t *testing.T) {
	source := &fakeSource{raw: map[string]domain.RawAuthor{rawAuthorURL: validRawAuthor()}}
	store := &fakeStore{}
	p := newTestPipeline(source, store)

	require.NoError(t, p.Run(context.Background(), rawAuthorURL))

	require.Len(t, store.loads, 1)
	require.Len(t, store.loads[0], 1)

	author := store.loads[0][0]
	require.Equal(t, "Suzanne Collins", author.Name)
	require.Equal(t, canonicalURL, author.URL)
	require.Equal(t, 2736936, author.Stats.RatingCount)
	require.Len(t, author.Books, 1)
	require.Equal(t, 2008, author.Books[0].YearPublished)
	require.Equal(t, 9365720, author.Books[0].Stats.RatingCount)
}

func TestPipelineRunExtractFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	store := &fakeStore{}
	p := newTestPipeline(source, store)

	err := p.Run(context.Background(), rawAuthorURL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "extract")
	require.Empty(t, store.loads)
}

func TestPipelineRunValidationFailure(t *testing.T) {
	raw := validRawAuthor()
	raw.Fields[domain.FieldAuthorImageURL] = "https://images.example.test/authors/153394.png"
	source := &fakeSource{raw: map[string]domain.RawAuthor{rawAuthorURL: raw}}
	store := &fakeStore{}
	p := newTestPipeline(source, store)

	err := p.Run(context.Background(), rawAuthorURL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed validation")
	require.Empty(t, store.loads)
}

func TestPipelineRunAllContinuesPastFailures(t *testing.T) {
	otherURL := "https://example.test/author/show/1077326.J_K_Rowling"
	source := &fakeSource{raw: map[string]domain.RawAuthor{rawAuthorURL: validRawAuthor()}}
	store := &fakeStore{urls: []string{otherURL, rawAuthorURL}}
	p := newTestPipeline(source, store)

	err := p.RunAll(context.Background())
	require.Error(t, err)
	require.Len(t, store.loads, 1)
	require.Equal(t, "Suzanne Collins", store.loads[0][0].Name)
}

func TestAddAuthor(t *testing.T) {
	source := &fakeSource{
		profileName:  "Suzanne Collins",
		profileImage: "https://images.example.test/authors/153394.jpg",
	}
	store := &fakeStore{}
	p := newTestPipeline(source, store)

	require.NoError(t, p.AddAuthor(context.Background(), rawAuthorURL))

	require.Len(t, store.inserted, 1)
	require.Equal(t, domain.Author{
		Name:     "Suzanne Collins",
		URL:      canonicalURL,
		ImageURL: "https://images.example.test/authors/153394.jpg",
	}, store.inserted[0])
}

func TestAddAuthorDuplicate(t *testing.T) {
	source := &fakeSource{}
	store := &fakeStore{has: true}
	p := newTestPipeline(source, store)

	err := p.AddAuthor(context.Background(), rawAuthorURL)
	require.ErrorIs(t, err, domain.ErrDuplicateAuthor)
	require.Zero(t, source.profileCalls)
	require.Empty(t, store.inserted)
}

func TestAddAuthorBadURL(t *testing.T) {
	p := newTestPipeline(&fakeSource{}, &fakeStore{})

	err := p.AddAuthor(context.Background(), "https://example.test/book/show/2767052")
	require.Error(t, err)
	require.Contains(t, err.Error(), "author url")
}
