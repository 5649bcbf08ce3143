package storage

import "bookworm/internal/domain"

// existingAuthor mirrors one author row as stored.
type existingAuthor struct {
	ID       int64
	Name     string
	URL      string
	ImageURL string
}

// authorChanges is the outcome of comparing scraped authors against storage
// by canonical URL. Name never takes part in the identity comparison.
type authorChanges struct {
	New          []domain.Author
	ImageUpdates []domain.Author // ID carries the stored author id
	Unchanged    []domain.Author
}

// partitionAuthors splits incoming cleaned authors into new, image-changed
// and unchanged sets keyed on the canonical URL.
func partitionAuthors(incoming []domain.Author, existing []existingAuthor) authorChanges {
	byURL := make(map[string]existingAuthor, len(existing))
	for _, row := range existing {
		byURL[row.URL] = row
	}

	var changes authorChanges
	for _, author := range incoming {
		row, ok := byURL[author.URL]
		switch {
		case !ok:
			changes.New = append(changes.New, author)
		case row.ImageURL != author.ImageURL:
			author.ID = row.ID
			changes.ImageUpdates = append(changes.ImageUpdates, author)
		default:
			author.ID = row.ID
			changes.Unchanged = append(changes.Unchanged, author)
		}
	}
	return changes
}

// bookKey is the natural key of a book within its author's scope.
type bookKey struct {
	Title string
	URL   string
}

// newBooks returns the incoming books whose (title, url) pair is not yet
// stored. Books are immutable once created, so there is no update set.
func newBooks(incoming []domain.Book, existing map[bookKey]int64) []domain.Book {
	var fresh []domain.Book
	for _, book := range incoming {
		if _, ok := existing[bookKey{Title: book.Title, URL: book.URL}]; ok {
			continue
		}
		fresh = append(fresh, book)
	}
	return fresh
}
