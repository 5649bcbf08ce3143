package storage

import (
	"testing"

	"bookworm/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestPartitionAuthors(t *testing.T) {
	t.Parallel()

	existing := []existingAuthor{
		{ID: 1, Name: "Suzanne Collins", URL: "https://www.goodreads.com/author/show/153394", ImageURL: "https://img/old.jpg"},
		{ID: 2, Name: "Jane Doe", URL: "https://www.goodreads.com/author/show/42", ImageURL: "https://img/jane.jpg"},
	}

	incoming := []domain.Author{
		{Name: "Suzanne Collins", URL: "https://www.goodreads.com/author/show/153394", ImageURL: "https://img/new.jpg"},
		{Name: "Jane Doe Renamed", URL: "https://www.goodreads.com/author/show/42", ImageURL: "https://img/jane.jpg"},
		{Name: "Newcomer", URL: "https://www.goodreads.com/author/show/99", ImageURL: "https://img/new-author.jpg"},
	}

	changes := partitionAuthors(incoming, existing)

	require.Len(t, changes.New, 1)
	require.Equal(t, "Newcomer", changes.New[0].Name)

	require.Len(t, changes.ImageUpdates, 1)
	require.Equal(t, int64(1), changes.ImageUpdates[0].ID)
	require.Equal(t, "https://img/new.jpg", changes.ImageUpdates[0].ImageURL)

	// renamed author is identified by URL, so it counts as unchanged
	require.Len(t, changes.Unchanged, 1)
	require.Equal(t, int64(2), changes.Unchanged[0].ID)
}

func TestNewBooks(t *testing.T) {
	t.Parallel()

	existing := map[bookKey]int64{
		{Title: "Catching Fire", URL: "https://www.goodreads.com/book/show/6148028"}: 7,
	}

	incoming := []domain.Book{
		{Title: "Catching Fire", URL: "https://www.goodreads.com/book/show/6148028"},
		{Title: "Mockingjay", URL: "https://www.goodreads.com/book/show/7260188"},
	}

	fresh := newBooks(incoming, existing)
	require.Len(t, fresh, 1)
	require.Equal(t, "Mockingjay", fresh[0].Title)
}
