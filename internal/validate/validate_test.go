package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInt(t *testing.T) {
	t.Parallel()

	valid := []struct {
		raw  string
		want int
	}{
		{"123", 123},
		{"0", 0},
		{"1,234", 1234},
		{"1,234,567", 1234567},
		{"999", 999},
	}
	for _, tc := range valid {
		got, err := Int(tc.raw)
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}

	invalid := []string{"", "String", "12.34", "1234,567", "12,34", "1,23,456", "-1234", "-1,234"}
	for _, raw := range invalid {
		_, err := Int(raw)
		require.Error(t, err, raw)
	}
}

func TestFloat(t *testing.T) {
	t.Parallel()

	valid := []struct {
		raw  string
		want float64
	}{
		{"123.4", 123.4},
		{"1,234.5", 1234.5},
		{"123.456", 123.46},
		{"0.0", 0},
		{"4.28", 4.28},
	}
	for _, tc := range valid {
		got, err := Float(tc.raw)
		require.NoError(t, err, tc.raw)
		require.InDelta(t, tc.want, got, 1e-9, tc.raw)
	}

	invalid := []string{"", "String", "123", "1234,567.89", "-1234.5", "1.2.3", ".5", "5.", "1.2a"}
	for _, raw := range invalid {
		_, err := Float(raw)
		require.Error(t, err, raw)
	}
}

func TestRating(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"0.0", "5.0", "4.34", "5.00"} {
		_, err := Rating(raw)
		require.NoError(t, err, raw)
	}
	for _, raw := range []string{"5.01", "-0.01", "6.2", "50.0"} {
		_, err := Rating(raw)
		require.Error(t, err, raw)
	}
}

func TestYear(t *testing.T) {
	t.Parallel()

	got, err := Year("1987")
	require.NoError(t, err)
	require.Equal(t, 1987, got)

	for _, raw := range []string{"", "999", "10000", "20x8", "String"} {
		_, err := Year(raw)
		require.Error(t, err, raw)
	}
}

func TestURL(t *testing.T) {
	t.Parallel()

	_, err := URL("https://www.goodreads.com/author/show/153394.Suzanne_Collins")
	require.NoError(t, err)

	for _, raw := range []string{"", "String", "htt://images.gr-assets.com/153394.jpg"} {
		_, err := URL(raw)
		require.Error(t, err, raw)
	}
}

func TestImageURL(t *testing.T) {
	t.Parallel()

	_, err := ImageURL("https://images.gr-assets.com/authors/1630199330p5/153394.jpg")
	require.NoError(t, err)

	_, err = ImageURL("https://images.gr-assets.com/authors/153394.png")
	require.Error(t, err)

	_, err = ImageURL("images.gr-assets.com/authors/153394.jpg")
	require.Error(t, err)
}

func TestBookTitle(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"The Hunger Games (The Hunger Games, #1)",
		"Catching Fire",
	} {
		got, err := BookTitle(raw)
		require.NoError(t, err, raw)
		require.Equal(t, raw, got)
	}

	for _, raw := range []string{
		"",
		"The Hunger Games Box Set",
		"Complete BOXSET",
		"Three Book Set",
		"the hunger games box set",
	} {
		_, err := BookTitle(raw)
		require.Error(t, err, raw)
	}
}

func TestStandardizeAuthorURL(t *testing.T) {
	t.Parallel()

	got, err := StandardizeAuthorURL("https://site/author/show/153394.Jane_Doe?x=1")
	require.NoError(t, err)
	require.Equal(t, "https://site/author/show/153394", got)

	got, err = StandardizeAuthorURL("https://www.goodreads.com/author/show/153394.Suzanne_Collins?from_search=true&from_srp=true")
	require.NoError(t, err)
	require.Equal(t, "https://www.goodreads.com/author/show/153394", got)

	got, err = StandardizeAuthorURL("https://www.goodreads.com/author/show/153394")
	require.NoError(t, err)
	require.Equal(t, "https://www.goodreads.com/author/show/153394", got)

	_, err = StandardizeAuthorURL("https://www.goodreads.com/book/show/2767052")
	require.Error(t, err)

	_, err = StandardizeAuthorURL("not-a-url")
	require.Error(t, err)
}
