package scrape

import "strings"

// The source site packs several values into single text blobs with no
// structural markup around them. These functions hold all of the offset
// arithmetic so it can be tested without a network and replaced in one
// place when the markup changes.

const emDash = "—"

// bookAverageRating takes the leading rating out of a minirating blob such
// as "4.34 avg rating — 9,365,720 ratings".
func bookAverageRating(text string) (string, error) {
	idx := strings.Index(text, "avg")
	if idx < 1 {
		return "", SliceError{Blob: "average rating", Text: text}
	}
	return text[:idx-1], nil
}

// bookRatingCount takes the count between the em-dash and the trailing
// "ratings" word of a minirating blob.
func bookRatingCount(text string) (string, error) {
	dash := strings.Index(text, emDash)
	last := strings.LastIndex(text, "r")
	start := dash + len(emDash) + 1
	if dash < 0 || last <= start {
		return "", SliceError{Blob: "rating count", Text: text}
	}
	return text[start : last-1], nil
}

// yearPublishedToken extracts the year from a publication blob such as
// "4.34 avg rating — 9,365,720 ratings — published 2008 — 12 editions":
// the 4th-from-last whitespace token.
func yearPublishedToken(text string) (string, error) {
	fields := strings.Fields(text)
	if len(fields) < 4 {
		return "", SliceError{Blob: "year published", Text: text}
	}
	return fields[len(fields)-4], nil
}

// followerCount extracts the count between the final open-paren and the end
// of a header such as "Suzanne Collins's Followers (112,666)".
func followerCount(text string) (string, error) {
	start := strings.LastIndex(text, "(") + 1
	if start == 0 || start >= len(text)-1 {
		return "", SliceError{Blob: "follower count", Text: text}
	}
	return text[start : len(text)-1], nil
}

// shelvedCountToken extracts the total from the book-list summary line, the
// second-to-last whitespace token.
func shelvedCountToken(text string) (string, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", SliceError{Blob: "shelved count", Text: text}
	}
	return fields[len(fields)-2], nil
}

// bookReviewCount extracts the review count from a detail-page accessible
// label such as "9,365,720 ratings and 237,766 reviews": everything between
// the final "d" and the "reviews" word.
func bookReviewCount(text string) (string, error) {
	start := strings.LastIndex(text, "d") + 2
	end := strings.LastIndex(text, "reviews") - 1
	if start < 2 || end <= start {
		return "", SliceError{Blob: "review count", Text: text}
	}
	return text[start:end], nil
}
