// Package validate holds the pure field validators applied to raw scraped
// values. Each function either returns a normalized typed value or an error
// naming the violated rule; none of them touch the network or the database.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const authorShowPath = "/author/show/"

// collectionMarkers denote multi-book bundles that must never be persisted
// as individual books.
var collectionMarkers = []string{"box set", "boxset", "book set"}

// Int parses a non-negative integer, accepting thousands separators only
// when every comma-delimited chunk matches standard grouping: first chunk
// 1-3 digits, all following chunks exactly 3.
func Int(raw string) (int, error) {
	value := raw
	if strings.Contains(value, ",") {
		chunks := strings.Split(value, ",")

		if len(chunks[0]) < 1 || len(chunks[0]) > 3 {
			return 0, fmt.Errorf("misplaced thousands separator in %q", raw)
		}
		for _, chunk := range chunks[1:] {
			if len(chunk) != 3 {
				return 0, fmt.Errorf("misplaced thousands separator in %q", raw)
			}
		}
		value = strings.Join(chunks, "")
	}

	number, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("not a whole number: %q", raw)
	}
	if number < 0 {
		return 0, fmt.Errorf("negative number: %q", raw)
	}
	return number, nil
}

// Float parses a decimal with exactly one point and digits on both sides of
// it. The integer part may carry grouped thousands separators. The result is
// rounded to 2 decimal places.
func Float(raw string) (float64, error) {
	chunks := strings.Split(raw, ".")
	if len(chunks) != 2 {
		return 0, fmt.Errorf("expected exactly one decimal point in %q", raw)
	}
	if chunks[0] == "" || chunks[1] == "" {
		return 0, fmt.Errorf("missing digits beside decimal point in %q", raw)
	}

	whole, err := Int(chunks[0])
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(fmt.Sprintf("%d.%s", whole, chunks[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("not a decimal number: %q", raw)
	}
	return math.Round(value*100) / 100, nil
}

// Rating parses a float and requires it to sit inside [0, 5].
func Rating(raw string) (float64, error) {
	value, err := Float(raw)
	if err != nil {
		return 0, err
	}
	if value < 0 || value > 5 {
		return 0, fmt.Errorf("rating %v outside range 0-5", value)
	}
	return value, nil
}

// Year parses a publication year: purely numeric and exactly 4 characters.
func Year(raw string) (int, error) {
	if len(raw) != 4 {
		return 0, fmt.Errorf("year must be 4 digits, got %q", raw)
	}
	return Int(raw)
}

// URL requires an http(s) URL.
func URL(raw string) (string, error) {
	if !strings.HasPrefix(raw, "http") {
		return "", fmt.Errorf("not an http url: %q", raw)
	}
	return raw, nil
}

// ImageURL requires an http(s) URL referencing a .jpg resource.
func ImageURL(raw string) (string, error) {
	value, err := URL(raw)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(value, ".jpg") {
		return "", fmt.Errorf("not a jpg image url: %q", raw)
	}
	return value, nil
}

// BookTitle requires a non-empty title and rejects bundle titles such as
// "box set" so collections never enter the book table.
func BookTitle(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("empty book title")
	}
	lowered := strings.ToLower(raw)
	for _, marker := range collectionMarkers {
		if strings.Contains(lowered, marker) {
			return "", fmt.Errorf("title %q denotes a collection", raw)
		}
	}
	return raw, nil
}

// StandardizeAuthorURL reduces a profile URL to its canonical form
// {base}/author/show/{id}, dropping the trailing name slug and any query
// string. The canonical form is the author's natural key.
func StandardizeAuthorURL(raw string) (string, error) {
	value, err := URL(raw)
	if err != nil {
		return "", err
	}

	idx := strings.Index(value, authorShowPath)
	if idx < 0 {
		return "", fmt.Errorf("not an author profile url: %q", raw)
	}

	base := value[:idx+len(authorShowPath)]
	rest := value[idx+len(authorShowPath):]
	if rest == "" {
		return "", fmt.Errorf("author profile url %q carries no id", raw)
	}
	if dot := strings.Index(rest, "."); dot >= 0 {
		rest = rest[:dot]
	}
	return base + rest, nil
}
