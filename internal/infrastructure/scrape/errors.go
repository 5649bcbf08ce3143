package scrape

import "fmt"

// StatusError indicates a non-success HTTP status from the source site.
type StatusError struct {
	URL  string
	Code int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.Code)
}

// NodeError indicates an expected HTML node was absent. Extraction never
// guesses around missing structure; the whole author run fails.
type NodeError struct {
	Page string
	Node string
}

func (e NodeError) Error() string {
	return fmt.Sprintf("missing %s node on %s page", e.Node, e.Page)
}

// SliceError indicates a known text blob did not contain its anchor tokens.
type SliceError struct {
	Blob string
	Text string
}

func (e SliceError) Error() string {
	return fmt.Sprintf("cannot slice %s from %q", e.Blob, e.Text)
}
