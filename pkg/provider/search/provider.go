// Package search defines the Provider interface for web-search backends.
//
// The fallback chain issues at most one search per query, using the raw query
// text, and only consumes the first result's snippet. Implementations must be
// safe for concurrent use and must bound every request with the supplied
// context.
package search

import "context"

// Result is a single web-search hit.
type Result struct {
	Title   string `json:"title"`
	Href    string `json:"href"`
	Snippet string `json:"snippet"`
}

// Provider is the abstraction over any web-search backend.
type Provider interface {
	// Search returns up to maxResults hits for query, best first. An empty
	// slice with a nil error means the search ran but found nothing.
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
