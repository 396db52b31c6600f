// Package mock provides a test double for the search package interface.
package mock

import (
	"context"
	"sync"

	"github.com/finvox/finvox/pkg/provider/search"
)

// SearchCall records a single invocation of Provider.Search.
type SearchCall struct {
	Query      string
	MaxResults int
}

// Provider is a mock implementation of search.Provider.
type Provider struct {
	mu sync.Mutex

	// Results is returned from Search when Err is nil.
	Results []search.Result

	// Err, if non-nil, is returned as the error from Search.
	Err error

	// Calls records every invocation of Search.
	Calls []SearchCall
}

// Search records the call and returns Results, Err.
func (p *Provider) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, SearchCall{Query: query, MaxResults: maxResults})
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Results, nil
}
