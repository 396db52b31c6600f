// Package websearch implements search.Provider against a JSON web-search API
// (any endpoint that answers GET ?q=...&num=... with an items array, such as a
// Google Custom Search-compatible gateway or a self-hosted SearXNG instance
// with its JSON format enabled).
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/finvox/finvox/pkg/provider/search"
)

const defaultTimeout = 10 * time.Second

// Compile-time assertion that Provider implements search.Provider.
var _ search.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithTimeout sets the per-request HTTP timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
// Used in tests to point at an httptest server transport.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements search.Provider over a JSON search endpoint.
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Provider. baseURL is the full search endpoint
// (e.g. "https://search.example.com/customsearch/v1"); apiKey may be empty
// for endpoints that do not require one.
func New(baseURL, apiKey string, opts ...Option) (*Provider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("websearch: baseURL must not be empty")
	}
	p := &Provider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// apiResponse mirrors the subset of the search API reply we consume.
type apiResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search implements search.Provider.
func (p *Provider) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	if maxResults <= 0 {
		maxResults = 1
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))
	if p.apiKey != "" {
		params.Set("key", p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("websearch: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("websearch: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("websearch: search API returned HTTP %d", resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("websearch: decode response: %w", err)
	}

	results := make([]search.Result, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if len(results) >= maxResults {
			break
		}
		results = append(results, search.Result{
			Title:   item.Title,
			Href:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
