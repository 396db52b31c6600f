// Package fmp is a client for the Financial Modeling Prep REST API (v3).
//
// Only the endpoints the metric handlers consume are exposed, each as a typed
// method returning the decoded rows. Transport failures and non-2xx statuses
// are returned as errors (*APIError for HTTP-level failures); interpreting an
// empty result set is left to the caller.
//
// The client is safe for concurrent use.
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production Financial Modeling Prep API root.
const DefaultBaseURL = "https://financialmodelingprep.com/api/v3"

const defaultTimeout = 15 * time.Second

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("fmp: API error: %d - %s", e.StatusCode, e.Body)
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. to point at a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithTimeout sets the per-request HTTP timeout. Default: 15s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// Client calls the Financial Modeling Prep API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client. An empty apiKey is allowed; the API will then
// reject requests and queries degrade through the fallback tiers.
func New(apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// params collects query parameters for one request.
type params map[string]string

// get issues a GET request against path (relative to the API root) and
// decodes the JSON response body into out.
func (c *Client) get(ctx context.Context, path string, p params, out any) error {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	for k, v := range p {
		if v != "" {
			q.Set(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("fmp: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fmp: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fmp: decode %s response: %w", path, err)
	}
	return nil
}
