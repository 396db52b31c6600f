// Package fallback degrades a failed metric answer through the local
// structured store and, as a last resort, one web search.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finvox/finvox/internal/observe"
	"github.com/finvox/finvox/internal/store"
	"github.com/finvox/finvox/pkg/provider/search"
	"github.com/finvox/finvox/pkg/types"
)

// WebMissMessage is the final answer when both the store and the web
// search come up empty.
const WebMissMessage = "No relevant data found on the web."

// storeNote prefixes supplementary store data appended to an already
// successful base answer.
const storeNote = "Additional Info found in the local store: "

// Retriever is the optional semantic tier consulted between a store
// miss and the web search. nil disables it.
type Retriever interface {
	Retrieve(ctx context.Context, text string, k int) (string, error)
}

// Result carries the per-tier responses the chain produced. Empty
// fields mean the tier was never consulted.
type Result struct {
	Retriever string
	WebSearch string
	Final     string
}

// Option configures a Chain.
type Option func(*Chain)

// WithRetriever enables the semantic retriever tier.
func WithRetriever(r Retriever) Option {
	return func(c *Chain) { c.retriever = r }
}

// WithTierTimeout bounds each store and web-search call. Default 10s.
func WithTierTimeout(d time.Duration) Option {
	return func(c *Chain) { c.tierTimeout = d }
}

// WithMetrics overrides the default metrics instance.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Chain) { c.metrics = m }
}

// Chain is the linear fallback state machine: evaluate the base
// answer, then the store, then optionally the semantic retriever, then
// one web search. No backtracking.
type Chain struct {
	store       store.MetricStore
	searcher    search.Provider
	retriever   Retriever
	metrics     *observe.Metrics
	tierTimeout time.Duration
}

// New returns a Chain over the given store and web-search provider.
func New(metrics store.MetricStore, searcher search.Provider, opts ...Option) *Chain {
	c := &Chain{
		store:       metrics,
		searcher:    searcher,
		metrics:     observe.DefaultMetrics(),
		tierTimeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Resolve runs the chain for one query. base is the metric handler's
// outcome, query the raw user text, useRetriever the caller's request
// for supplementary store data on success. A soft miss at every tier
// still produces a final answer; Resolve never returns an error.
func (c *Chain) Resolve(ctx context.Context, base types.Outcome, query string, ents types.Entities, useRetriever bool) Result {
	var res Result

	if !base.Failed() {
		res.Final = base.Text()
		if useRetriever {
			res.Retriever = c.lookup(ctx, ents)
			res.Final = fmt.Sprintf("%s %s%s", base.Text(), storeNote, res.Retriever)
		}
		return res
	}

	// Base failed: the store is always consulted, flag or not.
	hit, text := c.lookupHit(ctx, ents)
	res.Retriever = text
	if hit {
		res.Final = text
		return res
	}

	if c.retriever != nil {
		if answer, err := c.retriever.Retrieve(ctx, query, 1); err != nil {
			slog.Warn("fallback: semantic retriever failed", "err", err)
		} else if answer != "" {
			res.Final = answer
			return res
		}
	}

	res.WebSearch = c.searchWeb(ctx, query)
	res.Final = res.WebSearch
	return res
}

func (c *Chain) lookup(ctx context.Context, ents types.Entities) string {
	_, text := c.lookupHit(ctx, ents)
	return text
}

// lookupHit queries the store by (ticker, metric). A miss of any kind
// degrades to the no-data message for the ticker.
func (c *Chain) lookupHit(ctx context.Context, ents types.Entities) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, c.tierTimeout)
	defer cancel()

	rec, err := c.store.Lookup(ctx, ents.Ticker, ents.Metric)
	if err != nil {
		if !errors.Is(err, store.ErrNoData) {
			slog.Warn("fallback: store lookup failed", "ticker", ents.Ticker, "metric", ents.Metric, "err", err)
		}
		c.metrics.RecordStoreLookup(ctx, false)
		return false, store.MissMessage(ents.Ticker)
	}
	c.metrics.RecordStoreLookup(ctx, true)
	return true, store.FormatLookup(rec)
}

// searchWeb issues one search with the raw query text and takes the
// first snippet.
func (c *Chain) searchWeb(ctx context.Context, query string) string {
	if c.searcher == nil {
		return WebMissMessage
	}

	ctx, cancel := context.WithTimeout(ctx, c.tierTimeout)
	defer cancel()

	results, err := c.searcher.Search(ctx, query, 1)
	if err != nil {
		slog.Warn("fallback: web search failed", "err", err)
		c.metrics.RecordProviderRequest(ctx, "websearch", "error")
		c.metrics.RecordProviderError(ctx, "websearch")
		return WebMissMessage
	}
	c.metrics.RecordProviderRequest(ctx, "websearch", "ok")
	if len(results) == 0 {
		return WebMissMessage
	}
	return results[0].Snippet
}
