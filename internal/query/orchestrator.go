// Package query runs the end-to-end pipeline for one financial
// question: classify intent, normalize entities, dispatch the metric
// handler, then degrade the answer through the fallback chain.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finvox/finvox/internal/handler"
	"github.com/finvox/finvox/internal/observe"
	"github.com/finvox/finvox/internal/query/fallback"
	"github.com/finvox/finvox/internal/query/intent"
	"github.com/finvox/finvox/pkg/types"
)

// classifyFailedMessage is surfaced when intent resolution fails.
const classifyFailedMessage = "Could not classify intent."

// IntentResolver classifies a query text. Satisfied by
// [intent.Resolver], [intent.KeywordResolver] and the resilience
// classifier chain.
type IntentResolver interface {
	Resolve(ctx context.Context, text string) (intent.Intent, error)
}

// EntityNormalizer extracts canonical entities from a query text.
type EntityNormalizer interface {
	Extract(ctx context.Context, text string) types.Entities
}

// Orchestrator owns the query pipeline. Each Run call builds a fresh
// [types.QueryResult]; no state is shared between queries, so a single
// Orchestrator serves concurrent requests.
type Orchestrator struct {
	resolver   IntentResolver
	normalizer EntityNormalizer
	registry   *handler.Registry
	chain      *fallback.Chain
	metrics    *observe.Metrics
}

// New wires an Orchestrator. metrics may be nil, in which case the
// package-level default instruments are used.
func New(resolver IntentResolver, normalizer EntityNormalizer, registry *handler.Registry, chain *fallback.Chain, metrics *observe.Metrics) *Orchestrator {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Orchestrator{
		resolver:   resolver,
		normalizer: normalizer,
		registry:   registry,
		chain:      chain,
		metrics:    metrics,
	}
}

// Run answers one text query. The returned result always carries a
// best-effort answer or a plain-English error message; Run never
// panics or leaks upstream failures to the caller.
func (o *Orchestrator) Run(ctx context.Context, text string, useRetriever bool) types.QueryResult {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "query.Run")
	defer span.End()
	defer func() {
		o.metrics.QueryDuration.Record(ctx, time.Since(start).Seconds())
	}()

	result := types.QueryResult{Query: text}

	in, err := o.resolver.Resolve(ctx, text)
	if err != nil {
		observe.Logger(ctx).Warn("query: intent classification failed", "err", err)
		o.metrics.RecordProviderRequest(ctx, "nlp", "error")
		o.metrics.RecordProviderError(ctx, "nlp")
		result.Error = classifyFailedMessage
		return result
	}
	o.metrics.RecordProviderRequest(ctx, "nlp", "ok")
	result.Intent = string(in)
	o.metrics.RecordIntent(ctx, string(in), "classifier")

	ents := o.normalizer.Extract(ctx, text)
	result.Entities = ents

	out, err := o.registry.Dispatch(ctx, in, handler.Request{
		Ticker: ents.Ticker,
		Year:   ents.Year,
		Date:   ents.Date,
	})
	if err != nil {
		if errors.Is(err, handler.ErrUnsupportedIntent) {
			result.Error = fmt.Sprintf("Unsupported intent: %s", in)
		} else {
			result.Error = fmt.Sprintf("Error processing intent %s: %v", in, err)
		}
		observe.Logger(ctx).Warn("query: dispatch failed", "intent", in, "err", err)
		return result
	}
	result.BaseResponse = out.Text()

	chained := o.chain.Resolve(ctx, out, text, ents, useRetriever)
	result.RetrieverResponse = chained.Retriever
	result.WebSearchResponse = chained.WebSearch
	result.FinalResponse = chained.Final

	o.metrics.FallbackDepth.Record(ctx, fallbackDepth(out, chained))
	slog.Debug("query resolved",
		"intent", in,
		"ticker", ents.Ticker,
		"metric", ents.Metric,
		"base_failed", out.Failed(),
	)
	return result
}

// fallbackDepth reports which tier produced the final answer: 0 base,
// 1 local store, 2 semantic retriever, 3 web search.
func fallbackDepth(base types.Outcome, res fallback.Result) int64 {
	switch {
	case !base.Failed():
		return 0
	case res.WebSearch != "":
		return 3
	case res.Final == res.Retriever:
		return 1
	default:
		return 2
	}
}
