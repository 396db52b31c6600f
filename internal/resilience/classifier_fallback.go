package resilience

import (
	"context"

	"github.com/finvox/finvox/internal/query/intent"
)

// IntentSource resolves a query text to an intent. Implemented by
// [intent.Resolver] and [intent.KeywordResolver].
type IntentSource interface {
	Resolve(ctx context.Context, text string) (intent.Intent, error)
}

// ClassifierFallback chains intent sources: when the zero-shot
// classifier fails or its breaker is open, the keyword table takes
// over. Each source has its own circuit breaker.
type ClassifierFallback struct {
	group *FallbackGroup[IntentSource]
}

var _ IntentSource = (*ClassifierFallback)(nil)

// NewClassifierFallback creates a chain with primary as the preferred
// source.
func NewClassifierFallback(primary IntentSource, primaryName string, cfg FallbackConfig) *ClassifierFallback {
	return &ClassifierFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional intent source.
func (f *ClassifierFallback) AddFallback(name string, source IntentSource) {
	f.group.AddFallback(name, source)
}

// Resolve returns the first healthy source's classification.
func (f *ClassifierFallback) Resolve(ctx context.Context, text string) (intent.Intent, error) {
	return ExecuteWithResult(f.group, func(s IntentSource) (intent.Intent, error) {
		return s.Resolve(ctx, text)
	})
}
