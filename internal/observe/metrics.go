// Package observe provides application-wide observability primitives for
// finvox: OpenTelemetry metrics, tracing, and the Prometheus exporter
// bridge serving the /metrics endpoint.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all finvox metrics.
const meterName = "github.com/finvox/finvox"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// QueryDuration tracks end-to-end query pipeline latency.
	QueryDuration metric.Float64Histogram

	// STTDuration tracks speech-to-text transcription latency on the
	// voice path.
	STTDuration metric.Float64Histogram

	// IntentClassifications counts classified queries. Use with attributes:
	//   attribute.String("intent", ...), attribute.String("resolver", ...)
	IntentClassifications metric.Int64Counter

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts provider errors by provider name.
	ProviderErrors metric.Int64Counter

	// StoreLookups counts local-store lookups. Use with attribute:
	//   attribute.String("result", "hit"|"miss")
	StoreLookups metric.Int64Counter

	// FallbackDepth records how far down the chain a query travelled:
	// 0 base answer, 1 local store, 2 semantic retriever, 3 web search.
	FallbackDepth metric.Int64Histogram

	// ActiveVoiceSessions tracks live websocket voice sessions.
	ActiveVoiceSessions metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request latency by method and path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries in seconds.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.QueryDuration, err = m.Float64Histogram("finvox.query.duration",
		metric.WithDescription("End-to-end query pipeline latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.STTDuration, err = m.Float64Histogram("finvox.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.IntentClassifications, err = m.Int64Counter("finvox.intent.classifications",
		metric.WithDescription("Total classified queries by intent and resolver."),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("finvox.provider.requests",
		metric.WithDescription("Total provider API requests by provider and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("finvox.provider.errors",
		metric.WithDescription("Total provider errors by provider."),
	); err != nil {
		return nil, err
	}
	if met.StoreLookups, err = m.Int64Counter("finvox.store.lookups",
		metric.WithDescription("Total local-store lookups by result."),
	); err != nil {
		return nil, err
	}
	if met.FallbackDepth, err = m.Int64Histogram("finvox.fallback.depth",
		metric.WithDescription("Chain depth that produced the final answer."),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3),
	); err != nil {
		return nil, err
	}
	if met.ActiveVoiceSessions, err = m.Int64UpDownCounter("finvox.active_voice_sessions",
		metric.WithDescription("Number of live websocket voice sessions."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("finvox.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails (should not happen with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordIntent records one classified query.
func (m *Metrics) RecordIntent(ctx context.Context, intent, resolver string) {
	m.IntentClassifications.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("intent", intent),
			attribute.String("resolver", resolver),
		),
	)
}

// RecordProviderRequest records a provider request with its status.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error.
func (m *Metrics) RecordProviderError(ctx context.Context, provider string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}

// RecordStoreLookup records one local-store lookup result.
func (m *Metrics) RecordStoreLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.StoreLookups.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", result)),
	)
}
