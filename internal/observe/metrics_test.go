package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsCreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestQueryDurationObservation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.QueryDuration.Record(ctx, 0.123)
	m.QueryDuration.Record(ctx, 0.456)

	rm := collect(t, reader)
	metric := findMetric(rm, "finvox.query.duration")
	if metric == nil {
		t.Fatal("finvox.query.duration not found")
	}
	hist, ok := metric.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", metric.Data)
	}
	if got := hist.DataPoints[0].Count; got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}

func TestCounterHelpers(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordIntent(ctx, "get_revenue", "zero-shot")
	m.RecordProviderRequest(ctx, "fmp", "ok")
	m.RecordProviderError(ctx, "fmp")
	m.RecordStoreLookup(ctx, true)
	m.RecordStoreLookup(ctx, false)

	rm := collect(t, reader)
	for _, name := range []string{
		"finvox.intent.classifications",
		"finvox.provider.requests",
		"finvox.provider.errors",
		"finvox.store.lookups",
	} {
		if findMetric(rm, name) == nil {
			t.Errorf("metric %s not recorded", name)
		}
	}

	lookups := findMetric(rm, "finvox.store.lookups")
	sum, ok := lookups.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", lookups.Data)
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("expected hit and miss series, got %d", len(sum.DataPoints))
	}
}

func TestFallbackDepthObservation(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.FallbackDepth.Record(context.Background(), 3)

	rm := collect(t, reader)
	if findMetric(rm, "finvox.fallback.depth") == nil {
		t.Fatal("finvox.fallback.depth not recorded")
	}
}
