package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finvox/finvox/internal/query/intent"
)

var errBoom = errors.New("boom")

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", MaxFailures: 2, ResetTimeout: time.Hour})

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("fn must not run while the breaker is open")
	}
}

func TestCircuitBreakerProbeClosesAfterTimeout(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", MaxFailures: 1, ResetTimeout: time.Millisecond})

	cb.Execute(func() error { return errBoom })
	time.Sleep(5 * time.Millisecond)

	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after successful probe", cb.State())
	}
}

func TestCircuitBreakerFailedProbeReopens(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", MaxFailures: 1, ResetTimeout: time.Millisecond})

	cb.Execute(func() error { return errBoom })
	time.Sleep(5 * time.Millisecond)
	cb.Execute(func() error { return errBoom })

	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open after failed probe", cb.State())
	}
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", MaxFailures: 2, ResetTimeout: time.Hour})

	cb.Execute(func() error { return errBoom })
	cb.Execute(func() error { return nil })
	cb.Execute(func() error { return errBoom })

	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
}

func TestFallbackGroupTriesNextOnFailure(t *testing.T) {
	t.Parallel()

	g := NewFallbackGroup("primary", "primary", FallbackConfig{})
	g.AddFallback("secondary", "secondary")

	var used []string
	err := g.Execute(func(name string) error {
		used = append(used, name)
		if name == "primary" {
			return errBoom
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(used) != 2 || used[1] != "secondary" {
		t.Errorf("unexpected call order %v", used)
	}
}

func TestFallbackGroupAllFailed(t *testing.T) {
	t.Parallel()

	g := NewFallbackGroup("only", "only", FallbackConfig{})
	err := g.Execute(func(string) error { return errBoom })
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("expected ErrAllFailed, got %v", err)
	}
}

type stubSource struct {
	result intent.Intent
	err    error
	calls  int
}

func (s *stubSource) Resolve(ctx context.Context, text string) (intent.Intent, error) {
	s.calls++
	return s.result, s.err
}

func TestClassifierFallbackUsesKeywordSource(t *testing.T) {
	t.Parallel()

	primary := &stubSource{err: errBoom}
	f := NewClassifierFallback(primary, "zero-shot", FallbackConfig{})
	f.AddFallback("keywords", intent.KeywordResolver{})

	got, err := f.Resolve(context.Background(), "What was Apple's revenue in 2023?")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != intent.Revenue {
		t.Errorf("intent = %q, want %q", got, intent.Revenue)
	}
	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1", primary.calls)
	}
}

func TestClassifierFallbackPrimaryWins(t *testing.T) {
	t.Parallel()

	primary := &stubSource{result: intent.NetIncome}
	f := NewClassifierFallback(primary, "zero-shot", FallbackConfig{})
	f.AddFallback("keywords", intent.KeywordResolver{})

	got, err := f.Resolve(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != intent.NetIncome {
		t.Errorf("intent = %q, want %q", got, intent.NetIncome)
	}
}
