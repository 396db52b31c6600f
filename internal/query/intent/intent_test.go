package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/finvox/finvox/pkg/provider/nlp"
	nlpmock "github.com/finvox/finvox/pkg/provider/nlp/mock"
)

func TestResolverReturnsTopLabel(t *testing.T) {
	t.Parallel()

	classifier := &nlpmock.Classifier{Result: nlp.Classification{
		Labels: []string{"get_revenue", "get_net_income"},
		Scores: []float64{0.91, 0.04},
	}}
	r := NewResolver(classifier)

	got, err := r.Resolve(context.Background(), "What was Apple's revenue in 2023?")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != Revenue {
		t.Errorf("intent = %q, want %q", got, Revenue)
	}

	if len(classifier.Calls) != 1 {
		t.Fatalf("expected 1 classifier call, got %d", len(classifier.Calls))
	}
	call := classifier.Calls[0]
	if call.Template != "This text is requesting {} information." {
		t.Errorf("unexpected hypothesis template %q", call.Template)
	}
	if len(call.Labels) != len(All) || call.Labels[0] != "get_net_income" {
		t.Errorf("candidate labels not passed in declaration order: %v", call.Labels)
	}
}

func TestResolverClassifierFailure(t *testing.T) {
	t.Parallel()

	r := NewResolver(&nlpmock.Classifier{Err: errors.New("model offline")})
	if _, err := r.Resolve(context.Background(), "anything"); err == nil {
		t.Fatal("expected error from failing classifier")
	}
}

func TestResolverNoLabels(t *testing.T) {
	t.Parallel()

	r := NewResolver(&nlpmock.Classifier{})
	_, err := r.Resolve(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "no labels") {
		t.Fatalf("expected no-labels error, got %v", err)
	}
}

func TestKeywordResolver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want Intent
	}{
		{"What was Apple's net income in 2023?", NetIncome},
		{"Tesla revenue last year", Revenue},
		{"current stock price of nvidia", StockPrice},
		{"who is the CEO of microsoft", CompanyProfile},
		{"walmart market cap", MarketCap},
		{"apple dividend yield", DividendInfo},
		{"show the balance sheet for meta", BalanceSheet},
		{"liquidity ratio for visa", FinancialRatios},
		// "income" sits in the first row, so it outranks later rows.
		{"price and income for apple", NetIncome},
	}
	var r KeywordResolver
	for _, tt := range tests {
		got, err := r.Resolve(context.Background(), tt.text)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestKeywordResolverNoMatch(t *testing.T) {
	t.Parallel()

	var r KeywordResolver
	if _, err := r.Resolve(context.Background(), "tell me a story"); err == nil {
		t.Fatal("expected error for text with no keywords")
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	for _, i := range All {
		if !i.IsValid() {
			t.Errorf("%q should be valid", i)
		}
	}
	if Intent("get_weather").IsValid() {
		t.Error("unknown intent should not be valid")
	}
}
