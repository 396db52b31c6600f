package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/finvox/finvox/internal/handler"
	"github.com/finvox/finvox/internal/query/entities"
	"github.com/finvox/finvox/internal/query/fallback"
	"github.com/finvox/finvox/internal/query/intent"
	"github.com/finvox/finvox/internal/store"
	storemock "github.com/finvox/finvox/internal/store/mock"
	"github.com/finvox/finvox/pkg/fmp"
	"github.com/finvox/finvox/pkg/provider/nlp"
	nlpmock "github.com/finvox/finvox/pkg/provider/nlp/mock"
	"github.com/finvox/finvox/pkg/provider/search"
	searchmock "github.com/finvox/finvox/pkg/provider/search/mock"
	"github.com/finvox/finvox/pkg/types"
)

type stubResolver struct {
	intent intent.Intent
	err    error
}

func (s stubResolver) Resolve(ctx context.Context, text string) (intent.Intent, error) {
	return s.intent, s.err
}

// newStubRegistry returns a registry whose handlers are all overridden
// by outcome.
func newStubRegistry(t *testing.T, in intent.Intent, outcome types.Outcome) *handler.Registry {
	t.Helper()
	client, err := fmp.New("unused")
	if err != nil {
		t.Fatalf("fmp.New: %v", err)
	}
	reg := handler.NewRegistry(client)
	reg.Register(in, handler.Func(func(ctx context.Context, req handler.Request) types.Outcome {
		return outcome
	}))
	return reg
}

func TestRunAppleRevenueScenario(t *testing.T) {
	t.Parallel()

	extractor := &nlpmock.Extractor{Result: nlp.Mentions{
		Orgs:  []string{"Apple"},
		Dates: []string{"2023"},
	}}
	normalizer := entities.New(extractor, nil)

	base := "AAPL's revenue for 2023 is $383.29 billion."
	reg := newStubRegistry(t, intent.Revenue, types.Value(base))
	chain := fallback.New(&storemock.Store{}, &searchmock.Provider{})

	o := New(stubResolver{intent: intent.Revenue}, normalizer, reg, chain, nil)
	res := o.Run(context.Background(), "What was Apple's revenue in 2023?", false)

	if res.Error != "" {
		t.Fatalf("unexpected error %q", res.Error)
	}
	if res.Intent != "get_revenue" {
		t.Errorf("intent = %q, want get_revenue", res.Intent)
	}
	want := types.Entities{Ticker: "AAPL", Metric: "revenue", Year: "2023"}
	if res.Entities != want {
		t.Errorf("entities = %+v, want %+v", res.Entities, want)
	}
	if res.BaseResponse != base || res.FinalResponse != base {
		t.Errorf("base %q final %q, want both %q", res.BaseResponse, res.FinalResponse, base)
	}
}

func TestRunClassificationFailure(t *testing.T) {
	t.Parallel()

	reg := newStubRegistry(t, intent.Revenue, types.Value("unused"))
	chain := fallback.New(&storemock.Store{}, &searchmock.Provider{})
	normalizer := entities.New(&nlpmock.Extractor{}, nil)

	o := New(stubResolver{err: errors.New("model offline")}, normalizer, reg, chain, nil)
	res := o.Run(context.Background(), "anything", false)

	if res.Error != "Could not classify intent." {
		t.Errorf("error = %q", res.Error)
	}
	if res.FinalResponse != "" || res.Intent != "" {
		t.Errorf("pipeline should short-circuit: %+v", res)
	}
}

func TestRunUnsupportedIntent(t *testing.T) {
	t.Parallel()

	client, err := fmp.New("unused")
	if err != nil {
		t.Fatalf("fmp.New: %v", err)
	}
	reg := handler.NewRegistry(client)
	chain := fallback.New(&storemock.Store{}, &searchmock.Provider{})
	normalizer := entities.New(&nlpmock.Extractor{}, nil)

	o := New(stubResolver{intent: intent.Intent("get_weather")}, normalizer, reg, chain, nil)
	res := o.Run(context.Background(), "will it rain", false)

	if res.Error != "Unsupported intent: get_weather" {
		t.Errorf("error = %q", res.Error)
	}
	if res.FinalResponse != "" {
		t.Errorf("final response should stay empty, got %q", res.FinalResponse)
	}
}

func TestRunBaseFailureDegradesToStore(t *testing.T) {
	t.Parallel()

	extractor := &nlpmock.Extractor{Result: nlp.Mentions{Orgs: []string{"Apple"}}}
	normalizer := entities.New(extractor, nil)

	reg := newStubRegistry(t, intent.Revenue,
		types.Failure("Error: No revenue data available for AAPL."))
	st := &storemock.Store{Rows: []store.Record{
		{Firm: "Apple", Ticker: "AAPL", Metric: "revenue", Value: 383285000000},
	}}
	chain := fallback.New(st, &searchmock.Provider{})

	o := New(stubResolver{intent: intent.Revenue}, normalizer, reg, chain, nil)
	res := o.Run(context.Background(), "apple revenue", false)

	if res.FinalResponse != "revenue for AAPL: $383.29 billion." {
		t.Errorf("final = %q, want store answer", res.FinalResponse)
	}
	if res.RetrieverResponse != res.FinalResponse {
		t.Errorf("retriever response = %q", res.RetrieverResponse)
	}
}

func TestRunBaseFailureDegradesToWeb(t *testing.T) {
	t.Parallel()

	extractor := &nlpmock.Extractor{Result: nlp.Mentions{Orgs: []string{"Apple"}}}
	normalizer := entities.New(extractor, nil)

	reg := newStubRegistry(t, intent.Revenue, types.Failure("Error fetching revenue: boom"))
	searcher := &searchmock.Provider{Results: []search.Result{{Snippet: "X"}}}
	chain := fallback.New(&storemock.Store{}, searcher)

	o := New(stubResolver{intent: intent.Revenue}, normalizer, reg, chain, nil)
	res := o.Run(context.Background(), "apple revenue", false)

	if res.FinalResponse != "X" || res.WebSearchResponse != "X" {
		t.Errorf("final = %q web = %q, want X", res.FinalResponse, res.WebSearchResponse)
	}
}

func TestRunSurvivesPanickingHandler(t *testing.T) {
	t.Parallel()

	extractor := &nlpmock.Extractor{Result: nlp.Mentions{Orgs: []string{"Apple"}}}
	normalizer := entities.New(extractor, nil)

	client, err := fmp.New("unused")
	if err != nil {
		t.Fatalf("fmp.New: %v", err)
	}
	reg := handler.NewRegistry(client)
	reg.Register(intent.Revenue, handler.Func(func(ctx context.Context, req handler.Request) types.Outcome {
		panic("boom")
	}))

	st := &storemock.Store{Rows: []store.Record{
		{Firm: "Apple", Ticker: "AAPL", Metric: "revenue", Value: 383285000000},
	}}
	chain := fallback.New(st, &searchmock.Provider{})

	o := New(stubResolver{intent: intent.Revenue}, normalizer, reg, chain, nil)
	res := o.Run(context.Background(), "apple revenue", false)

	if res.Error != "" {
		t.Errorf("error = %q, want the failure treated as data", res.Error)
	}
	if !strings.Contains(res.BaseResponse, "Error processing intent get_revenue: boom") {
		t.Errorf("base response = %q, want the stringified failure", res.BaseResponse)
	}
	if res.FinalResponse != "revenue for AAPL: $383.29 billion." {
		t.Errorf("final = %q, want the store answer", res.FinalResponse)
	}
}
