// Package handler maps each query intent to the financial-data call
// that answers it and formats the result as a natural-language
// sentence.
//
// Handlers never return errors for missing or unavailable data. A
// failed upstream call or an empty response becomes a failed
// [types.Outcome] whose text is a human-readable error sentence, so
// the fallback chain can degrade instead of aborting. Only a missing
// handler registration is a real error.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finvox/finvox/internal/query/intent"
	"github.com/finvox/finvox/pkg/fmp"
	"github.com/finvox/finvox/pkg/types"
)

// ErrUnsupportedIntent is returned by Dispatch for intents with no
// registered handler.
var ErrUnsupportedIntent = errors.New("handler: unsupported intent")

// ErrDispatch is returned when handler resolution itself fails, which
// indicates a wiring bug rather than bad input.
var ErrDispatch = errors.New("handler: dispatch failed")

// Request carries the normalized entities a handler needs. Empty
// fields mean "not specified"; most handlers then answer for the
// latest reporting period.
type Request struct {
	Ticker string
	Year   string
	Date   string
}

// Handler answers one intent.
type Handler interface {
	Fetch(ctx context.Context, req Request) types.Outcome
}

// Func adapts a function to the Handler interface.
type Func func(ctx context.Context, req Request) types.Outcome

func (f Func) Fetch(ctx context.Context, req Request) types.Outcome { return f(ctx, req) }

// Registry is the static intent-to-handler table, resolved at
// construction time. It is read-only afterwards and safe for
// concurrent use.
type Registry struct {
	handlers map[intent.Intent]Handler
}

// NewRegistry wires one handler per supported intent against client.
func NewRegistry(client *fmp.Client) *Registry {
	return &Registry{handlers: map[intent.Intent]Handler{
		intent.NetIncome:            netIncome(client),
		intent.Revenue:              revenue(client),
		intent.StockPrice:           stockPrice(client),
		intent.ProfitMargin:         profitMargin(client),
		intent.CompanyProfile:       companyProfile(client),
		intent.MarketCap:            marketCap(client),
		intent.HistoricalStockPrice: historicalStockPrice(client),
		intent.DividendInfo:         dividendInfo(client),
		intent.BalanceSheet:         balanceSheet(client),
		intent.CashFlow:             cashFlow(client),
		intent.FinancialRatios:      financialRatios(client),
		intent.EarningsPerShare:     earningsPerShare(client),
		intent.Interest:             interestExpense(client),
		intent.ResearchInfo:         researchExpenses(client),
		intent.CostInfo:             costOfRevenue(client),
		intent.IncomeTax:            incomeTax(client),
	}}
}

// Dispatch invokes the handler registered for in. Unknown intents are
// hard errors; everything a handler reports is data. A panicking
// handler is caught here and stringified into a failed Outcome, so the
// fallback chain keeps degrading instead of the caller crashing.
func (r *Registry) Dispatch(ctx context.Context, in intent.Intent, req Request) (out types.Outcome, err error) {
	if r.handlers == nil {
		return types.Outcome{}, fmt.Errorf("%w: registry not initialized", ErrDispatch)
	}
	h, ok := r.handlers[in]
	if !ok {
		return types.Outcome{}, fmt.Errorf("%w: %s", ErrUnsupportedIntent, in)
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("handler: panic recovered", "intent", in, "panic", rec)
			out = types.SniffOutcome(fmt.Sprintf("Error processing intent %s: %v", in, rec))
			err = nil
		}
	}()
	return h.Fetch(ctx, req), nil
}

// Register replaces the handler for in. Intended for tests.
func (r *Registry) Register(in intent.Intent, h Handler) {
	r.handlers[in] = h
}

// yearLabel renders the reporting period for answer sentences.
func yearLabel(year string) string {
	if year == "" {
		return "the latest year"
	}
	return year
}
