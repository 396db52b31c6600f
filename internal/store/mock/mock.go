// Package mock provides an in-memory MetricStore for tests.
package mock

import (
	"context"
	"fmt"

	"github.com/finvox/finvox/internal/store"
)

var _ store.MetricStore = (*Store)(nil)

// LookupCall records one Lookup invocation.
type LookupCall struct {
	Ticker string
	Metric string
}

// Store is an in-memory MetricStore. Seed Rows before use; every
// Lookup is recorded in Calls.
type Store struct {
	Rows            []store.Record
	CompaniesResult []store.Company
	Err             error
	Calls           []LookupCall
}

func (s *Store) LoadCSV(ctx context.Context, path string) (int, error) {
	return len(s.Rows), s.Err
}

func (s *Store) Lookup(ctx context.Context, ticker, metric string) (store.Record, error) {
	s.Calls = append(s.Calls, LookupCall{Ticker: ticker, Metric: metric})
	if s.Err != nil {
		return store.Record{}, s.Err
	}
	for _, rec := range s.Rows {
		if rec.Ticker == ticker && rec.Metric == metric {
			return rec, nil
		}
	}
	return store.Record{}, fmt.Errorf("mock lookup %s/%s: %w", ticker, metric, store.ErrNoData)
}

func (s *Store) Companies(ctx context.Context) ([]store.Company, error) {
	if s.CompaniesResult != nil {
		return s.CompaniesResult, s.Err
	}
	seen := map[string]bool{}
	var out []store.Company
	for _, rec := range s.Rows {
		if seen[rec.Ticker] {
			continue
		}
		seen[rec.Ticker] = true
		out = append(out, store.Company{Firm: rec.Firm, Ticker: rec.Ticker})
	}
	return out, s.Err
}

func (s *Store) Records(ctx context.Context) ([]store.Record, error) {
	return s.Rows, s.Err
}

func (s *Store) Ping(ctx context.Context) error { return s.Err }

func (s *Store) Close() error { return nil }
