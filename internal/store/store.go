// Package store persists the local financial dataset and answers
// (ticker, metric) lookups for the fallback chain.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoData is returned by Lookup when no row matches the requested
// ticker and metric. Callers treat it as a soft miss, not a failure.
var ErrNoData = errors.New("store: no data")

// Record is one long-format row of the financial_metrics table.
type Record struct {
	SourceFile  string
	Firm        string
	Ticker      string
	Date        string
	Metric      string
	Value       float64
	LastUpdated string
}

// Company is one known firm with its canonical ticker symbol.
type Company struct {
	Firm   string
	Ticker string
}

// MetricStore is the local structured store backing the second tier of
// the fallback chain. The initial load must complete before any read;
// after that concurrent reads are safe.
type MetricStore interface {
	// LoadCSV unpivots a wide CSV file into metric rows and appends
	// them to the store. It returns the number of rows inserted.
	LoadCSV(ctx context.Context, path string) (int, error)

	// Lookup returns the first row matching ticker and metric exactly,
	// or ErrNoData when nothing matches.
	Lookup(ctx context.Context, ticker, metric string) (Record, error)

	// Companies lists the distinct firms in the store. The entity
	// normalizer uses this as its fuzzy-match reference list.
	Companies(ctx context.Context) ([]Company, error)

	// Records returns every row in the store, in insertion order. The
	// semantic retriever indexes the full dataset through this.
	Records(ctx context.Context) ([]Record, error)

	Ping(ctx context.Context) error
	Close() error
}

// FormatLookup renders a store hit as user-facing text. Values are
// stored in raw dollars and reported in billions.
func FormatLookup(rec Record) string {
	return fmt.Sprintf("%s for %s: $%.2f billion.", rec.Metric, rec.Ticker, rec.Value/1e9)
}

// MissMessage is the user-facing text for a store miss on ticker.
func MissMessage(ticker string) string {
	return fmt.Sprintf("No relevant data found for %s.", ticker)
}
