// Package types contains the shared value types that flow through the finvox
// query pipeline: the extracted entities, the per-query result record, and the
// tagged Outcome carried between the metric handlers and the fallback chain.
package types

import "strings"

// Entities holds the normalised values extracted from a single query.
// An empty string means the field could not be resolved.
type Entities struct {
	// Ticker is the canonical stock symbol, uppercase (e.g. "AAPL").
	Ticker string `json:"ticker"`

	// Metric is the canonical metric key (e.g. "netIncome", "revenue").
	Metric string `json:"metric"`

	// Year is a 4-digit year string. Year and Date are never both set from
	// the same date mention.
	Year string `json:"year"`

	// Date is an ISO 8601 calendar date (e.g. "2024-01-05").
	Date string `json:"date"`
}

// QueryResult is the output record assembled for every query. A fresh value
// is created per query; nothing is shared or mutated across requests.
type QueryResult struct {
	// Query is the raw text the user asked.
	Query string `json:"query"`

	// Intent is the classified intent label, empty when classification failed.
	Intent string `json:"intent"`

	// Entities are the normalised entities extracted from Query.
	Entities Entities `json:"entities"`

	// BaseResponse is the result of the primary API-backed handler.
	BaseResponse string `json:"base_response,omitempty"`

	// RetrieverResponse is the result of the local structured-store fallback.
	RetrieverResponse string `json:"retriever_response,omitempty"`

	// WebSearchResponse is the result of the web-search fallback.
	WebSearchResponse string `json:"web_search_response,omitempty"`

	// FinalResponse is the response surfaced to the user.
	FinalResponse string `json:"final_response,omitempty"`

	// Error is set only for hard failures (unclassified intent, unsupported
	// intent, dispatch wiring faults). Soft "no data found" outcomes are not
	// errors.
	Error string `json:"error,omitempty"`
}

// Outcome is the tagged result of a metric handler call: either a formatted
// answer or a human-readable failure message. Representing upstream failures
// as data (not errors) lets the fallback chain keep degrading gracefully
// without inspecting strings for control flow.
type Outcome struct {
	text   string
	failed bool
}

// Value returns a successful Outcome carrying the formatted answer text.
func Value(text string) Outcome {
	return Outcome{text: text}
}

// Failure returns a failed Outcome carrying a human-readable failure message.
func Failure(text string) Outcome {
	return Outcome{text: text, failed: true}
}

// SniffOutcome classifies a bare response string using the legacy content
// test: the response succeeded iff it is non-empty and contains neither
// "Error" nor "None". This substring sniffing is a known fragility kept only
// for callers that have nothing but a string (e.g. stringified panics); new
// code should construct Outcomes directly.
func SniffOutcome(s string) Outcome {
	if s == "" || strings.Contains(s, "Error") || strings.Contains(s, "None") {
		return Failure(s)
	}
	return Value(s)
}

// Text returns the carried answer or failure message.
func (o Outcome) Text() string { return o.text }

// Failed reports whether the Outcome represents a failure.
func (o Outcome) Failed() bool { return o.failed }
