// Package entities normalizes raw NER mentions into the canonical
// ticker, metric, year and date fields the metric handlers consume.
package entities

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/finvox/finvox/internal/store"
	"github.com/finvox/finvox/pkg/provider/nlp"
	"github.com/finvox/finvox/pkg/types"
)

// referenceYear anchors relative date language ("this year") and the
// default fields of partially specified dates. Changing it shifts
// every relative-year answer, so it is pinned rather than read from
// the wall clock.
const referenceYear = 2025

// fuzzyThreshold is the minimum similarity for a firm-name match
// against the store's company list. Mentions scoring below it fall
// back to the uppercased raw text.
const fuzzyThreshold = 0.5

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// companyTable maps known company names to tickers. Order matters:
// the raw-text fallback scan takes the first name contained in the
// query, so longer variants precede their shorter prefixes.
var companyTable = []struct {
	name   string
	ticker string
}{
	{"apple", "AAPL"},
	{"microsoft corporation", "MSFT"},
	{"microsoft", "MSFT"},
	{"nvidia corporation", "NVDA"},
	{"nvidia", "NVDA"},
	{"amazon", "AMZN"},
	{"alphabet inc", "GOOGL"},
	{"google", "GOOGL"},
	{"meta platforms", "META"},
	{"meta", "META"},
	{"facebook", "META"},
	{"tesla", "TSLA"},
	{"walmart inc", "WMT"},
	{"walmart", "WMT"},
	{"visa inc", "V"},
	{"visa", "V"},
	{"coca cola", "KO"},
}

// metricTable maps keyword groups to canonical metric keys. The first
// group with any keyword contained in the query wins, so the order of
// the groups is part of the contract and must not be rearranged.
var metricTable = []struct {
	keywords []string
	metric   string
}{
	{[]string{"net income", "net", "income"}, "netIncome"},
	{[]string{"revenue"}, "revenue"},
	{[]string{"profit margin", "profit", "margin"}, "netProfitMargin"},
	{[]string{"market cap", "market capitalization", "market"}, "mktCap"},
	{[]string{"payout ratio", "dividend payout"}, "payoutRatio"},
	{[]string{"current ratio", "liquidity ratio"}, "currentRatio"},
	{[]string{"eps", "earnings per share", "earnings"}, "eps"},
	{[]string{"stock", "stock price", "current price", "valuation", "price"}, "price"},
	{[]string{"company info", "about company", "who is"}, "ceo"},
	{[]string{"balance sheet", "sheet", "assets"}, "Assets&Liabilities"},
	{[]string{"historical", "earnings per share", "earnings"}, "historical"},
	{[]string{"cash", "flow", "cash flow"}, "cashFlowFromOperatingActivities"},
	{[]string{"tax"}, "IncomeTax"},
	{[]string{"interest", "interest expense", "expense"}, "InterestExpense"},
	{[]string{"research", "research development", "development"}, "Research"},
	{[]string{"cost", "total cost"}, "TotalCost"},
}

// CompanyLister supplies the reference list of firms for fuzzy ticker
// matching. Satisfied by [store.MetricStore].
type CompanyLister interface {
	Companies(ctx context.Context) ([]store.Company, error)
}

// Normalizer turns free text into [types.Entities]. It never fails:
// anything it cannot resolve is left empty and logged.
type Normalizer struct {
	extractor nlp.EntityExtractor
	companies CompanyLister
}

// New returns a Normalizer backed by the given NER extractor and
// company reference list. companies may be nil, in which case fuzzy
// firm matching is skipped.
func New(extractor nlp.EntityExtractor, companies CompanyLister) *Normalizer {
	return &Normalizer{extractor: extractor, companies: companies}
}

// Extract normalizes text into entities. Calling it twice on the same
// text yields the same result.
func (n *Normalizer) Extract(ctx context.Context, text string) types.Entities {
	var ents types.Entities

	mentions, err := n.extractor.Extract(ctx, text)
	if err != nil {
		slog.Warn("entities: ner extraction failed", "err", err)
		mentions = nlp.Mentions{}
	}

	if len(mentions.Orgs) > 0 {
		// Only the first organization mention counts.
		ents.Ticker = n.resolveTicker(ctx, mentions.Orgs[0])
	}
	for _, mention := range mentions.Dates {
		n.classifyDate(mention, &ents)
	}

	textLower := strings.ToLower(text)

	if ents.Ticker == "" {
		for _, row := range companyTable {
			if strings.Contains(textLower, row.name) {
				ents.Ticker = row.ticker
				break
			}
		}
	}

	for _, row := range metricTable {
		if containsAny(textLower, row.keywords) {
			ents.Metric = row.metric
			break
		}
	}

	ents.Year = gateYear(ents.Year)
	return ents
}

// resolveTicker maps one organization mention to a ticker: exact table
// hit, then fuzzy match against the store's firms, then the uppercased
// mention itself.
func (n *Normalizer) resolveTicker(ctx context.Context, org string) string {
	name := strings.ToLower(org)
	for _, row := range companyTable {
		if row.name == name {
			return row.ticker
		}
	}

	if n.companies != nil {
		companies, err := n.companies.Companies(ctx)
		if err != nil {
			slog.Warn("entities: company list unavailable", "err", err)
		} else {
			best, score := "", 0.0
			for _, c := range companies {
				if s := similarity(name, strings.ToLower(c.Firm)); s > score {
					best, score = c.Ticker, s
				}
			}
			if score >= fuzzyThreshold {
				return best
			}
		}
	}
	return strings.ToUpper(org)
}

// similarity is a normalized edit-distance ratio in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	dist := matchr.Levenshtein(a, b)
	return 1 - float64(dist)/float64(longest)
}

// classifyDate sorts one date mention into the year or date field.
// Mentions containing "year", purely numeric mentions, and anything
// parsing to January 1st count as years. This means a genuine
// "January 1" query is reported as a year; see TestClassifyDateJanuaryFirst.
func (n *Normalizer) classifyDate(mention string, ents *types.Entities) {
	lower := strings.ToLower(mention)
	parsed, ok := parseMention(lower)
	if !ok {
		if strings.Contains(lower, "year") || isDigits(lower) {
			ents.Year = lower
		} else {
			ents.Date = lower
		}
		return
	}
	if strings.Contains(lower, "year") || isDigits(lower) ||
		(parsed.Day() == 1 && parsed.Month() == time.January) {
		ents.Year = parsed.Format("2006")
	} else {
		ents.Date = parsed.Format("2006-01-02")
	}
}

var mentionLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
	"January 2",
	"Jan 2",
	"January",
	"Jan",
}

// parseMention tries the known calendar layouts against the mention.
// Missing components default to the reference anchor (January 1 of the
// reference year), mirroring how partially specified dates resolve.
func parseMention(mention string) (time.Time, bool) {
	s := titleWords(strings.TrimSpace(mention))
	for _, layout := range mentionLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = time.Date(referenceYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return t, true
	}
	return time.Time{}, false
}

// gateYear validates the year field after extraction: relative terms
// resolve against the reference year, bare 4-digit years pass through,
// anything else is dropped.
func gateYear(year string) string {
	if year == "" {
		return ""
	}
	lower := strings.ToLower(year)
	switch {
	case strings.Contains(lower, "this year"):
		return strconv.Itoa(referenceYear)
	case strings.Contains(lower, "last year"):
		return strconv.Itoa(referenceYear - 1)
	case yearPattern.MatchString(lower):
		return lower
	default:
		return ""
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// titleWords uppercases the first letter of each space-separated word
// so that lowered mentions match Go's case-sensitive month layouts.
func titleWords(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}
