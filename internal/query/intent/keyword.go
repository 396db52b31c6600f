package intent

import (
	"context"
	"fmt"
	"strings"
)

// keywordTable maps intents to trigger keywords. The first intent with
// any keyword contained in the lowercased text wins; the row order is
// the tie-break and must not be rearranged. Four intents have no
// keyword rows and are only reachable through the classifier.
var keywordTable = []struct {
	intent   Intent
	keywords []string
}{
	{NetIncome, []string{"net income", "income", "earnings"}},
	{Revenue, []string{"revenue", "sales", "turnover", "gross income"}},
	{StockPrice, []string{"stock price", "stock", "price", "share price", "current price", "price now", "stock value"}},
	{ProfitMargin, []string{"profit margin", "margin", "profit percentage", "net margin", "profit"}},
	{CompanyProfile, []string{"who is", "company profile", "about company", "company info"}},
	{MarketCap, []string{"market cap", "market capitalization", "company value", "valuation"}},
	{HistoricalStockPrice, []string{"historical stock price", "stock price on", "past stock price", "stock price in", "price on"}},
	{DividendInfo, []string{"dividend info", "dividend payout", "payout ratio", "dividend yield", "dividend"}},
	{BalanceSheet, []string{"balance sheet", "sheet", "financial position", "assets and liabilities", "balance"}},
	{CashFlow, []string{"cash", "flow", "cash flow", "cashflow", "cash from operations", "operating cash"}},
	{FinancialRatios, []string{"financial ratios", "ratios", "current ratio", "liquidity ratio", "debt ratio"}},
	{EarningsPerShare, []string{"earnings per share", "eps", "per share earnings"}},
}

// KeywordResolver classifies by substring matching against a fixed
// keyword table. It needs no model and serves as the fallback policy
// when the zero-shot classifier is unavailable.
type KeywordResolver struct{}

// Resolve returns the first intent whose keywords match text.
func (KeywordResolver) Resolve(ctx context.Context, text string) (Intent, error) {
	lower := strings.ToLower(text)
	for _, row := range keywordTable {
		for _, kw := range row.keywords {
			if strings.Contains(lower, kw) {
				return row.intent, nil
			}
		}
	}
	return "", fmt.Errorf("intent: no keyword match")
}
