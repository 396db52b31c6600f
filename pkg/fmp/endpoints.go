package fmp

import (
	"context"
	"strconv"
)

// IncomeStatementRow is one annual or quarterly income statement.
type IncomeStatementRow struct {
	Date                           string  `json:"date"`
	Symbol                         string  `json:"symbol"`
	Revenue                        float64 `json:"revenue"`
	NetIncome                      float64 `json:"netIncome"`
	InterestExpense                float64 `json:"interestExpense"`
	IncomeTaxExpense               float64 `json:"incomeTaxExpense"`
	CostOfRevenue                  float64 `json:"costOfRevenue"`
	ResearchAndDevelopmentExpenses float64 `json:"researchAndDevelopmentExpenses"`
}

// IncomeStatement fetches income statements for ticker, most recent first.
// year and period may be empty; limit <= 0 means 1.
func (c *Client) IncomeStatement(ctx context.Context, ticker, year, period string, limit int) ([]IncomeStatementRow, error) {
	var rows []IncomeStatementRow
	err := c.get(ctx, "/income-statement/"+ticker, params{
		"period": defaultPeriod(period),
		"limit":  limitStr(limit),
		"year":   year,
	}, &rows)
	return rows, err
}

// QuoteRow is a short quote: the current price for one symbol.
type QuoteRow struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// QuoteShort fetches the current stock price for ticker.
func (c *Client) QuoteShort(ctx context.Context, ticker string) ([]QuoteRow, error) {
	var rows []QuoteRow
	err := c.get(ctx, "/quote-short/"+ticker, nil, &rows)
	return rows, err
}

// RatiosRow is one period of financial ratios.
type RatiosRow struct {
	Date            string  `json:"date"`
	Symbol          string  `json:"symbol"`
	NetProfitMargin float64 `json:"netProfitMargin"`
	PayoutRatio     float64 `json:"payoutRatio"`
	CurrentRatio    float64 `json:"currentRatio"`
}

// Ratios fetches financial ratios for ticker.
func (c *Client) Ratios(ctx context.Context, ticker, year string, limit int) ([]RatiosRow, error) {
	var rows []RatiosRow
	err := c.get(ctx, "/ratios/"+ticker, params{
		"limit": limitStr(limit),
		"year":  year,
	}, &rows)
	return rows, err
}

// ProfileRow is a company profile.
type ProfileRow struct {
	Symbol    string  `json:"symbol"`
	CEO       string  `json:"ceo"`
	Sector    string  `json:"sector"`
	MarketCap float64 `json:"mktCap"`
}

// Profile fetches the company profile for ticker.
func (c *Client) Profile(ctx context.Context, ticker string) ([]ProfileRow, error) {
	var rows []ProfileRow
	err := c.get(ctx, "/profile/"+ticker, nil, &rows)
	return rows, err
}

// HistoricalPriceResponse wraps the daily price history for one symbol.
type HistoricalPriceResponse struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	} `json:"historical"`
}

// HistoricalPrice fetches daily closing prices for ticker. When date is
// non-empty the range is pinned to that single day.
func (c *Client) HistoricalPrice(ctx context.Context, ticker, date string) (HistoricalPriceResponse, error) {
	var resp HistoricalPriceResponse
	err := c.get(ctx, "/historical-price-full/"+ticker, params{
		"from": date,
		"to":   date,
	}, &resp)
	return resp, err
}

// BalanceSheetRow is one period of the balance sheet statement.
type BalanceSheetRow struct {
	Date             string  `json:"date"`
	Symbol           string  `json:"symbol"`
	TotalAssets      float64 `json:"totalAssets"`
	TotalLiabilities float64 `json:"totalLiabilities"`
}

// BalanceSheet fetches balance sheet statements for ticker.
func (c *Client) BalanceSheet(ctx context.Context, ticker, year, period string, limit int) ([]BalanceSheetRow, error) {
	var rows []BalanceSheetRow
	err := c.get(ctx, "/balance-sheet-statement/"+ticker, params{
		"period": defaultPeriod(period),
		"limit":  limitStr(limit),
		"year":   year,
	}, &rows)
	return rows, err
}

// CashFlowRow is one period of the cash flow statement.
type CashFlowRow struct {
	Date                            string  `json:"date"`
	Symbol                          string  `json:"symbol"`
	CashFlowFromOperatingActivities float64 `json:"cashFlowFromOperatingActivities"`
}

// CashFlow fetches cash flow statements for ticker.
func (c *Client) CashFlow(ctx context.Context, ticker, year, period string, limit int) ([]CashFlowRow, error) {
	var rows []CashFlowRow
	err := c.get(ctx, "/cash-flow-statement/"+ticker, params{
		"period": defaultPeriod(period),
		"limit":  limitStr(limit),
		"year":   year,
	}, &rows)
	return rows, err
}

// KeyMetricsRow is one period of per-share key metrics.
type KeyMetricsRow struct {
	Date   string  `json:"date"`
	Symbol string  `json:"symbol"`
	EPS    float64 `json:"eps"`
}

// KeyMetrics fetches key metrics (e.g. EPS) for ticker.
func (c *Client) KeyMetrics(ctx context.Context, ticker, year string, limit int) ([]KeyMetricsRow, error) {
	var rows []KeyMetricsRow
	err := c.get(ctx, "/key-metrics/"+ticker, params{
		"limit": limitStr(limit),
		"year":  year,
	}, &rows)
	return rows, err
}

func defaultPeriod(period string) string {
	if period == "" {
		return "annual"
	}
	return period
}

func limitStr(limit int) string {
	if limit <= 0 {
		limit = 1
	}
	return strconv.Itoa(limit)
}
