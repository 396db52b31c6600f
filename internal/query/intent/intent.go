// Package intent classifies a financial question into one of the
// supported query intents.
package intent

// Intent is the category of financial question being asked. Each
// intent maps to exactly one metric handler.
type Intent string

const (
	NetIncome            Intent = "get_net_income"
	Revenue              Intent = "get_revenue"
	StockPrice           Intent = "get_stock_price"
	ProfitMargin         Intent = "get_profit_margin"
	CompanyProfile       Intent = "get_company_profile"
	MarketCap            Intent = "get_market_cap"
	HistoricalStockPrice Intent = "get_historical_stock_price"
	DividendInfo         Intent = "get_dividend_info"
	BalanceSheet         Intent = "get_balance_sheet"
	CashFlow             Intent = "get_cash_flow"
	FinancialRatios      Intent = "get_financial_ratios"
	EarningsPerShare     Intent = "get_earnings_per_share"
	Interest             Intent = "get_interest"
	ResearchInfo         Intent = "get_research_info"
	CostInfo             Intent = "get_cost_info"
	IncomeTax            Intent = "get_income_tax"
)

// All lists every supported intent in the order the zero-shot
// classifier receives them as candidate labels.
var All = []Intent{
	NetIncome,
	Revenue,
	StockPrice,
	ProfitMargin,
	CompanyProfile,
	MarketCap,
	HistoricalStockPrice,
	DividendInfo,
	BalanceSheet,
	CashFlow,
	FinancialRatios,
	EarningsPerShare,
	Interest,
	ResearchInfo,
	CostInfo,
	IncomeTax,
}

// IsValid reports whether i is one of the supported intents.
func (i Intent) IsValid() bool {
	for _, known := range All {
		if i == known {
			return true
		}
	}
	return false
}

func (i Intent) String() string { return string(i) }

// Labels returns the candidate label strings for the classifier.
func Labels() []string {
	labels := make([]string, len(All))
	for i, intent := range All {
		labels[i] = string(intent)
	}
	return labels
}
