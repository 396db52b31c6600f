package handler

import (
	"context"
	"fmt"

	"github.com/finvox/finvox/pkg/fmp"
	"github.com/finvox/finvox/pkg/types"
)

func netIncome(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.IncomeStatement(ctx, req.Ticker, req.Year, "", 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching net income: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No net income data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's net income for %s is $%.2f billion.",
			req.Ticker, yearLabel(req.Year), rows[0].NetIncome/1e9))
	}
}

func revenue(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.IncomeStatement(ctx, req.Ticker, req.Year, "", 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching revenue: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No revenue data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's revenue for %s is $%.2f billion.",
			req.Ticker, yearLabel(req.Year), rows[0].Revenue/1e9))
	}
}

func stockPrice(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.QuoteShort(ctx, req.Ticker)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching stock price: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No stock price data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's current stock price is $%.2f.",
			req.Ticker, rows[0].Price))
	}
}

func profitMargin(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.Ratios(ctx, req.Ticker, req.Year, 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching profit margin: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No profit margin data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's profit margin for %s is %.2f%%.",
			req.Ticker, yearLabel(req.Year), rows[0].NetProfitMargin*100))
	}
}

func companyProfile(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.Profile(ctx, req.Ticker)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching company profile: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No company profile data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's CEO is %s and it operates in the %s sector.",
			req.Ticker, rows[0].CEO, rows[0].Sector))
	}
}

func marketCap(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.Profile(ctx, req.Ticker)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching market cap: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No market cap data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's market cap is $%.2f billion.",
			req.Ticker, rows[0].MarketCap/1e9))
	}
}

func historicalStockPrice(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		resp, err := c.HistoricalPrice(ctx, req.Ticker, req.Date)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching historical stock price: %v", err))
		}
		if len(resp.Historical) == 0 {
			return types.Failure(fmt.Sprintf("Error: No historical stock price data available for %s on %s.",
				req.Ticker, req.Date))
		}
		return types.Value(fmt.Sprintf("%s's stock price on %s was $%.2f.",
			req.Ticker, req.Date, resp.Historical[0].Close))
	}
}

func dividendInfo(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.Ratios(ctx, req.Ticker, req.Year, 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching dividend info: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No dividend info available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's dividend payout ratio for %s is %.2f%%.",
			req.Ticker, yearLabel(req.Year), rows[0].PayoutRatio*100))
	}
}

func balanceSheet(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.BalanceSheet(ctx, req.Ticker, req.Year, "", 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching balance sheet: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No balance sheet data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's assets for %s are $%.2f billion, and liabilities are $%.2f billion.",
			req.Ticker, yearLabel(req.Year), rows[0].TotalAssets/1e9, rows[0].TotalLiabilities/1e9))
	}
}

func cashFlow(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.CashFlow(ctx, req.Ticker, req.Year, "", 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching cash flow: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No cash flow data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's cash from operations for %s is $%.2f billion.",
			req.Ticker, yearLabel(req.Year), rows[0].CashFlowFromOperatingActivities/1e9))
	}
}

func financialRatios(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.Ratios(ctx, req.Ticker, req.Year, 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching financial ratios: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No financial ratios data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's current ratio for %s is %.2f.",
			req.Ticker, yearLabel(req.Year), rows[0].CurrentRatio))
	}
}

func earningsPerShare(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.KeyMetrics(ctx, req.Ticker, req.Year, 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching earnings per share: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No earnings per share data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's earnings per share for %s is $%.2f.",
			req.Ticker, yearLabel(req.Year), rows[0].EPS))
	}
}

func interestExpense(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.IncomeStatement(ctx, req.Ticker, req.Year, "", 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching interest expense: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No interest expense data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's interest expense for %s is $%.2f billion.",
			req.Ticker, yearLabel(req.Year), rows[0].InterestExpense/1e9))
	}
}

func researchExpenses(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.IncomeStatement(ctx, req.Ticker, req.Year, "", 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching research and development expenses: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No research and development data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's research and development expenses for %s are $%.2f billion.",
			req.Ticker, yearLabel(req.Year), rows[0].ResearchAndDevelopmentExpenses/1e9))
	}
}

func costOfRevenue(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.IncomeStatement(ctx, req.Ticker, req.Year, "", 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching cost of revenue: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No cost data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's cost of revenue for %s is $%.2f billion.",
			req.Ticker, yearLabel(req.Year), rows[0].CostOfRevenue/1e9))
	}
}

func incomeTax(c *fmp.Client) Func {
	return func(ctx context.Context, req Request) types.Outcome {
		rows, err := c.IncomeStatement(ctx, req.Ticker, req.Year, "", 1)
		if err != nil {
			return types.Failure(fmt.Sprintf("Error fetching income tax: %v", err))
		}
		if len(rows) == 0 {
			return types.Failure(fmt.Sprintf("Error: No income tax data available for %s.", req.Ticker))
		}
		return types.Value(fmt.Sprintf("%s's income tax expense for %s is $%.2f billion.",
			req.Ticker, yearLabel(req.Year), rows[0].IncomeTaxExpense/1e9))
	}
}
