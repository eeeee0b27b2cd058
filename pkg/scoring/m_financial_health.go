package scoring

import (
	"github.com/finscope/finscope/pkg/ratios"
	"github.com/finscope/finscope/pkg/statement"
)

// Financial Health categories.
const (
	CategoryBalanceSheet    = "balance_sheet"
	CategoryIncomeStatement = "income_statement"
	CategoryCashFlow        = "cash_flow"
)

// FinancialHealth scores balance-sheet strength, profitability and cash
// generation, each as a category averaging its metrics. The overall score
// is the unweighted mean of the three categories. Reserved metrics stay in
// the table so that category denominators are stable.
func FinancialHealth(p Params) Model {
	return Model{
		Key:  ModelFinancialHealth,
		Name: "Financial Health",
		Categories: []Category{
			{Key: CategoryBalanceSheet, Name: "Balance Sheet"},
			{Key: CategoryIncomeStatement, Name: "Income Statement"},
			{Key: CategoryCashFlow, Name: "Cash Flow"},
		},
		Metrics: []MetricDef{
			{
				Key: "liquidity", Name: "Liquidity", Category: CategoryBalanceSheet, Format: FormatPlain,
				Derive: latestColumn(statement.BalanceSheet, ratios.CurrentRatio),
				Curve:  Range{Low: p.LiquidityLow, High: p.LiquidityHigh},
			},
			{
				Key: "leverage", Name: "Leverage", Category: CategoryBalanceSheet, Format: FormatPlain,
				Derive: latestColumn(statement.BalanceSheet, ratios.DebtToEquity),
				Curve:  InverseRange{Low: p.LeverageLow, High: p.LeverageHigh},
			},
			{Key: "asset_quality", Name: "Asset Quality", Category: CategoryBalanceSheet, Format: FormatPlain},
			{
				Key: "cash_safety", Name: "Cash Safety", Category: CategoryBalanceSheet, Format: FormatPercentage,
				Derive: latestColumn(statement.BalanceSheet, ratios.CashToAssets),
				Curve:  Range{Low: p.CashSafetyLow, High: p.CashSafetyHigh},
			},
			{Key: "retained_earnings_growth", Name: "Retained Earnings Growth", Category: CategoryBalanceSheet, Format: FormatPlain},
			{Key: "equity_strength", Name: "Equity Strength", Category: CategoryBalanceSheet, Format: FormatPlain},

			{
				Key: "revenue_growth", Name: "Revenue Growth", Category: CategoryIncomeStatement, Format: FormatPlain,
				Derive: periodGrowth(statement.FieldTotalRevenue),
				Curve:  Range{Low: p.GrowthLow, High: p.GrowthHigh},
			},
			{
				Key: "gross_margin", Name: "Gross Margin", Category: CategoryIncomeStatement, Format: FormatPercentage,
				Derive: latestColumn(statement.IncomeStatement, ratios.GrossMargin),
				Curve:  Range{Low: p.HealthGrossLow, High: p.HealthGrossHigh},
			},
			{
				Key: "net_margin", Name: "Net Margin", Category: CategoryIncomeStatement, Format: FormatPercentage,
				Derive: latestColumn(statement.IncomeStatement, ratios.NetMargin),
				Curve:  Range{Low: p.HealthNetLow, High: p.HealthNetHigh},
			},
			{
				Key: "net_income_growth", Name: "Net Income Growth", Category: CategoryIncomeStatement, Format: FormatPlain,
				Derive: periodGrowth(statement.FieldNetIncome),
				Curve:  Range{Low: p.GrowthLow, High: p.GrowthHigh},
			},
			{Key: "earnings_quality", Name: "Earnings Quality", Category: CategoryIncomeStatement, Format: FormatPlain},

			{
				Key: "fcf_positivity", Name: "FCF Positivity", Category: CategoryCashFlow, Format: FormatCurrency,
				Derive: func(s *statement.Statements) Outcome { return FromValue(latestFreeCashFlow(s.CashFlow), "free cash flow") },
				Curve:  Positive{},
			},
			{Key: "fcf_growth", Name: "FCF Growth", Category: CategoryCashFlow, Format: FormatPlain},
			{Key: "fcf_to_revenue", Name: "FCF to Revenue", Category: CategoryCashFlow, Format: FormatPercentage},
			{Key: "opcf_positivity", Name: "OpCF Positivity", Category: CategoryCashFlow, Format: FormatCurrency},
			{Key: "capex_discipline", Name: "CapEx Discipline", Category: CategoryCashFlow, Format: FormatPlain},
		},
	}
}

// latestColumn reads the latest value of a derived ratio column.
func latestColumn(kind statement.Kind, column string) DeriveFunc {
	return func(s *statement.Statements) Outcome {
		t := s.Table(kind)
		if !t.Has(column) {
			return Absent(column + " not derivable")
		}
		return FromValue(t.Latest(column), column)
	}
}

// periodGrowth is the latest period-over-period change of an income
// statement field, in percent.
func periodGrowth(f statement.Field) DeriveFunc {
	return func(s *statement.Statements) Outcome {
		col := s.IncomeStatement.Field(f)
		if len(col) < 2 {
			return Absent(string(f) + " needs two periods")
		}
		prev, last := col[len(col)-2], col[len(col)-1]
		if prev.IsMissing() || last.IsMissing() {
			return Absent(string(f) + " unavailable")
		}
		if prev.V == 0 {
			return Failed(string(f) + " previous period is zero")
		}
		return FromValue(ratios.PeriodChange(col), string(f)+" growth")
	}
}

// latestFreeCashFlow prefers a reported free cash flow over the derived one.
func latestFreeCashFlow(cf *statement.Table) statement.Value {
	if v := cf.LatestField(statement.FieldFreeCashFlow); !v.IsMissing() {
		return v
	}
	return cf.Latest(ratios.FreeCashFlow)
}
