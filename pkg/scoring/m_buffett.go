package scoring

import (
	"math"

	"github.com/finscope/finscope/pkg/ratios"
	"github.com/finscope/finscope/pkg/statement"
)

// Buffett scores profitability, capital efficiency and cash generation in
// the value-investing style. Each metric reads raw fields itself rather
// than sharing derived columns with other models. The overall score is
// the null-tolerant mean of its eight metrics.
func Buffett(p Params) Model {
	return Model{
		Key:  ModelBuffett,
		Name: "Buffett",
		Metrics: []MetricDef{
			{Key: "owner_earnings", Name: "Owner Earnings", Format: FormatCurrency, Derive: buffettOwnerEarnings, Curve: Positive{}},
			{
				Key: "roe", Name: "ROE", Format: FormatPercentage, Derive: buffettROE,
				Curve: Range{Low: p.ReturnLow, High: p.ReturnHigh},
			},
			{
				Key: "roic", Name: "ROIC", Format: FormatPercentage, Derive: buffettROIC,
				Curve: Range{Low: p.ReturnLow, High: p.ReturnHigh},
			},
			{
				Key: "debt_to_equity", Name: "Debt-to-Equity", Format: FormatPlain, Derive: buffettDebtToEquity,
				Curve: InverseRange{Low: p.BuffettDebtLow, High: p.BuffettDebtHigh},
			},
			{
				Key: "eps_growth", Name: "EPS Growth", Format: FormatPercentage, Derive: buffettEPSGrowth,
				Curve: Range{Low: p.EPSGrowthLow, High: p.EPSGrowthHigh},
			},
			{Key: "fcff", Name: "FCFF", Format: FormatCurrency, Derive: buffettFCFF, Curve: Positive{}},
			{
				Key: "gross_margin", Name: "Gross Margin", Format: FormatPercentage, Derive: buffettGrossMargin,
				Curve: Range{Low: p.BuffettGrossLow, High: p.BuffettGrossHigh},
			},
			{
				Key: "net_margin", Name: "Net Margin", Format: FormatPercentage, Derive: buffettNetMargin,
				Curve: Range{Low: p.BuffettNetLow, High: p.BuffettNetHigh},
			},
		},
	}
}

// buffettOwnerEarnings is net income plus depreciation and amortization
// minus the magnitude of capital expenditure.
func buffettOwnerEarnings(s *statement.Statements) Outcome {
	ni := s.IncomeStatement.LatestField(statement.FieldNetIncome)
	da := s.IncomeStatement.LatestField(statement.FieldDepreciationAmortization)
	if da.IsMissing() {
		da = s.CashFlow.LatestField(statement.FieldDepreciationAmortization)
	}
	capex := s.CashFlow.LatestField(statement.FieldCapitalExpenditures)
	if ni.IsMissing() || da.IsMissing() || capex.IsMissing() {
		return Absent("owner earnings inputs unavailable")
	}
	return Computed(ni.V + da.V - math.Abs(capex.V))
}

func buffettROE(s *statement.Statements) Outcome {
	return Quotient(
		s.IncomeStatement.LatestField(statement.FieldNetIncome),
		s.BalanceSheet.LatestField(statement.FieldTotalEquity),
		"return on equity",
	)
}

// buffettROIC uses total assets less total liabilities as invested capital.
func buffettROIC(s *statement.Statements) Outcome {
	ni := s.IncomeStatement.LatestField(statement.FieldNetIncome)
	ta := s.BalanceSheet.LatestField(statement.FieldTotalAssets)
	tl := s.BalanceSheet.LatestField(statement.FieldTotalLiabilities)
	if ta.IsMissing() || tl.IsMissing() {
		return Absent("invested capital inputs unavailable")
	}
	return Quotient(ni, statement.Some(ta.V-tl.V), "return on invested capital")
}

func buffettDebtToEquity(s *statement.Statements) Outcome {
	return Quotient(
		s.BalanceSheet.LatestField(statement.FieldTotalLiabilities),
		s.BalanceSheet.LatestField(statement.FieldTotalEquity),
		"debt to equity",
	)
}

// buffettEPSGrowth compares per-share earnings with the same quarter a
// year earlier.
func buffettEPSGrowth(s *statement.Statements) Outcome {
	is := s.IncomeStatement
	if is.Len() <= ratios.YoYLag {
		return Absent("eps growth needs five periods")
	}
	latest := Quotient(is.LatestField(statement.FieldNetIncome), is.LatestField(statement.FieldSharesOutstanding), "eps")
	prior := Quotient(is.LagField(statement.FieldNetIncome, ratios.YoYLag), is.LagField(statement.FieldSharesOutstanding, ratios.YoYLag), "prior eps")
	for _, o := range []Outcome{latest, prior} {
		if o.Status != StatusComputed {
			return o
		}
	}
	if prior.Value.V == 0 {
		return Failed("prior eps is zero")
	}
	return FromValue(ratios.Growth(prior.Value, latest.Value), "eps growth")
}

func buffettFCFF(s *statement.Statements) Outcome {
	return FromValue(latestFreeCashFlow(s.CashFlow), "free cash flow")
}

func buffettGrossMargin(s *statement.Statements) Outcome {
	return Quotient(
		s.IncomeStatement.LatestField(statement.FieldGrossProfit),
		s.IncomeStatement.LatestField(statement.FieldTotalRevenue),
		"gross margin",
	)
}

func buffettNetMargin(s *statement.Statements) Outcome {
	return Quotient(
		s.IncomeStatement.LatestField(statement.FieldNetIncome),
		s.IncomeStatement.LatestField(statement.FieldTotalRevenue),
		"net margin",
	)
}
