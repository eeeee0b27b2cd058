package scoring

import (
	"github.com/finscope/finscope/pkg/ratios"
	"github.com/finscope/finscope/pkg/statement"
)

// LynchMetricCount is the fixed denominator of the Lynch score.
const LynchMetricCount = 5

var (
	lynchEPSGrowthTiers = []Tier{{20, 10}, {10, 7}, {5, 5}, {0, 4}}
	lynchPEGTiers       = []Tier{{1, 10}, {2, 7}}
	lynchDebtTiers      = []Tier{{0.5, 10}, {1, 7}, {2, 5}}
)

// Lynch scores growth at a reasonable price. The overall score always
// divides by five, so metrics that cannot be computed pull the score
// toward neutral rather than dropping out.
func Lynch(p Params) Model {
	return Model{
		Key:  ModelLynch,
		Name: "Lynch",
		Metrics: []MetricDef{
			{
				Key: "eps_growth_pct", Name: "EPS Growth %", Format: FormatPlain, Derive: lynchEPSGrowth,
				Curve: Tiers{Steps: lynchEPSGrowthTiers, Fallback: 1},
			},
			{
				Key: "peg_ratio", Name: "PEG Ratio", Format: FormatPlain, Derive: lynchPEG,
				Curve: Tiers{Steps: lynchPEGTiers, Fallback: 3, LowerIsBetter: true},
			},
			{
				Key: "debt_to_equity", Name: "Debt-to-Equity", Format: FormatPlain, Derive: lynchDebtToEquity,
				Curve: Tiers{Steps: lynchDebtTiers, Fallback: 1, LowerIsBetter: true},
			},
			{Key: "dividend_yield_growth", Name: "Dividend Yield + Growth", Format: FormatPercentage},
			{
				Key: "net_cash_position", Name: "Net Cash Position", Format: FormatCurrency, Derive: lynchNetCash,
				Curve: Tiers{Steps: []Tier{{0, 10}, {p.NetCashFloor, 5}}, Fallback: 1},
			},
		},
		Combine: func(scores ...float64) float64 { return FixedMean(LynchMetricCount, scores...) },
	}
}

// lynchEPSGrowth compares net income in the earliest and latest periods
// that report it, in percent.
func lynchEPSGrowth(s *statement.Statements) Outcome {
	col := s.IncomeStatement.Field(statement.FieldNetIncome)
	first, last := -1, -1
	for i, v := range col {
		if v.IsMissing() {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 || first == last {
		return Absent("net income needs two periods")
	}
	if col[first].V == 0 {
		return Failed("earliest net income is zero")
	}
	g := ratios.Growth(col[first], col[last])
	return Computed(g.V * 100)
}

// lynchPEG divides the price-to-earnings ratio by EPS growth in percent.
// It needs a share price, positive earnings per share and positive growth.
func lynchPEG(s *statement.Statements) Outcome {
	if s.Price.IsMissing() {
		return Absent("share price not supplied")
	}
	eps := Quotient(
		s.IncomeStatement.LatestField(statement.FieldNetIncome),
		s.IncomeStatement.LatestField(statement.FieldSharesOutstanding),
		"eps",
	)
	if eps.Status != StatusComputed {
		return eps
	}
	growth := lynchEPSGrowth(s)
	if growth.Status != StatusComputed {
		return Absent("eps growth unavailable")
	}
	if eps.Value.V <= 0 || growth.Value.V <= 0 {
		return Absent("peg undefined for non-positive earnings or growth")
	}
	pe := s.Price.V / eps.Value.V
	return Computed(pe / growth.Value.V)
}

func lynchDebtToEquity(s *statement.Statements) Outcome {
	return Quotient(
		s.BalanceSheet.LatestField(statement.FieldTotalLiabilities),
		s.BalanceSheet.LatestField(statement.FieldTotalEquity),
		"debt to equity",
	)
}

func lynchNetCash(s *statement.Statements) Outcome {
	cash := s.BalanceSheet.LatestField(statement.FieldCash)
	liab := s.BalanceSheet.LatestField(statement.FieldTotalLiabilities)
	if cash.IsMissing() || liab.IsMissing() {
		return Absent("net cash inputs unavailable")
	}
	return Computed(cash.V - liab.V)
}
