// Package ratios derives financial ratios from raw statement tables.
//
// Every derivation appends a new column to a copy of the input. A period
// whose operands are missing, or whose denominator is zero, gets a missing
// value. A column is only appended when at least one period produced a
// value, so a table without the inputs gets no column at all.
package ratios

import (
	"math"

	"github.com/finscope/finscope/pkg/statement"
)

// Derived column names.
const (
	DebtToEquity = "Debt_to_Equity"
	CurrentRatio = "Current_Ratio"
	CashToAssets = "Cash_to_Assets"
	GrossMargin  = "Gross_Margin"
	NetMargin    = "Net_Margin"
	FreeCashFlow = "Free_Cash_Flow"
)

// YoYSuffix is appended to a column name for its year-over-year change.
const YoYSuffix = "_YoY_%"

// YoYLag is the number of quarterly periods in a year.
const YoYLag = 4

// Derive returns a copy of s with every derivable ratio appended. The input
// is not modified.
func Derive(s *statement.Statements) *statement.Statements {
	out := s.Clone()
	DeriveBalanceSheet(out.BalanceSheet)
	DeriveIncomeStatement(out.IncomeStatement)
	DeriveCashFlow(out.CashFlow)
	return out
}

// DeriveBalanceSheet appends leverage, liquidity and cash-safety ratios.
func DeriveBalanceSheet(t *statement.Table) {
	appendColumn(t, DebtToEquity, Ratio(t.Field(statement.FieldTotalLiabilities), t.Field(statement.FieldTotalEquity)))
	appendColumn(t, CurrentRatio, Ratio(t.Field(statement.FieldCurrentAssets), t.Field(statement.FieldCurrentLiabilities)))
	appendColumn(t, CashToAssets, Ratio(t.Field(statement.FieldCash), t.Field(statement.FieldTotalAssets)))
}

// DeriveIncomeStatement appends gross and net margins.
func DeriveIncomeStatement(t *statement.Table) {
	revenue := t.Field(statement.FieldTotalRevenue)
	appendColumn(t, GrossMargin, Ratio(t.Field(statement.FieldGrossProfit), revenue))
	appendColumn(t, NetMargin, Ratio(t.Field(statement.FieldNetIncome), revenue))
}

// DeriveCashFlow appends free cash flow. Capital expenditure is reported
// with either sign by different sources, so its magnitude is subtracted.
func DeriveCashFlow(t *statement.Table) {
	ocf := t.Field(statement.FieldOperatingCashFlow)
	capex := t.Field(statement.FieldCapitalExpenditures)
	if ocf == nil || capex == nil {
		return
	}
	fcf := make([]statement.Value, len(ocf))
	for i := range ocf {
		fcf[i] = FreeCash(ocf[i], capex[i])
	}
	appendColumn(t, FreeCashFlow, fcf)
}

// AddYoY appends year-over-year percentage change columns for the named
// columns, or for every column present when none are named.
func AddYoY(t *statement.Table, columns ...string) {
	if len(columns) == 0 {
		columns = t.Columns()
	}
	for _, c := range columns {
		appendColumn(t, c+YoYSuffix, PercentChange(t.Column(c), YoYLag))
	}
}

// Ratio divides two columns period by period.
func Ratio(num, den []statement.Value) []statement.Value {
	if num == nil || den == nil || len(num) != len(den) {
		return nil
	}
	out := make([]statement.Value, len(num))
	for i := range num {
		out[i] = Div(num[i], den[i])
	}
	return out
}

// Div divides two values, yielding missing for a missing operand or a zero
// denominator.
func Div(num, den statement.Value) statement.Value {
	if num.IsMissing() || den.IsMissing() || den.V == 0 {
		return statement.Missing()
	}
	return statement.Some(num.V / den.V)
}

// FreeCash returns operating cash flow minus the magnitude of capex.
func FreeCash(ocf, capex statement.Value) statement.Value {
	if ocf.IsMissing() || capex.IsMissing() {
		return statement.Missing()
	}
	return statement.Some(ocf.V - math.Abs(capex.V))
}

// Growth returns (last-first)/|first| as a fraction.
func Growth(first, last statement.Value) statement.Value {
	if first.IsMissing() || last.IsMissing() || first.V == 0 {
		return statement.Missing()
	}
	return statement.Some((last.V - first.V) / math.Abs(first.V))
}

// PercentChange returns the change of each period against the period lag
// steps earlier, in percent of the earlier value. The first lag periods
// are missing.
func PercentChange(col []statement.Value, lag int) []statement.Value {
	if col == nil || lag <= 0 {
		return nil
	}
	out := make([]statement.Value, len(col))
	for i := lag; i < len(col); i++ {
		out[i] = percent(Growth(col[i-lag], col[i]))
	}
	return out
}

// PeriodChange returns the change between the last two periods, in percent
// of the earlier one.
func PeriodChange(col []statement.Value) statement.Value {
	if len(col) < 2 {
		return statement.Missing()
	}
	return percent(Growth(col[len(col)-2], col[len(col)-1]))
}

func percent(v statement.Value) statement.Value {
	if v.IsMissing() {
		return v
	}
	return statement.Some(v.V * 100)
}

func appendColumn(t *statement.Table, name string, values []statement.Value) {
	if t == nil || values == nil || t.Has(name) {
		return
	}
	for _, v := range values {
		if v.Valid {
			// Lengths always match the table here; Add cannot fail.
			_ = t.Add(name, values)
			return
		}
	}
}
