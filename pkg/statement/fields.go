package statement

// Field is a canonical line item. Data sources name the same item in
// different ways; each Field carries the ordered list of names it accepts.
type Field string

const (
	FieldTotalLiabilities         Field = "total_liabilities"
	FieldTotalEquity              Field = "total_equity"
	FieldCurrentAssets            Field = "current_assets"
	FieldCurrentLiabilities       Field = "current_liabilities"
	FieldCash                     Field = "cash"
	FieldTotalAssets              Field = "total_assets"
	FieldTotalRevenue             Field = "total_revenue"
	FieldGrossProfit              Field = "gross_profit"
	FieldNetIncome                Field = "net_income"
	FieldDepreciationAmortization Field = "depreciation_amortization"
	FieldSharesOutstanding        Field = "shares_outstanding"
	FieldOperatingCashFlow        Field = "operating_cash_flow"
	FieldCapitalExpenditures      Field = "capital_expenditures"
	FieldFreeCashFlow             Field = "free_cash_flow"
)

// aliases lists accepted column names per field. Earlier names win when a
// table carries more than one of them.
var aliases = map[Field][]string{
	FieldTotalLiabilities: {"Total Liab", "Total Liabilities Net Minority Interest", "Total Liabilities"},
	FieldTotalEquity:      {"Total Stockholder Equity", "Stockholders Equity", "Total Equity Gross Minority Interest"},
	FieldCurrentAssets:    {"Total Current Assets", "Current Assets"},
	FieldCurrentLiabilities: {
		"Total Current Liabilities", "Current Liabilities",
	},
	FieldCash: {
		"Cash", "Cash And Cash Equivalents", "Cash Cash Equivalents And Short Term Investments",
	},
	FieldTotalAssets:  {"Total Assets", "Total Asset", "TotalAssets"},
	FieldTotalRevenue: {"Total Revenue", "TotalRevenue", "Revenues", "Operating Revenue"},
	FieldGrossProfit:  {"Gross Profit", "GrossProfit"},
	FieldNetIncome: {
		"Net Income", "NetIncome", "Net Income Applicable To Common Shares", "Net Income Common Stockholders",
	},
	FieldDepreciationAmortization: {"Depreciation And Amortization", "Depreciation", "Reconciled Depreciation"},
	FieldSharesOutstanding:        {"Basic Average Shares", "Diluted Average Shares"},
	FieldOperatingCashFlow: {
		"Operating Cash Flow", "Total Cash From Operating Activities", "Cash Flow From Continuing Operating Activities",
	},
	FieldCapitalExpenditures: {"Capital Expenditure", "Capital Expenditures", "CapitalExpenditures"},
	FieldFreeCashFlow:        {"Free Cash Flow"},
}

type aliasRef struct {
	field Field
	rank  int
}

var byAlias = func() map[string]aliasRef {
	m := make(map[string]aliasRef)
	for f, names := range aliases {
		for i, n := range names {
			m[n] = aliasRef{field: f, rank: i}
		}
	}
	return m
}()

// Aliases returns the accepted column names for f, in priority order.
func Aliases(f Field) []string {
	out := make([]string, len(aliases[f]))
	copy(out, aliases[f])
	return out
}

// FieldFor reports which canonical field a raw column name maps to.
func FieldFor(column string) (Field, bool) {
	ref, ok := byAlias[column]
	return ref.field, ok
}
