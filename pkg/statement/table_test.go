package statement_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finscope/finscope/pkg/statement"
)

func day(s string) time.Time {
	t, err := time.Parse(statement.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestValue(t *testing.T) {
	assert.True(t, statement.Missing().IsMissing())
	assert.True(t, statement.Some(math.NaN()).IsMissing())
	assert.True(t, statement.Some(math.Inf(1)).IsMissing())
	assert.True(t, math.IsNaN(statement.Missing().Float()))
	assert.Equal(t, 1.5, statement.Some(1.5).Float())

	data, err := json.Marshal([]statement.Value{statement.Some(2), statement.Missing()})
	require.NoError(t, err)
	assert.JSONEq(t, `[2, null]`, string(data))

	var vals []statement.Value
	require.NoError(t, json.Unmarshal([]byte(`[1.25, null, "3,000", "N/A"]`), &vals))
	assert.Equal(t, []statement.Value{statement.Some(1.25), {}, statement.Some(3000), {}}, vals)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want statement.Value
	}{
		{"12.5", statement.Some(12.5)},
		{" -4 ", statement.Some(-4)},
		{"1,234,567", statement.Some(1234567)},
		{"", statement.Missing()},
		{"NaN", statement.Missing()},
		{"n/a", statement.Missing()},
		{"-", statement.Missing()},
		{"abc", statement.Missing()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statement.ParseValue(tt.in), "input %q", tt.in)
	}
}

func TestTableAddRefusesOverwrite(t *testing.T) {
	tbl := statement.NewTable(statement.BalanceSheet, day("2024-03-31"))
	require.NoError(t, tbl.Add("Cash", []statement.Value{statement.Some(1)}))

	err := tbl.Add("Cash", []statement.Value{statement.Some(2)})
	require.Error(t, err)
	assert.True(t, eris.Is(err, statement.ErrColumnExists))
	assert.Equal(t, statement.Some(1), tbl.Latest("Cash"))

	err = tbl.Add("Total Assets", []statement.Value{statement.Some(1), statement.Some(2)})
	assert.True(t, eris.Is(err, statement.ErrLengthMismatch))
}

func TestTableAccessorsTolerateAbsence(t *testing.T) {
	tbl := statement.NewTable(statement.IncomeStatement, day("2024-03-31"), day("2024-06-30"))
	require.NoError(t, tbl.Add("Net Income", []statement.Value{statement.Some(10), statement.Some(12)}))

	assert.Equal(t, statement.Some(12), tbl.Latest("Net Income"))
	assert.Equal(t, statement.Some(10), tbl.Lag("Net Income", 1))
	assert.True(t, tbl.Lag("Net Income", 2).IsMissing())
	assert.True(t, tbl.Latest("Total Revenue").IsMissing())
	assert.Nil(t, tbl.Column("Total Revenue"))

	var nilTable *statement.Table
	assert.Equal(t, 0, nilTable.Len())
	assert.True(t, nilTable.LatestField(statement.FieldNetIncome).IsMissing())
}

func TestFieldBindingPrefersEarlierAlias(t *testing.T) {
	tbl := statement.NewTable(statement.BalanceSheet, day("2024-03-31"))
	require.NoError(t, tbl.Add("Total Liabilities", []statement.Value{statement.Some(80)}))
	require.NoError(t, tbl.Add("Total Liabilities Net Minority Interest", []statement.Value{statement.Some(70)}))

	col, ok := tbl.FieldColumn(statement.FieldTotalLiabilities)
	require.True(t, ok)
	assert.Equal(t, "Total Liabilities Net Minority Interest", col)

	require.NoError(t, tbl.Add("Total Liab", []statement.Value{statement.Some(50)}))
	assert.Equal(t, statement.Some(50), tbl.LatestField(statement.FieldTotalLiabilities))

	_, ok = tbl.FieldColumn(statement.FieldTotalEquity)
	assert.False(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := statement.NewTable(statement.CashFlow, day("2024-03-31"))
	require.NoError(t, tbl.Add("Free Cash Flow", []statement.Value{statement.Some(5)}))

	c := tbl.Clone()
	require.NoError(t, c.Add("Free_Cash_Flow", []statement.Value{statement.Some(5)}))

	assert.False(t, tbl.Has("Free_Cash_Flow"))
	assert.True(t, c.Has("Free Cash Flow"))
	assert.Equal(t, []string{"Free Cash Flow", "Free_Cash_Flow"}, c.Columns())
}

func TestSortAndTrim(t *testing.T) {
	tbl := statement.NewTable(statement.IncomeStatement, day("2024-06-30"), day("2023-12-31"), day("2024-03-31"))
	require.NoError(t, tbl.Add("Total Revenue", []statement.Value{statement.Some(3), statement.Some(1), statement.Some(2)}))

	tbl.SortByDate()
	assert.Equal(t, []statement.Value{statement.Some(1), statement.Some(2), statement.Some(3)}, tbl.Column("Total Revenue"))

	tbl.Trim(2)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, day("2024-03-31"), tbl.Dates()[0])
	assert.Equal(t, statement.Some(3), tbl.Latest("Total Revenue"))
}

func TestStatementsCloneFillsMissingTables(t *testing.T) {
	s := &statement.Statements{Ticker: "ACME"}
	c := s.Clone()
	for _, k := range statement.Kinds {
		require.NotNil(t, c.Table(k))
		assert.Equal(t, k, c.Table(k).Kind())
	}
	assert.True(t, c.Empty())
}

func TestValidTicker(t *testing.T) {
	for _, ok := range []string{"AAPL", "BRK.B", "BF-B", "7203", "A"} {
		assert.True(t, statement.ValidTicker(ok), ok)
		assert.NoError(t, statement.CheckTicker(ok))
	}
	for _, bad := range []string{"", "aapl", "..", ".A", "../../ESCAPED", "A/B", `A\B`, "A B", "TOOLONGTICKERSYMBOL"} {
		assert.False(t, statement.ValidTicker(bad), bad)
		assert.ErrorIs(t, statement.CheckTicker(bad), statement.ErrInvalidTicker)
	}
}
