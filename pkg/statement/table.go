// Package statement holds the quarterly financial statements a scoring pass
// reads from: period-ordered tables of named line items, the canonical field
// bindings resolved when columns are added, and loaders for the supported
// file formats.
package statement

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
)

// Kind identifies which financial statement a table holds.
type Kind string

const (
	BalanceSheet    Kind = "balance_sheet"
	IncomeStatement Kind = "income_statement"
	CashFlow        Kind = "cash_flow"
)

// Kinds lists the statement kinds in presentation order.
var Kinds = []Kind{BalanceSheet, IncomeStatement, CashFlow}

var (
	// ErrColumnExists is returned when adding a column that is already present.
	ErrColumnExists = eris.New("column already exists")
	// ErrLengthMismatch is returned when a column does not have one value per period.
	ErrLengthMismatch = eris.New("column length does not match period count")
)

type binding struct {
	column string
	rank   int
}

// Table is an ordered series of periods for one statement. Columns are
// stored in insertion order and are never overwritten once added.
type Table struct {
	kind     Kind
	dates    []time.Time
	order    []string
	columns  map[string][]Value
	bindings map[Field]binding
}

// NewTable creates an empty table over the given period dates.
func NewTable(kind Kind, dates ...time.Time) *Table {
	d := make([]time.Time, len(dates))
	copy(d, dates)
	return &Table{
		kind:     kind,
		dates:    d,
		columns:  make(map[string][]Value),
		bindings: make(map[Field]binding),
	}
}

// Kind returns the statement kind.
func (t *Table) Kind() Kind { return t.kind }

// Len returns the number of periods. A nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.dates)
}

// Dates returns a copy of the period dates.
func (t *Table) Dates() []time.Time {
	if t == nil {
		return nil
	}
	d := make([]time.Time, len(t.dates))
	copy(d, t.dates)
	return d
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.columns[name]
	return ok
}

// Add appends a column. Adding a name that already exists fails, so raw
// columns can never be replaced by derived ones. If the name is an alias of
// a canonical field, the binding for that field is updated when this name
// ranks ahead of the current one.
func (t *Table) Add(name string, values []Value) error {
	if _, ok := t.columns[name]; ok {
		return eris.Wrapf(ErrColumnExists, "%s: %q", t.kind, name)
	}
	if len(values) != len(t.dates) {
		return eris.Wrapf(ErrLengthMismatch, "%s: %q has %d values for %d periods", t.kind, name, len(values), len(t.dates))
	}
	col := make([]Value, len(values))
	copy(col, values)
	t.columns[name] = col
	t.order = append(t.order, name)

	if ref, ok := byAlias[name]; ok {
		if cur, bound := t.bindings[ref.field]; !bound || ref.rank < cur.rank {
			t.bindings[ref.field] = binding{column: name, rank: ref.rank}
		}
	}
	return nil
}

// Column returns a copy of the named column, or nil if absent.
func (t *Table) Column(name string) []Value {
	if t == nil {
		return nil
	}
	col, ok := t.columns[name]
	if !ok {
		return nil
	}
	out := make([]Value, len(col))
	copy(out, col)
	return out
}

// At returns the value of a column at period i. Absent columns and
// out-of-range periods yield a missing value.
func (t *Table) At(name string, i int) Value {
	if t == nil {
		return Value{}
	}
	col, ok := t.columns[name]
	if !ok || i < 0 || i >= len(col) {
		return Value{}
	}
	return col[i]
}

// Latest returns the value of a column in the last period.
func (t *Table) Latest(name string) Value {
	return t.At(name, t.Len()-1)
}

// Lag returns the value n periods before the latest one.
func (t *Table) Lag(name string, n int) Value {
	return t.At(name, t.Len()-1-n)
}

// FieldColumn returns the raw column bound to a canonical field.
func (t *Table) FieldColumn(f Field) (string, bool) {
	if t == nil {
		return "", false
	}
	b, ok := t.bindings[f]
	return b.column, ok
}

// Field returns the column bound to f, or nil when no alias is present.
func (t *Table) Field(f Field) []Value {
	name, ok := t.FieldColumn(f)
	if !ok {
		return nil
	}
	return t.Column(name)
}

// LatestField returns the latest value of the column bound to f.
func (t *Table) LatestField(f Field) Value {
	name, ok := t.FieldColumn(f)
	if !ok {
		return Value{}
	}
	return t.Latest(name)
}

// LagField returns the value of f n periods before the latest one.
func (t *Table) LagField(f Field, n int) Value {
	name, ok := t.FieldColumn(f)
	if !ok {
		return Value{}
	}
	return t.Lag(name, n)
}

// Clone returns a deep copy that can be extended without touching t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := NewTable(t.kind, t.dates...)
	for _, name := range t.order {
		// Cannot fail: names are unique and lengths already match.
		_ = c.Add(name, t.columns[name])
	}
	return c
}

// SortByDate reorders every column so periods ascend chronologically.
func (t *Table) SortByDate() {
	idx := make([]int, len(t.dates))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return t.dates[idx[a]].Before(t.dates[idx[b]]) })
	t.reindex(idx)
}

// Trim keeps only the latest n periods.
func (t *Table) Trim(n int) {
	if n <= 0 || n >= len(t.dates) {
		return
	}
	start := len(t.dates) - n
	idx := make([]int, 0, n)
	for i := start; i < len(t.dates); i++ {
		idx = append(idx, i)
	}
	t.reindex(idx)
}

func (t *Table) reindex(idx []int) {
	dates := make([]time.Time, len(idx))
	for i, j := range idx {
		dates[i] = t.dates[j]
	}
	t.dates = dates
	for name, col := range t.columns {
		next := make([]Value, len(idx))
		for i, j := range idx {
			next[i] = col[j]
		}
		t.columns[name] = next
	}
}
