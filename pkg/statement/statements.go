package statement

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultMaxPeriods is the number of latest quarters kept at ingestion.
const DefaultMaxPeriods = 8

// DateLayout is the period date format used on the wire.
const DateLayout = "2006-01-02"

// ErrInvalidTicker is returned for tickers that are not plain exchange
// symbols.
var ErrInvalidTicker = eris.New("invalid ticker")

// Tickers name storage keys and output files, so only upper-case letters,
// digits, dots and dashes are accepted, starting with a letter or digit.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,15}$`)

// ValidTicker reports whether t is an acceptable ticker symbol, such as
// AAPL, BRK.B or BF-B.
func ValidTicker(t string) bool {
	return tickerPattern.MatchString(t)
}

// CheckTicker returns ErrInvalidTicker when t is not a valid ticker.
func CheckTicker(t string) error {
	if !ValidTicker(t) {
		return eris.Wrapf(ErrInvalidTicker, "%q", t)
	}
	return nil
}

// Statements bundles the three statement tables for one company together
// with the optional market inputs some models use.
type Statements struct {
	Ticker          string
	Price           Value
	FetchedAt       time.Time
	BalanceSheet    *Table
	IncomeStatement *Table
	CashFlow        *Table
}

// Table returns the table of the given kind.
func (s *Statements) Table(k Kind) *Table {
	switch k {
	case BalanceSheet:
		return s.BalanceSheet
	case IncomeStatement:
		return s.IncomeStatement
	case CashFlow:
		return s.CashFlow
	}
	return nil
}

// SetTable replaces the table of the table's own kind.
func (s *Statements) SetTable(t *Table) {
	switch t.Kind() {
	case BalanceSheet:
		s.BalanceSheet = t
	case IncomeStatement:
		s.IncomeStatement = t
	case CashFlow:
		s.CashFlow = t
	}
}

// Clone returns a deep copy. Missing tables are replaced with empty ones so
// that callers never need nil checks.
func (s *Statements) Clone() *Statements {
	c := &Statements{Ticker: s.Ticker, Price: s.Price, FetchedAt: s.FetchedAt}
	for _, k := range Kinds {
		t := s.Table(k)
		if t == nil {
			t = NewTable(k)
		}
		c.SetTable(t.Clone())
	}
	return c
}

// Normalize sorts every table ascending by date and keeps the latest
// maxPeriods periods. A maxPeriods of zero keeps everything.
func (s *Statements) Normalize(maxPeriods int) {
	for _, k := range Kinds {
		t := s.Table(k)
		if t == nil {
			continue
		}
		t.SortByDate()
		t.Trim(maxPeriods)
	}
}

// Empty reports whether no table has any period.
func (s *Statements) Empty() bool {
	for _, k := range Kinds {
		if s.Table(k).Len() > 0 {
			return false
		}
	}
	return true
}

type wireBundle struct {
	Ticker          string           `json:"ticker" yaml:"ticker"`
	Price           *float64         `json:"price,omitempty" yaml:"price,omitempty"`
	FetchedAt       *time.Time       `json:"fetched_at,omitempty" yaml:"fetched_at,omitempty"`
	BalanceSheet    []map[string]any `json:"balance_sheet" yaml:"balance_sheet"`
	IncomeStatement []map[string]any `json:"income_statement" yaml:"income_statement"`
	CashFlow        []map[string]any `json:"cash_flow" yaml:"cash_flow"`
}

func (s *Statements) toWire() wireBundle {
	w := wireBundle{
		Ticker:          s.Ticker,
		BalanceSheet:    tableRecords(s.BalanceSheet),
		IncomeStatement: tableRecords(s.IncomeStatement),
		CashFlow:        tableRecords(s.CashFlow),
	}
	if s.Price.Valid {
		p := s.Price.V
		w.Price = &p
	}
	if !s.FetchedAt.IsZero() {
		at := s.FetchedAt
		w.FetchedAt = &at
	}
	return w
}

func (s *Statements) fromWire(w wireBundle) error {
	s.Ticker = strings.ToUpper(strings.TrimSpace(w.Ticker))
	s.Price = Value{}
	if w.Price != nil {
		s.Price = Some(*w.Price)
	}
	s.FetchedAt = time.Time{}
	if w.FetchedAt != nil {
		s.FetchedAt = *w.FetchedAt
	}
	records := [][]map[string]any{w.BalanceSheet, w.IncomeStatement, w.CashFlow}
	for i, k := range Kinds {
		t, err := TableFromRecords(k, records[i])
		if err != nil {
			return err
		}
		s.SetTable(t)
	}
	return nil
}

// MarshalJSON encodes the bundle as period records per statement.
func (s *Statements) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toWire())
}

// UnmarshalJSON decodes a bundle written by MarshalJSON.
func (s *Statements) UnmarshalJSON(data []byte) error {
	var w wireBundle
	if err := json.Unmarshal(data, &w); err != nil {
		return eris.Wrap(err, "decoding statements")
	}
	return s.fromWire(w)
}

// MarshalYAML encodes the bundle in the same record layout as JSON.
func (s *Statements) MarshalYAML() (any, error) {
	return s.toWire(), nil
}

// UnmarshalYAML decodes a YAML bundle.
func (s *Statements) UnmarshalYAML(node *yaml.Node) error {
	var w wireBundle
	if err := node.Decode(&w); err != nil {
		return eris.Wrap(err, "decoding statements")
	}
	return s.fromWire(w)
}

// TableFromRecords builds a table from period records, each holding a
// "date" key plus line items. Records may arrive in any order.
func TableFromRecords(kind Kind, recs []map[string]any) (*Table, error) {
	dates := make([]time.Time, len(recs))
	names := make(map[string]struct{})
	for i, rec := range recs {
		d, err := recordDate(rec["date"])
		if err != nil {
			return nil, eris.Wrapf(err, "%s: period %d", kind, i)
		}
		dates[i] = d
		for k := range rec {
			if k != "date" {
				names[k] = struct{}{}
			}
		}
	}

	cols := make([]string, 0, len(names))
	for n := range names {
		cols = append(cols, n)
	}
	sort.Strings(cols)

	t := NewTable(kind, dates...)
	for _, name := range cols {
		vals := make([]Value, len(recs))
		for i, rec := range recs {
			vals[i] = anyValue(rec[name])
		}
		if err := t.Add(name, vals); err != nil {
			return nil, err
		}
	}
	t.SortByDate()
	return t, nil
}

func tableRecords(t *Table) []map[string]any {
	if t == nil {
		return nil
	}
	recs := make([]map[string]any, t.Len())
	for i, d := range t.dates {
		rec := map[string]any{"date": d.Format(DateLayout)}
		for _, name := range t.order {
			v := t.columns[name][i]
			if v.Valid {
				rec[name] = v.V
			} else {
				rec[name] = nil
			}
		}
		recs[i] = rec
	}
	return recs
}

func recordDate(raw any) (time.Time, error) {
	switch d := raw.(type) {
	case time.Time:
		return d, nil
	case string:
		return ParseDate(d)
	case nil:
		return time.Time{}, eris.New("missing date")
	}
	return time.Time{}, eris.Errorf("unsupported date %v", raw)
}

func anyValue(raw any) Value {
	switch v := raw.(type) {
	case float64:
		return Some(v)
	case float32:
		return Some(float64(v))
	case int:
		return Some(float64(v))
	case int64:
		return Some(float64(v))
	case uint64:
		return Some(float64(v))
	case string:
		return ParseValue(v)
	}
	return Value{}
}

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/06",
	"01-02-06",
}

// ParseDate accepts ISO dates, timestamps, US-style dates and spreadsheet
// serial day numbers.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if v := ParseValue(s); v.Valid && v.V > 0 && v.V < 2958466 {
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(v.V)), nil
	}
	return time.Time{}, eris.Errorf("unrecognized date %q", s)
}
