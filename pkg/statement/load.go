package statement

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a statement bundle, picking the decoder from the file
// extension (.json, .yaml, .yml or .xlsx). The result is normalized to the
// latest DefaultMaxPeriods periods in ascending order.
func LoadFile(path string) (*Statements, error) {
	var (
		s   *Statements
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		s, err = decodeFile(path, json.Unmarshal)
	case ".yaml", ".yml":
		s, err = decodeFile(path, yaml.Unmarshal)
	case ".xlsx":
		s, err = LoadXLSX(path)
	default:
		return nil, eris.Errorf("unsupported statement file %q", path)
	}
	if err != nil {
		return nil, err
	}
	s.Normalize(DefaultMaxPeriods)
	return s, nil
}

func decodeFile(path string, unmarshal func([]byte, any) error) (*Statements, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reading %s", path)
	}
	s := &Statements{}
	if err := unmarshal(data, s); err != nil {
		return nil, eris.Wrapf(err, "parsing %s", path)
	}
	return s, nil
}

// Decode reads a JSON bundle from r.
func Decode(r io.Reader) (*Statements, error) {
	s := &Statements{}
	if err := json.NewDecoder(r).Decode(s); err != nil {
		return nil, eris.Wrap(err, "decoding statements")
	}
	s.Normalize(DefaultMaxPeriods)
	return s, nil
}

// ReadCSV parses one statement from CSV. The header row starts with the
// date column followed by line-item names; each later row is one period.
func ReadCSV(kind Kind, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "%s: reading csv", kind)
	}
	return tableFromRows(kind, rows)
}

// LoadCSVFiles reads the three statements from separate CSV files. An
// empty path leaves that statement empty.
func LoadCSVFiles(ticker, balancePath, incomePath, cashFlowPath string) (*Statements, error) {
	s := &Statements{Ticker: strings.ToUpper(ticker)}
	paths := []string{balancePath, incomePath, cashFlowPath}
	for i, k := range Kinds {
		if paths[i] == "" {
			s.SetTable(NewTable(k))
			continue
		}
		f, err := os.Open(paths[i])
		if err != nil {
			return nil, eris.Wrapf(err, "opening %s", paths[i])
		}
		t, err := ReadCSV(k, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		s.SetTable(t)
	}
	s.Normalize(DefaultMaxPeriods)
	return s, nil
}

// LoadXLSX reads a workbook with one sheet per statement, named after the
// statement kind. Sheets use the same row layout as ReadCSV. Absent sheets
// produce empty tables.
func LoadXLSX(path string) (*Statements, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	s := &Statements{Ticker: tickerFromPath(path)}
	for _, k := range Kinds {
		sheet, ok := f.Sheet[string(k)]
		if !ok {
			s.SetTable(NewTable(k))
			continue
		}
		rows := make([][]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			rows = append(rows, rowToStrings(row))
		}
		t, err := tableFromRows(k, rows)
		if err != nil {
			return nil, eris.Wrapf(err, "xlsx: sheet %q", k)
		}
		s.SetTable(t)
	}
	return s, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func tickerFromPath(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}

func tableFromRows(kind Kind, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return NewTable(kind), nil
	}
	header := rows[0]
	if len(header) == 0 {
		return nil, eris.Errorf("%s: empty header row", kind)
	}

	var body [][]string
	for _, r := range rows[1:] {
		if len(r) == 0 || strings.TrimSpace(r[0]) == "" {
			continue
		}
		body = append(body, r)
	}

	recs := make([]map[string]any, len(body))
	for i, r := range body {
		rec := map[string]any{"date": r[0]}
		for j := 1; j < len(header); j++ {
			name := strings.TrimSpace(header[j])
			if name == "" {
				continue
			}
			cell := ""
			if j < len(r) {
				cell = r[j]
			}
			rec[name] = cell
		}
		recs[i] = rec
	}

	t, err := TableFromRecords(kind, recs)
	if err != nil {
		return nil, err
	}
	return reorder(t, header[1:]), nil
}

// reorder rebuilds t so its columns follow the source header order.
func reorder(t *Table, header []string) *Table {
	out := NewTable(t.kind, t.dates...)
	for _, name := range header {
		name = strings.TrimSpace(name)
		if col, ok := t.columns[name]; ok && !out.Has(name) {
			_ = out.Add(name, col)
		}
	}
	return out
}
