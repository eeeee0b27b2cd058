package statement

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Value is a single line-item amount. The zero Value is missing.
type Value struct {
	V     float64
	Valid bool
}

// Some returns a present value. Non-finite inputs are treated as missing.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{V: v, Valid: true}
}

// Missing returns the missing-value marker.
func Missing() Value {
	return Value{}
}

// IsMissing reports whether the value is absent.
func (v Value) IsMissing() bool {
	return !v.Valid
}

// Float returns the value as a float64, or NaN when missing.
func (v Value) Float() float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.V
}

func (v Value) String() string {
	if !v.Valid {
		return "null"
	}
	return strconv.FormatFloat(v.V, 'f', -1, 64)
}

// MarshalJSON encodes a missing value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON accepts numbers, null and numeric strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*v = Value{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*v = ParseValue(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// ParseValue converts a raw cell into a Value. Blank cells and the usual
// placeholders ("NaN", "N/A", "null", "-") are missing, as is anything
// that does not parse as a number. Thousands separators are stripped.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nan", "n/a", "na", "null", "none", "-":
		return Value{}
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}
	}
	return Some(f)
}
