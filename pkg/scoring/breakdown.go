package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one row of a breakdown: either a metric or a nested category.
type Entry struct {
	Metric   *MetricResult
	Category *CategoryResult
}

// Name returns the display name of the entry.
func (e Entry) Name() string {
	if e.Category != nil {
		return e.Category.Name
	}
	if e.Metric != nil {
		return e.Metric.Name
	}
	return ""
}

// Score returns the entry's score.
func (e Entry) Score() float64 {
	if e.Category != nil {
		return e.Category.Score
	}
	if e.Metric != nil {
		return e.Metric.Score
	}
	return NeutralScore
}

// Breakdown is an ordered mapping from names to metric or category results.
// It serializes to a JSON object whose keys keep breakdown order.
type Breakdown []Entry

// Get returns the top-level entry with the given name.
func (b Breakdown) Get(name string) (Entry, bool) {
	for _, e := range b {
		if e.Name() == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Metric finds a metric by name at any depth.
func (b Breakdown) Metric(name string) (MetricResult, bool) {
	for _, m := range b.Metrics() {
		if m.Name == name {
			return m, true
		}
	}
	return MetricResult{}, false
}

// Metrics flattens the breakdown into its metrics in order.
func (b Breakdown) Metrics() []MetricResult {
	var out []MetricResult
	for _, e := range b {
		switch {
		case e.Category != nil:
			out = append(out, e.Category.Breakdown.Metrics()...)
		case e.Metric != nil:
			out = append(out, *e.Metric)
		}
	}
	return out
}

// Names returns the top-level entry names in order.
func (b Breakdown) Names() []string {
	names := make([]string, len(b))
	for i, e := range b {
		names[i] = e.Name()
	}
	return names
}

// MarshalJSON writes the breakdown as an ordered JSON object.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if e.Category != nil {
			val, err = json.Marshal(e.Category)
		} else {
			val, err = json.Marshal(e.Metric)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object written by MarshalJSON, keeping key order.
// Entries carrying a nested "breakdown" are categories.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*b = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("breakdown: expected object, got %v", tok)
	}

	var out Breakdown
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("breakdown: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		var probe struct {
			Breakdown json.RawMessage `json:"breakdown"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return err
		}
		if probe.Breakdown != nil {
			c := &CategoryResult{}
			if err := json.Unmarshal(raw, c); err != nil {
				return err
			}
			if c.Name == "" {
				c.Name = name
			}
			out = append(out, Entry{Category: c})
			continue
		}
		m := &MetricResult{}
		if err := json.Unmarshal(raw, m); err != nil {
			return err
		}
		if m.Name == "" {
			m.Name = name
		}
		out = append(out, Entry{Metric: m})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = out
	return nil
}
