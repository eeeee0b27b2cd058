package scoring

import "github.com/finscope/finscope/pkg/statement"

// Model keys.
const (
	ModelFinancialHealth = "financial_health"
	ModelBuffett         = "buffett"
	ModelLynch           = "lynch"
)

// Category is a named group of metrics inside a model.
type Category struct {
	Key  string
	Name string
}

// CombineFunc rolls metric (or category) scores into an overall score.
type CombineFunc func(scores ...float64) float64

// Model is a declarative scoring model: an ordered metric table plus the
// rule for combining scores. When Categories is set, each category score
// is the Average of its metrics and the model score combines the category
// scores.
type Model struct {
	Key        string
	Name       string
	Categories []Category
	Metrics    []MetricDef
	Combine    CombineFunc // defaults to Average
}

// Evaluate scores every metric against ratio-enriched statements. Every
// metric in the table appears in the breakdown whether or not it could be
// computed.
func (m Model) Evaluate(s *statement.Statements) ModelResult {
	combine := m.Combine
	if combine == nil {
		combine = Average
	}

	res := ModelResult{Model: m.Key, Name: m.Name}

	if len(m.Categories) == 0 {
		scores := make([]float64, 0, len(m.Metrics))
		for _, def := range m.Metrics {
			mr := def.Evaluate(m.Key, s)
			res.Breakdown = append(res.Breakdown, Entry{Metric: &mr})
			scores = append(scores, mr.Score)
		}
		res.Score = combine(scores...)
		return res
	}

	scores := make([]float64, 0, len(m.Categories))
	for _, cat := range m.Categories {
		cr := &CategoryResult{Key: cat.Key, Name: cat.Name}
		var catScores []float64
		for _, def := range m.Metrics {
			if def.Category != cat.Key {
				continue
			}
			mr := def.Evaluate(m.Key, s)
			cr.Breakdown = append(cr.Breakdown, Entry{Metric: &mr})
			catScores = append(catScores, mr.Score)
		}
		cr.Score = Average(catScores...)
		res.Breakdown = append(res.Breakdown, Entry{Category: cr})
		scores = append(scores, cr.Score)
	}
	res.Score = combine(scores...)
	return res
}
