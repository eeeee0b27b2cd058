// Package scoring implements the finscope financial health scoring engine.
// It maps statement line items to per-metric scores between 0 and 10 and
// rolls them up into category and model scores with an explainable
// breakdown.
package scoring

import (
	"time"

	"github.com/finscope/finscope/pkg/statement"
)

// NeutralScore is assigned to any metric that could not be computed.
const NeutralScore = 3.0

// Score bounds.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Status records how a metric value came to be.
type Status string

const (
	StatusComputed Status = "computed" // value derived and scored by its curve
	StatusMissing  Status = "missing"  // inputs absent
	StatusFailed   Status = "failed"   // inputs present but arithmetic invalid
	StatusReserved Status = "reserved" // metric not implemented yet
)

// Format tells presentation layers how a metric value should be displayed.
type Format string

const (
	FormatPlain      Format = "plain"
	FormatPercentage Format = "percentage"
	FormatCurrency   Format = "currency"
)

// MetricResult is the output of a single scoring metric.
type MetricResult struct {
	Key    string          `json:"key"`  // machine key: "debt_to_equity"
	Name   string          `json:"name"` // human name: "Debt-to-Equity"
	Value  statement.Value `json:"value"`
	Score  float64         `json:"score"`
	Status Status          `json:"status"`
	Format Format          `json:"format"`
	Note   string          `json:"note,omitempty"`
}

// CategoryResult groups metrics under a named category score.
type CategoryResult struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// ModelResult is one model's overall score and breakdown.
type ModelResult struct {
	Model     string    `json:"model"` // model key: "buffett"
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// Report is the complete output of scoring one company.
type Report struct {
	ID             string         `json:"id,omitempty"`
	Ticker         string         `json:"ticker"`
	GeneratedAt    time.Time      `json:"generated_at"`
	Recommendation Recommendation `json:"recommendation"`
	Models         []ModelResult  `json:"models"`
	Summary        string         `json:"summary,omitempty"`
	SummaryError   string         `json:"summary_error,omitempty"`
}

// Model returns the result for a model key.
func (r *Report) Model(key string) (ModelResult, bool) {
	for _, m := range r.Models {
		if m.Model == key {
			return m, true
		}
	}
	return ModelResult{}, false
}

// Recommendation is a coarse action derived from the health score.
type Recommendation string

const (
	RecommendBuy  Recommendation = "BUY"
	RecommendHold Recommendation = "HOLD"
	RecommendSell Recommendation = "SELL"
)

// RecommendationFromScore maps a financial health score to an action.
func RecommendationFromScore(score float64) Recommendation {
	switch {
	case score >= 7.5:
		return RecommendBuy
	case score >= 5:
		return RecommendHold
	default:
		return RecommendSell
	}
}
