package scoring

import (
	"fmt"
	"time"

	"github.com/finscope/finscope/pkg/ratios"
	"github.com/finscope/finscope/pkg/statement"
)

// Engine runs the configured models against a company's statements.
// It holds no mutable state and may be shared across goroutines.
type Engine struct {
	models []Model
	now    func() time.Time
}

// NewEngine creates a scoring engine with the given models.
func NewEngine(models ...Model) *Engine {
	return &Engine{models: models, now: time.Now}
}

// WithClock returns a copy of the engine that stamps reports with now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	return &Engine{models: e.models, now: now}
}

// Models returns the engine's models in evaluation order.
func (e *Engine) Models() []Model {
	out := make([]Model, len(e.models))
	copy(out, e.models)
	return out
}

// Score derives ratios on a private copy of s and evaluates every model.
// Absent tables, columns and periods degrade individual metrics to the
// neutral score; the only error is a nil input.
func (e *Engine) Score(s *statement.Statements) (*Report, error) {
	if s == nil {
		return nil, fmt.Errorf("statements are nil")
	}

	derived := ratios.Derive(s)

	report := &Report{
		Ticker:      s.Ticker,
		GeneratedAt: e.now().UTC(),
	}
	for _, m := range e.models {
		report.Models = append(report.Models, m.Evaluate(derived))
	}

	// The recommendation follows the health model when it ran, otherwise
	// the mean of whatever models did.
	if fh, ok := report.Model(ModelFinancialHealth); ok {
		report.Recommendation = RecommendationFromScore(fh.Score)
	} else {
		scores := make([]float64, len(report.Models))
		for i, m := range report.Models {
			scores[i] = m.Score
		}
		report.Recommendation = RecommendationFromScore(Average(scores...))
	}

	return report, nil
}
