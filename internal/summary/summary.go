// Package summary produces the narrative analysis attached to a report.
package summary

import (
	"context"

	"go.uber.org/zap"

	"github.com/finscope/finscope/pkg/scoring"
)

// Summarizer turns an analyst prompt into prose.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Static returns a fixed text, or Err when set. Useful when no API key is
// configured and in tests.
type Static struct {
	Text string
	Err  error

	// Prompts records every prompt received.
	Prompts []string
}

func (s *Static) Summarize(_ context.Context, prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

// Attach builds the prompt for report, asks sum for a summary and stores
// the result on the report. A failed call is recorded in SummaryError and
// never aborts scoring.
func Attach(ctx context.Context, sum Summarizer, report *scoring.Report) {
	text, err := sum.Summarize(ctx, BuildPrompt(report))
	if err != nil {
		zap.L().Warn("summary failed",
			zap.String("ticker", report.Ticker),
			zap.Error(err),
		)
		report.Summary = ""
		report.SummaryError = err.Error()
		return
	}
	report.Summary = text
	report.SummaryError = ""
}
