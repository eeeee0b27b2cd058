package summary

import (
	"fmt"
	"strings"

	"github.com/finscope/finscope/pkg/scoring"
	"github.com/finscope/finscope/pkg/surface"
)

// SystemPrompt is sent as the system block of every summary request.
const SystemPrompt = "You are a financial analyst. Be concise but thorough and rely only on the figures provided."

// BuildPrompt composes the analyst prompt from a scored report: every model
// score followed by its breakdown with formatted values.
func BuildPrompt(report *scoring.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analyze the company %s based on the financial scores and breakdowns below.\n", report.Ticker)
	sb.WriteString("Cover strengths, weaknesses, risks and opportunities. ")
	sb.WriteString("Conclude with a clear recommendation: should an investor BUY, HOLD, or SELL the stock as of today?\n\n")

	for _, m := range report.Models {
		fmt.Fprintf(&sb, "%s Score: %s/10\n", m.Name, surface.FormatScore(m.Score))
	}
	if report.Recommendation != "" {
		fmt.Fprintf(&sb, "Rule-based recommendation: %s\n", report.Recommendation)
	}

	for _, m := range report.Models {
		fmt.Fprintf(&sb, "\n%s Breakdown:\n", m.Name)
		writeBreakdown(&sb, m.Breakdown, "")
	}
	return sb.String()
}

func writeBreakdown(sb *strings.Builder, b scoring.Breakdown, indent string) {
	for _, e := range b {
		if c := e.Category; c != nil {
			fmt.Fprintf(sb, "%s%s (%s/10):\n", indent, c.Name, surface.FormatScore(c.Score))
			writeBreakdown(sb, c.Breakdown, indent+"  ")
			continue
		}
		mr := e.Metric
		if mr.Status == scoring.StatusReserved {
			continue
		}
		fmt.Fprintf(sb, "%s- %s: %s (score %s/10)\n", indent, mr.Name,
			surface.FormatMetric(mr.Value, mr.Format), surface.FormatScore(mr.Score))
	}
}
