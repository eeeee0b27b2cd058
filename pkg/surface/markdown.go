package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/finscope/finscope/pkg/scoring"
	"github.com/finscope/finscope/pkg/statement"
)

// MarkdownRenderer renders a Report as a Markdown document with one
// table per model.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, report *scoring.Report) error {
	_, err := io.WriteString(w, BuildMarkdown(report))
	return err
}

// BuildMarkdown returns the Markdown form of a report.
func BuildMarkdown(report *scoring.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s financial scores\n\n", report.Ticker)
	fmt.Fprintf(&sb, "**Recommendation:** %s\n\n", report.Recommendation)

	sb.WriteString("| Model | Score |\n|-------|-------|\n")
	for _, m := range report.Models {
		fmt.Fprintf(&sb, "| %s | %s |\n", m.Name, FormatScore(m.Score))
	}
	sb.WriteString("\n")

	for _, m := range report.Models {
		fmt.Fprintf(&sb, "## %s (%s/10)\n\n", m.Name, FormatScore(m.Score))
		var flat scoring.Breakdown
		for _, e := range m.Breakdown {
			if e.Category != nil {
				fmt.Fprintf(&sb, "### %s (%s/10)\n\n", e.Category.Name, FormatScore(e.Category.Score))
				writeMetricTable(&sb, e.Category.Breakdown)
				continue
			}
			flat = append(flat, e)
		}
		if len(flat) > 0 {
			writeMetricTable(&sb, flat)
		}
	}

	if report.Summary != "" {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(strings.TrimSpace(report.Summary))
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeMetricTable(sb *strings.Builder, b scoring.Breakdown) {
	sb.WriteString("| Metric | Value | Score | Status |\n|--------|-------|-------|--------|\n")
	for _, mr := range b.Metrics() {
		fmt.Fprintf(sb, "| %s | %s | %s | %s |\n",
			escapeCell(mr.Name), FormatMetric(mr.Value, mr.Format), FormatScore(mr.Score), mr.Status)
	}
	sb.WriteString("\n")
}

// WriteStatementTables writes each statement as a Markdown table with one
// row per period, for inspecting raw and derived columns.
func WriteStatementTables(w io.Writer, s *statement.Statements) error {
	var sb strings.Builder
	for _, k := range statement.Kinds {
		t := s.Table(k)
		if t.Len() == 0 {
			continue
		}
		cols := t.Columns()
		fmt.Fprintf(&sb, "## %s\n\n| Date |", kindTitle(k))
		for _, c := range cols {
			fmt.Fprintf(&sb, " %s |", escapeCell(c))
		}
		sb.WriteString("\n|------|")
		sb.WriteString(strings.Repeat("---|", len(cols)))
		sb.WriteString("\n")
		for i, d := range t.Dates() {
			fmt.Fprintf(&sb, "| %s |", d.Format(statement.DateLayout))
			for _, c := range cols {
				fmt.Fprintf(&sb, " %s |", FormatMetric(t.At(c, i), scoring.FormatPlain))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func kindTitle(k statement.Kind) string {
	switch k {
	case statement.BalanceSheet:
		return "Balance Sheet"
	case statement.IncomeStatement:
		return "Income Statement"
	case statement.CashFlow:
		return "Cash Flow"
	}
	return string(k)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
