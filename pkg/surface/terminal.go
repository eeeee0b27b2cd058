package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/finscope/finscope/pkg/scoring"
)

// TerminalRenderer renders a Report as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func scoreColor(score float64) string {
	if noColor() {
		return ""
	}
	switch {
	case score >= 7:
		return colorGreen
	case score >= 5:
		return colorYellow
	default:
		return colorRed
	}
}

func recommendationColor(rec scoring.Recommendation) string {
	switch rec {
	case scoring.RecommendBuy:
		return colorGreen
	case scoring.RecommendHold:
		return colorYellow
	default:
		return colorRed
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, report *scoring.Report) error {
	fmt.Fprintf(w, "%s\n\n", bold(fmt.Sprintf("finscope: %s (%s)",
		report.Ticker, colored(string(report.Recommendation), recommendationColor(report.Recommendation)))))

	for _, m := range report.Models {
		fmt.Fprintf(w, "%s  %s\n", bold(m.Name), colored(FormatScore(m.Score)+"/10", scoreColor(m.Score)))
		renderEntries(w, m.Breakdown, "  ")
		fmt.Fprintln(w)
	}

	if report.Summary != "" {
		fmt.Fprintln(w, bold("Summary:"))
		for _, para := range strings.Split(report.Summary, "\n") {
			for _, line := range wrapText(para, 76) {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
		fmt.Fprintln(w)
	}
	if report.SummaryError != "" {
		fmt.Fprintf(w, "%s %s\n\n", colored("Summary unavailable:", colorRed), dim(report.SummaryError))
	}

	return nil
}

func renderEntries(w io.Writer, b scoring.Breakdown, indent string) {
	for _, e := range b {
		if c := e.Category; c != nil {
			fmt.Fprintf(w, "%s%s  %s\n", indent, bold(c.Name), colored(FormatScore(c.Score), scoreColor(c.Score)))
			renderEntries(w, c.Breakdown, indent+"  ")
			continue
		}
		mr := e.Metric
		line := fmt.Sprintf("%s%-26s %14s  %s", indent, mr.Name, FormatMetric(mr.Value, mr.Format),
			colored(fmt.Sprintf("%5s", FormatScore(mr.Score)), scoreColor(mr.Score)))
		if mr.Status != scoring.StatusComputed {
			line += "  " + dim(string(mr.Status))
		}
		fmt.Fprintln(w, line)
	}
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
