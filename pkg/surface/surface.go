// Package surface defines output rendering for finscope reports.
// Implementations handle different output targets: terminal, JSON,
// Markdown and HTML.
package surface

import (
	"fmt"
	"io"

	"github.com/finscope/finscope/pkg/scoring"
)

// Renderer produces formatted output from a Report.
type Renderer interface {
	// Render writes the formatted report to the writer.
	Render(w io.Writer, report *scoring.Report) error
}

// Output formats accepted by ForFormat.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ForFormat returns the renderer for an output format name.
func ForFormat(name string) (Renderer, error) {
	switch name {
	case FormatText, "":
		return &TerminalRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatMarkdown, "md":
		return &MarkdownRenderer{}, nil
	case FormatHTML:
		return &HTMLRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want text, json, markdown or html)", name)
}
