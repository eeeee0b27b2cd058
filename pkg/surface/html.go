package surface

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/finscope/finscope/pkg/scoring"
)

// HTMLRenderer renders the Markdown report as a standalone HTML page.
type HTMLRenderer struct{}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s financial scores</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
</style>
</head>
<body>
`

func (r *HTMLRenderer) Render(w io.Writer, report *scoring.Report) error {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(BuildMarkdown(report)), &body); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	if _, err := fmt.Fprintf(w, htmlHead, html.EscapeString(report.Ticker)); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
