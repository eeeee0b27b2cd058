package surface

import (
	"encoding/json"
	"io"

	"github.com/finscope/finscope/pkg/scoring"
)

// JSONRenderer marshals a Report to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, report *scoring.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
