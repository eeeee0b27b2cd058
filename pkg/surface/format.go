package surface

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/finscope/finscope/pkg/scoring"
	"github.com/finscope/finscope/pkg/statement"
)

// NotAvailable is displayed for missing values.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatMetric renders a metric value for people and prompts. Percentages
// are fractions shown times 100; currency is scaled to billions or millions
// when large enough. Plain numbers get thousands separators.
func FormatMetric(v statement.Value, style scoring.Format) string {
	if v.IsMissing() {
		return NotAvailable
	}
	x := v.V
	switch style {
	case scoring.FormatPercentage:
		return fmt.Sprintf("%.2f%%", x*100)
	case scoring.FormatCurrency:
		abs := math.Abs(x)
		switch {
		case abs >= 1e9:
			return fmt.Sprintf("$%.2fB", x/1e9)
		case abs >= 1e6:
			return fmt.Sprintf("$%.2fM", x/1e6)
		default:
			return printer.Sprintf("$%.0f", x)
		}
	default:
		return printer.Sprintf("%.2f", x)
	}
}

// FormatScore renders a 0-10 score with two decimals.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}
