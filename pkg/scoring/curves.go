package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/finscope/finscope/pkg/statement"
)

// Curve maps a raw metric value to a score in [0, 10]. Every curve scores
// a missing value as NeutralScore.
type Curve interface {
	Score(v statement.Value) float64
	String() string
}

// Range is higher-is-better: 0 up to 5 below Low, 5 to 10 between Low and
// High, 10 at or above High.
type Range struct {
	Low, High float64
}

func (c Range) Score(v statement.Value) float64 {
	if v.IsMissing() {
		return NeutralScore
	}
	x := v.V
	switch {
	case x >= c.High:
		return MaxScore
	case x < c.Low:
		if c.Low <= 0 {
			return MinScore
		}
		return clamp(5 * x / c.Low)
	case c.High == c.Low:
		return 5
	default:
		return clamp(5 + 5*(x-c.Low)/(c.High-c.Low))
	}
}

func (c Range) String() string {
	return fmt.Sprintf("range(%g, %g)", c.Low, c.High)
}

// InverseRange is lower-is-better: 10 at or below Low, 10 down to 5
// between Low and High, then decaying to 0 at twice High.
type InverseRange struct {
	Low, High float64
}

func (c InverseRange) Score(v statement.Value) float64 {
	if v.IsMissing() {
		return NeutralScore
	}
	x := v.V
	switch {
	case x <= c.Low:
		return MaxScore
	case x > c.High:
		if c.High <= 0 {
			return MinScore
		}
		return clamp(5 - 5*(x-c.High)/c.High)
	default:
		return clamp(10 - 5*(x-c.Low)/(c.High-c.Low))
	}
}

func (c InverseRange) String() string {
	return fmt.Sprintf("inverse_range(%g, %g)", c.Low, c.High)
}

// Positive scores 10 for values above zero and 0 otherwise.
type Positive struct{}

func (Positive) Score(v statement.Value) float64 {
	if v.IsMissing() {
		return NeutralScore
	}
	if v.V > 0 {
		return MaxScore
	}
	return MinScore
}

func (Positive) String() string { return "positive" }

// Tier is one threshold step of a Tiers curve.
type Tier struct {
	Threshold float64
	Score     float64
}

// Tiers walks its steps in order and returns the first whose threshold the
// value reaches: v >= Threshold, or v <= Threshold when LowerIsBetter.
// Values on a threshold get that step's score. Fallback applies when no
// step matches.
type Tiers struct {
	Steps         []Tier
	Fallback      float64
	LowerIsBetter bool
}

func (c Tiers) Score(v statement.Value) float64 {
	if v.IsMissing() {
		return NeutralScore
	}
	for _, t := range c.Steps {
		if (!c.LowerIsBetter && v.V >= t.Threshold) || (c.LowerIsBetter && v.V <= t.Threshold) {
			return clamp(t.Score)
		}
	}
	return clamp(c.Fallback)
}

func (c Tiers) String() string {
	op := ">="
	if c.LowerIsBetter {
		op = "<="
	}
	parts := make([]string, 0, len(c.Steps)+1)
	for _, t := range c.Steps {
		parts = append(parts, fmt.Sprintf("%s%g:%g", op, t.Threshold, t.Score))
	}
	parts = append(parts, fmt.Sprintf("else:%g", c.Fallback))
	return "tiers(" + strings.Join(parts, ", ") + ")"
}

func clamp(s float64) float64 {
	if math.IsNaN(s) {
		return NeutralScore
	}
	return math.Max(MinScore, math.Min(MaxScore, s))
}
