package scoring

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/finscope/finscope/pkg/statement"
)

// Outcome is the result of deriving a metric value.
type Outcome struct {
	Value  statement.Value
	Status Status
	Note   string
}

// Computed wraps a derived value. Non-finite values are failures.
func Computed(v float64) Outcome {
	sv := statement.Some(v)
	if sv.IsMissing() {
		return Failed("non-finite result")
	}
	return Outcome{Value: sv, Status: StatusComputed}
}

// Absent marks a metric whose inputs are not available.
func Absent(note string) Outcome {
	return Outcome{Status: StatusMissing, Note: note}
}

// Failed marks a metric whose inputs exist but could not be combined.
func Failed(note string) Outcome {
	return Outcome{Status: StatusFailed, Note: note}
}

// Reserved marks a metric with no computation yet.
func Reserved() Outcome {
	return Outcome{Status: StatusReserved, Note: "not implemented"}
}

// FromValue turns a looked-up value into an outcome.
func FromValue(v statement.Value, what string) Outcome {
	if v.IsMissing() {
		return Absent(what + " unavailable")
	}
	return Computed(v.V)
}

// Quotient divides two looked-up values, reporting a zero denominator as a
// failure and a missing operand as absent.
func Quotient(num, den statement.Value, what string) Outcome {
	switch {
	case num.IsMissing() || den.IsMissing():
		return Absent(what + " inputs unavailable")
	case den.V == 0:
		return Failed(what + " denominator is zero")
	}
	return Computed(num.V / den.V)
}

// DeriveFunc computes a metric value from ratio-enriched statements.
type DeriveFunc func(s *statement.Statements) Outcome

// MetricDef is one row of a model's metric table.
type MetricDef struct {
	Key      string
	Name     string
	Category string // category key; empty for ungrouped models
	Format   Format
	Derive   DeriveFunc // nil for reserved metrics
	Curve    Curve
}

// Evaluate derives and scores the metric. Only computed values are passed
// to the curve; every other status scores NeutralScore. A panicking
// derivation is recovered and reported as failed.
func (d MetricDef) Evaluate(model string, s *statement.Statements) MetricResult {
	out := d.derive(s)

	res := MetricResult{
		Key:    d.Key,
		Name:   d.Name,
		Value:  out.Value,
		Score:  NeutralScore,
		Status: out.Status,
		Format: d.Format,
		Note:   out.Note,
	}
	if out.Status == StatusComputed && d.Curve != nil {
		res.Score = d.Curve.Score(out.Value)
	} else {
		res.Value = statement.Missing()
	}

	if out.Status == StatusFailed {
		zap.L().Warn("metric computation failed",
			zap.String("model", model),
			zap.String("metric", d.Key),
			zap.String("reason", out.Note),
		)
	}
	return res
}

func (d MetricDef) derive(s *statement.Statements) (out Outcome) {
	if d.Derive == nil {
		return Reserved()
	}
	defer func() {
		if r := recover(); r != nil {
			out = Failed(fmt.Sprintf("panic: %v", r))
		}
	}()
	return d.Derive(s)
}
