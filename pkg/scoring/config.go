package scoring

import (
	"fmt"
	"sort"
)

// Params holds the curve bounds used by the built-in models. The yaml
// tags double as override keys in the scoring config.
type Params struct {
	// Financial Health
	LiquidityLow    float64 `yaml:"liquidity_low"`
	LiquidityHigh   float64 `yaml:"liquidity_high"`
	LeverageLow     float64 `yaml:"leverage_low"`
	LeverageHigh    float64 `yaml:"leverage_high"`
	CashSafetyLow   float64 `yaml:"cash_safety_low"`
	CashSafetyHigh  float64 `yaml:"cash_safety_high"`
	GrowthLow       float64 `yaml:"growth_low"` // percent
	GrowthHigh      float64 `yaml:"growth_high"`
	HealthGrossLow  float64 `yaml:"health_gross_margin_low"`
	HealthGrossHigh float64 `yaml:"health_gross_margin_high"`
	HealthNetLow    float64 `yaml:"health_net_margin_low"`
	HealthNetHigh   float64 `yaml:"health_net_margin_high"`

	// Buffett
	ReturnLow        float64 `yaml:"return_low"` // ROE and ROIC
	ReturnHigh       float64 `yaml:"return_high"`
	BuffettDebtLow   float64 `yaml:"buffett_debt_low"`
	BuffettDebtHigh  float64 `yaml:"buffett_debt_high"`
	EPSGrowthLow     float64 `yaml:"eps_growth_low"` // fraction
	EPSGrowthHigh    float64 `yaml:"eps_growth_high"`
	BuffettGrossLow  float64 `yaml:"buffett_gross_margin_low"`
	BuffettGrossHigh float64 `yaml:"buffett_gross_margin_high"`
	BuffettNetLow    float64 `yaml:"buffett_net_margin_low"`
	BuffettNetHigh   float64 `yaml:"buffett_net_margin_high"`

	// Lynch
	NetCashFloor float64 `yaml:"net_cash_floor"` // net cash at or above this scores 5
}

// Defaults returns the standard curve bounds.
func Defaults() Params {
	return Params{
		LiquidityLow:    1,
		LiquidityHigh:   2,
		LeverageLow:     0,
		LeverageHigh:    2,
		CashSafetyLow:   0.05,
		CashSafetyHigh:  0.10,
		GrowthLow:       5,
		GrowthHigh:      10,
		HealthGrossLow:  0.4,
		HealthGrossHigh: 0.6,
		HealthNetLow:    0.1,
		HealthNetHigh:   0.2,

		ReturnLow:        0.15,
		ReturnHigh:       0.25,
		BuffettDebtLow:   0,
		BuffettDebtHigh:  2,
		EPSGrowthLow:     0.05,
		EPSGrowthHigh:    0.15,
		BuffettGrossLow:  0.4,
		BuffettGrossHigh: 0.6,
		BuffettNetLow:    0.1,
		BuffettNetHigh:   0.3,

		NetCashFloor: -1e9,
	}
}

func (p *Params) fields() map[string]*float64 {
	return map[string]*float64{
		"liquidity_low":             &p.LiquidityLow,
		"liquidity_high":            &p.LiquidityHigh,
		"leverage_low":              &p.LeverageLow,
		"leverage_high":             &p.LeverageHigh,
		"cash_safety_low":           &p.CashSafetyLow,
		"cash_safety_high":          &p.CashSafetyHigh,
		"growth_low":                &p.GrowthLow,
		"growth_high":               &p.GrowthHigh,
		"health_gross_margin_low":   &p.HealthGrossLow,
		"health_gross_margin_high":  &p.HealthGrossHigh,
		"health_net_margin_low":     &p.HealthNetLow,
		"health_net_margin_high":    &p.HealthNetHigh,
		"return_low":                &p.ReturnLow,
		"return_high":               &p.ReturnHigh,
		"buffett_debt_low":          &p.BuffettDebtLow,
		"buffett_debt_high":         &p.BuffettDebtHigh,
		"eps_growth_low":            &p.EPSGrowthLow,
		"eps_growth_high":           &p.EPSGrowthHigh,
		"buffett_gross_margin_low":  &p.BuffettGrossLow,
		"buffett_gross_margin_high": &p.BuffettGrossHigh,
		"buffett_net_margin_low":    &p.BuffettNetLow,
		"buffett_net_margin_high":   &p.BuffettNetHigh,
		"net_cash_floor":            &p.NetCashFloor,
	}
}

// Override applies named overrides on top of p. Unknown keys are an error
// and leave p unchanged.
func (p *Params) Override(values map[string]float64) error {
	fields := p.fields()
	var unknown []string
	for k := range values {
		if _, ok := fields[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown scoring parameters: %v", unknown)
	}
	for k, v := range values {
		*fields[k] = v
	}
	return nil
}

// Keys lists every override key in sorted order.
func (p Params) Keys() []string {
	fields := p.fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
