package domain

import (
	"github.com/shopspring/decimal"
)

// SweepParameter names the scalar being varied in a sensitivity sweep.
type SweepParameter string

const (
	// SweepFlatRate rebuilds a flat policy at each swept rate.
	SweepFlatRate SweepParameter = "flat_rate"
	// SweepRateScale multiplies every bracket rate of the base policy by
	// the swept factor.
	SweepRateScale SweepParameter = "rate_scale"
)

// SweepSpec describes a single-parameter sensitivity sweep: Steps evenly
// spaced values across [Min, Max], inclusive of both endpoints when
// Steps > 1.
type SweepSpec struct {
	PolicyName string          `yaml:"policy" json:"policyName"`
	Parameter  SweepParameter  `yaml:"parameter" json:"parameter"`
	Min        decimal.Decimal `yaml:"min" json:"min"`
	Max        decimal.Decimal `yaml:"max" json:"max"`
	Steps      int             `yaml:"steps" json:"steps"`
}

// SweepPoint is the engine output at one swept parameter value.
type SweepPoint struct {
	ParameterValue decimal.Decimal      `json:"parameterValue"`
	Result         *TaxResult           `json:"result"`
	Progressivity  *ProgressivityMetric `json:"progressivity"`
}

// SweepAnalysis is the ordered result sequence of a sensitivity sweep.
// Points are sorted by parameter value regardless of evaluation order.
type SweepAnalysis struct {
	RunID      string         `json:"runId"`
	PolicyName string         `json:"policyName"`
	Parameter  SweepParameter `json:"parameter"`
	Points     []SweepPoint   `json:"points"`
}
