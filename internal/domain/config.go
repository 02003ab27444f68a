package domain

import (
	"github.com/shopspring/decimal"
)

// Configuration is the top-level analysis input deserialized from YAML.
// The engine never parses configuration syntax itself; config.InputParser
// validates this structure before anything is evaluated.
type Configuration struct {
	Policies   []PolicyConfig             `yaml:"policies"`
	Population PopulationConfig           `yaml:"population"`
	Weights    map[string]decimal.Decimal `yaml:"weights"`
	Sweep      *SweepSpec                 `yaml:"sweep,omitempty"`
	Quantiles  int                        `yaml:"quantiles,omitempty"`
}

// PolicyConfig describes one tax policy as structured data. Flat policies
// carry Rate; bracket policies carry Brackets.
type PolicyConfig struct {
	Name     string           `yaml:"name"`
	Kind     PolicyKind       `yaml:"kind"`
	Rate     *decimal.Decimal `yaml:"rate,omitempty"`
	Brackets []BracketConfig  `yaml:"brackets,omitempty"`
}

// BracketConfig is the serialized form of a bracket. A nil Upper marks
// the open-ended top bracket.
type BracketConfig struct {
	Lower decimal.Decimal  `yaml:"lower"`
	Upper *decimal.Decimal `yaml:"upper,omitempty"`
	Rate  decimal.Decimal  `yaml:"rate"`
}

// PopulationConfig describes how to produce the modeled population:
// either sampling a parametric family with an explicit seed, or deriving
// a synthetic population calibrated to an observed aggregate statistic.
type PopulationConfig struct {
	Family string `yaml:"family"`
	Size   int    `yaml:"size"`
	Seed   int64  `yaml:"seed"`

	// Lognormal parameters (mean and std of log-income).
	Mu    float64 `yaml:"mu,omitempty"`
	Sigma float64 `yaml:"sigma,omitempty"`

	// Normal parameters. Negative draws are clamped to zero.
	Mean float64 `yaml:"mean,omitempty"`
	Std  float64 `yaml:"std,omitempty"`

	// Exponential parameter.
	Scale float64 `yaml:"scale,omitempty"`

	// ObservedMean switches to real-aggregate mode: a lognormal whose
	// parameters reproduce the supplied mean income. The result is an
	// approximation, not observed individual-level data.
	ObservedMean *float64 `yaml:"observed_mean,omitempty"`
}
