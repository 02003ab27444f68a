package domain

import (
	"github.com/shopspring/decimal"
)

// RateQuantiles summarizes the per-record effective-rate distribution.
type RateQuantiles struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// QuantileBucket is one equal-count slice of the income-ranked population
// with its burden figures. The last bucket absorbs the remainder when the
// population size is not divisible by the bucket count.
type QuantileBucket struct {
	Index             int             `json:"index"`
	Count             int             `json:"count"`
	LowerIncome       decimal.Decimal `json:"lowerIncome"`
	UpperIncome       decimal.Decimal `json:"upperIncome"`
	MeanEffectiveRate decimal.Decimal `json:"meanEffectiveRate"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	RevenuePerCapita  decimal.Decimal `json:"revenuePerCapita"`
	IncomeShare       decimal.Decimal `json:"incomeShare"`
	TaxShare          decimal.Decimal `json:"taxShare"`
}

// TaxResult is the aggregate outcome of applying one policy to a
// population. Derived once, never mutated.
//
// Undefined is the sentinel for an empty population: totals are zero and
// the per-capita and rate figures are meaningless. Callers must check it
// before using those fields.
type TaxResult struct {
	PolicyName               string           `json:"policyName"`
	PolicyKind               PolicyKind       `json:"policyKind"`
	PopulationSize           int              `json:"populationSize"`
	Undefined                bool             `json:"undefined"`
	TotalRevenue             decimal.Decimal  `json:"totalRevenue"`
	TotalIncome              decimal.Decimal  `json:"totalIncome"`
	RevenuePerCapita         decimal.Decimal  `json:"revenuePerCapita"`
	WeightedAvgEffectiveRate decimal.Decimal  `json:"weightedAvgEffectiveRate"`
	MeanEffectiveRate        decimal.Decimal  `json:"meanEffectiveRate"`
	EffectiveRateQuantiles   RateQuantiles    `json:"effectiveRateQuantiles"`
	QuantileBurdens          []QuantileBucket `json:"quantileBurdens"`
}

// Classification labels the shape of a policy's effective-rate curve.
type Classification string

const (
	ClassProgressive  Classification = "progressive"
	ClassRegressive   Classification = "regressive"
	ClassProportional Classification = "proportional"
)

// ProgressivityMetric scores how a policy's tax share diverges from its
// income share across the population.
type ProgressivityMetric struct {
	PolicyName     string          `json:"policyName"`
	SuitsIndex     decimal.Decimal `json:"suitsIndex"`
	Classification Classification  `json:"classification"`
}

// RankingEntry is one policy's position in a weighted comparison.
// Component scores are min-max normalized across the compared set before
// weighting, so the raw metric scales do not leak into the weights.
type RankingEntry struct {
	PolicyName              string          `json:"policyName"`
	Rank                    int             `json:"rank"`
	NormalizedRevenue       decimal.Decimal `json:"normalizedRevenue"`
	NormalizedProgressivity decimal.Decimal `json:"normalizedProgressivity"`
	NormalizedEfficiency    decimal.Decimal `json:"normalizedEfficiency"`
	CombinedScore           decimal.Decimal `json:"combinedScore"`
}
