package compare

import (
	"math"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

// PolicyResult bundles everything the comparison cares about for one
// policy: the revenue aggregate, the progressivity metric, and the
// efficiency proxy.
type PolicyResult struct {
	PolicyName    string                      `json:"policy_name"`
	PolicyKind    domain.PolicyKind           `json:"policy_kind"`
	Result        *domain.TaxResult           `json:"result"`
	Progressivity *domain.ProgressivityMetric `json:"progressivity"`

	// Efficiency is 1/(1+stddev) of the quantile mean effective rates: a
	// policy whose burden is spread evenly across the distribution scores
	// near 1, a sharply tilted one scores lower.
	Efficiency decimal.Decimal `json:"efficiency"`
}

// ComparisonSet is a full multi-policy comparison over one population.
type ComparisonSet struct {
	RunID           string                `json:"run_id"`
	PopulationSize  int                   `json:"population_size"`
	Weights         domain.RankingWeights `json:"weights"`
	Results         []PolicyResult        `json:"results"`
	Ranking         []domain.RankingEntry `json:"ranking"`
	Recommendations []string              `json:"recommendations"`
}

// efficiencyScore computes 1/(1+stddev) over the bucket mean effective
// rates. Fewer than two buckets means no dispersion to measure, which
// scores a flat 1.
func efficiencyScore(buckets []domain.QuantileBucket) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if len(buckets) < 2 {
		return one
	}

	sum := decimal.Zero
	for _, b := range buckets {
		sum = sum.Add(b.MeanEffectiveRate)
	}
	n := decimal.NewFromInt(int64(len(buckets)))
	mean := sum.Div(n)

	variance := decimal.Zero
	for _, b := range buckets {
		d := b.MeanEffectiveRate.Sub(mean)
		variance = variance.Add(d.Mul(d))
	}
	variance = variance.Div(n)

	std, _ := variance.Float64()
	return one.Div(one.Add(decimal.NewFromFloat(math.Sqrt(std))))
}
