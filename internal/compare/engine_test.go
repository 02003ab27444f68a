package compare

import (
	"context"
	"testing"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pop(incomes ...string) *domain.Population {
	out := make([]decimal.Decimal, len(incomes))
	for i, s := range incomes {
		out[i] = d(s)
	}
	return domain.NewPopulation(out)
}

func flatPolicy(t *testing.T, name, rate string) policy.TaxPolicy {
	t.Helper()
	pol, err := policy.NewFlat(name, d(rate))
	require.NoError(t, err)
	return pol
}

func revenueOnlyWeights() domain.RankingWeights {
	return domain.RankingWeights{
		Revenue:       d("1"),
		Progressivity: d("0"),
		Efficiency:    d("0"),
	}
}

func TestComparePolicies_RanksByWeightedScore(t *testing.T) {
	engine := NewCompareEngine(nil)
	policies := []policy.TaxPolicy{
		flatPolicy(t, "low", "0.10"),
		flatPolicy(t, "high", "0.30"),
		flatPolicy(t, "mid", "0.20"),
	}

	set, err := engine.ComparePolicies(context.Background(), policies,
		pop("10000", "30000", "80000"), revenueOnlyWeights())
	require.NoError(t, err)

	require.Len(t, set.Ranking, 3)
	assert.Equal(t, "high", set.Ranking[0].PolicyName, "Highest revenue wins a revenue-only ranking")
	assert.Equal(t, 1, set.Ranking[0].Rank)
	assert.Equal(t, "mid", set.Ranking[1].PolicyName)
	assert.Equal(t, "low", set.Ranking[2].PolicyName)
	assert.NotEmpty(t, set.RunID)
	assert.NotEmpty(t, set.Recommendations)
}

func TestRankPolicies_DegenerateMetricNormalizesToHalf(t *testing.T) {
	// Three flat policies at the same rate: every metric is identical
	// across the field, so each normalized component is 0.5.
	engine := NewCompareEngine(nil)
	policies := []policy.TaxPolicy{
		flatPolicy(t, "a", "0.20"),
		flatPolicy(t, "b", "0.20"),
		flatPolicy(t, "c", "0.20"),
	}

	set, err := engine.ComparePolicies(context.Background(), policies,
		pop("15000", "45000"), domain.DefaultRankingWeights())
	require.NoError(t, err)

	for _, e := range set.Ranking {
		assert.True(t, e.NormalizedRevenue.Equal(d("0.5")),
			"Degenerate revenue field normalizes to 0.5, got %s", e.NormalizedRevenue)
		assert.True(t, e.NormalizedProgressivity.Equal(d("0.5")))
		assert.True(t, e.NormalizedEfficiency.Equal(d("0.5")))
	}
	// Ties keep configuration order.
	assert.Equal(t, []string{"a", "b", "c"}, rankedNames(set.Ranking))
}

func rankedNames(entries []domain.RankingEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.PolicyName
	}
	return names
}

func TestCompare_UnknownWeightKey(t *testing.T) {
	engine := NewCompareEngine(nil)
	flatRate := d("0.2")
	cfg := &domain.Configuration{
		Policies: []domain.PolicyConfig{
			{Name: "flat", Kind: domain.KindFlat, Rate: &flatRate},
		},
		Population: domain.PopulationConfig{Family: "lognormal", Size: 10, Seed: 1, Mu: 10, Sigma: 0.5},
		Weights: map[string]decimal.Decimal{
			"revenue":  d("0.5"),
			"fairness": d("0.5"),
		},
	}

	_, err := engine.Compare(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrUnknownWeightKey, "Unknown weight keys are configuration errors")
}

func TestCompare_QuantileOverride(t *testing.T) {
	engine := NewCompareEngine(nil)
	flatRate := d("0.2")
	cfg := &domain.Configuration{
		Policies: []domain.PolicyConfig{
			{Name: "flat", Kind: domain.KindFlat, Rate: &flatRate},
		},
		Population: domain.PopulationConfig{Family: "lognormal", Size: 100, Seed: 1, Mu: 10, Sigma: 0.5},
		Quantiles:  10,
	}

	set, err := engine.Compare(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, set.Results[0].Result.QuantileBurdens, 10,
		"Configured quantile count carries into comparison results")
	assert.Equal(t, calculation.DefaultQuantileCount, engine.Calc.Revenue.QuantileCount,
		"The override does not stick to the shared engine")
}

func TestComparePolicies_ContextCancellation(t *testing.T) {
	engine := NewCompareEngine(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ComparePolicies(ctx, []policy.TaxPolicy{flatPolicy(t, "flat", "0.2")},
		pop("10000"), domain.DefaultRankingWeights())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComparePolicies_NoPolicies(t *testing.T) {
	engine := NewCompareEngine(nil)
	_, err := engine.ComparePolicies(context.Background(), nil, pop("10000"), domain.DefaultRankingWeights())
	assert.Error(t, err)
}

func TestEfficiencyScore(t *testing.T) {
	mk := func(rates ...string) []domain.QuantileBucket {
		buckets := make([]domain.QuantileBucket, len(rates))
		for i, r := range rates {
			buckets[i] = domain.QuantileBucket{MeanEffectiveRate: d(r)}
		}
		return buckets
	}

	assert.True(t, efficiencyScore(mk("0.2")).Equal(d("1")), "A single bucket has no dispersion")
	assert.True(t, efficiencyScore(mk("0.2", "0.2", "0.2")).Equal(d("1")), "Equal rates score 1")

	spread := efficiencyScore(mk("0.05", "0.15", "0.40"))
	assert.True(t, spread.LessThan(d("1")), "Dispersed rates score below 1")
	assert.True(t, spread.IsPositive())
}

func TestRankPolicies_WeightsShiftTheWinner(t *testing.T) {
	engine := NewCompareEngine(nil)

	prog, err := policy.NewProgressive("progressive", []domain.Bracket{
		{Lower: d("0"), Upper: d("40000"), Rate: d("0.05")},
		{Lower: d("40000"), Unbounded: true, Rate: d("0.40")},
	})
	require.NoError(t, err)
	policies := []policy.TaxPolicy{flatPolicy(t, "flat", "0.25"), prog}
	population := pop("10000", "20000", "30000", "40000", "90000")

	byRevenue, err := engine.ComparePolicies(context.Background(), policies, population, revenueOnlyWeights())
	require.NoError(t, err)

	byProgressivity, err := engine.ComparePolicies(context.Background(), policies, population,
		domain.RankingWeights{Revenue: d("0"), Progressivity: d("1"), Efficiency: d("0")})
	require.NoError(t, err)

	assert.Equal(t, "flat", byRevenue.Ranking[0].PolicyName,
		"The flat 25% raises more than the tilted schedule here")
	assert.Equal(t, "progressive", byProgressivity.Ranking[0].PolicyName,
		"A progressivity-only weighting flips the winner")
}
