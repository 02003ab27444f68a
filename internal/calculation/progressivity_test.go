package calculation

import (
	"testing"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_FlatPolicyScoresExactlyZero(t *testing.T) {
	flat, err := policy.NewFlat("flat20", d("0.20"))
	require.NoError(t, err)

	pa := NewProgressivityAnalyzer()
	metric := pa.Analyze(flat, pop("12000", "34000", "56000", "78000", "91000"))

	assert.True(t, metric.SuitsIndex.IsZero(),
		"A flat tax concentrates burden exactly like income; index should be zero, got %s", metric.SuitsIndex)
	assert.Equal(t, domain.ClassProportional, metric.Classification)
}

func TestAnalyze_ProgressivePolicyScoresPositive(t *testing.T) {
	pa := NewProgressivityAnalyzer()
	metric := pa.Analyze(threeBracketPolicy(t), pop("10000", "30000", "80000"))

	assert.True(t, metric.SuitsIndex.IsPositive(),
		"Marginal brackets shift burden up the distribution; index should be positive, got %s", metric.SuitsIndex)
	assert.True(t, metric.SuitsIndex.LessThan(d("1")), "Index stays within (-1, 1)")
	assert.Equal(t, domain.ClassProgressive, metric.Classification)
}

func TestAnalyze_RegressivePolicyScoresNegative(t *testing.T) {
	reg, err := policy.NewRegressive("head-heavy", []domain.Bracket{
		{Lower: d("0"), Upper: d("20000"), Rate: d("0.30")},
		{Lower: d("20000"), Unbounded: true, Rate: d("0.10")},
	})
	require.NoError(t, err)

	pa := NewProgressivityAnalyzer()
	metric := pa.Analyze(reg, pop("10000", "30000", "80000"))

	assert.True(t, metric.SuitsIndex.IsNegative(),
		"Declining marginal rates shift burden down; index should be negative, got %s", metric.SuitsIndex)
	assert.True(t, metric.SuitsIndex.GreaterThan(d("-1")), "Index stays within (-1, 1)")
	assert.Equal(t, domain.ClassRegressive, metric.Classification)
}

func TestAnalyze_DegeneratePopulations(t *testing.T) {
	pa := NewProgressivityAnalyzer()
	pol := threeBracketPolicy(t)

	empty := pa.Analyze(pol, pop())
	assert.True(t, empty.SuitsIndex.IsZero())
	assert.Equal(t, domain.ClassProportional, empty.Classification)

	zeroIncome := pa.Analyze(pol, pop("0", "0", "0"))
	assert.True(t, zeroIncome.SuitsIndex.IsZero(), "All-zero income has no burden to distribute")
	assert.Equal(t, domain.ClassProportional, zeroIncome.Classification)

	zeroRate, err := policy.NewFlat("zero", d("0"))
	require.NoError(t, err)
	noTax := pa.Analyze(zeroRate, pop("10000", "50000"))
	assert.True(t, noTax.SuitsIndex.IsZero(), "Zero total tax scores zero, not NaN")
	assert.Equal(t, domain.ClassProportional, noTax.Classification)
}

func TestAnalyze_OrderInvariance(t *testing.T) {
	pa := NewProgressivityAnalyzer()
	pol := threeBracketPolicy(t)

	a := pa.Analyze(pol, pop("10000", "30000", "80000"))
	b := pa.Analyze(pol, pop("80000", "10000", "30000"))
	assert.True(t, a.SuitsIndex.Equal(b.SuitsIndex), "Input ordering must not affect the index")
}

func TestClassifyRates(t *testing.T) {
	mk := func(rates ...string) []domain.QuantileBucket {
		buckets := make([]domain.QuantileBucket, len(rates))
		for i, r := range rates {
			buckets[i] = domain.QuantileBucket{Index: i, MeanEffectiveRate: d(r)}
		}
		return buckets
	}

	assert.Equal(t, domain.ClassProgressive, classifyRates(mk("0.10", "0.10", "0.15", "0.20")),
		"Non-decreasing rates classify progressive")
	assert.Equal(t, domain.ClassRegressive, classifyRates(mk("0.30", "0.20", "0.20", "0.10")),
		"Non-increasing rates classify regressive")
	assert.Equal(t, domain.ClassProportional, classifyRates(mk("0.20", "0.20", "0.20")),
		"Constant rates classify proportional")
	assert.Equal(t, domain.ClassProportional, classifyRates(mk("0.10", "0.30", "0.20")),
		"Non-monotone rates classify proportional")
}

func TestLorenzPoints(t *testing.T) {
	pa := NewProgressivityAnalyzer()
	incomeShare, taxShare := pa.LorenzPoints(threeBracketPolicy(t), pop("10000", "30000", "80000"))

	require.Len(t, incomeShare, 3)
	require.Len(t, taxShare, 3)
	assert.True(t, incomeShare[2].Round(8).Equal(d("1")), "Cumulative income share ends at 1")
	assert.True(t, taxShare[2].Round(8).Equal(d("1")), "Cumulative tax share ends at 1")
	// Progressive policy: tax share lags income share at every interior point.
	assert.True(t, taxShare[0].LessThan(incomeShare[0]))
	assert.True(t, taxShare[1].LessThan(incomeShare[1]))
}
