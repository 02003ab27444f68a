package calculation

import (
	"testing"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func threeBracketPolicy(t *testing.T) policy.TaxPolicy {
	t.Helper()
	pol, err := policy.NewProgressive("three-bracket", []domain.Bracket{
		{Lower: d("0"), Upper: d("10000"), Rate: d("0.10")},
		{Lower: d("10000"), Upper: d("40000"), Rate: d("0.15")},
		{Lower: d("40000"), Unbounded: true, Rate: d("0.25")},
	})
	require.NoError(t, err)
	return pol
}

func pop(incomes ...string) *domain.Population {
	out := make([]decimal.Decimal, len(incomes))
	for i, s := range incomes {
		out[i] = d(s)
	}
	return domain.NewPopulation(out)
}

func TestCalculateRevenue_ConcreteScenario(t *testing.T) {
	rc := NewRevenueCalculator()
	result := rc.CalculateRevenue(threeBracketPolicy(t), pop("10000", "30000", "80000"))

	require.False(t, result.Undefined)
	assert.Equal(t, 3, result.PopulationSize)
	assert.True(t, result.TotalRevenue.Equal(d("20500")),
		"Total revenue should be 20500, got %s", result.TotalRevenue)
	assert.True(t, result.TotalIncome.Equal(d("120000")))
	assert.True(t, result.RevenuePerCapita.Round(2).Equal(d("6833.33")),
		"Per capita revenue should round to 6833.33, got %s", result.RevenuePerCapita)
	assert.True(t, result.WeightedAvgEffectiveRate.Round(4).Equal(d("0.1708")),
		"Weighted average rate should round to 0.1708, got %s", result.WeightedAvgEffectiveRate)
}

func TestCalculateRevenue_EmptyPopulation(t *testing.T) {
	rc := NewRevenueCalculator()
	result := rc.CalculateRevenue(threeBracketPolicy(t), pop())

	assert.True(t, result.Undefined, "Empty population must yield the undefined sentinel")
	assert.Equal(t, 0, result.PopulationSize)
	assert.True(t, result.TotalRevenue.IsZero())
}

func TestCalculateRevenue_ZeroIncomePopulation(t *testing.T) {
	rc := NewRevenueCalculator()
	result := rc.CalculateRevenue(threeBracketPolicy(t), pop("0", "0"))

	require.False(t, result.Undefined, "A non-empty population is defined even at zero income")
	assert.True(t, result.TotalRevenue.IsZero())
	assert.True(t, result.WeightedAvgEffectiveRate.IsZero(), "Rate stays zero instead of dividing by zero income")
	assert.True(t, result.MeanEffectiveRate.IsZero())
}

func TestCalculateRevenue_ParallelDeterminism(t *testing.T) {
	incomes := make([]decimal.Decimal, 1000)
	for i := range incomes {
		incomes[i] = decimal.NewFromInt(int64(i * 137)).Add(d("0.37"))
	}
	population := domain.NewPopulation(incomes)
	pol := threeBracketPolicy(t)

	serial := &RevenueCalculator{QuantileCount: 5, Workers: 1}
	parallel := &RevenueCalculator{QuantileCount: 5, Workers: 8}

	a := serial.CalculateRevenue(pol, population)
	b := parallel.CalculateRevenue(pol, population)

	assert.True(t, a.TotalRevenue.Equal(b.TotalRevenue),
		"Worker count must not change the total (serial %s, parallel %s)", a.TotalRevenue, b.TotalRevenue)
	assert.True(t, a.TotalIncome.Equal(b.TotalIncome))
	assert.True(t, a.MeanEffectiveRate.Equal(b.MeanEffectiveRate))
}

func TestBurdenTable_RemainderGoesToLastBucket(t *testing.T) {
	rc := NewRevenueCalculator()
	buckets := rc.TaxBurdenByQuantile(threeBracketPolicy(t),
		pop("1000", "2000", "3000", "4000", "5000", "6000", "7000"), 5)

	require.Len(t, buckets, 5)
	total := 0
	for i, b := range buckets {
		total += b.Count
		assert.Equal(t, i, b.Index)
	}
	assert.Equal(t, 7, total, "Bucket counts must cover the whole population")
	assert.Equal(t, 3, buckets[4].Count, "Last bucket absorbs the remainder")
	for _, b := range buckets[:4] {
		assert.Equal(t, 1, b.Count)
	}
}

func TestBurdenTable_SharesAndOrdering(t *testing.T) {
	rc := NewRevenueCalculator()
	result := rc.CalculateRevenue(threeBracketPolicy(t),
		pop("80000", "10000", "30000", "55000", "22000"))

	require.Len(t, result.QuantileBurdens, 5)

	incomeShare, taxShare := decimal.Zero, decimal.Zero
	prevUpper := decimal.Zero
	for _, b := range result.QuantileBurdens {
		incomeShare = incomeShare.Add(b.IncomeShare)
		taxShare = taxShare.Add(b.TaxShare)
		assert.True(t, b.LowerIncome.GreaterThanOrEqual(prevUpper),
			"Buckets must be ordered by income")
		prevUpper = b.UpperIncome
	}
	assert.True(t, incomeShare.Round(8).Equal(d("1")), "Income shares should sum to 1, got %s", incomeShare)
	assert.True(t, taxShare.Round(8).Equal(d("1")), "Tax shares should sum to 1, got %s", taxShare)
}

func TestBurdenTable_MoreBucketsThanRecords(t *testing.T) {
	rc := NewRevenueCalculator()
	buckets := rc.TaxBurdenByQuantile(threeBracketPolicy(t), pop("10000", "30000"), 5)
	assert.Len(t, buckets, 2, "Bucket count collapses to the population size")
}

func TestTaxBurdenByQuantile_DegenerateInputs(t *testing.T) {
	rc := NewRevenueCalculator()
	assert.Nil(t, rc.TaxBurdenByQuantile(threeBracketPolicy(t), pop(), 5))
	assert.Nil(t, rc.TaxBurdenByQuantile(threeBracketPolicy(t), pop("10000"), 0))
}

func TestRateQuantiles_Ordered(t *testing.T) {
	rc := NewRevenueCalculator()
	incomes := make([]string, 0, 100)
	for i := 1; i <= 100; i++ {
		incomes = append(incomes, decimal.NewFromInt(int64(i*1500)).String())
	}
	result := rc.CalculateRevenue(threeBracketPolicy(t), pop(incomes...))

	q := result.EffectiveRateQuantiles
	assert.True(t, q.P10.LessThanOrEqual(q.P25))
	assert.True(t, q.P25.LessThanOrEqual(q.P50))
	assert.True(t, q.P50.LessThanOrEqual(q.P75))
	assert.True(t, q.P75.LessThanOrEqual(q.P90))
}
