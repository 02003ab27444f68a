package calculation

import (
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/policy"
	"github.com/shopspring/decimal"
)

// ProgressivityAnalyzer derives inequality scores by comparing the
// cumulative tax-share curve against the cumulative income-share curve
// over the income-ranked population.
type ProgressivityAnalyzer struct {
	// QuantileCount is the bucket count for the monotonicity
	// classification of mean effective rates.
	QuantileCount int
}

// NewProgressivityAnalyzer creates an analyzer classifying over quintiles.
func NewProgressivityAnalyzer() *ProgressivityAnalyzer {
	return &ProgressivityAnalyzer{QuantileCount: DefaultQuantileCount}
}

// Analyze computes the Suits-type index and the monotonicity
// classification for a policy over a population.
//
// The index is twice the signed area between the cumulative tax-share
// curve and the cumulative income-share curve: positive when high incomes
// carry a disproportionate tax share, near zero when proportional,
// negative when regressive. Degenerate populations (empty, zero income,
// zero tax) score zero and classify proportional.
func (pa *ProgressivityAnalyzer) Analyze(pol policy.TaxPolicy, pop *domain.Population) *domain.ProgressivityMetric {
	metric := &domain.ProgressivityMetric{
		PolicyName:     pol.Name(),
		SuitsIndex:     decimal.Zero,
		Classification: domain.ClassProportional,
	}
	n := pop.Size()
	if n == 0 {
		return metric
	}

	incomes := pop.SortedCopy()
	taxes := pol.ComputeTaxAll(incomes)

	totalIncome, totalTax := decimal.Zero, decimal.Zero
	for i := range incomes {
		totalIncome = totalIncome.Add(incomes[i])
		totalTax = totalTax.Add(taxes[i])
	}
	if totalIncome.IsZero() || totalTax.IsZero() {
		return metric
	}

	metric.SuitsIndex = suitsIndex(incomes, taxes, totalIncome, totalTax)

	k := pa.QuantileCount
	if k <= 0 {
		k = DefaultQuantileCount
	}
	buckets := burdenTable(incomes, taxes, k, totalIncome, totalTax)
	metric.Classification = classifyRates(buckets)

	return metric
}

// suitsIndex evaluates the trapezoidal area form
//
//	S = 1 - sum_i dY_i * (T_i + T_{i-1})
//
// where Y and T are cumulative income and tax shares. The sums are
// accumulated unnormalized and divided once at the end, which keeps the
// arithmetic exact until a single rounding step: a flat policy comes out
// at exactly zero.
func suitsIndex(sortedIncomes, taxes []decimal.Decimal, totalIncome, totalTax decimal.Decimal) decimal.Decimal {
	cumIncome, cumTax := decimal.Zero, decimal.Zero
	area := decimal.Zero
	for i := range sortedIncomes {
		prevTax := cumTax
		cumIncome = cumIncome.Add(sortedIncomes[i])
		cumTax = cumTax.Add(taxes[i])
		// dY * (T_i + T_{i-1}), both unnormalized.
		area = area.Add(sortedIncomes[i].Mul(cumTax.Add(prevTax)))
	}
	one := decimal.NewFromInt(1)
	return one.Sub(area.Div(totalIncome.Mul(totalTax)))
}

// classifyRates applies the monotonicity rule to quantile mean effective
// rates: non-decreasing is progressive, non-increasing is regressive, and
// anything else (including a constant rate) is proportional. The
// classification is authoritative even when a policy's bracket schedule
// suggests otherwise.
func classifyRates(buckets []domain.QuantileBucket) domain.Classification {
	nonDecreasing, nonIncreasing := true, true
	for i := 1; i < len(buckets); i++ {
		prev, cur := buckets[i-1].MeanEffectiveRate, buckets[i].MeanEffectiveRate
		if cur.LessThan(prev) {
			nonDecreasing = false
		}
		if cur.GreaterThan(prev) {
			nonIncreasing = false
		}
	}
	switch {
	case nonDecreasing && nonIncreasing:
		return domain.ClassProportional
	case nonDecreasing:
		return domain.ClassProgressive
	case nonIncreasing:
		return domain.ClassRegressive
	default:
		return domain.ClassProportional
	}
}

// LorenzPoints returns the cumulative (income share, tax share) curve at
// each record of the income-ranked population, for chart rendering.
func (pa *ProgressivityAnalyzer) LorenzPoints(pol policy.TaxPolicy, pop *domain.Population) (incomeShare, taxShare []decimal.Decimal) {
	incomes := pop.SortedCopy()
	taxes := pol.ComputeTaxAll(incomes)

	totalIncome, totalTax := decimal.Zero, decimal.Zero
	for i := range incomes {
		totalIncome = totalIncome.Add(incomes[i])
		totalTax = totalTax.Add(taxes[i])
	}
	if totalIncome.IsZero() || totalTax.IsZero() {
		return nil, nil
	}

	incomeShare = make([]decimal.Decimal, len(incomes))
	taxShare = make([]decimal.Decimal, len(incomes))
	cumIncome, cumTax := decimal.Zero, decimal.Zero
	for i := range incomes {
		cumIncome = cumIncome.Add(incomes[i])
		cumTax = cumTax.Add(taxes[i])
		incomeShare[i] = cumIncome.Div(totalIncome)
		taxShare[i] = cumTax.Div(totalTax)
	}
	return incomeShare, taxShare
}
