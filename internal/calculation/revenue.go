package calculation

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/policy"
	"github.com/shopspring/decimal"
)

// REVENUE AGGREGATION NOTES:
//
// 1. All money arithmetic uses decimal, so population-scale summation is
//    exact; there is no floating-point drift to manage at N ~ 10^6.
//
// 2. Evaluation is chunked across workers. Each chunk produces a partial
//    revenue/income sum, and partials are always combined in chunk index
//    order so results are identical regardless of worker count.
//
// 3. The burden table partitions the income-ranked population into
//    equal-count buckets; the last bucket absorbs the remainder when the
//    population size is not divisible by the bucket count.

// DefaultQuantileCount is the bucket count for burden tables (quintiles,
// matching the reference burden analysis).
const DefaultQuantileCount = 5

// RevenueCalculator aggregates a tax policy applied to a population into
// revenue totals, effective-rate statistics and a quantile burden table.
type RevenueCalculator struct {
	// QuantileCount controls the burden table granularity.
	QuantileCount int
	// Workers caps evaluation parallelism; <= 0 means GOMAXPROCS.
	Workers int
}

// NewRevenueCalculator creates a calculator with quintile burden tables.
func NewRevenueCalculator() *RevenueCalculator {
	return &RevenueCalculator{QuantileCount: DefaultQuantileCount}
}

// CalculateRevenue evaluates the policy over the whole population.
// An empty population yields the Undefined sentinel result rather than an
// error or a division by zero.
func (rc *RevenueCalculator) CalculateRevenue(pol policy.TaxPolicy, pop *domain.Population) *domain.TaxResult {
	n := pop.Size()
	result := &domain.TaxResult{
		PolicyName:     pol.Name(),
		PolicyKind:     pol.Kind(),
		PopulationSize: n,
	}
	if n == 0 {
		result.Undefined = true
		return result
	}

	taxes, totalRevenue, totalIncome := rc.evaluate(pol, pop.Incomes)

	result.TotalRevenue = totalRevenue
	result.TotalIncome = totalIncome
	result.RevenuePerCapita = totalRevenue.Div(decimal.NewFromInt(int64(n)))
	if !totalIncome.IsZero() {
		result.WeightedAvgEffectiveRate = totalRevenue.Div(totalIncome)
	}

	effRates := effectiveRates(pop.Incomes, taxes)
	meanSum := decimal.Zero
	for _, r := range effRates {
		meanSum = meanSum.Add(r)
	}
	result.MeanEffectiveRate = meanSum.Div(decimal.NewFromInt(int64(n)))
	result.EffectiveRateQuantiles = rateQuantiles(effRates)

	k := rc.QuantileCount
	if k <= 0 {
		k = DefaultQuantileCount
	}
	result.QuantileBurdens = burdenTable(pop.Incomes, taxes, k, totalIncome, totalRevenue)

	return result
}

// TaxBurdenByQuantile returns the k-bucket burden table on its own, for
// callers that do not need the full aggregate result.
func (rc *RevenueCalculator) TaxBurdenByQuantile(pol policy.TaxPolicy, pop *domain.Population, k int) []domain.QuantileBucket {
	if pop.Size() == 0 || k <= 0 {
		return nil
	}
	taxes, totalRevenue, totalIncome := rc.evaluate(pol, pop.Incomes)
	return burdenTable(pop.Incomes, taxes, k, totalIncome, totalRevenue)
}

// evaluate computes per-record taxes and the revenue/income totals with
// chunked parallel evaluation and order-fixed reduction.
func (rc *RevenueCalculator) evaluate(pol policy.TaxPolicy, incomes []decimal.Decimal) (taxes []decimal.Decimal, totalRevenue, totalIncome decimal.Decimal) {
	n := len(incomes)
	workers := rc.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	taxes = make([]decimal.Decimal, n)

	type partial struct {
		revenue decimal.Decimal
		income  decimal.Decimal
	}

	chunk := (n + workers - 1) / workers
	numChunks := (n + chunk - 1) / chunk
	partials := make([]partial, numChunks)

	var wg sync.WaitGroup
	for c := 0; c < numChunks; c++ {
		lo := c * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(c, lo, hi int) {
			defer wg.Done()
			out := pol.ComputeTaxAll(incomes[lo:hi])
			copy(taxes[lo:hi], out)
			rev, inc := decimal.Zero, decimal.Zero
			for i := lo; i < hi; i++ {
				rev = rev.Add(taxes[i])
				inc = inc.Add(incomes[i])
			}
			partials[c] = partial{revenue: rev, income: inc}
		}(c, lo, hi)
	}
	wg.Wait()

	// Combine in chunk index order: deterministic independent of how many
	// workers ran or in which order they finished.
	totalRevenue, totalIncome = decimal.Zero, decimal.Zero
	for _, p := range partials {
		totalRevenue = totalRevenue.Add(p.revenue)
		totalIncome = totalIncome.Add(p.income)
	}
	return taxes, totalRevenue, totalIncome
}

// effectiveRates computes per-record tax/income, 0 for zero income.
func effectiveRates(incomes, taxes []decimal.Decimal) []decimal.Decimal {
	rates := make([]decimal.Decimal, len(incomes))
	for i := range incomes {
		if incomes[i].IsZero() {
			rates[i] = decimal.Zero
			continue
		}
		rates[i] = taxes[i].Div(incomes[i])
	}
	return rates
}

// rateQuantiles summarizes an effective-rate slice at standard points.
func rateQuantiles(rates []decimal.Decimal) domain.RateQuantiles {
	sorted := make([]decimal.Decimal, len(rates))
	copy(sorted, rates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	at := func(q float64) decimal.Decimal {
		idx := int(math.Round(q * float64(len(sorted)-1)))
		return sorted[idx]
	}
	return domain.RateQuantiles{
		P10: at(0.10),
		P25: at(0.25),
		P50: at(0.50),
		P75: at(0.75),
		P90: at(0.90),
	}
}

// burdenTable partitions the income-ranked population into k equal-count
// buckets and reports who pays what within each.
func burdenTable(incomes, taxes []decimal.Decimal, k int, totalIncome, totalRevenue decimal.Decimal) []domain.QuantileBucket {
	n := len(incomes)
	if k > n {
		k = n
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return incomes[order[a]].LessThan(incomes[order[b]])
	})

	base := n / k
	buckets := make([]domain.QuantileBucket, 0, k)
	start := 0
	for b := 0; b < k; b++ {
		end := start + base
		if b == k-1 {
			end = n
		}
		count := end - start

		bucketIncome, bucketTax, rateSum := decimal.Zero, decimal.Zero, decimal.Zero
		for _, idx := range order[start:end] {
			bucketIncome = bucketIncome.Add(incomes[idx])
			bucketTax = bucketTax.Add(taxes[idx])
			if !incomes[idx].IsZero() {
				rateSum = rateSum.Add(taxes[idx].Div(incomes[idx]))
			}
		}

		bucket := domain.QuantileBucket{
			Index:       b,
			Count:       count,
			LowerIncome: incomes[order[start]],
			UpperIncome: incomes[order[end-1]],
		}
		countDec := decimal.NewFromInt(int64(count))
		bucket.MeanEffectiveRate = rateSum.Div(countDec)
		bucket.TotalRevenue = bucketTax
		bucket.RevenuePerCapita = bucketTax.Div(countDec)
		if !totalIncome.IsZero() {
			bucket.IncomeShare = bucketIncome.Div(totalIncome)
		}
		if !totalRevenue.IsZero() {
			bucket.TaxShare = bucketTax.Div(totalRevenue)
		}

		buckets = append(buckets, bucket)
		start = end
	}
	return buckets
}
