package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Population is the modeled set of individual incomes subject to a tax
// policy. It is created once by a generator (or loaded from config) and
// read-only thereafter; nothing in the engine mutates it.
type Population struct {
	Incomes []decimal.Decimal
}

// NewPopulation wraps a slice of incomes. The slice is taken over by the
// population and must not be modified by the caller afterwards.
func NewPopulation(incomes []decimal.Decimal) *Population {
	return &Population{Incomes: incomes}
}

// Size returns the number of records.
func (p *Population) Size() int {
	return len(p.Incomes)
}

// TotalIncome returns the sum of all incomes.
func (p *Population) TotalIncome() decimal.Decimal {
	total := decimal.Zero
	for _, inc := range p.Incomes {
		total = total.Add(inc)
	}
	return total
}

// MeanIncome returns the average income, or zero for an empty population.
func (p *Population) MeanIncome() decimal.Decimal {
	if len(p.Incomes) == 0 {
		return decimal.Zero
	}
	return p.TotalIncome().Div(decimal.NewFromInt(int64(len(p.Incomes))))
}

// SortedCopy returns the incomes in ascending order without touching the
// original ordering.
func (p *Population) SortedCopy() []decimal.Decimal {
	sorted := make([]decimal.Decimal, len(p.Incomes))
	copy(sorted, p.Incomes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})
	return sorted
}
