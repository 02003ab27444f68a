package domain

import (
	"github.com/shopspring/decimal"
)

// PolicyKind identifies how a tax policy's schedule was generated.
type PolicyKind string

const (
	KindProgressive PolicyKind = "progressive"
	KindFlat        PolicyKind = "flat"
	KindRegressive  PolicyKind = "regressive"
	KindCustom      PolicyKind = "custom"
)

// Bracket is an income interval paired with a marginal tax rate.
// The interval is left-inclusive/right-exclusive; the top bracket of a
// schedule has Unbounded set and its Upper is ignored.
type Bracket struct {
	Lower     decimal.Decimal
	Upper     decimal.Decimal
	Unbounded bool
	Rate      decimal.Decimal
}

// Width returns the income span covered by the bracket. It is only
// meaningful for bounded brackets.
func (b Bracket) Width() decimal.Decimal {
	return b.Upper.Sub(b.Lower)
}

// Contains reports whether income falls inside the bracket under
// marginal semantics (lower inclusive, upper exclusive).
func (b Bracket) Contains(income decimal.Decimal) bool {
	if income.LessThan(b.Lower) {
		return false
	}
	return b.Unbounded || income.LessThan(b.Upper)
}
