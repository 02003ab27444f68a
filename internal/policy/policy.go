package policy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidBracketConfig is returned when a policy's schedule has gaps,
// overlaps, non-ascending bounds, or rates outside [0,1]. Construction is
// the only place validation happens; evaluation never re-validates.
var ErrInvalidBracketConfig = errors.New("invalid bracket configuration")

// Bracket lookup switches from a linear scan to bisection above this
// schedule size. Typical schedules have five or fewer brackets.
const bisectThreshold = 8

// TaxPolicy is a pure function from income to tax owed, validated at
// construction and immutable afterwards.
type TaxPolicy interface {
	Name() string
	Kind() domain.PolicyKind

	// ComputeTax returns the tax owed on a single income.
	ComputeTax(income decimal.Decimal) decimal.Decimal
	// ComputeTaxAll evaluates a whole income slice in one call so the
	// population loop avoids per-record interface dispatch.
	ComputeTaxAll(incomes []decimal.Decimal) []decimal.Decimal
	// MarginalRate returns the rate of the bracket containing income.
	MarginalRate(income decimal.Decimal) decimal.Decimal
	// AverageRate returns tax/income, defined as 0 when income is 0.
	AverageRate(income decimal.Decimal) decimal.Decimal
}

// FlatPolicy taxes every unit of income at a single rate.
type FlatPolicy struct {
	name string
	rate decimal.Decimal
}

// NewFlat creates a flat policy, validating the rate bounds.
func NewFlat(name string, rate decimal.Decimal) (*FlatPolicy, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: flat rate %s outside [0,1]", ErrInvalidBracketConfig, rate)
	}
	return &FlatPolicy{name: name, rate: rate}, nil
}

func (fp *FlatPolicy) Name() string            { return fp.name }
func (fp *FlatPolicy) Kind() domain.PolicyKind { return domain.KindFlat }

// Rate returns the flat rate.
func (fp *FlatPolicy) Rate() decimal.Decimal { return fp.rate }

func (fp *FlatPolicy) ComputeTax(income decimal.Decimal) decimal.Decimal {
	if income.IsNegative() {
		return decimal.Zero
	}
	return income.Mul(fp.rate)
}

func (fp *FlatPolicy) ComputeTaxAll(incomes []decimal.Decimal) []decimal.Decimal {
	taxes := make([]decimal.Decimal, len(incomes))
	for i, inc := range incomes {
		taxes[i] = fp.ComputeTax(inc)
	}
	return taxes
}

func (fp *FlatPolicy) MarginalRate(decimal.Decimal) decimal.Decimal { return fp.rate }

func (fp *FlatPolicy) AverageRate(income decimal.Decimal) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return fp.rate
}

// BracketPolicy taxes income under a marginal bracket schedule. The same
// arithmetic serves progressive, regressive and custom schedules; the
// kinds differ only in how their rates were generated and validated.
type BracketPolicy struct {
	name     string
	kind     domain.PolicyKind
	brackets []domain.Bracket

	// cumTax[i] is the tax owed on an income exactly at brackets[i].Lower,
	// so evaluation is a bracket lookup plus one multiply.
	cumTax []decimal.Decimal
}

// NewProgressive creates a bracket policy whose rates must be
// non-decreasing with income.
func NewProgressive(name string, brackets []domain.Bracket) (*BracketPolicy, error) {
	return newBracketPolicy(name, domain.KindProgressive, brackets)
}

// NewRegressive creates a bracket policy whose rates must be
// non-increasing with income. The label constrains the marginal schedule
// only; whether the effective rate actually falls with income is decided
// by the progressivity analyzer, not assumed here.
func NewRegressive(name string, brackets []domain.Bracket) (*BracketPolicy, error) {
	return newBracketPolicy(name, domain.KindRegressive, brackets)
}

// NewCustom creates a bracket policy with no constraint on rate ordering.
func NewCustom(name string, brackets []domain.Bracket) (*BracketPolicy, error) {
	return newBracketPolicy(name, domain.KindCustom, brackets)
}

func newBracketPolicy(name string, kind domain.PolicyKind, brackets []domain.Bracket) (*BracketPolicy, error) {
	sorted := make([]domain.Bracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Lower.LessThan(sorted[j].Lower)
	})

	if err := validateBrackets(sorted, kind); err != nil {
		return nil, err
	}

	cum := make([]decimal.Decimal, len(sorted))
	cum[0] = decimal.Zero
	for i := 1; i < len(sorted); i++ {
		cum[i] = cum[i-1].Add(sorted[i-1].Width().Mul(sorted[i-1].Rate))
	}

	return &BracketPolicy{name: name, kind: kind, brackets: sorted, cumTax: cum}, nil
}

func validateBrackets(brackets []domain.Bracket, kind domain.PolicyKind) error {
	if len(brackets) == 0 {
		return fmt.Errorf("%w: at least one bracket is required", ErrInvalidBracketConfig)
	}
	if !brackets[0].Lower.IsZero() {
		return fmt.Errorf("%w: first bracket must start at 0, got %s", ErrInvalidBracketConfig, brackets[0].Lower)
	}

	one := decimal.NewFromInt(1)
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return fmt.Errorf("%w: bracket %d rate %s outside [0,1]", ErrInvalidBracketConfig, i, b.Rate)
		}
		last := i == len(brackets)-1
		if last != b.Unbounded {
			if last {
				return fmt.Errorf("%w: last bracket must be open-ended", ErrInvalidBracketConfig)
			}
			return fmt.Errorf("%w: bracket %d is open-ended but not last", ErrInvalidBracketConfig, i)
		}
		if !b.Unbounded && b.Upper.LessThanOrEqual(b.Lower) {
			return fmt.Errorf("%w: bracket %d upper %s not above lower %s", ErrInvalidBracketConfig, i, b.Upper, b.Lower)
		}
		if i > 0 {
			prev := brackets[i-1]
			if !b.Lower.Equal(prev.Upper) {
				return fmt.Errorf("%w: bracket %d lower %s does not continue from previous upper %s (gap or overlap)",
					ErrInvalidBracketConfig, i, b.Lower, prev.Upper)
			}
		}
	}

	switch kind {
	case domain.KindProgressive:
		for i := 1; i < len(brackets); i++ {
			if brackets[i].Rate.LessThan(brackets[i-1].Rate) {
				return fmt.Errorf("%w: progressive rates must be non-decreasing (bracket %d)", ErrInvalidBracketConfig, i)
			}
		}
	case domain.KindRegressive:
		for i := 1; i < len(brackets); i++ {
			if brackets[i].Rate.GreaterThan(brackets[i-1].Rate) {
				return fmt.Errorf("%w: regressive rates must be non-increasing (bracket %d)", ErrInvalidBracketConfig, i)
			}
		}
	}

	return nil
}

func (bp *BracketPolicy) Name() string            { return bp.name }
func (bp *BracketPolicy) Kind() domain.PolicyKind { return bp.kind }

// Brackets returns a copy of the validated schedule.
func (bp *BracketPolicy) Brackets() []domain.Bracket {
	out := make([]domain.Bracket, len(bp.brackets))
	copy(out, bp.brackets)
	return out
}

// TopMarginalRate returns the rate of the open-ended top bracket.
func (bp *BracketPolicy) TopMarginalRate() decimal.Decimal {
	return bp.brackets[len(bp.brackets)-1].Rate
}

// containingIndex finds the bracket holding income under left-inclusive
// semantics. Bisection only pays for itself on large schedules.
func (bp *BracketPolicy) containingIndex(income decimal.Decimal) int {
	if len(bp.brackets) > bisectThreshold {
		idx := sort.Search(len(bp.brackets), func(i int) bool {
			return bp.brackets[i].Lower.GreaterThan(income)
		})
		if idx == 0 {
			return 0
		}
		return idx - 1
	}
	idx := 0
	for i := 1; i < len(bp.brackets); i++ {
		if bp.brackets[i].Lower.GreaterThan(income) {
			break
		}
		idx = i
	}
	return idx
}

func (bp *BracketPolicy) ComputeTax(income decimal.Decimal) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	i := bp.containingIndex(income)
	return bp.cumTax[i].Add(income.Sub(bp.brackets[i].Lower).Mul(bp.brackets[i].Rate))
}

func (bp *BracketPolicy) ComputeTaxAll(incomes []decimal.Decimal) []decimal.Decimal {
	taxes := make([]decimal.Decimal, len(incomes))
	for i, inc := range incomes {
		taxes[i] = bp.ComputeTax(inc)
	}
	return taxes
}

func (bp *BracketPolicy) MarginalRate(income decimal.Decimal) decimal.Decimal {
	if income.IsNegative() {
		return decimal.Zero
	}
	return bp.brackets[bp.containingIndex(income)].Rate
}

func (bp *BracketPolicy) AverageRate(income decimal.Decimal) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return bp.ComputeTax(income).Div(income)
}

// ScaleRates derives a new policy with every bracket rate multiplied by
// factor, re-validated so a sweep cannot push rates outside [0,1].
func (bp *BracketPolicy) ScaleRates(factor decimal.Decimal) (*BracketPolicy, error) {
	scaled := make([]domain.Bracket, len(bp.brackets))
	copy(scaled, bp.brackets)
	for i := range scaled {
		scaled[i].Rate = scaled[i].Rate.Mul(factor)
	}
	return newBracketPolicy(bp.name, bp.kind, scaled)
}

// NewFromConfig builds a validated policy from its structured config.
func NewFromConfig(cfg domain.PolicyConfig) (TaxPolicy, error) {
	switch cfg.Kind {
	case domain.KindFlat:
		if cfg.Rate == nil {
			return nil, fmt.Errorf("%w: flat policy %q requires a rate", ErrInvalidBracketConfig, cfg.Name)
		}
		return NewFlat(cfg.Name, *cfg.Rate)
	case domain.KindProgressive, domain.KindRegressive, domain.KindCustom:
		if len(cfg.Brackets) == 0 {
			return nil, fmt.Errorf("%w: %s policy %q requires brackets", ErrInvalidBracketConfig, cfg.Kind, cfg.Name)
		}
		brackets := make([]domain.Bracket, len(cfg.Brackets))
		for i, bc := range cfg.Brackets {
			brackets[i] = domain.Bracket{Lower: bc.Lower, Rate: bc.Rate}
			if bc.Upper != nil {
				brackets[i].Upper = *bc.Upper
			} else {
				brackets[i].Unbounded = true
			}
		}
		return newBracketPolicy(cfg.Name, cfg.Kind, brackets)
	default:
		return nil, fmt.Errorf("%w: unknown policy kind %q", ErrInvalidBracketConfig, cfg.Kind)
	}
}
