package calculation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/policy"
	"github.com/shopspring/decimal"
)

// ErrUnknownSweepParameter is returned for sweep parameter names outside
// the recognized set. Unrecognized names never default silently.
var ErrUnknownSweepParameter = errors.New("unknown sweep parameter")

// SensitivityAnalyzer re-evaluates revenue and progressivity across a
// swept policy parameter. Per-point evaluations are independent and run
// in parallel; the output sequence is always ordered by parameter value.
type SensitivityAnalyzer struct {
	Revenue       *RevenueCalculator
	Progressivity *ProgressivityAnalyzer
}

// NewSensitivityAnalyzer creates a sweeper with default calculators.
func NewSensitivityAnalyzer() *SensitivityAnalyzer {
	return &SensitivityAnalyzer{
		Revenue:       NewRevenueCalculator(),
		Progressivity: NewProgressivityAnalyzer(),
	}
}

// SweepValues expands a [min, max] range into steps evenly spaced values,
// inclusive of both endpoints when steps > 1. A single step returns min.
func SweepValues(min, max decimal.Decimal, steps int) ([]decimal.Decimal, error) {
	if steps < 1 {
		return nil, fmt.Errorf("sweep steps must be >= 1 (got %d)", steps)
	}
	if max.LessThan(min) {
		return nil, fmt.Errorf("sweep range max %s below min %s", max, min)
	}
	if steps == 1 {
		return []decimal.Decimal{min}, nil
	}
	step := max.Sub(min).Div(decimal.NewFromInt(int64(steps - 1)))
	values := make([]decimal.Decimal, steps)
	for i := 0; i < steps; i++ {
		values[i] = min.Add(step.Mul(decimal.NewFromInt(int64(i))))
	}
	// Pin the top endpoint: the step division rounds, the endpoint must not.
	values[steps-1] = max
	return values, nil
}

// buildAt reconstructs the swept policy family member at one parameter
// value.
func buildAt(base policy.TaxPolicy, param domain.SweepParameter, value decimal.Decimal) (policy.TaxPolicy, error) {
	switch param {
	case domain.SweepFlatRate:
		if _, ok := base.(*policy.FlatPolicy); !ok {
			return nil, fmt.Errorf("%s sweep requires a flat base policy, got %s", domain.SweepFlatRate, base.Kind())
		}
		return policy.NewFlat(base.Name(), value)
	case domain.SweepRateScale:
		bp, ok := base.(*policy.BracketPolicy)
		if !ok {
			return nil, fmt.Errorf("%s sweep requires a bracket base policy, got %s", domain.SweepRateScale, base.Kind())
		}
		return bp.ScaleRates(value)
	default:
		return nil, fmt.Errorf("%w: %q (recognized: %s, %s)",
			ErrUnknownSweepParameter, param, domain.SweepFlatRate, domain.SweepRateScale)
	}
}

// Sweep evaluates the whole parameter range concurrently and returns the
// finished, ordered analysis.
func (sa *SensitivityAnalyzer) Sweep(base policy.TaxPolicy, pop *domain.Population, spec domain.SweepSpec) (*domain.SweepAnalysis, error) {
	values, err := SweepValues(spec.Min, spec.Max, spec.Steps)
	if err != nil {
		return nil, err
	}
	// Reject unknown parameters (and incompatible bases) before spending
	// any evaluation time.
	if _, err := buildAt(base, spec.Parameter, values[0]); err != nil {
		return nil, err
	}

	points := make([]domain.SweepPoint, len(values))
	errs := make([]error, len(values))
	var wg sync.WaitGroup
	for i, v := range values {
		wg.Add(1)
		go func(i int, v decimal.Decimal) {
			defer wg.Done()
			points[i], errs[i] = sa.evaluateAt(base, pop, spec.Parameter, v)
		}(i, v)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return &domain.SweepAnalysis{
		RunID:      uuid.NewString(),
		PolicyName: base.Name(),
		Parameter:  spec.Parameter,
		Points:     points,
	}, nil
}

// Each produces the sweep lazily in parameter order, one point per
// callback. Returning an error stops the sweep; calling Each again
// restarts it from the first point.
func (sa *SensitivityAnalyzer) Each(base policy.TaxPolicy, pop *domain.Population, spec domain.SweepSpec, fn func(domain.SweepPoint) error) error {
	values, err := SweepValues(spec.Min, spec.Max, spec.Steps)
	if err != nil {
		return err
	}
	for _, v := range values {
		point, err := sa.evaluateAt(base, pop, spec.Parameter, v)
		if err != nil {
			return err
		}
		if err := fn(point); err != nil {
			return err
		}
	}
	return nil
}

func (sa *SensitivityAnalyzer) evaluateAt(base policy.TaxPolicy, pop *domain.Population, param domain.SweepParameter, value decimal.Decimal) (domain.SweepPoint, error) {
	pol, err := buildAt(base, param, value)
	if err != nil {
		return domain.SweepPoint{}, err
	}
	return domain.SweepPoint{
		ParameterValue: value,
		Result:         sa.Revenue.CalculateRevenue(pol, pop),
		Progressivity:  sa.Progressivity.Analyze(pol, pop),
	}, nil
}
