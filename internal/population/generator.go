package population

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidDistributionParameters is returned when a requested family is
// unrecognized or its parameters are out of domain.
var ErrInvalidDistributionParameters = errors.New("invalid distribution parameters")

// Recognized distribution families.
const (
	FamilyLognormal   = "lognormal"
	FamilyNormal      = "normal"
	FamilyExponential = "exponential"
)

// Generator samples synthetic income populations. All randomness flows
// through the explicitly seeded source; there is no process-wide random
// state, so a given seed always reproduces the same population.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator seeded with the given value.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Lognormal samples n incomes as exp(mu + sigma*Z). Mu and sigma are the
// mean and standard deviation of log-income.
func (g *Generator) Lognormal(n int, mu, sigma float64) (*domain.Population, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	if sigma <= 0 || !isFinite(mu) || !isFinite(sigma) {
		return nil, fmt.Errorf("%w: lognormal requires finite mu and sigma > 0 (mu=%v sigma=%v)",
			ErrInvalidDistributionParameters, mu, sigma)
	}
	incomes := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		v := math.Exp(mu + sigma*g.rng.NormFloat64())
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: lognormal sample overflows float64 (mu=%v sigma=%v)",
				ErrInvalidDistributionParameters, mu, sigma)
		}
		incomes[i] = toIncome(v)
	}
	return domain.NewPopulation(incomes), nil
}

// Normal samples n incomes from N(mean, std). Negative draws are clamped
// to zero rather than rejected; this is a modeling choice, not an error.
func (g *Generator) Normal(n int, mean, std float64) (*domain.Population, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	if std <= 0 || !isFinite(mean) || !isFinite(std) {
		return nil, fmt.Errorf("%w: normal requires finite mean and std > 0 (mean=%v std=%v)",
			ErrInvalidDistributionParameters, mean, std)
	}
	incomes := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		v := mean + std*g.rng.NormFloat64()
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: normal sample overflows float64 (mean=%v std=%v)",
				ErrInvalidDistributionParameters, mean, std)
		}
		if v < 0 {
			v = 0
		}
		incomes[i] = toIncome(v)
	}
	return domain.NewPopulation(incomes), nil
}

// Exponential samples n incomes with the given scale (mean).
func (g *Generator) Exponential(n int, scale float64) (*domain.Population, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	if scale <= 0 || !isFinite(scale) {
		return nil, fmt.Errorf("%w: exponential requires scale > 0 (scale=%v)",
			ErrInvalidDistributionParameters, scale)
	}
	incomes := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		v := g.rng.ExpFloat64() * scale
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: exponential sample overflows float64 (scale=%v)",
				ErrInvalidDistributionParameters, scale)
		}
		incomes[i] = toIncome(v)
	}
	return domain.NewPopulation(incomes), nil
}

// FromObservedMean derives a synthetic population whose expected mean
// income matches an observed aggregate statistic, using a lognormal with
// mu = ln(mean) - sigma^2/2. This approximates individual-level data from
// an aggregate; it is not observed microdata.
func (g *Generator) FromObservedMean(n int, observedMean, sigma float64) (*domain.Population, error) {
	if observedMean <= 0 || !isFinite(observedMean) {
		return nil, fmt.Errorf("%w: observed mean income must be > 0 (got %v)",
			ErrInvalidDistributionParameters, observedMean)
	}
	mu := math.Log(observedMean) - sigma*sigma/2
	return g.Lognormal(n, mu, sigma)
}

// Generate dispatches on the configured family. Unknown families and
// out-of-domain parameters fail immediately; nothing defaults silently.
func Generate(cfg domain.PopulationConfig) (*domain.Population, error) {
	g := NewGenerator(cfg.Seed)

	if cfg.ObservedMean != nil {
		sigma := cfg.Sigma
		if sigma == 0 {
			sigma = defaultCalibrationSigma
		}
		return g.FromObservedMean(cfg.Size, *cfg.ObservedMean, sigma)
	}

	switch cfg.Family {
	case FamilyLognormal:
		return g.Lognormal(cfg.Size, cfg.Mu, cfg.Sigma)
	case FamilyNormal:
		return g.Normal(cfg.Size, cfg.Mean, cfg.Std)
	case FamilyExponential:
		return g.Exponential(cfg.Size, cfg.Scale)
	default:
		return nil, fmt.Errorf("%w: unknown distribution family %q",
			ErrInvalidDistributionParameters, cfg.Family)
	}
}

// defaultCalibrationSigma is the log-income dispersion assumed when
// calibrating to an observed mean without an explicit sigma.
const defaultCalibrationSigma = 0.6

func checkSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: population size must be > 0 (got %d)", ErrInvalidDistributionParameters, n)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// toIncome converts a finite sampled float to a money amount rounded to
// cents. Callers check finiteness first; NewFromFloat panics on ±Inf.
func toIncome(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
