package calculation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/policy"
	"github.com/rgehrsitz/taxsim/internal/population"
)

// Logger is the minimal leveled logging surface the engine needs.
// Callers plug in whatever backend they like; the default is silent.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(format string, args ...interface{}) {}
func (NopLogger) Infof(format string, args ...interface{})  {}
func (NopLogger) Warnf(format string, args ...interface{})  {}
func (NopLogger) Errorf(format string, args ...interface{}) {}

// PolicyAnalysis pairs a policy's revenue result with its progressivity
// metric.
type PolicyAnalysis struct {
	Policy        policy.TaxPolicy            `json:"-"`
	Result        *domain.TaxResult           `json:"result"`
	Progressivity *domain.ProgressivityMetric `json:"progressivity"`
}

// AnalysisRun is the output of a full configuration run: every policy
// evaluated against the same population, plus the optional sweep.
type AnalysisRun struct {
	RunID      string                `json:"run_id"`
	Population *domain.Population    `json:"-"`
	Policies   []PolicyAnalysis      `json:"policies"`
	Sweep      *domain.SweepAnalysis `json:"sweep,omitempty"`
}

// AnalysisEngine orchestrates policy construction, population generation
// and the per-policy calculators for a whole configuration.
type AnalysisEngine struct {
	Revenue       *RevenueCalculator
	Progressivity *ProgressivityAnalyzer
	Sensitivity   *SensitivityAnalyzer
	Logger        Logger
	Debug         bool
}

// NewAnalysisEngine creates an engine with default calculators and a
// silent logger.
func NewAnalysisEngine() *AnalysisEngine {
	return &AnalysisEngine{
		Revenue:       NewRevenueCalculator(),
		Progressivity: NewProgressivityAnalyzer(),
		Sensitivity:   NewSensitivityAnalyzer(),
		Logger:        NopLogger{},
	}
}

// SetLogger installs a logger; nil restores the no-op logger.
func (ae *AnalysisEngine) SetLogger(l Logger) {
	if l == nil {
		ae.Logger = NopLogger{}
		return
	}
	ae.Logger = l
}

// AnalyzePolicy evaluates one policy against a population.
func (ae *AnalysisEngine) AnalyzePolicy(pol policy.TaxPolicy, pop *domain.Population) PolicyAnalysis {
	ae.Logger.Debugf("analyzing policy %q over %d incomes", pol.Name(), pop.Size())
	return PolicyAnalysis{
		Policy:        pol,
		Result:        ae.Revenue.CalculateRevenue(pol, pop),
		Progressivity: ae.Progressivity.Analyze(pol, pop),
	}
}

// WithQuantiles returns a copy of the engine whose calculators use k
// burden buckets. The receiver and its calculators are left untouched, so
// a per-run override never leaks into later runs on the same engine.
func (ae *AnalysisEngine) WithQuantiles(k int) *AnalysisEngine {
	rev := *ae.Revenue
	rev.QuantileCount = k
	prog := *ae.Progressivity
	prog.QuantileCount = k

	clone := *ae
	clone.Revenue = &rev
	clone.Progressivity = &prog
	clone.Sensitivity = &SensitivityAnalyzer{Revenue: &rev, Progressivity: &prog}
	return &clone
}

// RunAll executes a full configuration: builds every policy, generates
// the population, evaluates each policy, and runs the sweep if one is
// configured. Policies are evaluated in configuration order.
func (ae *AnalysisEngine) RunAll(cfg *domain.Configuration) (*AnalysisRun, error) {
	policies := make([]policy.TaxPolicy, 0, len(cfg.Policies))
	for _, pc := range cfg.Policies {
		pol, err := policy.NewFromConfig(pc)
		if err != nil {
			return nil, fmt.Errorf("building policy %q: %w", pc.Name, err)
		}
		policies = append(policies, pol)
	}
	if len(policies) == 0 {
		return nil, fmt.Errorf("configuration defines no policies")
	}

	pop, err := population.Generate(cfg.Population)
	if err != nil {
		return nil, fmt.Errorf("generating population: %w", err)
	}
	ae.Logger.Infof("generated %d incomes (family=%s seed=%d)", pop.Size(), cfg.Population.Family, cfg.Population.Seed)

	eng := ae
	if cfg.Quantiles > 0 {
		eng = ae.WithQuantiles(cfg.Quantiles)
	}

	run := &AnalysisRun{
		RunID:      uuid.NewString(),
		Population: pop,
		Policies:   make([]PolicyAnalysis, 0, len(policies)),
	}
	for _, pol := range policies {
		run.Policies = append(run.Policies, eng.AnalyzePolicy(pol, pop))
	}

	if cfg.Sweep != nil {
		base, err := findPolicy(policies, cfg.Sweep.PolicyName)
		if err != nil {
			return nil, err
		}
		ae.Logger.Infof("sweeping %s on %q over [%s, %s] in %d steps",
			cfg.Sweep.Parameter, base.Name(), cfg.Sweep.Min, cfg.Sweep.Max, cfg.Sweep.Steps)
		sweep, err := eng.Sensitivity.Sweep(base, pop, *cfg.Sweep)
		if err != nil {
			return nil, fmt.Errorf("sweeping %q: %w", base.Name(), err)
		}
		run.Sweep = sweep
	}

	return run, nil
}

func findPolicy(policies []policy.TaxPolicy, name string) (policy.TaxPolicy, error) {
	for _, pol := range policies {
		if pol.Name() == name {
			return pol, nil
		}
	}
	return nil, fmt.Errorf("sweep references unknown policy %q", name)
}
