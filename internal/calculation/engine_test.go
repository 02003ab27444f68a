package calculation

import (
	"testing"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalysisEngine(t *testing.T) {
	engine := NewAnalysisEngine()

	assert.NotNil(t, engine, "Should create analysis engine")
	assert.NotNil(t, engine.Revenue, "Should initialize revenue calculator")
	assert.NotNil(t, engine.Progressivity, "Should initialize progressivity analyzer")
	assert.NotNil(t, engine.Sensitivity, "Should initialize sensitivity analyzer")
	assert.NotNil(t, engine.Logger, "Should initialize logger")
}

func TestAnalysisEngine_SetLogger(t *testing.T) {
	engine := NewAnalysisEngine()

	// Test setting a custom logger
	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)

	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	// Test setting nil logger (should use no-op logger)
	engine.SetLogger(nil)

	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func testConfiguration() *domain.Configuration {
	flatRate := d("0.2")
	upper := d("40000")
	return &domain.Configuration{
		Policies: []domain.PolicyConfig{
			{Name: "flat20", Kind: domain.KindFlat, Rate: &flatRate},
			{Name: "two-step", Kind: domain.KindProgressive, Brackets: []domain.BracketConfig{
				{Lower: d("0"), Upper: &upper, Rate: d("0.10")},
				{Lower: d("40000"), Rate: d("0.30")},
			}},
		},
		Population: domain.PopulationConfig{
			Family: "lognormal",
			Size:   200,
			Seed:   17,
			Mu:     10.5,
			Sigma:  0.6,
		},
	}
}

func TestAnalysisEngine_RunAll(t *testing.T) {
	engine := NewAnalysisEngine()

	run, err := engine.RunAll(testConfiguration())
	require.NoError(t, err)

	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, 200, run.Population.Size())
	require.Len(t, run.Policies, 2)
	assert.Equal(t, "flat20", run.Policies[0].Result.PolicyName)
	assert.Equal(t, "two-step", run.Policies[1].Result.PolicyName)
	assert.Nil(t, run.Sweep, "No sweep configured, none should run")

	// Both policies are evaluated over the same population.
	assert.True(t, run.Policies[0].Result.TotalIncome.Equal(run.Policies[1].Result.TotalIncome))
}

func TestAnalysisEngine_RunAll_WithSweep(t *testing.T) {
	cfg := testConfiguration()
	cfg.Sweep = &domain.SweepSpec{
		PolicyName: "flat20",
		Parameter:  domain.SweepFlatRate,
		Min:        d("0.1"),
		Max:        d("0.3"),
		Steps:      3,
	}

	engine := NewAnalysisEngine()
	run, err := engine.RunAll(cfg)
	require.NoError(t, err)

	require.NotNil(t, run.Sweep)
	assert.Len(t, run.Sweep.Points, 3)
	assert.Equal(t, "flat20", run.Sweep.PolicyName)
}

func TestAnalysisEngine_RunAll_Errors(t *testing.T) {
	engine := NewAnalysisEngine()

	_, err := engine.RunAll(&domain.Configuration{
		Population: domain.PopulationConfig{Family: "lognormal", Size: 10, Mu: 10, Sigma: 0.5},
	})
	assert.Error(t, err, "A configuration without policies cannot run")

	cfg := testConfiguration()
	cfg.Sweep = &domain.SweepSpec{
		PolicyName: "missing",
		Parameter:  domain.SweepFlatRate,
		Min:        d("0.1"), Max: d("0.2"), Steps: 2,
	}
	_, err = engine.RunAll(cfg)
	assert.Error(t, err, "A sweep naming an unknown policy cannot run")
}

func TestAnalysisEngine_QuantileOverride(t *testing.T) {
	cfg := testConfiguration()
	cfg.Quantiles = 10

	engine := NewAnalysisEngine()
	run, err := engine.RunAll(cfg)
	require.NoError(t, err)

	assert.Len(t, run.Policies[0].Result.QuantileBurdens, 10,
		"Configured quantile count overrides the default")
	assert.Equal(t, DefaultQuantileCount, engine.Revenue.QuantileCount,
		"The override is per run, not a mutation of the engine")
	assert.Equal(t, DefaultQuantileCount, engine.Progressivity.QuantileCount)

	// A later run without the override is back on the default.
	run, err = engine.RunAll(testConfiguration())
	require.NoError(t, err)
	assert.Len(t, run.Policies[0].Result.QuantileBurdens, DefaultQuantileCount)
}

// TestLogger is a simple logger for testing
type TestLogger struct {
	messages []string
}

func (tl *TestLogger) Debugf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "DEBUG: "+format)
}

func (tl *TestLogger) Infof(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "INFO: "+format)
}

func (tl *TestLogger) Warnf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "WARN: "+format)
}

func (tl *TestLogger) Errorf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "ERROR: "+format)
}
