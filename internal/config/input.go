package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/policy"
	"github.com/rgehrsitz/taxsim/internal/population"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration. Validation
// constructs each policy, so every bracket-schedule rule (contiguity,
// zero start, bounded rates, single open top) is enforced here exactly
// as at run time.
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := ip.validatePolicies(config); err != nil {
		return err
	}
	if err := ip.validatePopulation(&config.Population); err != nil {
		return err
	}
	if err := ip.validateWeights(config); err != nil {
		return err
	}
	if err := ip.validateSweep(config); err != nil {
		return err
	}
	if config.Quantiles < 0 {
		return fmt.Errorf("quantiles must be >= 0, got %d", config.Quantiles)
	}
	return nil
}

func (ip *InputParser) validatePolicies(config *domain.Configuration) error {
	if len(config.Policies) == 0 {
		return fmt.Errorf("no policies provided")
	}
	seen := make(map[string]bool, len(config.Policies))
	for i, pc := range config.Policies {
		if pc.Name == "" {
			return fmt.Errorf("policy %d has no name", i)
		}
		if seen[pc.Name] {
			return fmt.Errorf("duplicate policy name %q", pc.Name)
		}
		seen[pc.Name] = true
		if _, err := policy.NewFromConfig(pc); err != nil {
			return fmt.Errorf("policy %d (%s) validation failed: %w", i, pc.Name, err)
		}
	}
	return nil
}

func (ip *InputParser) validatePopulation(cfg *domain.PopulationConfig) error {
	if cfg.Size <= 0 {
		return fmt.Errorf("population size must be > 0, got %d", cfg.Size)
	}
	// Dry-run a single sample so family and parameter errors surface at
	// load time with a small n rather than mid-analysis with the real one.
	probe := *cfg
	probe.Size = 1
	if _, err := population.Generate(probe); err != nil {
		return fmt.Errorf("population validation failed: %w", err)
	}
	return nil
}

func (ip *InputParser) validateWeights(config *domain.Configuration) error {
	if len(config.Weights) == 0 {
		return nil
	}
	if _, err := domain.ParseRankingWeights(config.Weights); err != nil {
		return fmt.Errorf("weights validation failed: %w", err)
	}
	return nil
}

func (ip *InputParser) validateSweep(config *domain.Configuration) error {
	sweep := config.Sweep
	if sweep == nil {
		return nil
	}
	if sweep.PolicyName == "" {
		return fmt.Errorf("sweep requires a policy name")
	}
	found := false
	for _, pc := range config.Policies {
		if pc.Name == sweep.PolicyName {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("sweep references unknown policy %q", sweep.PolicyName)
	}
	switch sweep.Parameter {
	case domain.SweepFlatRate, domain.SweepRateScale:
	default:
		return fmt.Errorf("unknown sweep parameter %q", sweep.Parameter)
	}
	if sweep.Steps < 1 {
		return fmt.Errorf("sweep steps must be >= 1, got %d", sweep.Steps)
	}
	if sweep.Max.LessThan(sweep.Min) {
		return fmt.Errorf("sweep max %s below min %s", sweep.Max, sweep.Min)
	}
	return nil
}
