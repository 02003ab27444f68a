package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/config"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/output"
	"github.com/rgehrsitz/taxsim/internal/policy"
	"github.com/rgehrsitz/taxsim/internal/population"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	sensitivityPolicy       string
	sensitivityParameter    string
	sensitivityRange        string
	sensitivitySteps        int
	sensitivityOutputFormat string
)

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity [input-file]",
	Short: "Sweep a policy parameter and report revenue and progressivity at each point",
	Args:  cobra.ExactArgs(1),
	Run:   runSensitivitySweep,
}

func init() {
	sensitivityCmd.Flags().StringVar(&sensitivityPolicy, "policy", "", "Policy name to sweep (default: the configured sweep's policy)")
	sensitivityCmd.Flags().StringVar(&sensitivityParameter, "parameter", "", "Parameter to sweep (flat_rate, rate_scale)")
	sensitivityCmd.Flags().StringVar(&sensitivityRange, "range", "", "Range for the sweep (format: min-max)")
	sensitivityCmd.Flags().IntVar(&sensitivitySteps, "steps", 5, "Number of sweep points")
	sensitivityCmd.Flags().StringVar(&sensitivityOutputFormat, "output", "console", "Output format (console, csv, json)")

	rootCmd.AddCommand(sensitivityCmd)
}

func runSensitivitySweep(cmd *cobra.Command, args []string) {
	inputFile := args[0]

	parser := config.NewInputParser()
	configData, err := parser.LoadFromFile(inputFile)
	if err != nil {
		log.Fatal(err)
	}

	spec, err := resolveSweepSpec(configData)
	if err != nil {
		log.Fatal(err)
	}

	var base policy.TaxPolicy
	for _, pc := range configData.Policies {
		if pc.Name == spec.PolicyName {
			base, err = policy.NewFromConfig(pc)
			if err != nil {
				log.Fatal(err)
			}
			break
		}
	}
	if base == nil {
		log.Fatalf("policy %q not found in configuration", spec.PolicyName)
	}

	pop, err := population.Generate(configData.Population)
	if err != nil {
		log.Fatal(err)
	}

	analyzer := calculation.NewSensitivityAnalyzer()
	analysis, err := analyzer.Sweep(base, pop, *spec)
	if err != nil {
		log.Fatal(err)
	}

	formatter := output.NewSweepFormatter(sensitivityOutputFormat)
	text, err := formatter.FormatSweep(analysis)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(text)
}

// resolveSweepSpec merges the configured sweep block with command-line
// overrides. Flags win; a config file sweep block fills the gaps.
func resolveSweepSpec(configData *domain.Configuration) (*domain.SweepSpec, error) {
	spec := &domain.SweepSpec{Steps: sensitivitySteps}
	if configData.Sweep != nil {
		*spec = *configData.Sweep
		if sensitivitySteps != 5 {
			spec.Steps = sensitivitySteps
		}
	}

	if sensitivityPolicy != "" {
		spec.PolicyName = sensitivityPolicy
	}
	if sensitivityParameter != "" {
		spec.Parameter = domain.SweepParameter(sensitivityParameter)
	}
	if sensitivityRange != "" {
		min, max, err := parseSweepRange(sensitivityRange)
		if err != nil {
			return nil, err
		}
		spec.Min, spec.Max = min, max
	}

	if spec.PolicyName == "" {
		return nil, fmt.Errorf("no policy to sweep: use --policy or a sweep block in the configuration")
	}
	if spec.Parameter == "" {
		return nil, fmt.Errorf("no parameter to sweep: use --parameter or a sweep block in the configuration")
	}
	return spec, nil
}

func parseSweepRange(rangeStr string) (min, max decimal.Decimal, err error) {
	parts := strings.Split(rangeStr, "-")
	if len(parts) != 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid range format %q (expected min-max)", rangeStr)
	}
	min, err = decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid range minimum %q: %w", parts[0], err)
	}
	max, err = decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid range maximum %q: %w", parts[1], err)
	}
	return min, max, nil
}
