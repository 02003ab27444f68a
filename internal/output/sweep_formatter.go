package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

// SweepFormatter defines a formatter for sensitivity sweep output
type SweepFormatter interface {
	FormatSweep(analysis *domain.SweepAnalysis) (string, error)
	Name() string
}

// SweepConsoleFormatter formats sweep output for console
type SweepConsoleFormatter struct{}

func (scf SweepConsoleFormatter) Name() string { return "console" }

func (scf SweepConsoleFormatter) FormatSweep(analysis *domain.SweepAnalysis) (string, error) {
	if len(analysis.Points) == 0 {
		return "", fmt.Errorf("no points in sweep analysis")
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "SENSITIVITY SWEEP: %s\n", strings.ToUpper(strings.ReplaceAll(string(analysis.Parameter), "_", " ")))
	fmt.Fprintf(&buf, "=================================================================\n")
	fmt.Fprintf(&buf, "Policy: %s\n", analysis.PolicyName)
	fmt.Fprintf(&buf, "Range: %s to %s (%d points)\n",
		analysis.Points[0].ParameterValue.String(),
		analysis.Points[len(analysis.Points)-1].ParameterValue.String(),
		len(analysis.Points))
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "%-12s %-16s %-14s %-12s %-12s\n",
		string(analysis.Parameter), "Total Revenue", "Per Capita", "Avg Rate", "Suits Index")
	fmt.Fprintln(&buf, strings.Repeat("-", 70))

	for _, point := range analysis.Points {
		fmt.Fprintf(&buf, "%-12s %-16s %-14s %-12s %-12s\n",
			point.ParameterValue.StringFixed(4),
			FormatCurrency(point.Result.TotalRevenue),
			FormatCurrency(point.Result.RevenuePerCapita),
			FormatPercentage(point.Result.WeightedAvgEffectiveRate.Mul(decimal.NewFromInt(100))),
			point.Progressivity.SuitsIndex.StringFixed(4))
	}
	fmt.Fprintln(&buf)

	// Revenue elasticity between the endpoints, when defined.
	first, last := analysis.Points[0], analysis.Points[len(analysis.Points)-1]
	if len(analysis.Points) > 1 && !first.Result.TotalRevenue.IsZero() && !first.ParameterValue.IsZero() {
		revChange := last.Result.TotalRevenue.Sub(first.Result.TotalRevenue).Div(first.Result.TotalRevenue)
		paramChange := last.ParameterValue.Sub(first.ParameterValue).Div(first.ParameterValue)
		if !paramChange.IsZero() {
			fmt.Fprintf(&buf, "Revenue elasticity over the range: %s\n", revChange.Div(paramChange).StringFixed(3))
		}
	}

	return buf.String(), nil
}

// SweepCSVFormatter formats sweep output as CSV
type SweepCSVFormatter struct{}

func (scf SweepCSVFormatter) Name() string { return "csv" }

func (scf SweepCSVFormatter) FormatSweep(analysis *domain.SweepAnalysis) (string, error) {
	if len(analysis.Points) == 0 {
		return "", fmt.Errorf("no points in sweep analysis")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "parameter_name,parameter_value,total_revenue,revenue_per_capita,weighted_avg_rate,suits_index,classification\n")
	for _, point := range analysis.Points {
		fmt.Fprintf(&buf, "%s,%s,%s,%s,%s,%s,%s\n",
			analysis.Parameter,
			point.ParameterValue.String(),
			point.Result.TotalRevenue.String(),
			point.Result.RevenuePerCapita.String(),
			point.Result.WeightedAvgEffectiveRate.String(),
			point.Progressivity.SuitsIndex.String(),
			point.Progressivity.Classification)
	}
	return buf.String(), nil
}

// SweepJSONFormatter formats sweep output as JSON
type SweepJSONFormatter struct{}

func (sjf SweepJSONFormatter) Name() string { return "json" }

func (sjf SweepJSONFormatter) FormatSweep(analysis *domain.SweepAnalysis) (string, error) {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewSweepFormatter creates a sweep formatter based on the format name
func NewSweepFormatter(format string) SweepFormatter {
	switch NormalizeFormatName(format) {
	case "console", "table":
		return SweepConsoleFormatter{}
	case "csv":
		return SweepCSVFormatter{}
	case "json":
		return SweepJSONFormatter{}
	default:
		return SweepConsoleFormatter{} // Default to console
	}
}

// NormalizeFormatName lower-cases and trims a format name
func NormalizeFormatName(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}
