package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing policies
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("TAX POLICY COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 96) + "\n")
	sb.WriteString(fmt.Sprintf("Population: %d incomes\n", compSet.PopulationSize))
	sb.WriteString(fmt.Sprintf("Weights: revenue=%s progressivity=%s efficiency=%s\n",
		compSet.Weights.Revenue.StringFixed(2),
		compSet.Weights.Progressivity.StringFixed(2),
		compSet.Weights.Efficiency.StringFixed(2)))
	sb.WriteString("\n")

	nameWidth := 24
	numWidth := 14

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, "Policy",
		numWidth, "Total Revenue",
		numWidth, "Per Capita",
		numWidth, "Avg Rate",
		numWidth, "Suits Index",
		numWidth, "Class"))
	sb.WriteString(strings.Repeat("-", 96) + "\n")

	for _, r := range compSet.Results {
		sb.WriteString(tf.formatRow(&r, nameWidth, numWidth))
	}
	sb.WriteString(strings.Repeat("=", 96) + "\n")

	if len(compSet.Ranking) > 0 {
		sb.WriteString("\nRANKING\n")
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		for _, e := range compSet.Ranking {
			sb.WriteString(fmt.Sprintf("%2d. %-*s score %s (rev %s | prog %s | eff %s)\n",
				e.Rank,
				nameWidth, tf.truncate(e.PolicyName, nameWidth),
				e.CombinedScore.StringFixed(4),
				e.NormalizedRevenue.StringFixed(3),
				e.NormalizedProgressivity.StringFixed(3),
				e.NormalizedEfficiency.StringFixed(3)))
		}
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("- %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single policy row
func (tf *TableFormatter) formatRow(result *PolicyResult, nameWidth, numWidth int) string {
	if result.Result.Undefined {
		return fmt.Sprintf("%-*s %*s\n",
			nameWidth, tf.truncate(result.PolicyName, nameWidth),
			numWidth, "undefined")
	}
	return fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(result.PolicyName, nameWidth),
		numWidth, "$"+tf.formatDecimal(result.Result.TotalRevenue),
		numWidth, "$"+tf.formatDecimal(result.Result.RevenuePerCapita),
		numWidth, result.Result.WeightedAvgEffectiveRate.Mul(decimal.NewFromInt(100)).StringFixed(2)+"%",
		numWidth, result.Progressivity.SuitsIndex.StringFixed(4),
		numWidth, string(result.Progressivity.Classification))
}

// formatDecimal formats a decimal for display (in thousands/millions)
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(2)
}

// truncate shortens a string to fit column width
func (tf *TableFormatter) truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
