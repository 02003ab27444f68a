package output

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FormatAnalysisRun renders a full analysis run as a console report:
// one summary block per policy, each with its quantile burden table,
// followed by the sweep table when one was run.
func FormatAnalysisRun(run *calculation.AnalysisRun) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "TAX POLICY ANALYSIS\n")
	fmt.Fprintf(&buf, "%s\n", strings.Repeat("=", 72))
	fmt.Fprintf(&buf, "Run: %s\n", run.RunID)
	fmt.Fprintf(&buf, "Population: %d incomes, mean %s\n\n",
		run.Population.Size(), FormatCurrency(run.Population.MeanIncome()))

	for _, pa := range run.Policies {
		writePolicyReport(&buf, &pa)
	}

	if run.Sweep != nil {
		text, err := (SweepConsoleFormatter{}).FormatSweep(run.Sweep)
		if err == nil {
			buf.WriteString(text)
		}
	}

	return buf.String()
}

func writePolicyReport(buf *bytes.Buffer, pa *calculation.PolicyAnalysis) {
	r := pa.Result
	fmt.Fprintf(buf, "%s (%s)\n", r.PolicyName, r.PolicyKind)
	fmt.Fprintf(buf, "%s\n", strings.Repeat("-", 72))

	if r.Undefined {
		fmt.Fprintf(buf, "  No population; revenue metrics are undefined.\n\n")
		return
	}

	fmt.Fprintf(buf, "  Total revenue:        %s\n", FormatCurrency(r.TotalRevenue))
	fmt.Fprintf(buf, "  Revenue per capita:   %s\n", FormatCurrency(r.RevenuePerCapita))
	fmt.Fprintf(buf, "  Weighted avg rate:    %s\n", FormatPercentage(r.WeightedAvgEffectiveRate.Mul(decimal.NewFromInt(100))))
	fmt.Fprintf(buf, "  Mean effective rate:  %s\n", FormatPercentage(r.MeanEffectiveRate.Mul(decimal.NewFromInt(100))))
	fmt.Fprintf(buf, "  Suits index:          %s (%s)\n",
		pa.Progressivity.SuitsIndex.StringFixed(4), pa.Progressivity.Classification)

	if len(r.QuantileBurdens) > 0 {
		fmt.Fprintf(buf, "\n  %-8s %-10s %-16s %-12s %-12s %-12s\n",
			"Bucket", "Count", "Income Range", "Mean Rate", "Inc Share", "Tax Share")
		for _, b := range r.QuantileBurdens {
			fmt.Fprintf(buf, "  %-8d %-10d %-16s %-12s %-12s %-12s\n",
				b.Index+1,
				b.Count,
				compactRange(b.LowerIncome, b.UpperIncome),
				FormatPercentage(b.MeanEffectiveRate.Mul(decimal.NewFromInt(100))),
				FormatPercentage(b.IncomeShare.Mul(decimal.NewFromInt(100))),
				FormatPercentage(b.TaxShare.Mul(decimal.NewFromInt(100))))
		}
	}
	fmt.Fprintln(buf)
}

func compactRange(lower, upper decimal.Decimal) string {
	return compactAmount(lower) + "-" + compactAmount(upper)
}

func compactAmount(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		return d.Div(decimal.NewFromInt(1000000)).StringFixed(1) + "M"
	}
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		return d.Div(decimal.NewFromInt(1000)).StringFixed(0) + "K"
	}
	return d.StringFixed(0)
}

// SaveConfiguration writes a configuration back out as YAML
func SaveConfiguration(config *domain.Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
