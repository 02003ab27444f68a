package tui

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/output"
	"github.com/rgehrsitz/taxsim/internal/tui/components"
)

// View renders the current scene (required by tea.Model interface)
func (m Model) View() string {
	if m.err != nil {
		return AppStyle.Render(
			ErrorStyle.Render("Error: "+m.err.Error()) + "\n\n" +
				StatusBarStyle.Render("q quit"))
	}
	if m.loading {
		return AppStyle.Render(m.spinner.View() + " Analyzing policies...")
	}
	if m.run == nil {
		return AppStyle.Render("No analysis loaded")
	}

	var body string
	switch m.currentScene {
	case SceneDetail:
		body = m.viewDetail()
	case SceneLorenz:
		body = m.viewLorenz()
	case SceneRanking:
		body = m.viewRanking()
	case SceneSweep:
		body = m.viewSweep()
	default:
		body = m.viewPolicies()
	}

	return AppStyle.Render(body + "\n" + m.statusBar())
}

func (m Model) viewPolicies() string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Tax Policies") + "\n")
	sb.WriteString(SubtitleStyle.Render(fmt.Sprintf("Population: %d incomes, mean %s",
		m.run.Population.Size(), output.FormatCurrency(m.run.Population.MeanIncome()))) + "\n\n")

	for i, pa := range m.run.Policies {
		line := fmt.Sprintf("%-24s %-12s revenue %-14s suits %s",
			pa.Result.PolicyName,
			pa.Result.PolicyKind,
			output.FormatCurrency(pa.Result.TotalRevenue),
			pa.Progressivity.SuitsIndex.StringFixed(4))
		if i == m.selected {
			sb.WriteString(SelectedItemStyle.Render("> "+line) + "\n")
		} else {
			sb.WriteString(UnselectedItemStyle.Render("  "+line) + "\n")
		}
	}
	return sb.String()
}

func (m Model) viewDetail() string {
	pa := &m.run.Policies[m.selected]
	r := pa.Result

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(r.PolicyName) + " " + SubtitleStyle.Render(string(r.PolicyKind)) + "\n\n")

	metric := func(label string, value string) {
		sb.WriteString(MetricLabelStyle.Render(label) + MetricValueStyle.Render(value) + "\n")
	}
	metric("Total revenue", output.FormatCurrency(r.TotalRevenue))
	metric("Revenue per capita", output.FormatCurrency(r.RevenuePerCapita))
	metric("Weighted avg rate", output.FormatPercentage(r.WeightedAvgEffectiveRate.Mul(decimal.NewFromInt(100))))
	metric("Mean effective rate", output.FormatPercentage(r.MeanEffectiveRate.Mul(decimal.NewFromInt(100))))

	suits := pa.Progressivity.SuitsIndex.StringFixed(4)
	if pa.Progressivity.SuitsIndex.IsPositive() {
		suits = PositiveStyle.Render(suits)
	} else if pa.Progressivity.SuitsIndex.IsNegative() {
		suits = NegativeStyle.Render(suits)
	}
	metric("Suits index", suits+" ("+string(pa.Progressivity.Classification)+")")

	buckets := r.QuantileBurdens
	label := "Burden by quantile"
	if m.deciles {
		buckets = calculation.NewRevenueCalculator().TaxBurdenByQuantile(pa.Policy, m.run.Population, 10)
		label = "Burden by decile"
	}
	if len(buckets) > 0 {
		sb.WriteString("\n" + SubtitleStyle.Render(label) + "\n")
		for _, b := range buckets {
			sb.WriteString(fmt.Sprintf("  %d: %4d incomes  rate %-8s  tax share %s\n",
				b.Index+1, b.Count,
				output.FormatPercentage(b.MeanEffectiveRate.Mul(decimal.NewFromInt(100))),
				output.FormatPercentage(b.TaxShare.Mul(decimal.NewFromInt(100)))))
		}
	}
	return BorderStyle.Render(sb.String())
}

func (m Model) viewLorenz() string {
	pa := &m.run.Policies[m.selected]

	incomeShare, taxShare := calculation.NewProgressivityAnalyzer().LorenzPoints(pa.Policy, m.run.Population)
	if incomeShare == nil {
		return TitleStyle.Render("Lorenz curves") + "\n\nNo tax collected; nothing to plot."
	}

	income := make([]float64, len(incomeShare))
	tax := make([]float64, len(taxShare))
	for i := range incomeShare {
		income[i] = incomeShare[i].InexactFloat64()
		tax[i] = taxShare[i].InexactFloat64()
	}

	// The tax curve sits below the income curve when the policy is
	// progressive and above it when regressive.
	chart := components.NewASCIIChart(fmt.Sprintf("Cumulative shares (%s)", pa.Result.PolicyName)).
		AddSeries("income", income, ColorChartLine1).
		AddSeries("tax", tax, ColorChartLine2).
		WithSize(min(m.width-16, 64), 14).
		WithAxisLabels("population, poorest to richest", "")

	return chart.Render()
}

func (m Model) viewRanking() string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Policy Ranking") + "\n\n")
	for _, e := range m.compSet.Ranking {
		sb.WriteString(fmt.Sprintf("%2d. %-24s score %s\n",
			e.Rank, e.PolicyName, e.CombinedScore.StringFixed(4)))
	}
	if len(m.compSet.Recommendations) > 0 {
		sb.WriteString("\n")
		for _, rec := range m.compSet.Recommendations {
			sb.WriteString(SubtitleStyle.Render("- "+rec) + "\n")
		}
	}
	return sb.String()
}

func (m Model) viewSweep() string {
	sweep := m.run.Sweep

	revenue := make([]float64, len(sweep.Points))
	suits := make([]float64, len(sweep.Points))
	for i, p := range sweep.Points {
		revenue[i] = p.Result.TotalRevenue.InexactFloat64()
		suits[i] = p.Progressivity.SuitsIndex.InexactFloat64()
	}

	chart := components.NewASCIIChart(fmt.Sprintf("Revenue vs %s (%s)", sweep.Parameter, sweep.PolicyName)).
		AddSeries("revenue", revenue, ColorChartLine1).
		WithSize(min(m.width-16, 64), 12).
		WithAxisLabels(fmt.Sprintf("%s: %s to %s", sweep.Parameter,
			sweep.Points[0].ParameterValue.String(),
			sweep.Points[len(sweep.Points)-1].ParameterValue.String()), "")

	suitsChart := components.NewASCIIChart("Suits index").
		AddSeries("suits", suits, ColorChartLine2).
		WithSize(min(m.width-16, 64), 8)

	return chart.Render() + "\n" + suitsChart.Render()
}

func (m Model) statusBar() string {
	keys := []struct{ key, desc string }{
		{"↑/↓", "select"},
		{"enter", "detail"},
		{"d", "deciles"},
		{"l", "lorenz"},
		{"r", "ranking"},
		{"p", "policies"},
	}
	if m.run != nil && m.run.Sweep != nil {
		keys = append(keys, struct{ key, desc string }{"s", "sweep"})
	}
	keys = append(keys, struct{ key, desc string }{"q", "quit"})

	var parts []string
	for _, k := range keys {
		parts = append(parts, HelpKeyStyle.Render(k.key)+" "+HelpDescStyle.Render(k.desc))
	}
	return StatusBarStyle.Render(strings.Join(parts, "  "))
}
