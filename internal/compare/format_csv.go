package compare

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Policy",
		"Kind",
		"Total Revenue",
		"Revenue Per Capita",
		"Weighted Avg Rate",
		"Suits Index",
		"Classification",
		"Efficiency",
		"Rank",
		"Combined Score",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	rankByName := make(map[string]int, len(compSet.Ranking))
	scoreByName := make(map[string]string, len(compSet.Ranking))
	for _, e := range compSet.Ranking {
		rankByName[e.PolicyName] = e.Rank
		scoreByName[e.PolicyName] = e.CombinedScore.StringFixed(4)
	}

	for _, r := range compSet.Results {
		row := []string{
			r.PolicyName,
			string(r.PolicyKind),
			r.Result.TotalRevenue.StringFixed(2),
			r.Result.RevenuePerCapita.StringFixed(2),
			r.Result.WeightedAvgEffectiveRate.StringFixed(4),
			r.Progressivity.SuitsIndex.StringFixed(4),
			string(r.Progressivity.Classification),
			r.Efficiency.StringFixed(4),
			fmt.Sprintf("%d", rankByName[r.PolicyName]),
			scoreByName[r.PolicyName],
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}
