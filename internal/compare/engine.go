package compare

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/policy"
	"github.com/rgehrsitz/taxsim/internal/population"
	"github.com/shopspring/decimal"
)

// CompareEngine orchestrates multi-policy comparison and ranking.
type CompareEngine struct {
	Calc *calculation.AnalysisEngine
}

// NewCompareEngine creates a comparison engine around a calculation
// engine; nil gets a default engine.
func NewCompareEngine(calc *calculation.AnalysisEngine) *CompareEngine {
	if calc == nil {
		calc = calculation.NewAnalysisEngine()
	}
	return &CompareEngine{Calc: calc}
}

// Compare runs every policy in the configuration against its generated
// population and ranks them under the configured weights.
func (ce *CompareEngine) Compare(ctx context.Context, cfg *domain.Configuration) (*ComparisonSet, error) {
	weights := domain.DefaultRankingWeights()
	if len(cfg.Weights) > 0 {
		parsed, err := domain.ParseRankingWeights(cfg.Weights)
		if err != nil {
			return nil, err
		}
		weights = parsed
	}

	policies := make([]policy.TaxPolicy, 0, len(cfg.Policies))
	for _, pc := range cfg.Policies {
		pol, err := policy.NewFromConfig(pc)
		if err != nil {
			return nil, fmt.Errorf("building policy %q: %w", pc.Name, err)
		}
		policies = append(policies, pol)
	}

	pop, err := population.Generate(cfg.Population)
	if err != nil {
		return nil, fmt.Errorf("generating population: %w", err)
	}

	engine := ce
	if cfg.Quantiles > 0 {
		engine = &CompareEngine{Calc: ce.Calc.WithQuantiles(cfg.Quantiles)}
	}
	return engine.ComparePolicies(ctx, policies, pop, weights)
}

// ComparePolicies evaluates and ranks an explicit policy list over a
// shared population. Evaluation honors context cancellation between
// policies.
func (ce *CompareEngine) ComparePolicies(ctx context.Context, policies []policy.TaxPolicy, pop *domain.Population, weights domain.RankingWeights) (*ComparisonSet, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("no policies to compare")
	}

	results := make([]PolicyResult, 0, len(policies))
	for _, pol := range policies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		analysis := ce.Calc.AnalyzePolicy(pol, pop)
		results = append(results, PolicyResult{
			PolicyName:    pol.Name(),
			PolicyKind:    pol.Kind(),
			Result:        analysis.Result,
			Progressivity: analysis.Progressivity,
			Efficiency:    efficiencyScore(analysis.Result.QuantileBurdens),
		})
	}

	set := &ComparisonSet{
		RunID:          uuid.NewString(),
		PopulationSize: pop.Size(),
		Weights:        weights,
		Results:        results,
		Ranking:        RankPolicies(results, weights),
	}
	set.Recommendations = generateRecommendations(set)
	return set, nil
}

// RankPolicies min-max normalizes each metric across the field and
// combines them under the weights. When every policy scores the same on
// a metric, the metric contributes 0.5 for all of them rather than
// dividing by zero or favoring anyone.
func RankPolicies(results []PolicyResult, weights domain.RankingWeights) []domain.RankingEntry {
	n := len(results)
	if n == 0 {
		return nil
	}

	revenue := make([]decimal.Decimal, n)
	progressivity := make([]decimal.Decimal, n)
	efficiency := make([]decimal.Decimal, n)
	for i, r := range results {
		revenue[i] = r.Result.TotalRevenue
		progressivity[i] = r.Progressivity.SuitsIndex
		efficiency[i] = r.Efficiency
	}

	normRevenue := normalize(revenue)
	normProgressivity := normalize(progressivity)
	normEfficiency := normalize(efficiency)

	entries := make([]domain.RankingEntry, n)
	for i, r := range results {
		entries[i] = domain.RankingEntry{
			PolicyName:              r.PolicyName,
			NormalizedRevenue:       normRevenue[i],
			NormalizedProgressivity: normProgressivity[i],
			NormalizedEfficiency:    normEfficiency[i],
		}
		entries[i].CombinedScore = weights.Revenue.Mul(normRevenue[i]).
			Add(weights.Progressivity.Mul(normProgressivity[i])).
			Add(weights.Efficiency.Mul(normEfficiency[i]))
	}

	// Stable sort: ties keep input order, so equal scores rank by the
	// order policies were configured.
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].CombinedScore.GreaterThan(entries[b].CombinedScore)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// normalize maps values onto [0,1] by min-max scaling; a degenerate
// field (all equal) maps to 0.5 everywhere.
func normalize(values []decimal.Decimal) []decimal.Decimal {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v.LessThan(min) {
			min = v
		}
		if v.GreaterThan(max) {
			max = v
		}
	}

	out := make([]decimal.Decimal, len(values))
	if max.Equal(min) {
		half := decimal.NewFromFloat(0.5)
		for i := range out {
			out[i] = half
		}
		return out
	}
	span := max.Sub(min)
	for i, v := range values {
		out[i] = v.Sub(min).Div(span)
	}
	return out
}

func generateRecommendations(set *ComparisonSet) []string {
	if len(set.Ranking) == 0 {
		return nil
	}
	recs := []string{
		fmt.Sprintf("%s ranks first with combined score %s", set.Ranking[0].PolicyName, set.Ranking[0].CombinedScore.StringFixed(4)),
	}

	best := set.Results[0]
	mostProgressive := set.Results[0]
	for _, r := range set.Results[1:] {
		if r.Result.TotalRevenue.GreaterThan(best.Result.TotalRevenue) {
			best = r
		}
		if r.Progressivity.SuitsIndex.GreaterThan(mostProgressive.Progressivity.SuitsIndex) {
			mostProgressive = r
		}
	}
	recs = append(recs,
		fmt.Sprintf("%s raises the most revenue (%s)", best.PolicyName, best.Result.TotalRevenue.StringFixed(2)),
		fmt.Sprintf("%s is the most progressive (Suits index %s)", mostProgressive.PolicyName, mostProgressive.Progressivity.SuitsIndex.StringFixed(4)),
	)
	return recs
}
