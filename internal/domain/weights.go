package domain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrUnknownWeightKey is returned when a ranking weight map carries a key
// outside the recognized set. Unknown keys are a configuration error, not
// something to silently drop.
var ErrUnknownWeightKey = errors.New("unknown ranking weight key")

// Recognized ranking weight keys.
const (
	WeightRevenue       = "revenue"
	WeightProgressivity = "progressivity"
	WeightEfficiency    = "efficiency"
)

// RankingWeights holds the component weights for policy ranking. Weights
// are used as given; they are not required to sum to 1.
type RankingWeights struct {
	Revenue       decimal.Decimal `json:"revenue"`
	Progressivity decimal.Decimal `json:"progressivity"`
	Efficiency    decimal.Decimal `json:"efficiency"`
}

// DefaultRankingWeights weighs revenue, progressivity and efficiency the
// way the reference analysis does.
func DefaultRankingWeights() RankingWeights {
	return RankingWeights{
		Revenue:       decimal.NewFromFloat(0.4),
		Progressivity: decimal.NewFromFloat(0.3),
		Efficiency:    decimal.NewFromFloat(0.3),
	}
}

// ParseRankingWeights builds RankingWeights from a raw key/value map,
// rejecting unrecognized keys. Missing keys default to zero weight.
func ParseRankingWeights(raw map[string]decimal.Decimal) (RankingWeights, error) {
	var w RankingWeights
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := raw[k]
		switch k {
		case WeightRevenue:
			w.Revenue = v
		case WeightProgressivity:
			w.Progressivity = v
		case WeightEfficiency:
			w.Efficiency = v
		default:
			return RankingWeights{}, fmt.Errorf("%w: %q (recognized: %s, %s, %s)",
				ErrUnknownWeightKey, k, WeightRevenue, WeightProgressivity, WeightEfficiency)
		}
	}
	return w, nil
}
