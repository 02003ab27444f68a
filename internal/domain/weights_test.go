package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRankingWeights(t *testing.T) {
	w, err := ParseRankingWeights(map[string]decimal.Decimal{
		"revenue":       decimal.NewFromFloat(0.7),
		"progressivity": decimal.NewFromFloat(0.3),
	})
	require.NoError(t, err)
	assert.True(t, w.Revenue.Equal(decimal.NewFromFloat(0.7)))
	assert.True(t, w.Progressivity.Equal(decimal.NewFromFloat(0.3)))
	assert.True(t, w.Efficiency.IsZero(), "Missing keys weigh zero")
}

func TestParseRankingWeights_UnknownKey(t *testing.T) {
	_, err := ParseRankingWeights(map[string]decimal.Decimal{
		"revenue":  decimal.NewFromFloat(0.5),
		"fairness": decimal.NewFromFloat(0.5),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownWeightKey)
	assert.Contains(t, err.Error(), "fairness")
}

func TestDefaultRankingWeights(t *testing.T) {
	w := DefaultRankingWeights()
	sum := w.Revenue.Add(w.Progressivity).Add(w.Efficiency)
	assert.True(t, sum.Equal(decimal.NewFromInt(1)), "Defaults sum to 1, got %s", sum)
}

func TestBracketContains(t *testing.T) {
	b := Bracket{Lower: decimal.NewFromInt(10000), Upper: decimal.NewFromInt(40000)}
	assert.False(t, b.Contains(decimal.NewFromInt(9999)))
	assert.True(t, b.Contains(decimal.NewFromInt(10000)), "Lower bound is inclusive")
	assert.True(t, b.Contains(decimal.NewFromInt(39999)))
	assert.False(t, b.Contains(decimal.NewFromInt(40000)), "Upper bound is exclusive")

	top := Bracket{Lower: decimal.NewFromInt(40000), Unbounded: true}
	assert.True(t, top.Contains(decimal.NewFromInt(1000000000)), "Open-ended bracket has no upper bound")
}
