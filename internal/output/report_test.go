package output

import (
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/taxsim/internal/config"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveConfiguration_RoundTrips(t *testing.T) {
	flatRate := decimal.RequireFromString("0.2")
	cfg := &domain.Configuration{
		Policies: []domain.PolicyConfig{
			{Name: "flat", Kind: domain.KindFlat, Rate: &flatRate},
		},
		Population: domain.PopulationConfig{
			Family: "lognormal",
			Size:   50,
			Seed:   3,
			Mu:     10,
			Sigma:  0.5,
		},
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveConfiguration(cfg, path))

	reloaded, err := config.NewInputParser().LoadFromFile(path)
	require.NoError(t, err, "A saved configuration must load and validate again")
	require.Len(t, reloaded.Policies, 1)
	assert.Equal(t, "flat", reloaded.Policies[0].Name)
	assert.Equal(t, "0.2", reloaded.Policies[0].Rate.String())
	assert.Equal(t, 50, reloaded.Population.Size)
	assert.Equal(t, int64(3), reloaded.Population.Seed)
}
