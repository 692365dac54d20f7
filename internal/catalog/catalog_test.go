package catalog_test

import (
	"testing"

	"github.com/ghostquant/distributor-core/internal/catalog"
	"github.com/ghostquant/distributor-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogValidates(t *testing.T) {
	cat := catalog.Default()
	require.NoError(t, cat.Validate())
}

func TestValidateRejectsMissingTierRow(t *testing.T) {
	cat := catalog.Default()
	delete(cat.TierDiscounts, domain.TierPremier)

	err := cat.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "premier")
}

func TestValidateRejectsMisorderedVolumeBands(t *testing.T) {
	cat := catalog.Default()
	cat.VolumeBands[1].MinUnits = 13

	require.Error(t, cat.Validate())
}

func TestValidateRequiresUnboundedTopRole(t *testing.T) {
	cat := catalog.Default()
	cat.ApprovalMatrix[len(cat.ApprovalMatrix)-1].Unbounded = false
	cat.ApprovalMatrix[len(cat.ApprovalMatrix)-1].MaxDiscount = 0.99

	require.Error(t, cat.Validate())
}

func TestSetRate(t *testing.T) {
	cat := catalog.Default()

	require.NoError(t, cat.SetRate(domain.CurrencyEUR, 0.95))
	assert.Equal(t, 0.95, cat.CurrencyRates[domain.CurrencyEUR])

	err := cat.SetRate(domain.CurrencyEUR, 0)
	require.Error(t, err)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRegionCountries(t *testing.T) {
	cat := catalog.Default()

	americas, err := cat.RegionCountries(domain.RegionAmericas)
	require.NoError(t, err)
	assert.Contains(t, americas, "US")

	global, err := cat.RegionCountries(domain.RegionGlobal)
	require.NoError(t, err)
	// Global resolves to the union of all regional catalogues.
	assert.Contains(t, global, "US")
	assert.Contains(t, global, "DE")
	assert.Contains(t, global, "JP")
	seen := map[string]int{}
	for _, c := range global {
		seen[c]++
	}
	for country, n := range seen {
		assert.Equal(t, 1, n, "country %s duplicated in global union", country)
	}

	_, err = cat.RegionCountries(domain.RegionCode("atlantis"))
	require.Error(t, err)
}
