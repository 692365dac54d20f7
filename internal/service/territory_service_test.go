package service_test

import (
	"context"
	"testing"

	"github.com/ghostquant/distributor-core/internal/catalog"
	"github.com/ghostquant/distributor-core/internal/domain"
	"github.com/ghostquant/distributor-core/internal/repository"
	"github.com/ghostquant/distributor-core/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTerritoryService(t *testing.T) (*service.TerritoryService, *repository.MemoryTerritoryRegistry) {
	t.Helper()
	cat := catalog.Default()
	require.NoError(t, cat.Validate())
	registry := repository.NewMemoryTerritoryRegistry()
	return service.NewTerritoryService(cat, registry, zap.NewNop()), registry
}

func TestCreateTerritoryDefaultsToRegionCatalogue(t *testing.T) {
	svc, _ := newTerritoryService(t)

	territory, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "All EMEA",
		Region:        domain.RegionEMEA,
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)

	assert.Len(t, territory.Countries, 12)
	assert.Equal(t, 100.0, territory.PopulationCoverage)
	// Full coverage: baseScore x (0.5 + 0.5 x 1.0) = baseScore.
	assert.Equal(t, 80.0, territory.MarketPotential)
	assert.Equal(t, "high", territory.RegulatoryComplexity)
}

func TestCreateTerritorySubtractsExclusions(t *testing.T) {
	svc, _ := newTerritoryService(t)

	territory, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:              "EMEA minus DACH",
		Region:            domain.RegionEMEA,
		ExcludedCountries: []string{"DE", "CH"},
		DistributorID:     uuid.New(),
	})
	require.NoError(t, err)

	assert.Len(t, territory.Countries, 10)
	assert.NotContains(t, territory.Countries, "DE")
	assert.NotContains(t, territory.Countries, "CH")
}

func TestCreateTerritoryMarketPotentialPartialCoverage(t *testing.T) {
	svc, _ := newTerritoryService(t)

	territory, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "Iberia and France",
		Region:        domain.RegionEMEA,
		Countries:     []string{"ES", "FR", "IT"},
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)

	// 3 of 12 countries: 80 x (0.5 + 0.5 x 0.25) = 50.0
	assert.Equal(t, 50.0, territory.MarketPotential)
	assert.Equal(t, 25.0, territory.PopulationCoverage)
}

func TestCreateTerritoryExclusiveInIneligibleRegion(t *testing.T) {
	svc, _ := newTerritoryService(t)

	for _, region := range []domain.RegionCode{domain.RegionGlobal, domain.RegionMEA} {
		_, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
			Name:          "Exclusive " + string(region),
			Region:        region,
			Exclusive:     true,
			DistributorID: uuid.New(),
		})
		require.Error(t, err, "region %s", region)
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "exclusive", cfgErr.Field)
	}
}

func TestCreateTerritoryEmptyAfterExclusions(t *testing.T) {
	svc, _ := newTerritoryService(t)

	_, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:              "Nothing left",
		Region:            domain.RegionEMEA,
		Countries:         []string{"FR"},
		ExcludedCountries: []string{"FR"},
		DistributorID:     uuid.New(),
	})
	require.Error(t, err)
}

func TestCheckConflictsExclusiveScenario(t *testing.T) {
	// A = {FR, DE} exclusive, B = {DE, IT} non-exclusive: one
	// exclusive_conflict over DE.
	svc, _ := newTerritoryService(t)

	a, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "A",
		Region:        domain.RegionEMEA,
		Countries:     []string{"FR", "DE"},
		Exclusive:     true,
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)
	a.Status = domain.AssignmentActive

	b, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "B",
		Region:        domain.RegionEMEA,
		Countries:     []string{"DE", "IT"},
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)
	b.Status = domain.AssignmentActive

	conflicts := svc.CheckConflicts(b, []domain.TerritoryDefinition{*a})
	require.Len(t, conflicts, 1)
	assert.Equal(t, domain.ConflictExclusive, conflicts[0].Type)
	assert.Equal(t, domain.SeverityBlocking, conflicts[0].Severity)
	assert.Equal(t, []string{"DE"}, conflicts[0].OverlappingCountries)
	assert.NotEmpty(t, conflicts[0].Resolution)
}

func TestCheckConflictsSymmetric(t *testing.T) {
	svc, _ := newTerritoryService(t)

	a, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "A",
		Region:        domain.RegionEMEA,
		Countries:     []string{"FR", "DE"},
		Exclusive:     true,
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)
	a.Status = domain.AssignmentActive

	b, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "B",
		Region:        domain.RegionEMEA,
		Countries:     []string{"DE", "IT"},
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)
	b.Status = domain.AssignmentActive

	ab := svc.CheckConflicts(a, []domain.TerritoryDefinition{*b})
	ba := svc.CheckConflicts(b, []domain.TerritoryDefinition{*a})
	require.Len(t, ab, 1)
	require.Len(t, ba, 1)
	assert.Equal(t, ab[0].Severity, ba[0].Severity)
	assert.Equal(t, ab[0].Type, ba[0].Type)
	assert.Equal(t, ab[0].OverlappingCountries, ba[0].OverlappingCountries)
}

func TestCheckConflictsNonExclusiveOverlapIsWarning(t *testing.T) {
	svc, _ := newTerritoryService(t)

	a, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "A",
		Region:        domain.RegionAmericas,
		Countries:     []string{"US", "CA"},
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)
	a.Status = domain.AssignmentApproved

	b, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "B",
		Region:        domain.RegionAmericas,
		Countries:     []string{"CA", "MX"},
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)

	conflicts := svc.CheckConflicts(b, []domain.TerritoryDefinition{*a})
	require.Len(t, conflicts, 1)
	assert.Equal(t, domain.ConflictOverlap, conflicts[0].Type)
	assert.Equal(t, domain.SeverityWarning, conflicts[0].Severity)
	assert.False(t, conflicts[0].Blocking())
}

func TestCheckConflictsIgnoresInactiveAssignments(t *testing.T) {
	svc, _ := newTerritoryService(t)

	a, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "A",
		Region:        domain.RegionAmericas,
		Countries:     []string{"US"},
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)
	a.Status = domain.AssignmentTerminated

	b, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "B",
		Region:        domain.RegionAmericas,
		Countries:     []string{"US"},
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)

	assert.Empty(t, svc.CheckConflicts(b, []domain.TerritoryDefinition{*a}))
}

func TestCheckConflictsInRegistry(t *testing.T) {
	svc, _ := newTerritoryService(t)
	ctx := context.Background()

	a, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "A",
		Region:        domain.RegionEMEA,
		Countries:     []string{"FR", "DE"},
		Exclusive:     true,
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Activate(ctx, a))

	b, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "B",
		Region:        domain.RegionEMEA,
		Countries:     []string{"DE", "IT"},
		DistributorID: uuid.New(),
	})
	require.NoError(t, err)

	conflicts, err := svc.CheckConflictsInRegistry(ctx, b)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, a.ID, conflicts[0].ExistingID)

	// Releasing the assignment clears the conflict.
	require.NoError(t, svc.Release(ctx, a.ID))
	conflicts, err = svc.CheckConflictsInRegistry(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestValidateTierLimits(t *testing.T) {
	svc, _ := newTerritoryService(t)
	ctx := context.Background()

	profile := &domain.DistributorProfile{
		ID:   uuid.New(),
		Name: "Northwind Analytics",
		Tier: domain.TierRegistered,
	}

	candidate, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "Too big",
		Region:        domain.RegionEMEA,
		Countries:     []string{"FR", "DE", "IT", "ES", "NL"},
		DistributorID: profile.ID,
	})
	require.NoError(t, err)
	candidate.Exclusive = true

	findings, err := svc.ValidateTierLimits(ctx, profile, candidate)
	require.NoError(t, err)
	require.Len(t, findings, 2)

	fields := []string{findings[0].Field, findings[1].Field}
	assert.Contains(t, fields, "countries")
	assert.Contains(t, fields, "exclusive")
}

func TestValidateTierLimitsRegionSpan(t *testing.T) {
	svc, _ := newTerritoryService(t)
	ctx := context.Background()

	profile := &domain.DistributorProfile{ID: uuid.New(), Tier: domain.TierSelect}

	existing, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "Home",
		Region:        domain.RegionAmericas,
		Countries:     []string{"US"},
		DistributorID: profile.ID,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Activate(ctx, existing))

	candidate, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "Expansion",
		Region:        domain.RegionAPAC,
		Countries:     []string{"SG"},
		DistributorID: profile.ID,
	})
	require.NoError(t, err)

	findings, err := svc.ValidateTierLimits(ctx, profile, candidate)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "region", findings[0].Field)
}

func TestValidateTierLimitsEliteUnbounded(t *testing.T) {
	svc, _ := newTerritoryService(t)
	ctx := context.Background()

	profile := &domain.DistributorProfile{ID: uuid.New(), Tier: domain.TierElite}

	candidate, err := svc.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "Everything",
		Region:        domain.RegionGlobal,
		DistributorID: profile.ID,
	})
	require.NoError(t, err)

	findings, err := svc.ValidateTierLimits(ctx, profile, candidate)
	require.NoError(t, err)
	assert.Empty(t, findings)
}
