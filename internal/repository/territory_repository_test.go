package repository_test

import (
	"context"
	"testing"

	"github.com/ghostquant/distributor-core/internal/domain"
	"github.com/ghostquant/distributor-core/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTerritory(status domain.AssignmentStatus) *domain.TerritoryDefinition {
	return &domain.TerritoryDefinition{
		ID:            uuid.New(),
		Name:          "test",
		Region:        domain.RegionEMEA,
		Countries:     []string{"FR", "DE"},
		Status:        status,
		DistributorID: uuid.New(),
	}
}

func TestActiveAssignmentsFiltersByStatus(t *testing.T) {
	registry := repository.NewMemoryTerritoryRegistry()
	ctx := context.Background()

	active := newTerritory(domain.AssignmentActive)
	approved := newTerritory(domain.AssignmentApproved)
	pending := newTerritory(domain.AssignmentPending)
	terminated := newTerritory(domain.AssignmentTerminated)
	for _, territory := range []*domain.TerritoryDefinition{active, approved, pending, terminated} {
		require.NoError(t, registry.Register(ctx, territory))
	}

	got, err := registry.ActiveAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	ids := []uuid.UUID{got[0].ID, got[1].ID}
	assert.Contains(t, ids, active.ID)
	assert.Contains(t, ids, approved.ID)
}

func TestReleaseRemovesAssignment(t *testing.T) {
	registry := repository.NewMemoryTerritoryRegistry()
	ctx := context.Background()

	territory := newTerritory(domain.AssignmentActive)
	require.NoError(t, registry.Register(ctx, territory))
	require.NoError(t, registry.Release(ctx, territory.ID))

	_, err := registry.Get(ctx, territory.ID)
	require.ErrorIs(t, err, repository.ErrTerritoryNotFound)

	err = registry.Release(ctx, territory.ID)
	require.ErrorIs(t, err, repository.ErrTerritoryNotFound)
}

func TestRegistrySnapshotsAreCopies(t *testing.T) {
	registry := repository.NewMemoryTerritoryRegistry()
	ctx := context.Background()

	territory := newTerritory(domain.AssignmentActive)
	require.NoError(t, registry.Register(ctx, territory))

	snapshot, err := registry.ActiveAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	snapshot[0].Countries[0] = "XX"

	fresh, err := registry.Get(ctx, territory.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"FR", "DE"}, fresh.Countries)
}
