package repository

import (
	"context"
	"sync"

	"github.com/ghostquant/distributor-core/internal/domain"
	"github.com/google/uuid"
)

// TerritoryRegistry holds the shared collection of territory assignments.
// Conflict checks read it far more often than assignments are registered,
// so the in-memory implementation favors cheap snapshot reads.
type TerritoryRegistry interface {
	Register(ctx context.Context, territory *domain.TerritoryDefinition) error
	Release(ctx context.Context, id uuid.UUID) error
	// ActiveAssignments returns a snapshot of assignments in active or
	// approved status. Callers own the returned slice.
	ActiveAssignments(ctx context.Context) ([]domain.TerritoryDefinition, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.TerritoryDefinition, error)
}

// MemoryTerritoryRegistry is the RWMutex-guarded in-memory registry
type MemoryTerritoryRegistry struct {
	mu          sync.RWMutex
	territories map[uuid.UUID]domain.TerritoryDefinition
}

// NewMemoryTerritoryRegistry creates an empty registry
func NewMemoryTerritoryRegistry() *MemoryTerritoryRegistry {
	return &MemoryTerritoryRegistry{
		territories: make(map[uuid.UUID]domain.TerritoryDefinition),
	}
}

// Register stores or replaces a territory assignment
func (r *MemoryTerritoryRegistry) Register(ctx context.Context, territory *domain.TerritoryDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.territories[territory.ID] = cloneTerritory(territory)
	return nil
}

// Release removes a territory assignment, e.g. on contract termination
func (r *MemoryTerritoryRegistry) Release(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.territories[id]; !ok {
		return ErrTerritoryNotFound
	}
	delete(r.territories, id)
	return nil
}

// ActiveAssignments returns copies of all active or approved assignments
func (r *MemoryTerritoryRegistry) ActiveAssignments(ctx context.Context) ([]domain.TerritoryDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TerritoryDefinition, 0, len(r.territories))
	for _, t := range r.territories {
		if t.Status == domain.AssignmentActive || t.Status == domain.AssignmentApproved {
			out = append(out, cloneTerritory(&t))
		}
	}
	return out, nil
}

// Get returns a copy of one assignment
func (r *MemoryTerritoryRegistry) Get(ctx context.Context, id uuid.UUID) (*domain.TerritoryDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.territories[id]
	if !ok {
		return nil, ErrTerritoryNotFound
	}
	copied := cloneTerritory(&t)
	return &copied, nil
}

func cloneTerritory(t *domain.TerritoryDefinition) domain.TerritoryDefinition {
	out := *t
	out.Countries = append([]string(nil), t.Countries...)
	out.ExcludedCountries = append([]string(nil), t.ExcludedCountries...)
	return out
}
