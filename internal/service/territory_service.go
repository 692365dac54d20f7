package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ghostquant/distributor-core/internal/catalog"
	"github.com/ghostquant/distributor-core/internal/domain"
	"github.com/ghostquant/distributor-core/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TerritoryService builds territory definitions, scores market potential, and
// detects overlap and exclusivity conflicts against registered assignments.
type TerritoryService struct {
	catalog  *catalog.Catalog
	registry repository.TerritoryRegistry
	logger   *zap.Logger
}

// NewTerritoryService creates a territory service
func NewTerritoryService(cat *catalog.Catalog, registry repository.TerritoryRegistry, logger *zap.Logger) *TerritoryService {
	return &TerritoryService{catalog: cat, registry: registry, logger: logger}
}

// CreateTerritory builds a territory definition from the request. The country
// set defaults to the full region catalogue when not supplied; excluded
// countries are always subtracted. Requesting exclusivity in a region that is
// not exclusivity-eligible is a configuration error, regardless of what other
// assignments exist.
func (s *TerritoryService) CreateTerritory(req *domain.CreateTerritoryRequest) (*domain.TerritoryDefinition, error) {
	if findings := req.Validate(); len(findings) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidInput, findings[0].Field, findings[0].Message)
	}

	region, ok := s.catalog.Regions[req.Region]
	if !ok {
		return nil, domain.NewConfigurationError("region", string(req.Region), "unknown region")
	}
	if req.Exclusive && !region.ExclusivityEligible {
		return nil, domain.NewConfigurationError("exclusive", string(req.Region),
			"region does not permit exclusive assignments")
	}

	regionCountries, err := s.catalog.RegionCountries(req.Region)
	if err != nil {
		return nil, err
	}

	countries := req.Countries
	if len(countries) == 0 {
		countries = regionCountries
	}
	countries = subtract(countries, req.ExcludedCountries)
	if len(countries) == 0 {
		return nil, domain.NewConfigurationError("countries", req.Name,
			"territory has no countries after exclusions")
	}
	sort.Strings(countries)

	coverage := 0.0
	if len(regionCountries) > 0 {
		coverage = float64(len(countries)) / float64(len(regionCountries))
		if coverage > 1 {
			coverage = 1
		}
	}
	potential := round1(region.BaseMarketScore * (0.5 + 0.5*coverage))
	if potential > 100 {
		potential = 100
	}

	territory := &domain.TerritoryDefinition{
		ID:                   uuid.New(),
		Name:                 req.Name,
		Region:               req.Region,
		Countries:            countries,
		ExcludedCountries:    append([]string(nil), req.ExcludedCountries...),
		Exclusive:            req.Exclusive,
		PopulationCoverage:   round1(coverage * 100),
		MarketPotential:      potential,
		RegulatoryComplexity: region.RegulatoryComplexity,
		Status:               domain.AssignmentPending,
		DistributorID:        req.DistributorID,
		CreatedAt:            time.Now().UTC(),
	}

	s.logger.Info("created territory definition",
		zap.String("territoryID", territory.ID.String()),
		zap.String("region", string(territory.Region)),
		zap.Int("countries", len(territory.Countries)),
		zap.Bool("exclusive", territory.Exclusive),
		zap.Float64("marketPotential", territory.MarketPotential))

	return territory, nil
}

// Activate registers a territory as an active assignment
func (s *TerritoryService) Activate(ctx context.Context, territory *domain.TerritoryDefinition) error {
	territory.Status = domain.AssignmentActive
	return s.registry.Register(ctx, territory)
}

// Release removes an assignment, e.g. when a contract terminates or the
// territory is reassigned.
func (s *TerritoryService) Release(ctx context.Context, id uuid.UUID) error {
	return s.registry.Release(ctx, id)
}

// CheckConflicts detects conflicts between the candidate and the given
// existing assignments. Only active or approved assignments participate.
// A non-empty country intersection with either side exclusive is a blocking
// exclusive_conflict; otherwise it is a non-blocking overlap, which is normal
// multi-distributor practice. Resolution suggestions are advisory only.
func (s *TerritoryService) CheckConflicts(candidate *domain.TerritoryDefinition, existing []domain.TerritoryDefinition) []domain.Conflict {
	var conflicts []domain.Conflict
	for i := range existing {
		other := &existing[i]
		if other.ID == candidate.ID {
			continue
		}
		if other.Status != domain.AssignmentActive && other.Status != domain.AssignmentApproved {
			continue
		}
		overlap := intersect(candidate.Countries, other.Countries)
		if len(overlap) == 0 {
			continue
		}

		conflict := domain.Conflict{
			CandidateID:          candidate.ID,
			ExistingID:           other.ID,
			OverlappingCountries: overlap,
		}
		if candidate.Exclusive || other.Exclusive {
			conflict.Type = domain.ConflictExclusive
			conflict.Severity = domain.SeverityBlocking
			conflict.Resolution = fmt.Sprintf(
				"remove %v from one assignment or drop exclusivity before approval", overlap)
		} else {
			conflict.Type = domain.ConflictOverlap
			conflict.Severity = domain.SeverityWarning
			conflict.Resolution = "shared coverage is permitted; review channel strategy for " +
				fmt.Sprintf("%v", overlap)
		}
		conflicts = append(conflicts, conflict)
	}

	if len(conflicts) > 0 {
		s.logger.Warn("territory conflicts detected",
			zap.String("candidateID", candidate.ID.String()),
			zap.Int("conflicts", len(conflicts)))
	}
	return conflicts
}

// CheckConflictsInRegistry checks the candidate against the shared registry
// snapshot of active assignments.
func (s *TerritoryService) CheckConflictsInRegistry(ctx context.Context, candidate *domain.TerritoryDefinition) ([]domain.Conflict, error) {
	existing, err := s.registry.ActiveAssignments(ctx)
	if err != nil {
		return nil, err
	}
	return s.CheckConflicts(candidate, existing), nil
}

// ValidateTierLimits checks the candidate against the distributor's
// commercial tier limits. Violations are findings, not errors, so callers
// can aggregate them with conflict results in one validation pass.
func (s *TerritoryService) ValidateTierLimits(ctx context.Context, profile *domain.DistributorProfile, candidate *domain.TerritoryDefinition) ([]domain.ValidationFinding, error) {
	limits, ok := s.catalog.TerritoryLimits[profile.Tier]
	if !ok {
		return nil, domain.NewConfigurationError("tier", string(profile.Tier), "unknown distributor tier")
	}

	var findings []domain.ValidationFinding
	if limits.MaxCountries > 0 && len(candidate.Countries) > limits.MaxCountries {
		findings = append(findings, domain.ValidationFinding{
			Field: "countries",
			Message: fmt.Sprintf("%s tier allows at most %d countries, requested %d",
				profile.Tier, limits.MaxCountries, len(candidate.Countries)),
		})
	}
	if candidate.Exclusive && !limits.ExclusivityEligible {
		findings = append(findings, domain.ValidationFinding{
			Field:   "exclusive",
			Message: fmt.Sprintf("%s tier is not eligible for exclusive territories", profile.Tier),
		})
	}

	if limits.MaxRegions > 0 {
		existing, err := s.registry.ActiveAssignments(ctx)
		if err != nil {
			return nil, err
		}
		regions := map[domain.RegionCode]bool{candidate.Region: true}
		for _, t := range existing {
			if t.DistributorID == profile.ID {
				regions[t.Region] = true
			}
		}
		if len(regions) > limits.MaxRegions {
			findings = append(findings, domain.ValidationFinding{
				Field: "region",
				Message: fmt.Sprintf("%s tier allows at most %d regions, assignment would span %d",
					profile.Tier, limits.MaxRegions, len(regions)),
			})
		}
	}

	return findings, nil
}

func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out []string
	for _, v := range a {
		if inB[v] {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func subtract(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out []string
	for _, v := range a {
		if !inB[v] {
			out = append(out, v)
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
