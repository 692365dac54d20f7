// Command simulator exercises the contract lifecycle core end to end: it
// prices a sample contract, resolves territory conflicts, and drives one
// negotiation workflow from creation to final terms. Useful for smoke-testing
// a configuration before the serving layers go anywhere near it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ghostquant/distributor-core/internal/catalog"
	"github.com/ghostquant/distributor-core/internal/config"
	"github.com/ghostquant/distributor-core/internal/domain"
	"github.com/ghostquant/distributor-core/internal/logger"
	"github.com/ghostquant/distributor-core/internal/repository"
	"github.com/ghostquant/distributor-core/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "simulator: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cat := catalog.Default()
	for currency, rate := range cfg.Pricing.RateOverrides {
		if err := cat.SetRate(domain.CurrencyCode(currency), rate); err != nil {
			return err
		}
	}
	if err := cat.Validate(); err != nil {
		return err
	}

	pricing := service.NewPricingService(cat, log)
	territories := service.NewTerritoryService(cat, repository.NewMemoryTerritoryRegistry(), log)
	negotiations := service.NewNegotiationService(repository.NewMemoryWorkflowStore(), pricing, cat, log)

	ctx := context.Background()

	// Price the reference scenario.
	breakdown, err := pricing.Price(service.PriceRequest{
		Product:  domain.ProductEnterprise,
		Quantity: 30,
		Tier:     domain.TierPremier,
		Currency: domain.CurrencyUSD,
		Region:   domain.RegionAmericas,
		Years:    1,
	})
	if err != nil {
		return err
	}
	log.Info("priced reference contract",
		zap.Float64("unitPrice", breakdown.UnitPrice),
		zap.Float64("subtotal", breakdown.Subtotal))

	// Territory setup with an exclusivity conflict.
	distributorA := uuid.New()
	distributorB := uuid.New()
	france, err := territories.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "Western Europe Exclusive",
		Region:        domain.RegionEMEA,
		Countries:     []string{"FR", "DE"},
		Exclusive:     true,
		DistributorID: distributorA,
	})
	if err != nil {
		return err
	}
	if err := territories.Activate(ctx, france); err != nil {
		return err
	}
	candidate, err := territories.CreateTerritory(&domain.CreateTerritoryRequest{
		Name:          "Central Europe",
		Region:        domain.RegionEMEA,
		Countries:     []string{"DE", "IT"},
		DistributorID: distributorB,
	})
	if err != nil {
		return err
	}
	conflicts, err := territories.CheckConflictsInRegistry(ctx, candidate)
	if err != nil {
		return err
	}
	for _, c := range conflicts {
		log.Warn("conflict", zap.String("type", string(c.Type)), zap.Strings("countries", c.OverlappingCountries))
	}

	// Drive one workflow to final terms.
	contract := &domain.Contract{
		ID:            uuid.New(),
		DistributorID: distributorB,
		Tier:          domain.TierPremier,
		Currency:      domain.CurrencyUSD,
		Region:        domain.RegionAmericas,
		Product:       domain.ProductEnterprise,
		Quantity:      30,
		Years:         3,
		MDFAllocation: 0.02,
		CreditLimit:   150000,
		Discount:      0.10,
	}
	wf, err := negotiations.Create(ctx, &domain.CreateWorkflowRequest{
		Contract:     contract,
		MaxRounds:    cfg.Negotiation.DefaultMaxRounds,
		DeadlineDays: cfg.Negotiation.DefaultDeadlineDays,
		Stakeholders: []string{"partner-success", "deal-desk"},
	})
	if err != nil {
		return err
	}
	if err := negotiations.Start(ctx, wf.ID); err != nil {
		return err
	}
	if err := negotiations.SubmitCounterProposal(ctx, wf.ID, &domain.CounterProposalRequest{
		SubmittedBy: "distributor",
		Changes: []domain.TermChange{
			{TermName: service.TermUnitDiscount, Value: 0.15, Justification: "volume growth commitment"},
		},
	}); err != nil {
		return err
	}
	if err := negotiations.SubmitForApproval(ctx, wf.ID); err != nil {
		return err
	}
	current, err := negotiations.Get(ctx, wf.ID)
	if err != nil {
		return err
	}
	for _, entry := range current.ApprovalChain {
		if err := negotiations.ProcessApproval(ctx, wf.ID, entry.Role, true, "simulator", "ok"); err != nil {
			return err
		}
	}
	if err := negotiations.Finalize(ctx, wf.ID); err != nil {
		return err
	}

	summary, err := negotiations.Summary(ctx, wf.ID)
	if err != nil {
		return err
	}
	log.Info("workflow complete",
		zap.String("status", string(summary.Status)),
		zap.Int("rounds", summary.CurrentRound))
	return nil
}
