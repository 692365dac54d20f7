package service

import (
	"fmt"
	"math"

	"github.com/ghostquant/distributor-core/internal/catalog"
	"github.com/ghostquant/distributor-core/internal/domain"
	"go.uber.org/zap"
)

// PricingService computes tiered, volume, and multi-year pricing breakdowns
// and rebates. It is stateless and safe for concurrent use without locking.
type PricingService struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewPricingService creates a pricing service over a validated catalog
func NewPricingService(cat *catalog.Catalog, logger *zap.Logger) *PricingService {
	return &PricingService{catalog: cat, logger: logger}
}

// PriceRequest carries the inputs of one price computation
type PriceRequest struct {
	Product         domain.ProductCode
	Quantity        int
	Tier            domain.DistributorTier
	Currency        domain.CurrencyCode
	Region          domain.RegionCode
	Years           int
	SpecialDiscount float64
}

// Price computes the full discount waterfall for one product line.
// Discounts apply in fixed order: tier, then volume, then special on the unit
// price; the multi-year discount applies to the multi-year total only. The
// combined rate is checked against the hard ceiling and an error is returned
// rather than a silent clamp.
func (s *PricingService) Price(req PriceRequest) (*domain.PricingBreakdown, error) {
	listPrice, ok := s.catalog.Products[req.Product]
	if !ok {
		return nil, domain.NewConfigurationError("product", string(req.Product), "unknown product")
	}
	tierDiscount, ok := s.catalog.TierDiscounts[req.Tier]
	if !ok {
		return nil, domain.NewConfigurationError("tier", string(req.Tier), "unknown distributor tier")
	}
	rate, ok := s.catalog.CurrencyRates[req.Currency]
	if !ok {
		return nil, domain.NewConfigurationError("currency", string(req.Currency), "unknown currency")
	}
	region, ok := s.catalog.Regions[req.Region]
	if !ok {
		return nil, domain.NewConfigurationError("region", string(req.Region), "unknown region")
	}
	if req.Quantity < 1 {
		return nil, domain.NewConfigurationError("quantity", fmt.Sprintf("%d", req.Quantity), "quantity must be at least 1")
	}
	if req.Years < 1 {
		return nil, domain.NewConfigurationError("years", fmt.Sprintf("%d", req.Years), "contract length must be at least 1 year")
	}
	if req.SpecialDiscount < 0 || req.SpecialDiscount >= 1 {
		return nil, domain.NewConfigurationError("special_discount", fmt.Sprintf("%v", req.SpecialDiscount), "special discount must be in [0, 1)")
	}

	volumeDiscount, err := s.volumeDiscount(req.Quantity)
	if err != nil {
		return nil, err
	}
	multiYearDiscount := s.multiYearDiscount(req.Years)

	combined := tierDiscount + volumeDiscount + req.SpecialDiscount + multiYearDiscount
	if combined > s.catalog.MaxTotalDiscount {
		return nil, &domain.DiscountCeilingError{
			Product:  string(req.Product),
			Combined: combined,
			Ceiling:  s.catalog.MaxTotalDiscount,
		}
	}

	basePrice := listPrice * region.AdjustmentFactor * rate
	unitPrice := basePrice * (1 - tierDiscount) * (1 - volumeDiscount) * (1 - req.SpecialDiscount)
	subtotal := unitPrice * float64(req.Quantity)
	totalValue := subtotal * float64(req.Years) * (1 - multiYearDiscount)

	breakdown := &domain.PricingBreakdown{
		Product:           req.Product,
		Currency:          req.Currency,
		Quantity:          req.Quantity,
		Years:             req.Years,
		BasePrice:         round2(basePrice),
		TierDiscount:      tierDiscount,
		VolumeDiscount:    volumeDiscount,
		SpecialDiscount:   req.SpecialDiscount,
		MultiYearDiscount: multiYearDiscount,
		UnitPrice:         round2(unitPrice),
		Subtotal:          round2(subtotal),
		TotalValue:        round2(totalValue),
	}

	s.logger.Debug("priced product line",
		zap.String("product", string(req.Product)),
		zap.Int("quantity", req.Quantity),
		zap.String("tier", string(req.Tier)),
		zap.Float64("unitPrice", breakdown.UnitPrice),
		zap.Float64("totalValue", breakdown.TotalValue))

	return breakdown, nil
}

// Rebate computes the earned rebate for realized performance. The highest
// threshold at or below the actual metric wins; the amount is capped at
// revenue times the maximum rebate ratio.
func (s *PricingService) Rebate(rebateType domain.RebateType, actualRevenue, actualGrowth float64, newCustomers int) (*domain.RebateResult, error) {
	structure, ok := s.catalog.RebateStructures[rebateType]
	if !ok {
		return nil, domain.NewConfigurationError("rebate_type", string(rebateType), "unknown rebate type")
	}
	if actualRevenue < 0 {
		return nil, domain.NewConfigurationError("actual_revenue", fmt.Sprintf("%v", actualRevenue), "revenue cannot be negative")
	}

	var metric float64
	switch rebateType {
	case domain.RebateVolume:
		metric = actualRevenue
	case domain.RebateGrowth:
		metric = actualGrowth
	case domain.RebateAcquisition:
		metric = float64(newCustomers)
	}

	result := &domain.RebateResult{Type: rebateType}
	for _, tier := range structure.Tiers {
		if metric >= tier.Threshold {
			result.AchievedThreshold = tier.Threshold
			result.Rate = tier.Rate
		}
	}
	if result.Rate == 0 {
		return result, nil
	}

	basis := actualRevenue
	if rebateType == domain.RebateAcquisition {
		basis = float64(newCustomers) * structure.PerCustomerBonus
	}
	amount := basis * result.Rate

	maxRebate := actualRevenue * s.catalog.MaxRebateRatio
	if amount > maxRebate {
		amount = maxRebate
		result.Capped = true
	}
	result.Amount = round2(amount)

	return result, nil
}

// MaxTotalDiscount exposes the catalog's hard discount ceiling for validators
func (s *PricingService) MaxTotalDiscount() float64 {
	return s.catalog.MaxTotalDiscount
}

func (s *PricingService) volumeDiscount(quantity int) (float64, error) {
	for _, band := range s.catalog.VolumeBands {
		if quantity >= band.MinUnits && (band.MaxUnits == 0 || quantity <= band.MaxUnits) {
			return band.Discount, nil
		}
	}
	return 0, domain.NewConfigurationError("quantity", fmt.Sprintf("%d", quantity), "no volume band covers quantity")
}

func (s *PricingService) multiYearDiscount(years int) float64 {
	if years > s.catalog.MaxContractYears {
		years = s.catalog.MaxContractYears
	}
	return s.catalog.MultiYear[years]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
