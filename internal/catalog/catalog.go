// Package catalog holds the enum-keyed lookup tables the pricing, territory,
// and approval components read from. Tables are validated exhaustively at
// construction so that an unknown key at runtime always means bad caller
// input, never a missing row.
package catalog

import (
	"fmt"
	"math"

	"github.com/ghostquant/distributor-core/internal/domain"
)

// VolumeBand is one ascending, non-overlapping unit-count band
type VolumeBand struct {
	MinUnits int
	// MaxUnits of 0 means unbounded (the top band).
	MaxUnits int
	Discount float64
}

// RegionInfo describes one sales region
type RegionInfo struct {
	AdjustmentFactor float64
	BaseMarketScore  float64
	Countries        []string
	// ExclusivityEligible is false for the global catch-all and for regions
	// under regulatory restriction.
	ExclusivityEligible  bool
	RegulatoryComplexity string
}

// TierTerritoryLimit caps territory scope per commercial tier
type TierTerritoryLimit struct {
	// MaxCountries of 0 means unbounded.
	MaxCountries int
	// MaxRegions of 0 means unbounded.
	MaxRegions          int
	ExclusivityEligible bool
}

// ApprovalCeiling holds one role's discretionary limits. A zero Unbounded
// field means the numeric ceilings apply.
type ApprovalCeiling struct {
	Role           domain.ApprovalRole
	MaxDiscount    float64
	MaxCreditLimit float64
	MaxMDFRatio    float64
	Unbounded      bool
}

// Catalog is the full set of lookup tables. Construct with Default and
// override exchange rates via SetRate before calling Validate.
type Catalog struct {
	Products         map[domain.ProductCode]float64
	TierDiscounts    map[domain.DistributorTier]float64
	TopTiers         map[domain.DistributorTier]bool
	VolumeBands      []VolumeBand
	MultiYear        map[int]float64
	MaxContractYears int
	Regions          map[domain.RegionCode]RegionInfo
	CurrencyRates    map[domain.CurrencyCode]float64
	TerritoryLimits  map[domain.DistributorTier]TerritoryLimitEntry
	ApprovalMatrix   []ApprovalCeiling
	RebateStructures map[domain.RebateType]domain.RebateStructure
	MaxRebateRatio   float64
	MaxTotalDiscount float64
}

// TerritoryLimitEntry aliases TierTerritoryLimit for map readability
type TerritoryLimitEntry = TierTerritoryLimit

// Default returns the seeded catalog.
func Default() *Catalog {
	return &Catalog{
		Products: map[domain.ProductCode]float64{
			domain.ProductEnterprise:   50000,
			domain.ProductProfessional: 18000,
			domain.ProductStandard:     6500,
			domain.ProductAPI:          12000,
			domain.ProductAnalytics:    9500,
		},
		TierDiscounts: map[domain.DistributorTier]float64{
			domain.TierRegistered: 0.20,
			domain.TierSelect:     0.30,
			domain.TierPremier:    0.40,
			domain.TierStrategic:  0.50,
			domain.TierElite:      0.60,
		},
		TopTiers: map[domain.DistributorTier]bool{
			domain.TierStrategic: true,
			domain.TierElite:     true,
		},
		VolumeBands: []VolumeBand{
			{MinUnits: 1, MaxUnits: 10, Discount: 0},
			{MinUnits: 11, MaxUnits: 25, Discount: 0.05},
			{MinUnits: 26, MaxUnits: 50, Discount: 0.10},
			{MinUnits: 51, MaxUnits: 100, Discount: 0.15},
			{MinUnits: 101, MaxUnits: 0, Discount: 0.20},
		},
		MultiYear: map[int]float64{
			1: 0,
			2: 0.05,
			3: 0.08,
			4: 0.12,
			5: 0.15,
		},
		MaxContractYears: 5,
		Regions: map[domain.RegionCode]RegionInfo{
			domain.RegionAmericas: {
				AdjustmentFactor:     1.00,
				BaseMarketScore:      85,
				Countries:            []string{"US", "CA", "MX", "BR", "AR", "CL", "CO"},
				ExclusivityEligible:  true,
				RegulatoryComplexity: "moderate",
			},
			domain.RegionEMEA: {
				AdjustmentFactor:     1.08,
				BaseMarketScore:      80,
				Countries:            []string{"GB", "FR", "DE", "IT", "ES", "NL", "SE", "NO", "DK", "FI", "PL", "CH"},
				ExclusivityEligible:  true,
				RegulatoryComplexity: "high",
			},
			domain.RegionAPAC: {
				AdjustmentFactor:     0.95,
				BaseMarketScore:      78,
				Countries:            []string{"JP", "SG", "AU", "NZ", "KR", "IN", "MY", "TH"},
				ExclusivityEligible:  true,
				RegulatoryComplexity: "high",
			},
			domain.RegionLATAM: {
				AdjustmentFactor:     0.90,
				BaseMarketScore:      65,
				Countries:            []string{"BR", "AR", "CL", "CO", "PE", "UY", "EC"},
				ExclusivityEligible:  true,
				RegulatoryComplexity: "moderate",
			},
			domain.RegionMEA: {
				AdjustmentFactor:     1.05,
				BaseMarketScore:      55,
				Countries:            []string{"AE", "SA", "ZA", "EG", "NG", "KE"},
				ExclusivityEligible:  false,
				RegulatoryComplexity: "restricted",
			},
			domain.RegionGlobal: {
				AdjustmentFactor:     1.00,
				BaseMarketScore:      70,
				Countries:            nil, // resolved as the union of all regions
				ExclusivityEligible:  false,
				RegulatoryComplexity: "varies",
			},
		},
		CurrencyRates: map[domain.CurrencyCode]float64{
			domain.CurrencyUSD: 1.00,
			domain.CurrencyEUR: 0.92,
			domain.CurrencyGBP: 0.79,
			domain.CurrencyJPY: 149.50,
			domain.CurrencySGD: 1.34,
			domain.CurrencyAUD: 1.52,
		},
		TerritoryLimits: map[domain.DistributorTier]TerritoryLimitEntry{
			domain.TierRegistered: {MaxCountries: 3, MaxRegions: 1, ExclusivityEligible: false},
			domain.TierSelect:     {MaxCountries: 6, MaxRegions: 1, ExclusivityEligible: false},
			domain.TierPremier:    {MaxCountries: 12, MaxRegions: 2, ExclusivityEligible: true},
			domain.TierStrategic:  {MaxCountries: 25, MaxRegions: 3, ExclusivityEligible: true},
			domain.TierElite:      {MaxCountries: 0, MaxRegions: 0, ExclusivityEligible: true},
		},
		ApprovalMatrix: []ApprovalCeiling{
			{Role: domain.RoleSalesManager, MaxDiscount: 0.25, MaxCreditLimit: 100000, MaxMDFRatio: 0.02},
			{Role: domain.RoleRegionalDirector, MaxDiscount: 0.35, MaxCreditLimit: 250000, MaxMDFRatio: 0.03},
			{Role: domain.RoleVPSales, MaxDiscount: 0.45, MaxCreditLimit: 500000, MaxMDFRatio: 0.05},
			{Role: domain.RoleCFO, MaxDiscount: 0.55, MaxCreditLimit: 1000000, MaxMDFRatio: 0.08},
			{Role: domain.RoleCEO, Unbounded: true},
		},
		RebateStructures: map[domain.RebateType]domain.RebateStructure{
			domain.RebateVolume: {
				Type: domain.RebateVolume,
				Tiers: []domain.RebateTier{
					{Threshold: 250000, Rate: 0.01},
					{Threshold: 500000, Rate: 0.02},
					{Threshold: 1000000, Rate: 0.03},
					{Threshold: 2500000, Rate: 0.05},
				},
			},
			domain.RebateGrowth: {
				Type: domain.RebateGrowth,
				Tiers: []domain.RebateTier{
					{Threshold: 0.10, Rate: 0.01},
					{Threshold: 0.20, Rate: 0.02},
					{Threshold: 0.35, Rate: 0.04},
				},
			},
			domain.RebateAcquisition: {
				Type: domain.RebateAcquisition,
				Tiers: []domain.RebateTier{
					{Threshold: 5, Rate: 1.0},
					{Threshold: 10, Rate: 1.25},
					{Threshold: 25, Rate: 1.5},
				},
				PerCustomerBonus: 2500,
			},
		},
		MaxRebateRatio:   0.12,
		MaxTotalDiscount: 0.70,
	}
}

// SetRate overrides one currency exchange rate. Used by config injection.
func (c *Catalog) SetRate(currency domain.CurrencyCode, rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return domain.NewConfigurationError("currency_rate", string(currency), fmt.Sprintf("rate %v is not positive", rate))
	}
	c.CurrencyRates[currency] = rate
	return nil
}

// RegionCountries resolves the country list for a region. The global region
// resolves to the union of every other region's countries.
func (c *Catalog) RegionCountries(region domain.RegionCode) ([]string, error) {
	info, ok := c.Regions[region]
	if !ok {
		return nil, domain.NewConfigurationError("region", string(region), "unknown region")
	}
	if region != domain.RegionGlobal {
		out := make([]string, len(info.Countries))
		copy(out, info.Countries)
		return out, nil
	}
	seen := map[string]bool{}
	var union []string
	for code, r := range c.Regions {
		if code == domain.RegionGlobal {
			continue
		}
		for _, country := range r.Countries {
			if !seen[country] {
				seen[country] = true
				union = append(union, country)
			}
		}
	}
	return union, nil
}

// Validate checks every table for completeness and internal consistency.
// Call once at startup; a failure here is a deployment defect.
func (c *Catalog) Validate() error {
	if len(c.Products) == 0 {
		return fmt.Errorf("catalog: product table is empty")
	}
	for product, price := range c.Products {
		if price <= 0 {
			return fmt.Errorf("catalog: product %q has non-positive price", product)
		}
	}
	allTiers := []domain.DistributorTier{
		domain.TierRegistered, domain.TierSelect, domain.TierPremier,
		domain.TierStrategic, domain.TierElite,
	}
	for _, tier := range allTiers {
		if _, ok := c.TierDiscounts[tier]; !ok {
			return fmt.Errorf("catalog: tier %q missing from discount table", tier)
		}
		if _, ok := c.TerritoryLimits[tier]; !ok {
			return fmt.Errorf("catalog: tier %q missing from territory limit table", tier)
		}
	}
	prev := 0
	for i, band := range c.VolumeBands {
		if band.MinUnits != prev+1 {
			return fmt.Errorf("catalog: volume band %d starts at %d, want %d", i, band.MinUnits, prev+1)
		}
		if band.MaxUnits == 0 {
			if i != len(c.VolumeBands)-1 {
				return fmt.Errorf("catalog: unbounded volume band %d is not last", i)
			}
			break
		}
		if band.MaxUnits < band.MinUnits {
			return fmt.Errorf("catalog: volume band %d is inverted", i)
		}
		prev = band.MaxUnits
	}
	for year := 1; year <= c.MaxContractYears; year++ {
		if _, ok := c.MultiYear[year]; !ok {
			return fmt.Errorf("catalog: year %d missing from multi-year table", year)
		}
	}
	allRegions := []domain.RegionCode{
		domain.RegionAmericas, domain.RegionEMEA, domain.RegionAPAC,
		domain.RegionLATAM, domain.RegionMEA, domain.RegionGlobal,
	}
	for _, region := range allRegions {
		if _, ok := c.Regions[region]; !ok {
			return fmt.Errorf("catalog: region %q missing from region table", region)
		}
	}
	for currency, rate := range c.CurrencyRates {
		if rate <= 0 {
			return fmt.Errorf("catalog: currency %q has non-positive rate", currency)
		}
	}
	if len(c.ApprovalMatrix) == 0 {
		return fmt.Errorf("catalog: approval matrix is empty")
	}
	if !c.ApprovalMatrix[len(c.ApprovalMatrix)-1].Unbounded {
		return fmt.Errorf("catalog: top approval role must be unbounded")
	}
	for rtype, structure := range c.RebateStructures {
		last := math.Inf(-1)
		for _, tier := range structure.Tiers {
			if tier.Threshold <= last {
				return fmt.Errorf("catalog: rebate %q thresholds not ascending", rtype)
			}
			last = tier.Threshold
		}
	}
	if c.MaxTotalDiscount <= 0 || c.MaxTotalDiscount >= 1 {
		return fmt.Errorf("catalog: max total discount %v out of range", c.MaxTotalDiscount)
	}
	return nil
}
