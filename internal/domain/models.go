package domain

import (
	"time"

	"github.com/google/uuid"
)

// DistributorTier represents the commercial tier of a distributor
type DistributorTier string

const (
	TierRegistered DistributorTier = "registered"
	TierSelect     DistributorTier = "select"
	TierPremier    DistributorTier = "premier"
	TierStrategic  DistributorTier = "strategic"
	TierElite      DistributorTier = "elite"
)

// RegionCode identifies a sales region
type RegionCode string

const (
	RegionAmericas RegionCode = "americas"
	RegionEMEA     RegionCode = "emea"
	RegionAPAC     RegionCode = "apac"
	RegionLATAM    RegionCode = "latam"
	RegionMEA      RegionCode = "mea"
	RegionGlobal   RegionCode = "global"
)

// CurrencyCode identifies a settlement currency
type CurrencyCode string

const (
	CurrencyUSD CurrencyCode = "usd"
	CurrencyEUR CurrencyCode = "eur"
	CurrencyGBP CurrencyCode = "gbp"
	CurrencyJPY CurrencyCode = "jpy"
	CurrencySGD CurrencyCode = "sgd"
	CurrencyAUD CurrencyCode = "aud"
)

// ProductCode identifies a catalogued product
type ProductCode string

const (
	ProductEnterprise   ProductCode = "ghostquant_enterprise"
	ProductProfessional ProductCode = "ghostquant_professional"
	ProductStandard     ProductCode = "ghostquant_standard"
	ProductAPI          ProductCode = "ghostquant_api"
	ProductAnalytics    ProductCode = "ghostquant_analytics"
)

// TermCategory groups negotiable terms by the contract area they affect
type TermCategory string

const (
	TermCategoryPricing     TermCategory = "pricing"
	TermCategoryCommitments TermCategory = "commitments"
	TermCategoryTerms       TermCategory = "terms"
	TermCategoryTerritory   TermCategory = "territory"
	TermCategorySupport     TermCategory = "support"
	TermCategoryMDF         TermCategory = "mdf"
)

// TermStatus represents the negotiation status of a single term
type TermStatus string

const (
	TermStatusPending  TermStatus = "pending"
	TermStatusProposed TermStatus = "proposed"
	TermStatusApproved TermStatus = "approved"
	TermStatusRejected TermStatus = "rejected"
)

// WorkflowStatus is the negotiation workflow state machine state
type WorkflowStatus string

const (
	WorkflowNotStarted      WorkflowStatus = "not_started"
	WorkflowInitialProposal WorkflowStatus = "initial_proposal"
	WorkflowCounterProposal WorkflowStatus = "counter_proposal"
	WorkflowUnderReview     WorkflowStatus = "under_review"
	WorkflowLegalReview     WorkflowStatus = "legal_review"
	WorkflowFinanceReview   WorkflowStatus = "finance_review"
	WorkflowExecutiveReview WorkflowStatus = "executive_review"
	WorkflowFinalTerms      WorkflowStatus = "final_terms"
	WorkflowAccepted        WorkflowStatus = "accepted"
	WorkflowRejected        WorkflowStatus = "rejected"
	WorkflowWithdrawn       WorkflowStatus = "withdrawn"
)

// IsTerminal reports whether no further transitions are possible from s.
func (s WorkflowStatus) IsTerminal() bool {
	switch s {
	case WorkflowAccepted, WorkflowRejected, WorkflowWithdrawn:
		return true
	}
	return false
}

// ApprovalStatus represents the decision state of an approval chain entry
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalRole names an organizational role in the approval chain
type ApprovalRole string

const (
	RoleSalesManager     ApprovalRole = "sales_manager"
	RoleRegionalDirector ApprovalRole = "regional_director"
	RoleVPSales          ApprovalRole = "vp_sales"
	RoleCFO              ApprovalRole = "cfo"
	RoleCEO              ApprovalRole = "ceo"
	RoleLegalReview      ApprovalRole = "legal_review"
	RoleExecutiveSponsor ApprovalRole = "executive_sponsor"
)

// ConflictType classifies a territory conflict finding
type ConflictType string

const (
	ConflictExclusive ConflictType = "exclusive_conflict"
	ConflictOverlap   ConflictType = "overlap"
)

// ConflictSeverity indicates whether a conflict blocks approval
type ConflictSeverity string

const (
	SeverityBlocking ConflictSeverity = "blocking"
	SeverityWarning  ConflictSeverity = "warning"
)

// AssignmentStatus is the lifecycle status of a territory assignment
type AssignmentStatus string

const (
	AssignmentActive     AssignmentStatus = "active"
	AssignmentApproved   AssignmentStatus = "approved"
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentTerminated AssignmentStatus = "terminated"
)

// RebateType classifies a rebate structure by the metric it rewards
type RebateType string

const (
	RebateVolume      RebateType = "volume"
	RebateGrowth      RebateType = "growth"
	RebateAcquisition RebateType = "acquisition"
)

// Contract is the value object the core consumes from the storage layer.
// The core never persists it.
type Contract struct {
	ID            uuid.UUID
	DistributorID uuid.UUID
	Tier          DistributorTier
	Currency      CurrencyCode
	Region        RegionCode
	Product       ProductCode
	Quantity      int
	Years         int
	// Commitments are annual minimum revenue commitments per contract year.
	Commitments []float64
	// MDFAllocation is the market development fund as a ratio of contract value.
	MDFAllocation float64
	CreditLimit   float64
	Discount      float64
	Territories   []uuid.UUID
}

// DistributorProfile carries the distributor attributes the core needs for
// tier-eligibility checks.
type DistributorProfile struct {
	ID             uuid.UUID
	Name           string
	Tier           DistributorTier
	HomeRegion     RegionCode
	YearsAsPartner int
	AnnualRevenue  float64
}

// CounterProposalRecord is one proposed value in a term's negotiation history
type CounterProposalRecord struct {
	Round         int       `json:"round"`
	Value         float64   `json:"value"`
	SubmittedBy   string    `json:"submittedBy"`
	Justification string    `json:"justification"`
	Timestamp     time.Time `json:"timestamp"`
}

// NegotiableTerm is a single numeric contract term under negotiation
type NegotiableTerm struct {
	ID            uuid.UUID               `json:"id"`
	Category      TermCategory            `json:"category"`
	Name          string                  `json:"name"`
	OriginalValue float64                 `json:"originalValue"`
	ProposedValue float64                 `json:"proposedValue"`
	FinalValue    *float64                `json:"finalValue,omitempty"`
	Negotiable    bool                    `json:"negotiable"`
	MinValue      *float64                `json:"minValue,omitempty"`
	MaxValue      *float64                `json:"maxValue,omitempty"`
	History       []CounterProposalRecord `json:"history"`
	Status        TermStatus              `json:"status"`
}

// WithinBounds reports whether v satisfies the term's min/max bounds.
// Terms without bounds accept any value.
func (t *NegotiableTerm) WithinBounds(v float64) bool {
	if t.MinValue != nil && v < *t.MinValue {
		return false
	}
	if t.MaxValue != nil && v > *t.MaxValue {
		return false
	}
	return true
}

// ApprovalChainEntry is one role in the ordered approval chain
type ApprovalChainEntry struct {
	Role      ApprovalRole   `json:"role"`
	Required  bool           `json:"required"`
	Reasons   []string       `json:"reasons"`
	Status    ApprovalStatus `json:"status"`
	Approver  string         `json:"approver,omitempty"`
	Comments  string         `json:"comments,omitempty"`
	DecidedAt *time.Time     `json:"decidedAt,omitempty"`
}

// NegotiationSession records free-form minutes from one negotiation meeting
type NegotiationSession struct {
	ID           uuid.UUID `json:"id"`
	Round        int       `json:"round"`
	Participants []string  `json:"participants"`
	Minutes      string    `json:"minutes"`
	RecordedAt   time.Time `json:"recordedAt"`
}

// EscalationLevel is one rung of the workflow escalation ladder
type EscalationLevel struct {
	Level   int          `json:"level"`
	Role    ApprovalRole `json:"role"`
	Trigger string       `json:"trigger"`
}

// NegotiationWorkflow owns the per-contract negotiation state.
// All mutation goes through NegotiationService under the store's
// per-workflow lock.
type NegotiationWorkflow struct {
	ID              uuid.UUID            `json:"id"`
	ContractID      uuid.UUID            `json:"contractId"`
	Tier            DistributorTier      `json:"tier"`
	Status          WorkflowStatus       `json:"status"`
	CurrentRound    int                  `json:"currentRound"`
	MaxRounds       int                  `json:"maxRounds"`
	Terms           []NegotiableTerm     `json:"terms"`
	Sessions        []NegotiationSession `json:"sessions"`
	Stakeholders    []string             `json:"stakeholders"`
	ApprovalChain   []ApprovalChainEntry `json:"approvalChain"`
	Deadlines       map[string]time.Time `json:"deadlines"`
	Escalations     []EscalationLevel    `json:"escalations"`
	EscalationLevel int                  `json:"escalationLevel"`
	AuditLog        []string             `json:"auditLog"`
	// BlockingConflicts holds territory conflict IDs that gate approval.
	BlockingConflicts []uuid.UUID `json:"blockingConflicts,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// TermByName returns the workflow term with the given name, or nil.
func (w *NegotiationWorkflow) TermByName(name string) *NegotiableTerm {
	for i := range w.Terms {
		if w.Terms[i].Name == name {
			return &w.Terms[i]
		}
	}
	return nil
}

// TerritoryDefinition describes a contiguous distribution territory
type TerritoryDefinition struct {
	ID                   uuid.UUID        `json:"id"`
	Name                 string           `json:"name"`
	Region               RegionCode       `json:"region"`
	Countries            []string         `json:"countries"`
	ExcludedCountries    []string         `json:"excludedCountries,omitempty"`
	Exclusive            bool             `json:"exclusive"`
	PopulationCoverage   float64          `json:"populationCoverage"`
	MarketPotential      float64          `json:"marketPotential"`
	RegulatoryComplexity string           `json:"regulatoryComplexity"`
	Status               AssignmentStatus `json:"status"`
	DistributorID        uuid.UUID        `json:"distributorId"`
	CreatedAt            time.Time        `json:"createdAt"`
}

// Conflict is a territory conflict finding. Conflicts are data, not errors:
// callers aggregate them alongside validation findings.
type Conflict struct {
	Type                 ConflictType     `json:"type"`
	Severity             ConflictSeverity `json:"severity"`
	CandidateID          uuid.UUID        `json:"candidateId"`
	ExistingID           uuid.UUID        `json:"existingId"`
	OverlappingCountries []string         `json:"overlappingCountries"`
	Resolution           string           `json:"resolution,omitempty"`
}

// Blocking reports whether the conflict gates approval.
func (c *Conflict) Blocking() bool {
	return c.Severity == SeverityBlocking
}

// ValidationFinding is a non-fatal validation result surfaced as data
type ValidationFinding struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PricingBreakdown is the transient result of a price computation.
// Discount components are rates in [0,1]; prices are in the requested currency.
type PricingBreakdown struct {
	Product           ProductCode  `json:"product"`
	Currency          CurrencyCode `json:"currency"`
	Quantity          int          `json:"quantity"`
	Years             int          `json:"years"`
	BasePrice         float64      `json:"basePrice"`
	TierDiscount      float64      `json:"tierDiscount"`
	VolumeDiscount    float64      `json:"volumeDiscount"`
	SpecialDiscount   float64      `json:"specialDiscount"`
	MultiYearDiscount float64      `json:"multiYearDiscount"`
	UnitPrice         float64      `json:"unitPrice"`
	Subtotal          float64      `json:"subtotal"`
	TotalValue        float64      `json:"totalValue"`
}

// TotalDiscountRate returns 1 - unitPrice/basePrice.
func (b *PricingBreakdown) TotalDiscountRate() float64 {
	if b.BasePrice == 0 {
		return 0
	}
	return 1 - b.UnitPrice/b.BasePrice
}

// RebateTier is one achievement threshold inside a rebate structure
type RebateTier struct {
	Threshold float64 `json:"threshold"`
	Rate      float64 `json:"rate"`
}

// RebateStructure defines how a distributor earns a rebate
type RebateStructure struct {
	Type RebateType `json:"type"`
	// Tiers must be sorted ascending by threshold.
	Tiers []RebateTier `json:"tiers"`
	// PerCustomerBonus applies to acquisition structures only.
	PerCustomerBonus float64 `json:"perCustomerBonus,omitempty"`
}

// RebateResult is the transient result of a rebate computation
type RebateResult struct {
	Type              RebateType `json:"type"`
	AchievedThreshold float64    `json:"achievedThreshold"`
	Rate              float64    `json:"rate"`
	Amount            float64    `json:"amount"`
	Capped            bool       `json:"capped"`
}
