package service

import (
	"fmt"

	"github.com/ghostquant/distributor-core/internal/catalog"
	"github.com/ghostquant/distributor-core/internal/domain"
)

// ApprovalInputs are the proposed values an approval chain is derived from
type ApprovalInputs struct {
	Discount    float64
	CreditLimit float64
	MDFRatio    float64
	Tier        domain.DistributorTier
}

// BuildApprovalChain derives the ordered approval chain for a proposal.
// Exactly one discretionary role is selected: the lowest role whose ceilings
// cover all three proposed values, falling back to the top role. Legal review
// is always appended; an executive sponsor is appended for top-tier partners.
// Entries must be evaluated in order, but approval is role-addressed.
func BuildApprovalChain(cat *catalog.Catalog, in ApprovalInputs) []domain.ApprovalChainEntry {
	var selected catalog.ApprovalCeiling
	found := false
	for _, ceiling := range cat.ApprovalMatrix {
		if ceiling.Unbounded ||
			(in.Discount <= ceiling.MaxDiscount &&
				in.CreditLimit <= ceiling.MaxCreditLimit &&
				in.MDFRatio <= ceiling.MaxMDFRatio) {
			selected = ceiling
			found = true
			break
		}
	}
	if !found {
		// The matrix is validated to end with an unbounded role, so this is
		// unreachable; keep the top role as a safeguard.
		selected = cat.ApprovalMatrix[len(cat.ApprovalMatrix)-1]
	}

	reasons := []string{
		fmt.Sprintf("discount %.1f%% within %s authority", in.Discount*100, selected.Role),
	}
	if in.CreditLimit > 0 {
		reasons = append(reasons, fmt.Sprintf("credit limit %.0f within %s authority", in.CreditLimit, selected.Role))
	}
	if in.MDFRatio > 0 {
		reasons = append(reasons, fmt.Sprintf("MDF ratio %.2f%% within %s authority", in.MDFRatio*100, selected.Role))
	}

	chain := []domain.ApprovalChainEntry{
		{
			Role:     selected.Role,
			Required: true,
			Reasons:  reasons,
			Status:   domain.ApprovalPending,
		},
		{
			Role:     domain.RoleLegalReview,
			Required: true,
			Reasons:  []string{"legal review is mandatory for all negotiated contracts"},
			Status:   domain.ApprovalPending,
		},
	}

	if cat.TopTiers[in.Tier] {
		chain = append(chain, domain.ApprovalChainEntry{
			Role:     domain.RoleExecutiveSponsor,
			Required: true,
			Reasons:  []string{fmt.Sprintf("%s tier partners require an executive sponsor", in.Tier)},
			Status:   domain.ApprovalPending,
		})
	}

	return chain
}
