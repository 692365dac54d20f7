package service_test

import (
	"testing"

	"github.com/ghostquant/distributor-core/internal/catalog"
	"github.com/ghostquant/distributor-core/internal/domain"
	"github.com/ghostquant/distributor-core/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildApprovalChainSelectsLowestCoveringRole(t *testing.T) {
	cat := catalog.Default()

	cases := []struct {
		name string
		in   service.ApprovalInputs
		want domain.ApprovalRole
	}{
		{
			name: "small deal stays with sales manager",
			in:   service.ApprovalInputs{Discount: 0.10, CreditLimit: 50000, MDFRatio: 0.01, Tier: domain.TierRegistered},
			want: domain.RoleSalesManager,
		},
		{
			name: "discount alone pushes to regional director",
			in:   service.ApprovalInputs{Discount: 0.30, CreditLimit: 50000, MDFRatio: 0.01, Tier: domain.TierRegistered},
			want: domain.RoleRegionalDirector,
		},
		{
			name: "credit limit alone pushes to vp sales",
			in:   service.ApprovalInputs{Discount: 0.10, CreditLimit: 400000, MDFRatio: 0.01, Tier: domain.TierRegistered},
			want: domain.RoleVPSales,
		},
		{
			name: "mdf ratio alone pushes to cfo",
			in:   service.ApprovalInputs{Discount: 0.10, CreditLimit: 50000, MDFRatio: 0.07, Tier: domain.TierRegistered},
			want: domain.RoleCFO,
		},
		{
			name: "nothing covers extreme proposal except ceo",
			in:   service.ApprovalInputs{Discount: 0.65, CreditLimit: 5000000, MDFRatio: 0.20, Tier: domain.TierRegistered},
			want: domain.RoleCEO,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chain := service.BuildApprovalChain(cat, tc.in)
			require.NotEmpty(t, chain)
			assert.Equal(t, tc.want, chain[0].Role)
			assert.True(t, chain[0].Required)
			assert.NotEmpty(t, chain[0].Reasons)
		})
	}
}

func TestBuildApprovalChainAlwaysIncludesLegalReview(t *testing.T) {
	cat := catalog.Default()

	chain := service.BuildApprovalChain(cat, service.ApprovalInputs{Tier: domain.TierRegistered})

	require.Len(t, chain, 2)
	assert.Equal(t, domain.RoleLegalReview, chain[1].Role)
	assert.True(t, chain[1].Required)
}

func TestBuildApprovalChainExecutiveSponsorForTopTiers(t *testing.T) {
	cat := catalog.Default()

	for _, tier := range []domain.DistributorTier{domain.TierStrategic, domain.TierElite} {
		chain := service.BuildApprovalChain(cat, service.ApprovalInputs{Tier: tier})
		require.Len(t, chain, 3, "tier %s", tier)
		assert.Equal(t, domain.RoleExecutiveSponsor, chain[2].Role)
	}

	for _, tier := range []domain.DistributorTier{domain.TierRegistered, domain.TierSelect, domain.TierPremier} {
		chain := service.BuildApprovalChain(cat, service.ApprovalInputs{Tier: tier})
		assert.Len(t, chain, 2, "tier %s", tier)
	}
}

func TestBuildApprovalChainSingleDiscretionaryRole(t *testing.T) {
	cat := catalog.Default()

	chain := service.BuildApprovalChain(cat, service.ApprovalInputs{
		Discount: 0.40, CreditLimit: 900000, MDFRatio: 0.06, Tier: domain.TierElite,
	})

	discretionary := 0
	for _, entry := range chain {
		switch entry.Role {
		case domain.RoleLegalReview, domain.RoleExecutiveSponsor:
		default:
			discretionary++
		}
	}
	assert.Equal(t, 1, discretionary)
	assert.Equal(t, domain.RoleCFO, chain[0].Role)
}
