package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ghostquant/distributor-core/internal/catalog"
	"github.com/ghostquant/distributor-core/internal/domain"
	"github.com/ghostquant/distributor-core/internal/logger"
	"github.com/ghostquant/distributor-core/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Well-known negotiable term names seeded from a contract
const (
	TermUnitDiscount     = "unit_discount"
	TermAnnualCommitment = "annual_commitment"
	TermCreditLimit      = "credit_limit"
	TermMDFRatio         = "mdf_ratio"
	TermPaymentDays      = "payment_terms_days"
	TermSupportHours     = "support_response_hours"
)

// Deadline map keys
const (
	DeadlineProposal = "proposal"
	DeadlineReview   = "review"
	DeadlineFinal    = "final_terms"
)

// NegotiationService owns the per-contract negotiation state machine. All
// mutation runs under the store's per-workflow exclusive lock; concurrent
// counter-proposals on one workflow serialize because round increments and
// approval-chain recomputation are not commutative.
type NegotiationService struct {
	store   repository.WorkflowStore
	pricing *PricingService
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewNegotiationService creates a negotiation service
func NewNegotiationService(store repository.WorkflowStore, pricing *PricingService, cat *catalog.Catalog, logger *zap.Logger) *NegotiationService {
	return &NegotiationService{store: store, pricing: pricing, catalog: cat, logger: logger}
}

// Create seeds a workflow from a contract. Terms default to the contract's
// numeric values priced through the calculator; explicit initial terms
// override the seeding. The workflow starts in not_started with round 0.
func (s *NegotiationService) Create(ctx context.Context, req *domain.CreateWorkflowRequest) (*domain.NegotiationWorkflow, error) {
	if findings := req.Validate(); len(findings) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidInput, findings[0].Field, findings[0].Message)
	}

	contract := req.Contract
	terms := req.InitialTerms
	if len(terms) == 0 {
		seeded, err := s.seedTerms(contract)
		if err != nil {
			return nil, err
		}
		terms = seeded
	}

	now := time.Now().UTC()
	wf := &domain.NegotiationWorkflow{
		ID:           uuid.New(),
		ContractID:   contract.ID,
		Tier:         contract.Tier,
		Status:       domain.WorkflowNotStarted,
		CurrentRound: 0,
		MaxRounds:    req.MaxRounds,
		Terms:        terms,
		Stakeholders: append([]string(nil), req.Stakeholders...),
		Deadlines: map[string]time.Time{
			DeadlineProposal: now.AddDate(0, 0, req.DeadlineDays/3),
			DeadlineReview:   now.AddDate(0, 0, req.DeadlineDays*2/3),
			DeadlineFinal:    now.AddDate(0, 0, req.DeadlineDays),
		},
		Escalations: []domain.EscalationLevel{
			{Level: 1, Role: domain.RoleRegionalDirector, Trigger: "proposal deadline missed"},
			{Level: 2, Role: domain.RoleVPSales, Trigger: "review deadline missed"},
			{Level: 3, Role: domain.RoleCEO, Trigger: "negotiation stalled past final deadline"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	wf.ApprovalChain = s.recomputeChain(wf)
	appendAudit(wf, "workflow created")

	if err := s.store.Save(ctx, wf); err != nil {
		return nil, err
	}
	s.wfLogger(wf).Info("negotiation workflow created",
		zap.Int("terms", len(wf.Terms)),
		zap.Int("maxRounds", wf.MaxRounds))
	return wf, nil
}

// Start moves the workflow from not_started to initial_proposal. The round
// counter tracks completed counter-proposal rounds and stays at zero until
// the first counter lands.
func (s *NegotiationService) Start(ctx context.Context, id uuid.UUID) error {
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		if wf.Status != domain.WorkflowNotStarted {
			return s.invalidTransition(wf, "start")
		}
		wf.Status = domain.WorkflowInitialProposal
		appendAudit(wf, "negotiation started on initial proposal")
		s.touch(wf)
		return nil
	})
}

// SubmitCounterProposal applies one round of proposed term changes. Each
// change is bounds-checked before anything mutates. On success the round
// increments and the approval chain is recomputed from scratch: in-flight
// approval decisions become stale and must be re-solicited.
func (s *NegotiationService) SubmitCounterProposal(ctx context.Context, id uuid.UUID, req *domain.CounterProposalRequest) error {
	if findings := req.Validate(); len(findings) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrInvalidInput, findings[0].Field, findings[0].Message)
	}
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		// Counters are legal while proposing and while under review: a
		// counter during review discards in-flight approvals, which then
		// must be re-solicited against the new values.
		if wf.Status != domain.WorkflowInitialProposal && wf.Status != domain.WorkflowCounterProposal && !isReviewState(wf.Status) {
			return s.invalidTransition(wf, "submit_counter_proposal")
		}
		if wf.CurrentRound >= wf.MaxRounds {
			return &domain.RoundLimitError{
				WorkflowID: wf.ID.String(),
				Round:      wf.CurrentRound,
				MaxRounds:  wf.MaxRounds,
			}
		}

		// Validate every change before applying any.
		targets := make([]*domain.NegotiableTerm, len(req.Changes))
		for i, change := range req.Changes {
			term := wf.TermByName(change.TermName)
			if term == nil {
				return fmt.Errorf("%w: %q", ErrTermNotFound, change.TermName)
			}
			if !term.Negotiable {
				return fmt.Errorf("%w: %q", ErrTermNotNegotiable, change.TermName)
			}
			if !term.WithinBounds(change.Value) {
				return &domain.BoundsViolationError{
					Term:  change.TermName,
					Value: change.Value,
					Min:   term.MinValue,
					Max:   term.MaxValue,
				}
			}
			targets[i] = term
		}

		wf.CurrentRound++
		now := time.Now().UTC()
		for i, change := range req.Changes {
			term := targets[i]
			term.ProposedValue = change.Value
			term.Status = domain.TermStatusProposed
			term.History = append(term.History, domain.CounterProposalRecord{
				Round:         wf.CurrentRound,
				Value:         change.Value,
				SubmittedBy:   req.SubmittedBy,
				Justification: change.Justification,
				Timestamp:     now,
			})
		}
		wf.Status = domain.WorkflowCounterProposal
		wf.ApprovalChain = s.recomputeChain(wf)
		appendAudit(wf, fmt.Sprintf("round %d counter-proposal by %s: %d term(s) changed, approval chain reset",
			wf.CurrentRound, req.SubmittedBy, len(req.Changes)))
		s.touch(wf)

		s.wfLogger(wf).Info("counter-proposal applied",
			zap.Int("round", wf.CurrentRound),
			zap.Int("changes", len(req.Changes)))
		return nil
	})
}

// SubmitForApproval moves the workflow to under_review. Terms still pending
// are marked proposed: the as-proposed value is accepted by default, and the
// audit log surfaces that to reviewers.
func (s *NegotiationService) SubmitForApproval(ctx context.Context, id uuid.UUID) error {
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		switch wf.Status {
		case domain.WorkflowInitialProposal, domain.WorkflowCounterProposal:
		default:
			return s.invalidTransition(wf, "submit_for_approval")
		}
		defaulted := 0
		for i := range wf.Terms {
			if wf.Terms[i].Status == domain.TermStatusPending {
				wf.Terms[i].Status = domain.TermStatusProposed
				defaulted++
			}
		}
		wf.Status = domain.WorkflowUnderReview
		if defaulted > 0 {
			appendAudit(wf, fmt.Sprintf("submitted for approval; %d untouched term(s) accepted as proposed", defaulted))
		} else {
			appendAudit(wf, "submitted for approval")
		}
		s.touch(wf)
		return nil
	})
}

// ProcessApproval records one role's decision on the first pending chain
// entry for that role. Any rejection makes the workflow rejected and leaves
// other pending entries untouched for audit. When every required entry is
// approved the workflow is accepted and final values lock in, unless blocking
// territory conflicts gate the acceptance.
func (s *NegotiationService) ProcessApproval(ctx context.Context, id uuid.UUID, role domain.ApprovalRole, approved bool, approver, comments string) error {
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		switch wf.Status {
		case domain.WorkflowUnderReview, domain.WorkflowLegalReview,
			domain.WorkflowFinanceReview, domain.WorkflowExecutiveReview:
		default:
			return s.invalidTransition(wf, "process_approval")
		}

		entry := pendingEntry(wf, role)
		if entry == nil {
			return fmt.Errorf("%w: %q", ErrNoPendingApproval, role)
		}
		now := time.Now().UTC()
		entry.Approver = approver
		entry.Comments = comments
		entry.DecidedAt = &now
		if approved {
			entry.Status = domain.ApprovalApproved
			appendAudit(wf, fmt.Sprintf("%s approved by %s", role, approver))
		} else {
			entry.Status = domain.ApprovalRejected
			appendAudit(wf, fmt.Sprintf("%s rejected by %s: %s", role, approver, comments))
		}

		if entry.Status == domain.ApprovalRejected {
			wf.Status = domain.WorkflowRejected
			s.touch(wf)
			s.wfLogger(wf).Info("workflow rejected", zap.String("role", string(role)))
			return nil
		}

		if allRequiredApproved(wf) {
			if len(wf.BlockingConflicts) > 0 {
				// The approval stands, but acceptance waits for the
				// territory conflict gate to clear.
				appendAudit(wf, "all approvals in place, acceptance gated by territory conflicts")
				wf.Status = reviewStateFor(role)
				s.touch(wf)
				return nil
			}
			s.accept(wf)
			return nil
		}

		wf.Status = reviewStateFor(role)
		s.touch(wf)
		return nil
	})
}

// AttachConflictGate records blocking territory conflicts on the workflow.
// While any are attached the workflow cannot reach accepted.
func (s *NegotiationService) AttachConflictGate(ctx context.Context, id uuid.UUID, conflicts []domain.Conflict) error {
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		if wf.Status.IsTerminal() {
			return s.invalidTransition(wf, "attach_conflict_gate")
		}
		seen := make(map[uuid.UUID]struct{}, len(wf.BlockingConflicts))
		for _, cid := range wf.BlockingConflicts {
			seen[cid] = struct{}{}
		}
		attached := 0
		for _, c := range conflicts {
			if !c.Blocking() {
				continue
			}
			if _, dup := seen[c.ExistingID]; dup {
				continue
			}
			seen[c.ExistingID] = struct{}{}
			wf.BlockingConflicts = append(wf.BlockingConflicts, c.ExistingID)
			attached++
		}
		if attached > 0 {
			appendAudit(wf, fmt.Sprintf("%d blocking territory conflict(s) attached", attached))
		}
		s.touch(wf)
		return nil
	})
}

// ClearConflictGate removes the conflict gate. If every required approval is
// already in place the workflow transitions to accepted immediately.
func (s *NegotiationService) ClearConflictGate(ctx context.Context, id uuid.UUID) error {
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		if wf.Status.IsTerminal() {
			return s.invalidTransition(wf, "clear_conflict_gate")
		}
		wf.BlockingConflicts = nil
		appendAudit(wf, "territory conflict gate cleared")
		if isReviewState(wf.Status) && allRequiredApproved(wf) {
			s.accept(wf)
			return nil
		}
		s.touch(wf)
		return nil
	})
}

// Finalize moves an accepted workflow to final_terms and back-fills any term
// whose final value is still unset from its proposed value.
func (s *NegotiationService) Finalize(ctx context.Context, id uuid.UUID) error {
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		if wf.Status != domain.WorkflowAccepted {
			return s.invalidTransition(wf, "finalize")
		}
		for i := range wf.Terms {
			term := &wf.Terms[i]
			if term.FinalValue == nil && term.Status != domain.TermStatusRejected {
				v := term.ProposedValue
				term.FinalValue = &v
				term.Status = domain.TermStatusApproved
			}
		}
		wf.Status = domain.WorkflowFinalTerms
		appendAudit(wf, "final terms issued")
		s.touch(wf)
		return nil
	})
}

// Withdraw terminates the workflow from any non-terminal state.
func (s *NegotiationService) Withdraw(ctx context.Context, id uuid.UUID, reason string) error {
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		if wf.Status.IsTerminal() {
			return s.invalidTransition(wf, "withdraw")
		}
		wf.Status = domain.WorkflowWithdrawn
		appendAudit(wf, "withdrawn: "+reason)
		s.touch(wf)
		s.wfLogger(wf).Info("workflow withdrawn", zap.String("reason", reason))
		return nil
	})
}

// RecordSession appends free-form negotiation minutes stamped with the
// current round.
func (s *NegotiationService) RecordSession(ctx context.Context, id uuid.UUID, participants []string, minutes string) error {
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		if wf.Status.IsTerminal() {
			return s.invalidTransition(wf, "record_session")
		}
		wf.Sessions = append(wf.Sessions, domain.NegotiationSession{
			ID:           uuid.New(),
			Round:        wf.CurrentRound,
			Participants: append([]string(nil), participants...),
			Minutes:      minutes,
			RecordedAt:   time.Now().UTC(),
		})
		s.touch(wf)
		return nil
	})
}

// AddStakeholder adds a stakeholder if not already present
func (s *NegotiationService) AddStakeholder(ctx context.Context, id uuid.UUID, stakeholder string) error {
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		for _, existing := range wf.Stakeholders {
			if existing == stakeholder {
				return nil
			}
		}
		wf.Stakeholders = append(wf.Stakeholders, stakeholder)
		s.touch(wf)
		return nil
	})
}

// Escalate bumps the escalation level along the seeded ladder and records
// the trigger in the audit log. Escalation is data only; it drives no
// transition by itself.
func (s *NegotiationService) Escalate(ctx context.Context, id uuid.UUID) error {
	return s.store.WithLock(ctx, id, func(wf *domain.NegotiationWorkflow) error {
		if wf.Status.IsTerminal() {
			return s.invalidTransition(wf, "escalate")
		}
		if wf.EscalationLevel >= len(wf.Escalations) {
			return fmt.Errorf("workflow %s: escalation ladder exhausted at level %d", wf.ID, wf.EscalationLevel)
		}
		rung := wf.Escalations[wf.EscalationLevel]
		wf.EscalationLevel++
		appendAudit(wf, fmt.Sprintf("escalated to level %d (%s): %s", rung.Level, rung.Role, rung.Trigger))
		s.touch(wf)
		return nil
	})
}

// Get returns a copy of the workflow
func (s *NegotiationService) Get(ctx context.Context, id uuid.UUID) (*domain.NegotiationWorkflow, error) {
	return s.store.Get(ctx, id)
}

// Summary returns the read-only reporting view of the workflow
func (s *NegotiationService) Summary(ctx context.Context, id uuid.UUID) (*domain.WorkflowSummary, error) {
	wf, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := &domain.WorkflowSummary{
		WorkflowID:   wf.ID,
		ContractID:   wf.ContractID,
		Status:       wf.Status,
		CurrentRound: wf.CurrentRound,
		MaxRounds:    wf.MaxRounds,
		Deadlines:    make(map[string]string, len(wf.Deadlines)),
		ConflictGate: len(wf.BlockingConflicts) > 0,
	}
	for _, term := range wf.Terms {
		summary.Terms = append(summary.Terms, domain.TermSummary{
			Name:          term.Name,
			Category:      term.Category,
			OriginalValue: term.OriginalValue,
			ProposedValue: term.ProposedValue,
			FinalValue:    term.FinalValue,
			Status:        term.Status,
		})
	}
	for _, entry := range wf.ApprovalChain {
		summary.Approvals = append(summary.Approvals, domain.ApprovalSummary{
			Role:     entry.Role,
			Required: entry.Required,
			Status:   entry.Status,
			Approver: entry.Approver,
		})
	}
	for key, deadline := range wf.Deadlines {
		summary.Deadlines[key] = deadline.Format(time.RFC3339)
	}
	return summary, nil
}

// seedTerms derives the negotiable terms from the contract, pricing the
// contract first so commitment terms start from the computed value.
func (s *NegotiationService) seedTerms(contract *domain.Contract) ([]domain.NegotiableTerm, error) {
	breakdown, err := s.pricing.Price(PriceRequest{
		Product:  contract.Product,
		Quantity: contract.Quantity,
		Tier:     contract.Tier,
		Currency: contract.Currency,
		Region:   contract.Region,
		Years:    contract.Years,
	})
	if err != nil {
		return nil, err
	}

	annualCommitment := breakdown.TotalValue / float64(contract.Years)
	if len(contract.Commitments) > 0 {
		annualCommitment = contract.Commitments[0]
	}

	terms := []domain.NegotiableTerm{
		newTerm(TermUnitDiscount, domain.TermCategoryPricing, contract.Discount,
			fptr(0), fptr(s.pricing.MaxTotalDiscount())),
		newTerm(TermAnnualCommitment, domain.TermCategoryCommitments, annualCommitment,
			fptr(annualCommitment*0.5), nil),
		newTerm(TermCreditLimit, domain.TermCategoryTerms, contract.CreditLimit,
			fptr(0), fptr(contract.CreditLimit*2)),
		newTerm(TermMDFRatio, domain.TermCategoryMDF, contract.MDFAllocation,
			fptr(0), fptr(0.10)),
		newTerm(TermPaymentDays, domain.TermCategoryTerms, 30, fptr(15), fptr(90)),
		newTerm(TermSupportHours, domain.TermCategorySupport, 24, fptr(4), fptr(72)),
	}
	return terms, nil
}

// recomputeChain rebuilds the approval chain from the current proposed
// values, discarding every prior decision.
func (s *NegotiationService) recomputeChain(wf *domain.NegotiationWorkflow) []domain.ApprovalChainEntry {
	in := ApprovalInputs{Tier: wf.Tier}
	if term := wf.TermByName(TermUnitDiscount); term != nil {
		in.Discount = term.ProposedValue
	}
	if term := wf.TermByName(TermCreditLimit); term != nil {
		in.CreditLimit = term.ProposedValue
	}
	if term := wf.TermByName(TermMDFRatio); term != nil {
		in.MDFRatio = term.ProposedValue
	}
	return BuildApprovalChain(s.catalog, in)
}

func (s *NegotiationService) accept(wf *domain.NegotiationWorkflow) {
	wf.Status = domain.WorkflowAccepted
	for i := range wf.Terms {
		term := &wf.Terms[i]
		if term.Status == domain.TermStatusRejected {
			continue
		}
		v := term.ProposedValue
		term.FinalValue = &v
		term.Status = domain.TermStatusApproved
	}
	appendAudit(wf, "all required approvals in place, workflow accepted")
	s.touch(wf)
	s.wfLogger(wf).Info("workflow accepted")
}

func (s *NegotiationService) wfLogger(wf *domain.NegotiationWorkflow) *zap.Logger {
	return logger.WithWorkflow(s.logger, wf.ID.String(), wf.ContractID.String())
}

func (s *NegotiationService) invalidTransition(wf *domain.NegotiationWorkflow, op string) error {
	return &domain.InvalidTransitionError{
		WorkflowID: wf.ID.String(),
		From:       wf.Status,
		Operation:  op,
	}
}

func (s *NegotiationService) touch(wf *domain.NegotiationWorkflow) {
	wf.UpdatedAt = time.Now().UTC()
}

func newTerm(name string, category domain.TermCategory, original float64, min, max *float64) domain.NegotiableTerm {
	return domain.NegotiableTerm{
		ID:            uuid.New(),
		Category:      category,
		Name:          name,
		OriginalValue: original,
		ProposedValue: original,
		Negotiable:    true,
		MinValue:      min,
		MaxValue:      max,
		Status:        domain.TermStatusPending,
	}
}

func pendingEntry(wf *domain.NegotiationWorkflow, role domain.ApprovalRole) *domain.ApprovalChainEntry {
	for i := range wf.ApprovalChain {
		if wf.ApprovalChain[i].Role == role && wf.ApprovalChain[i].Status == domain.ApprovalPending {
			return &wf.ApprovalChain[i]
		}
	}
	return nil
}

func allRequiredApproved(wf *domain.NegotiationWorkflow) bool {
	for _, entry := range wf.ApprovalChain {
		if entry.Required && entry.Status != domain.ApprovalApproved {
			return false
		}
	}
	return true
}

func reviewStateFor(role domain.ApprovalRole) domain.WorkflowStatus {
	switch role {
	case domain.RoleLegalReview:
		return domain.WorkflowLegalReview
	case domain.RoleCFO:
		return domain.WorkflowFinanceReview
	case domain.RoleCEO, domain.RoleExecutiveSponsor:
		return domain.WorkflowExecutiveReview
	}
	return domain.WorkflowUnderReview
}

func isReviewState(status domain.WorkflowStatus) bool {
	switch status {
	case domain.WorkflowUnderReview, domain.WorkflowLegalReview,
		domain.WorkflowFinanceReview, domain.WorkflowExecutiveReview:
		return true
	}
	return false
}

func appendAudit(wf *domain.NegotiationWorkflow, msg string) {
	wf.AuditLog = append(wf.AuditLog, fmt.Sprintf("%s %s", time.Now().UTC().Format(time.RFC3339), msg))
}

func fptr(v float64) *float64 { return &v }
