package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ghostquant/distributor-core/internal/domain"
	"github.com/google/uuid"
)

// WorkflowStore persists negotiation workflows for the service layer.
// Implementations must serialize mutation per workflow: counter-proposal
// rounds and approval-chain recomputation are not commutative.
type WorkflowStore interface {
	Save(ctx context.Context, wf *domain.NegotiationWorkflow) error
	Get(ctx context.Context, id uuid.UUID) (*domain.NegotiationWorkflow, error)
	// WithLock runs fn with exclusive ownership of the workflow. Changes made
	// by fn are persisted when fn returns nil.
	WithLock(ctx context.Context, id uuid.UUID, fn func(wf *domain.NegotiationWorkflow) error) error
}

// MemoryWorkflowStore is the in-memory WorkflowStore.
// Terminal workflows are never deleted, only read.
type MemoryWorkflowStore struct {
	mu        sync.RWMutex
	workflows map[uuid.UUID]*domain.NegotiationWorkflow
	locks     map[uuid.UUID]*sync.Mutex
}

// NewMemoryWorkflowStore creates an empty in-memory workflow store
func NewMemoryWorkflowStore() *MemoryWorkflowStore {
	return &MemoryWorkflowStore{
		workflows: make(map[uuid.UUID]*domain.NegotiationWorkflow),
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// Save stores a deep copy of the workflow
func (s *MemoryWorkflowStore) Save(ctx context.Context, wf *domain.NegotiationWorkflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.ID] = cloneWorkflow(wf)
	if _, ok := s.locks[wf.ID]; !ok {
		s.locks[wf.ID] = &sync.Mutex{}
	}
	return nil
}

// Get returns a deep copy of the workflow
func (s *MemoryWorkflowStore) Get(ctx context.Context, id uuid.UUID) (*domain.NegotiationWorkflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, ErrWorkflowNotFound
	}
	return cloneWorkflow(wf), nil
}

// WithLock serializes mutation of one workflow. fn receives a copy; the copy
// replaces the stored workflow only when fn succeeds.
func (s *MemoryWorkflowStore) WithLock(ctx context.Context, id uuid.UUID, fn func(wf *domain.NegotiationWorkflow) error) error {
	s.mu.RLock()
	lock, ok := s.locks[id]
	s.mu.RUnlock()
	if !ok {
		return ErrWorkflowNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	wf, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(wf); err != nil {
		return err
	}
	return s.Save(ctx, wf)
}

func cloneWorkflow(wf *domain.NegotiationWorkflow) *domain.NegotiationWorkflow {
	out := *wf
	out.Terms = make([]domain.NegotiableTerm, len(wf.Terms))
	for i, t := range wf.Terms {
		ct := t
		if t.FinalValue != nil {
			v := *t.FinalValue
			ct.FinalValue = &v
		}
		if t.MinValue != nil {
			v := *t.MinValue
			ct.MinValue = &v
		}
		if t.MaxValue != nil {
			v := *t.MaxValue
			ct.MaxValue = &v
		}
		ct.History = append([]domain.CounterProposalRecord(nil), t.History...)
		out.Terms[i] = ct
	}
	out.Sessions = append([]domain.NegotiationSession(nil), wf.Sessions...)
	out.Stakeholders = append([]string(nil), wf.Stakeholders...)
	out.ApprovalChain = make([]domain.ApprovalChainEntry, len(wf.ApprovalChain))
	for i, e := range wf.ApprovalChain {
		ce := e
		ce.Reasons = append([]string(nil), e.Reasons...)
		if e.DecidedAt != nil {
			ts := *e.DecidedAt
			ce.DecidedAt = &ts
		}
		out.ApprovalChain[i] = ce
	}
	out.Deadlines = make(map[string]time.Time, len(wf.Deadlines))
	for k, v := range wf.Deadlines {
		out.Deadlines[k] = v
	}
	out.Escalations = append([]domain.EscalationLevel(nil), wf.Escalations...)
	out.AuditLog = append([]string(nil), wf.AuditLog...)
	out.BlockingConflicts = append([]uuid.UUID(nil), wf.BlockingConflicts...)
	return &out
}
