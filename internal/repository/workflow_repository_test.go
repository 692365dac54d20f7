package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ghostquant/distributor-core/internal/domain"
	"github.com/ghostquant/distributor-core/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflow() *domain.NegotiationWorkflow {
	return &domain.NegotiationWorkflow{
		ID:         uuid.New(),
		ContractID: uuid.New(),
		Status:     domain.WorkflowNotStarted,
		MaxRounds:  100,
		Terms: []domain.NegotiableTerm{
			{ID: uuid.New(), Name: "unit_discount", Category: domain.TermCategoryPricing, Status: domain.TermStatusPending},
		},
	}
}

func TestSaveAndGetReturnsCopies(t *testing.T) {
	store := repository.NewMemoryWorkflowStore()
	ctx := context.Background()
	wf := newWorkflow()
	require.NoError(t, store.Save(ctx, wf))

	got, err := store.Get(ctx, wf.ID)
	require.NoError(t, err)
	require.Len(t, got.Terms, 1)

	// Mutating the returned copy must not leak into the store.
	got.Terms[0].ProposedValue = 0.99
	got.Status = domain.WorkflowAccepted

	fresh, err := store.Get(ctx, wf.ID)
	require.NoError(t, err)
	assert.Zero(t, fresh.Terms[0].ProposedValue)
	assert.Equal(t, domain.WorkflowNotStarted, fresh.Status)
}

func TestGetUnknownWorkflow(t *testing.T) {
	store := repository.NewMemoryWorkflowStore()

	_, err := store.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, repository.ErrWorkflowNotFound)
}

func TestWithLockPersistsOnSuccessOnly(t *testing.T) {
	store := repository.NewMemoryWorkflowStore()
	ctx := context.Background()
	wf := newWorkflow()
	require.NoError(t, store.Save(ctx, wf))

	require.NoError(t, store.WithLock(ctx, wf.ID, func(w *domain.NegotiationWorkflow) error {
		w.CurrentRound = 3
		return nil
	}))
	got, err := store.Get(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentRound)

	sentinel := assert.AnError
	err = store.WithLock(ctx, wf.ID, func(w *domain.NegotiationWorkflow) error {
		w.CurrentRound = 99
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	got, err = store.Get(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentRound)
}

func TestWithLockSerializesConcurrentRounds(t *testing.T) {
	store := repository.NewMemoryWorkflowStore()
	ctx := context.Background()
	wf := newWorkflow()
	require.NoError(t, store.Save(ctx, wf))

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = store.WithLock(ctx, wf.ID, func(w *domain.NegotiationWorkflow) error {
				w.CurrentRound++
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, got.CurrentRound)
}
