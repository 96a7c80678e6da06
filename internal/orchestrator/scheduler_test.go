package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopTask(p Priority) Task {
	return IOTask(p, func(ctx context.Context) (any, error) { return nil, nil })
}

func TestSchedulerDrainsHighestPriorityFirst(t *testing.T) {
	s := NewPriorityScheduler()
	require.NoError(t, s.Submit(noopTask(PriorityBackground)))
	require.NoError(t, s.Submit(noopTask(PriorityNormal)))
	require.NoError(t, s.Submit(noopTask(PriorityCritical)))
	require.NoError(t, s.Submit(noopTask(PriorityHigh)))

	ctx := context.Background()
	order := []Priority{}
	for i := 0; i < 4; i++ {
		task, ok := s.Get(ctx)
		require.True(t, ok)
		order = append(order, task.Priority)
	}

	assert.Equal(t, []Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityBackground}, order)
}

func TestSchedulerFIFOWithinSamePriority(t *testing.T) {
	s := NewPriorityScheduler()
	first := noopTask(PriorityNormal)
	second := noopTask(PriorityNormal)
	require.NoError(t, s.SubmitBatch([]Task{first, second}))

	a, ok := s.GetNowait()
	require.True(t, ok)
	b, ok := s.GetNowait()
	require.True(t, ok)

	assert.Equal(t, first.ID, a.ID)
	assert.Equal(t, second.ID, b.ID)
}

func TestSchedulerGetBlocksUntilSubmit(t *testing.T) {
	s := NewPriorityScheduler()
	resultCh := make(chan bool, 1)
	go func() {
		_, ok := s.Get(context.Background())
		resultCh <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Submit(noopTask(PriorityNormal)))

	select {
	case ok := <-resultCh:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Get did not unblock after Submit")
	}
}

func TestSchedulerShutdownWakesWaiterWithEmptyQueues(t *testing.T) {
	s := NewPriorityScheduler()
	resultCh := make(chan bool, 1)
	go func() {
		_, ok := s.Get(context.Background())
		resultCh <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	s.Shutdown(false)

	select {
	case ok := <-resultCh:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Get did not unblock after Shutdown")
	}
}

func TestSchedulerShutdownCancelPendingReturnsQueued(t *testing.T) {
	s := NewPriorityScheduler()
	require.NoError(t, s.Submit(noopTask(PriorityNormal)))
	require.NoError(t, s.Submit(noopTask(PriorityHigh)))

	cancelled := s.Shutdown(true)
	assert.Len(t, cancelled, 2)
	assert.Equal(t, 0, s.PendingCount())
	assert.ErrorIs(t, s.Submit(noopTask(PriorityNormal)), ErrSchedulerShutDown)
}

func TestSchedulerGetUnblocksOnContextCancel(t *testing.T) {
	s := NewPriorityScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	resultCh := make(chan bool, 1)
	go func() {
		_, ok := s.Get(ctx)
		resultCh <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case ok := <-resultCh:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Get did not unblock after context cancellation")
	}
}

func TestSchedulerPeekDoesNotRemove(t *testing.T) {
	s := NewPriorityScheduler()
	task := noopTask(PriorityCritical)
	require.NoError(t, s.Submit(task))

	peeked, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, task.ID, peeked.ID)
	assert.Equal(t, 1, s.PendingCount())
}
