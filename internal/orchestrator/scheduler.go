package orchestrator

import (
	"context"
	"fmt"
	"sync"
)

// SchedulerStats is a point-in-time observability snapshot.
type SchedulerStats struct {
	TotalSubmitted int64
	TotalProcessed int64
	QueueDepths    map[Priority]int
}

// Pending returns the submitted-minus-processed backlog.
func (s SchedulerStats) Pending() int64 { return s.TotalSubmitted - s.TotalProcessed }

// PriorityScheduler is a thread-safe scheduler with four FIFO queues,
// one per Priority (spec §4.5 "Scheduler"). Higher priority always
// drains first; within a level, FIFO order holds. Ported from the
// original PriorityScheduler's deque-per-level design, with Python's
// threading.Condition replaced by a Go sync.Cond over the same lock.
type PriorityScheduler struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	queues   map[Priority][]Task

	submitted int64
	processed int64

	shutdown bool
}

// NewPriorityScheduler builds an empty scheduler.
func NewPriorityScheduler() *PriorityScheduler {
	s := &PriorityScheduler{
		queues: map[Priority][]Task{
			PriorityCritical:   nil,
			PriorityHigh:       nil,
			PriorityNormal:     nil,
			PriorityBackground: nil,
		},
	}
	s.notEmpty = sync.NewCond(&s.mu)
	return s
}

// ErrSchedulerShutDown is returned by Submit/SubmitBatch after Shutdown.
var ErrSchedulerShutDown = fmt.Errorf("orchestrator: scheduler is shut down")

// Submit enqueues one task onto its priority-appropriate queue.
func (s *PriorityScheduler) Submit(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return ErrSchedulerShutDown
	}
	s.queues[task.Priority] = append(s.queues[task.Priority], task)
	s.submitted++
	s.notEmpty.Signal()
	return nil
}

// SubmitBatch enqueues every task before waking any waiter, so the
// batch's relative priority ordering is respected even under
// concurrent Get callers.
func (s *PriorityScheduler) SubmitBatch(tasks []Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return ErrSchedulerShutDown
	}
	for _, t := range tasks {
		s.queues[t.Priority] = append(s.queues[t.Priority], t)
		s.submitted++
	}
	s.notEmpty.Broadcast()
	return nil
}

// Get blocks until a task is available, the context is cancelled, or
// the scheduler shuts down with an empty backlog, returning the
// earliest task from the highest non-empty queue.
func (s *PriorityScheduler) Get(ctx context.Context) (Task, bool) {
	done := make(chan struct{})
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				// Broadcast while holding the lock: if the caller's
				// check-then-Wait sequence below hasn't reached Wait
				// yet, it's still holding s.mu, so this blocks until
				// Wait actually releases it — no missed wakeup window.
				s.mu.Lock()
				s.notEmpty.Broadcast()
				s.mu.Unlock()
			case <-done:
			}
		}()
		defer close(done)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.hasTasksLocked() && !s.shutdown {
		if ctx != nil && ctx.Err() != nil {
			return Task{}, false
		}
		s.notEmpty.Wait()
	}
	if s.shutdown && !s.hasTasksLocked() {
		return Task{}, false
	}
	return s.popHighestLocked()
}

// GetNowait returns the highest-priority task without blocking, or
// false if every queue is empty.
func (s *PriorityScheduler) GetNowait() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasTasksLocked() {
		return Task{}, false
	}
	return s.popHighestLocked()
}

// Peek returns the highest-priority task without removing it.
func (s *PriorityScheduler) Peek() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range priorityOrder {
		if q := s.queues[p]; len(q) > 0 {
			return q[0], true
		}
	}
	return Task{}, false
}

// PendingCount returns the total number of queued tasks.
func (s *PriorityScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, q := range s.queues {
		total += len(q)
	}
	return total
}

// PendingByPriority returns per-level queue depths.
func (s *PriorityScheduler) PendingByPriority() map[Priority]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Priority]int, len(s.queues))
	for p, q := range s.queues {
		out[p] = len(q)
	}
	return out
}

// Stats returns submission/processing counters and queue depths.
func (s *PriorityScheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	depths := make(map[Priority]int, len(s.queues))
	for p, q := range s.queues {
		depths[p] = len(q)
	}
	return SchedulerStats{TotalSubmitted: s.submitted, TotalProcessed: s.processed, QueueDepths: depths}
}

// Shutdown marks the scheduler closed and wakes every waiter. When
// cancelPending is true, all queued tasks are drained and returned so
// the caller can decide whether to resubmit them elsewhere.
func (s *PriorityScheduler) Shutdown(cancelPending bool) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = true

	var cancelled []Task
	if cancelPending {
		for p, q := range s.queues {
			cancelled = append(cancelled, q...)
			s.queues[p] = nil
		}
	}
	s.notEmpty.Broadcast()
	return cancelled
}

func (s *PriorityScheduler) hasTasksLocked() bool {
	for _, q := range s.queues {
		if len(q) > 0 {
			return true
		}
	}
	return false
}

func (s *PriorityScheduler) popHighestLocked() (Task, bool) {
	for _, p := range priorityOrder {
		q := s.queues[p]
		if len(q) == 0 {
			continue
		}
		task := q[0]
		s.queues[p] = q[1:]
		s.processed++
		return task, true
	}
	return Task{}, false
}
