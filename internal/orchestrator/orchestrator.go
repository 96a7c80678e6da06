package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ktiyab/babel-tool-sub001/internal/metrics"
)

// ErrShutDown is returned by Submit/SubmitBatch/MapParallel once the
// orchestrator has been shut down.
var ErrShutDown = fmt.Errorf("orchestrator: shut down")

// Orchestrator is the central coordinator for parallel task execution
// (spec §4.5). It owns a PriorityScheduler, typed Pools, a
// ResultAggregator, and a metrics.Collector, and wires them with a
// dispatch loop: Submit enqueues onto the scheduler, and a background
// goroutine drains the scheduler in priority order and routes each
// task into the pool matching its Type. The original construction
// builds a PriorityScheduler but never actually routes submissions
// through it (submit() goes straight to the pools); this port fixes
// that gap so priority ordering is honored end to end, per spec §4.5's
// "get() returns the earliest task from the highest non-empty queue"
// contract and Testable Property 8 (priority ordering).
type Orchestrator struct {
	config Config

	scheduler  *PriorityScheduler
	ioPool     *Pool
	cpuPool    *Pool
	aggregator *ResultAggregator
	metrics    *metrics.Collector

	dispatchCancel context.CancelFunc
	dispatchWg     sync.WaitGroup

	mu       sync.Mutex
	shutdown bool
}

// New builds an orchestrator. A nil metrics collector gets a fresh
// no-op-backed one. When cfg.Enabled is false, the returned
// orchestrator runs every submission synchronously in the caller's
// goroutine (spec §4.5 "degraded mode"); the pools/scheduler/aggregator
// are never constructed.
func New(cfg Config, mc *metrics.Collector) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if mc == nil {
		mc = metrics.NewCollector(nil)
	}
	o := &Orchestrator{config: cfg, metrics: mc}
	if !cfg.Enabled {
		return o, nil
	}

	rl := NewRateLimiter(cfg.LLMConcurrent, cfg.LLMRateLimit)
	o.scheduler = NewPriorityScheduler()
	o.ioPool = newPool("io", cfg.IOWorkers, rl, mc)
	o.cpuPool = newPool("cpu", cfg.CPUWorkers, nil, mc)
	o.aggregator = NewResultAggregator(1024)

	ctx, cancel := context.WithCancel(context.Background())
	o.dispatchCancel = cancel
	o.dispatchWg.Add(1)
	go o.dispatchLoop(ctx)

	return o, nil
}

// Enabled reports whether parallelization is active.
func (o *Orchestrator) Enabled() bool { return o.config.Enabled }

// Config returns the orchestrator's configuration.
func (o *Orchestrator) Config() Config { return o.config }

// dispatchLoop is the only goroutine that calls scheduler.Get; it
// hands every task it pops to the pool matching its Type, then relays
// that pool's eventual result into the aggregator.
func (o *Orchestrator) dispatchLoop(ctx context.Context) {
	defer o.dispatchWg.Done()
	for {
		task, ok := o.scheduler.Get(ctx)
		if !ok {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		o.metrics.SetQueueDepth(task.Priority.String(), o.scheduler.PendingByPriority()[task.Priority])

		pool := o.ioPool
		if task.Type == TypeCPUBound {
			pool = o.cpuPool
		}
		fut, err := pool.Submit(ctx, task)
		if err != nil {
			o.aggregator.Submit(TaskResult{TaskID: task.ID, Status: StatusFailed, Err: err})
			continue
		}

		go func(fut *Future, taskID string) {
			r, err := fut.Result(ctx)
			if err != nil {
				r = TaskResult{TaskID: taskID, Status: StatusCancelled, Err: err}
			}
			o.aggregator.Submit(r)
		}(fut, task.ID)
	}
}

// Submit enqueues a task for parallel execution (spec §4.5 "submit").
// In degraded mode (enabled=false), it executes the task synchronously
// in the caller's goroutine and discards its result: nothing reaches
// DrainResults or CollectResults.
func (o *Orchestrator) Submit(task Task) error {
	o.mu.Lock()
	shutdown := o.shutdown
	o.mu.Unlock()
	if shutdown {
		return ErrShutDown
	}

	o.metrics.RecordSubmitted(task.Type.String(), task.Priority.String())

	if !o.config.Enabled {
		_ = o.executeSequential(task)
		return nil
	}
	return o.scheduler.Submit(task)
}

// SubmitBatch enqueues multiple tasks atomically, preserving relative
// priority order (spec §4.5 "submit_batch").
func (o *Orchestrator) SubmitBatch(tasks []Task) error {
	o.mu.Lock()
	shutdown := o.shutdown
	o.mu.Unlock()
	if shutdown {
		return ErrShutDown
	}

	for _, t := range tasks {
		o.metrics.RecordSubmitted(t.Type.String(), t.Priority.String())
	}

	if !o.config.Enabled {
		for _, t := range tasks {
			_ = o.executeSequential(t)
		}
		return nil
	}
	return o.scheduler.SubmitBatch(tasks)
}

// executeSequential runs a task's body directly in the caller's
// goroutine. Submit and SubmitBatch use it in degraded mode
// (Enabled=false); no other path falls back to it.
func (o *Orchestrator) executeSequential(task Task) TaskResult {
	ctx := context.Background()
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}
	result, err := func() (res any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("orchestrator: task %s panicked: %v", task.ID, rec)
			}
		}()
		return task.Body(ctx)
	}()

	tr := TaskResult{TaskID: task.ID}
	if err != nil {
		tr.Status = StatusFailed
		tr.Err = err
	} else {
		tr.Status = StatusCompleted
		tr.Result = result
	}
	o.metrics.RecordCompleted(task.Type.String(), tr.Status.String(), 0, false)
	return tr
}

// MapParallel applies fn to every item, returning results in input
// order; CPU-kind uses the pool's native Map, I/O-kind submits one
// task per item through the scheduler and collects results by ID
// (spec §4.5 "map_parallel").
func (o *Orchestrator) MapParallel(ctx context.Context, kind Type, priority Priority, items []any, fn func(context.Context, any) (any, error)) ([]any, error) {
	if len(items) == 0 {
		return nil, nil
	}

	o.mu.Lock()
	shutdown := o.shutdown
	o.mu.Unlock()
	if shutdown {
		return nil, ErrShutDown
	}

	if !o.config.Enabled {
		out := make([]any, len(items))
		for i, item := range items {
			r, err := fn(ctx, item)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}

	if kind == TypeCPUBound {
		return o.cpuPool.Map(ctx, items, fn)
	}

	tasks := make([]Task, len(items))
	for i, item := range items {
		item := item
		tasks[i] = IOTask(priority, func(ctx context.Context) (any, error) { return fn(ctx, item) })
	}
	if err := o.scheduler.SubmitBatch(tasks); err != nil {
		return nil, err
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	collected := o.aggregator.CollectByTaskIDs(ctx, ids, o.config.TaskTimeout)

	out := make([]any, len(items))
	for i, id := range ids {
		r, ok := collected[id]
		if !ok {
			return nil, fmt.Errorf("orchestrator: task %s did not complete before timeout", id)
		}
		if !r.Success() {
			return nil, fmt.Errorf("orchestrator: task failed: %w", r.Err)
		}
		out[i] = r.Result
	}
	return out, nil
}

// DrainResults returns every result currently sitting in the
// aggregator without blocking past timeout.
func (o *Orchestrator) DrainResults(timeout time.Duration) []TaskResult {
	if !o.config.Enabled || o.aggregator == nil {
		return nil
	}
	return o.aggregator.Drain(timeout)
}

// CollectResults blocks until every requested task ID has completed or
// timeout elapses.
func (o *Orchestrator) CollectResults(ctx context.Context, taskIDs []string, timeout time.Duration) map[string]TaskResult {
	if !o.config.Enabled || o.aggregator == nil {
		return map[string]TaskResult{}
	}
	return o.aggregator.CollectByTaskIDs(ctx, taskIDs, timeout)
}

// MetricsSummary returns the orchestrator's metrics snapshot.
func (o *Orchestrator) MetricsSummary() metrics.Summary {
	return o.metrics.Summary()
}

// PendingCount returns the scheduler's current backlog.
func (o *Orchestrator) PendingCount() int {
	if !o.config.Enabled || o.scheduler == nil {
		return 0
	}
	return o.scheduler.PendingCount()
}

// Shutdown stops accepting new work. When wait is true, it blocks
// until in-flight pool work and the dispatch loop finish. When
// cancelPending is true, it also drains and returns unstarted tasks so
// the caller can choose to resubmit them (spec §4.5 "Cancellation &
// timeouts").
func (o *Orchestrator) Shutdown(wait bool, cancelPending bool) []Task {
	o.mu.Lock()
	if o.shutdown {
		o.mu.Unlock()
		return nil
	}
	o.shutdown = true
	o.mu.Unlock()

	if !o.config.Enabled {
		return nil
	}

	cancelled := o.scheduler.Shutdown(cancelPending)
	if o.dispatchCancel != nil {
		o.dispatchCancel()
	}
	if wait {
		o.dispatchWg.Wait()
		o.ioPool.Shutdown(true)
		o.cpuPool.Shutdown(true)
	} else {
		o.ioPool.Shutdown(false)
		o.cpuPool.Shutdown(false)
	}
	return cancelled
}
