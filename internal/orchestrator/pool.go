package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ktiyab/babel-tool-sub001/internal/metrics"
)

// ErrPoolShutDown is returned by Submit/Map once a pool has shut down.
var ErrPoolShutDown = fmt.Errorf("orchestrator: pool is shut down")

// PoolStats is a point-in-time view of one pool's load.
type PoolStats struct {
	ActiveTasks    int64
	CompletedTasks int64
	FailedTasks    int64
	TotalDurationMs float64
}

// AvgDurationMs is the mean completed-task duration.
func (s PoolStats) AvgDurationMs() float64 {
	if s.CompletedTasks == 0 {
		return 0
	}
	return s.TotalDurationMs / float64(s.CompletedTasks)
}

// Future is a handle to a task's in-flight result (spec §4.5
// "submit(task) → future").
type Future struct {
	resultCh chan TaskResult
}

// Result blocks until the task completes or ctx is done.
func (f *Future) Result(ctx context.Context) (TaskResult, error) {
	select {
	case r := <-f.resultCh:
		return r, nil
	case <-ctx.Done():
		return TaskResult{}, ctx.Err()
	}
}

// Pool is a bounded worker pool shared by IOPool and CPUPool. Both are
// goroutine pools in this port: Go has no GIL to route around, so the
// original's thread-pool/process-pool split collapses to one
// implementation sized differently per kind (see DESIGN.md for the
// CPU-pool-as-goroutines decision) — rateLimiter is non-nil only for
// the IO pool, and is consulted only when a task's IsLLMCall is set.
type Pool struct {
	name        string
	sem         chan struct{}
	rateLimiter *RateLimiter
	metrics     *metrics.Collector

	mu       sync.Mutex
	stats    PoolStats
	shutdown bool
	wg       sync.WaitGroup
}

func newPool(name string, workers int, rl *RateLimiter, mc *metrics.Collector) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{name: name, sem: make(chan struct{}, workers), rateLimiter: rl, metrics: mc}
}

// Submit runs task asynchronously, returning a Future for its result.
func (p *Pool) Submit(ctx context.Context, task Task) (*Future, error) {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return nil, ErrPoolShutDown
	}
	p.stats.ActiveTasks++
	p.mu.Unlock()

	fut := &Future{resultCh: make(chan TaskResult, 1)}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fut.resultCh <- p.execute(ctx, task)
	}()
	return fut, nil
}

// Map applies fn to every item in parallel using this pool's worker
// budget, returning results in input order; a single failure aborts
// the map with the first encountered error (spec §4.5 "map_parallel").
func (p *Pool) Map(ctx context.Context, items []any, fn func(context.Context, any) (any, error)) ([]any, error) {
	if len(items) == 0 {
		return nil, nil
	}
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return nil, ErrPoolShutDown
	}
	p.mu.Unlock()

	results := make([]any, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			select {
			case p.sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-p.sem }()

			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pool) execute(ctx context.Context, task Task) TaskResult {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		p.onComplete(false, 0)
		return TaskResult{TaskID: task.ID, Status: StatusCancelled, Err: ctx.Err(), StartedAt: time.Now(), CompletedAt: time.Now()}
	}
	defer func() { <-p.sem }()

	rateLimited := task.IsLLMCall && p.rateLimiter != nil
	if rateLimited {
		if !p.rateLimiter.Acquire(ctx, task.Timeout) {
			p.onComplete(false, 0)
			now := time.Now()
			return TaskResult{TaskID: task.ID, Status: StatusFailed, Err: fmt.Errorf("orchestrator: rate limit timeout"), StartedAt: now, CompletedAt: now}
		}
		defer p.rateLimiter.Release()
	}

	taskCtx := ctx
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	started := time.Now()
	result, err := p.runBody(taskCtx, task)
	completed := time.Now()
	durationMs := completed.Sub(started).Seconds() * 1000

	tr := TaskResult{TaskID: task.ID, StartedAt: started, CompletedAt: completed, DurationMs: durationMs, Attempt: 1}
	if err != nil {
		tr.Status = StatusFailed
		tr.Err = err
	} else {
		tr.Status = StatusCompleted
		tr.Result = result
	}

	if p.metrics != nil {
		p.metrics.RecordCompleted(task.Type.String(), tr.Status.String(), durationMs, true)
	}
	p.onComplete(tr.Success(), durationMs)
	return tr
}

// runBody invokes task.Body, converting a panic into a failed result
// the way the original's bare except-Exception does — a worker
// exception must never propagate to the orchestrator (spec §4.5
// "Failure semantics").
func (p *Pool) runBody(ctx context.Context, task Task) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("orchestrator: task %s panicked: %v", task.ID, rec)
		}
	}()
	return task.Body(ctx)
}

func (p *Pool) onComplete(success bool, durationMs float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.ActiveTasks--
	if success {
		p.stats.CompletedTasks++
		p.stats.TotalDurationMs += durationMs
	} else {
		p.stats.FailedTasks++
	}
}

// Stats returns the pool's current counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// ActiveCount returns the number of tasks currently executing.
func (p *Pool) ActiveCount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats.ActiveTasks
}

// Shutdown marks the pool closed. When wait is true it blocks until
// every in-flight task's goroutine has returned.
func (p *Pool) Shutdown(wait bool) {
	p.mu.Lock()
	p.shutdown = true
	p.mu.Unlock()
	if wait {
		p.wg.Wait()
	}
}
