package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// AggregatorStats is an observability snapshot of the aggregator.
type AggregatorStats struct {
	ResultsReceived  int64
	ResultsProcessed int64
	BatchesCommitted int64
	Errors           int64
}

// Pending returns the received-minus-processed backlog.
func (s AggregatorStats) Pending() int64 { return s.ResultsReceived - s.ResultsProcessed }

// ResultAggregator collects TaskResults from worker goroutines into a
// single consumer-drained queue (spec §4.5 "Aggregator (single-writer
// pattern)"): *exactly one logical writer touches each journal at a
// time*, preserving HC1 under parallelism. A Go channel already is the
// thread-safe queue the original builds out of queue.Queue plus a
// lock; Submit is safe from any goroutine, Drain/DrainBlocking/
// CollectByTaskIDs are meant to be called by the one consumer.
type ResultAggregator struct {
	results chan TaskResult

	mu        sync.Mutex
	received  int64
	processed int64
	callbacks []func(TaskResult)
}

// NewResultAggregator builds an aggregator with the given channel
// buffer (how many results can be pending before Submit blocks).
func NewResultAggregator(buffer int) *ResultAggregator {
	if buffer < 1 {
		buffer = 1
	}
	return &ResultAggregator{results: make(chan TaskResult, buffer)}
}

// Submit enqueues a result from any goroutine.
func (a *ResultAggregator) Submit(r TaskResult) {
	a.results <- r
	a.mu.Lock()
	a.received++
	a.mu.Unlock()
}

// Drain pulls every currently available result, stopping as soon as
// one pull would block past timeout — mirrors the original's
// get(timeout)-in-a-loop-until-Empty behavior.
func (a *ResultAggregator) Drain(timeout time.Duration) []TaskResult {
	var out []TaskResult
	for {
		select {
		case r := <-a.results:
			out = append(out, r)
			a.recordProcessed(r)
		case <-time.After(timeout):
			return out
		}
	}
}

// DrainBlocking blocks until exactly count results have arrived or the
// overall timeout elapses, returning whatever arrived.
func (a *ResultAggregator) DrainBlocking(ctx context.Context, count int, timeout time.Duration) []TaskResult {
	deadline := time.Now().Add(timeout)
	var out []TaskResult
	for len(out) < count {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return out
		}
		select {
		case r := <-a.results:
			out = append(out, r)
			a.recordProcessed(r)
		case <-time.After(remaining):
			return out
		case <-ctx.Done():
			return out
		}
	}
	return out
}

// CollectByTaskIDs blocks until a result has arrived for every given
// task ID or timeout elapses, returning whatever was collected.
func (a *ResultAggregator) CollectByTaskIDs(ctx context.Context, taskIDs []string, timeout time.Duration) map[string]TaskResult {
	remaining := make(map[string]bool, len(taskIDs))
	for _, id := range taskIDs {
		remaining[id] = true
	}
	collected := make(map[string]TaskResult, len(taskIDs))
	deadline := time.Now().Add(timeout)

	for len(remaining) > 0 {
		left := time.Until(deadline)
		if left <= 0 {
			return collected
		}
		select {
		case r := <-a.results:
			a.recordProcessed(r)
			if remaining[r.TaskID] {
				collected[r.TaskID] = r
				delete(remaining, r.TaskID)
			}
		case <-time.After(left):
			return collected
		case <-ctx.Done():
			return collected
		}
	}
	return collected
}

func (a *ResultAggregator) recordProcessed(r TaskResult) {
	a.mu.Lock()
	a.processed++
	callbacks := append([]func(TaskResult){}, a.callbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		safeCall(cb, r)
	}
}

func safeCall(cb func(TaskResult), r TaskResult) {
	defer func() { recover() }()
	cb(r)
}

// AddCallback registers an observer invoked synchronously, after each
// drain, with every result. Callbacks must be non-blocking.
func (a *ResultAggregator) AddCallback(cb func(TaskResult)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, cb)
}

// PendingCount returns the number of results waiting to be drained.
func (a *ResultAggregator) PendingCount() int { return len(a.results) }

// Stats returns the aggregator's counters.
func (a *ResultAggregator) Stats() AggregatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AggregatorStats{ResultsReceived: a.received, ResultsProcessed: a.processed}
}

// Clear discards all pending results, returning the number discarded.
func (a *ResultAggregator) Clear() int {
	cleared := 0
	for {
		select {
		case <-a.results:
			cleared++
		default:
			return cleared
		}
	}
}

// BatchWriter is the single writer thread the aggregator hands batched
// results to (spec's "the one permitted writer"). It owns its buffer
// and flush timer entirely inside one goroutine — the same
// single-goroutine-owns-state design the event log's flush manager
// uses, so no buffer/timer state needs a mutex.
type BatchWriter struct {
	writeFn       func([]TaskResult) error
	batchSize     int
	flushInterval time.Duration

	submitCh   chan TaskResult
	shutdownCh chan chan error
	shutdownOnce sync.Once
	started    bool

	mu    sync.Mutex
	stats AggregatorStats
}

// NewBatchWriter builds a writer that flushes writeFn every batchSize
// results or every flushInterval, whichever comes first.
func NewBatchWriter(writeFn func([]TaskResult) error, batchSize int, flushInterval time.Duration) *BatchWriter {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchWriter{
		writeFn:       writeFn,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		submitCh:      make(chan TaskResult, batchSize*4),
		shutdownCh:    make(chan chan error, 1),
	}
}

// Start launches the writer goroutine. Safe to call once.
func (w *BatchWriter) Start() {
	if w.started {
		return
	}
	w.started = true
	go w.run()
}

// Submit hands a result to the writer for batched persistence.
func (w *BatchWriter) Submit(r TaskResult) {
	w.submitCh <- r
	w.mu.Lock()
	w.stats.ResultsReceived++
	w.mu.Unlock()
}

func (w *BatchWriter) run() {
	buffer := make([]TaskResult, 0, w.batchSize)
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if err := w.writeFn(buffer); err != nil {
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		} else {
			w.mu.Lock()
			w.stats.BatchesCommitted++
			w.mu.Unlock()
		}
		buffer = buffer[:0]
	}

	for {
		select {
		case r := <-w.submitCh:
			buffer = append(buffer, r)
			w.mu.Lock()
			w.stats.ResultsProcessed++
			w.mu.Unlock()
			if len(buffer) >= w.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case respCh := <-w.shutdownCh:
		drain:
			for {
				select {
				case r := <-w.submitCh:
					buffer = append(buffer, r)
					w.mu.Lock()
					w.stats.ResultsProcessed++
					w.mu.Unlock()
				default:
					break drain
				}
			}
			flush()
			respCh <- nil
			return
		}
	}
}

// Stop requests a final flush and stops the writer goroutine, waiting
// up to timeout for it to finish.
func (w *BatchWriter) Stop(timeout time.Duration) error {
	var err error
	w.shutdownOnce.Do(func() {
		if !w.started {
			return
		}
		respCh := make(chan error, 1)
		w.shutdownCh <- respCh
		select {
		case err = <-respCh:
		case <-time.After(timeout):
			err = fmt.Errorf("orchestrator: batch writer shutdown timeout after %s", timeout)
		}
	})
	return err
}

// Stats returns the writer's counters.
func (w *BatchWriter) Stats() AggregatorStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
