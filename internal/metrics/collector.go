package metrics

import (
	"sync"
	"time"
)

// Collector aggregates the orchestrator's observability surface (spec
// §4.5): submission/completion counters by kind and priority, latency
// histograms by kind, and queue-depth/worker gauges — one struct
// standing in for the original MetricsCollector. It takes plain string
// keys (task kind, priority name, status name) rather than orchestrator
// types, so this package has no dependency on internal/orchestrator.
type Collector struct {
	mu sync.Mutex

	submitted map[string]*Counter // "kind:priority" and "total"
	completed map[string]*Counter // "kind:status" and "total:status"
	errors    map[string]*Counter // "kind:failed" and "total:failed"

	latency map[string]*Histogram // by kind, plus "all"

	queueDepth    map[string]*Gauge // by priority
	activeWorkers map[string]*Gauge // by pool

	startedAt time.Time
	recorder  Recorder
}

// NewCollector builds an empty collector. A nil recorder disables OTel
// mirroring; use NoopRecorder() or an otel-backed Recorder in
// production wiring.
func NewCollector(recorder Recorder) *Collector {
	if recorder == nil {
		recorder = NoopRecorder()
	}
	return &Collector{
		submitted:     map[string]*Counter{},
		completed:     map[string]*Counter{},
		errors:        map[string]*Counter{},
		latency:       map[string]*Histogram{},
		queueDepth:    map[string]*Gauge{},
		activeWorkers: map[string]*Gauge{},
		startedAt:     time.Now(),
		recorder:      recorder,
	}
}

func (c *Collector) counter(m map[string]*Counter, key string) *Counter {
	if c, ok := m[key]; ok {
		return c
	}
	nc := NewCounter()
	m[key] = nc
	return nc
}

func (c *Collector) histogram(key string) *Histogram {
	if h, ok := c.latency[key]; ok {
		return h
	}
	h := NewHistogram()
	c.latency[key] = h
	return h
}

func (c *Collector) gauge(m map[string]*Gauge, key string) *Gauge {
	if g, ok := m[key]; ok {
		return g
	}
	g := NewGauge()
	m[key] = g
	return g
}

// RecordSubmitted records one task submission.
func (c *Collector) RecordSubmitted(kind, priority string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter(c.submitted, kind+":"+priority).Inc(1)
	c.counter(c.submitted, "total").Inc(1)
	c.recorder.RecordCounter("babel.orchestrator.tasks_submitted", 1, map[string]string{"kind": kind, "priority": priority})
}

// RecordCompleted records one task completion, with its duration when known.
func (c *Collector) RecordCompleted(kind, status string, durationMs float64, hasDuration bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter(c.completed, kind+":"+status).Inc(1)
	c.counter(c.completed, "total:"+status).Inc(1)
	if hasDuration {
		c.histogram(kind).Record(durationMs)
		c.histogram("all").Record(durationMs)
		c.recorder.RecordHistogram("babel.orchestrator.task_latency_ms", durationMs, map[string]string{"kind": kind})
	}
	if status == "failed" {
		c.counter(c.errors, kind+":failed").Inc(1)
		c.counter(c.errors, "total:failed").Inc(1)
	}
	c.recorder.RecordCounter("babel.orchestrator.tasks_completed", 1, map[string]string{"kind": kind, "status": status})
}

// RecordError records a standalone error not tied to a TaskResult.
func (c *Collector) RecordError(kind, errorKind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter(c.errors, kind+":"+errorKind).Inc(1)
	c.counter(c.errors, "total").Inc(1)
	c.recorder.RecordCounter("babel.orchestrator.errors", 1, map[string]string{"kind": kind, "error_kind": errorKind})
}

// SetQueueDepth sets one priority's queue-depth gauge.
func (c *Collector) SetQueueDepth(priority string, depth int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauge(c.queueDepth, priority).Set(float64(depth))
	c.recorder.RecordGauge("babel.orchestrator.queue_depth", float64(depth), map[string]string{"priority": priority})
}

// SetActiveWorkers sets one pool's active-worker gauge.
func (c *Collector) SetActiveWorkers(pool string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauge(c.activeWorkers, pool).Set(float64(count))
	c.recorder.RecordGauge("babel.orchestrator.active_workers", float64(count), map[string]string{"pool": pool})
}

// TaskSummary is the aggregate task-count view inside Summary.
type TaskSummary struct {
	Submitted   int64
	Completed   int64
	Failed      int64
	SuccessRate float64
}

// Summary is a full point-in-time snapshot (spec §4.5 "summary API").
type Summary struct {
	UptimeSeconds float64
	Tasks         TaskSummary
	Latency       map[string]HistogramSnapshot
	Queues        map[string]int64
	Workers       map[string]int64
}

// Summary returns a snapshot plus derived throughput-friendly totals.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	uptime := time.Since(c.startedAt).Seconds()
	submittedTotal := int64(0)
	if ct, ok := c.submitted["total"]; ok {
		submittedTotal = ct.Value()
	}
	var completedTotal, failedTotal int64
	for k, ct := range c.completed {
		if len(k) > 6 && k[:6] == "total:" {
			completedTotal += ct.Value()
		}
	}
	if ct, ok := c.errors["total:failed"]; ok {
		failedTotal = ct.Value()
	}

	successRate := 0.0
	if completedTotal > 0 {
		successRate = float64(completedTotal-failedTotal) / float64(completedTotal) * 100
	}

	latency := make(map[string]HistogramSnapshot, len(c.latency))
	for k, h := range c.latency {
		latency[k] = h.Snapshot()
	}
	queues := make(map[string]int64, len(c.queueDepth))
	for k, g := range c.queueDepth {
		queues[k] = int64(g.Value())
	}
	workers := make(map[string]int64, len(c.activeWorkers))
	for k, g := range c.activeWorkers {
		workers[k] = int64(g.Value())
	}

	return Summary{
		UptimeSeconds: uptime,
		Tasks: TaskSummary{
			Submitted:   submittedTotal,
			Completed:   completedTotal,
			Failed:      failedTotal,
			SuccessRate: successRate,
		},
		Latency: latency,
		Queues:  queues,
		Workers: workers,
	}
}

// Throughput reports submitted/completed tasks per second over a
// window bounded by actual uptime (spec §4.5).
func (c *Collector) Throughput(windowSeconds float64) (submittedPerSec, completedPerSec float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	uptime := time.Since(c.startedAt).Seconds()
	window := uptime
	if windowSeconds < window {
		window = windowSeconds
	}
	if window <= 0 {
		return 0, 0
	}

	submitted := int64(0)
	if ct, ok := c.submitted["total"]; ok {
		submitted = ct.Value()
	}
	var completed int64
	for k, ct := range c.completed {
		if len(k) >= len("total:completed") && k[:len("total:completed")] == "total:completed" {
			completed += ct.Value()
		}
	}
	return float64(submitted) / window, float64(completed) / window
}

// Reset clears every metric and restarts the uptime clock.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitted = map[string]*Counter{}
	c.completed = map[string]*Counter{}
	c.errors = map[string]*Counter{}
	c.latency = map[string]*Histogram{}
	c.queueDepth = map[string]*Gauge{}
	c.activeWorkers = map[string]*Gauge{}
	c.startedAt = time.Now()
}
