package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorSummaryTracksSubmittedCompletedAndFailed(t *testing.T) {
	c := NewCollector(nil)
	c.RecordSubmitted("io", "HIGH")
	c.RecordSubmitted("io", "NORMAL")
	c.RecordCompleted("io", "completed", 42, true)
	c.RecordCompleted("io", "failed", 5, true)

	s := c.Summary()
	assert.EqualValues(t, 2, s.Tasks.Submitted)
	assert.EqualValues(t, 2, s.Tasks.Completed)
	assert.EqualValues(t, 1, s.Tasks.Failed)
	assert.InDelta(t, 50.0, s.Tasks.SuccessRate, 0.01)
	assert.EqualValues(t, 2, s.Latency["io"].Count)
}

func TestHistogramBucketsLatencyCorrectly(t *testing.T) {
	h := NewHistogram()
	h.Record(5)
	h.Record(75)
	h.Record(6000)

	snap := h.Snapshot()
	assert.EqualValues(t, 3, snap.Count)
	assert.EqualValues(t, 1, snap.Buckets["lt_10ms"])
	assert.EqualValues(t, 1, snap.Buckets["lt_100ms"])
	assert.EqualValues(t, 1, snap.Buckets["gt_5s"])
}

func TestQueueDepthAndWorkerGauges(t *testing.T) {
	c := NewCollector(nil)
	c.SetQueueDepth("CRITICAL", 3)
	c.SetActiveWorkers("io", 4)

	s := c.Summary()
	assert.EqualValues(t, 3, s.Queues["CRITICAL"])
	assert.EqualValues(t, 4, s.Workers["io"])
}

func TestResetClearsAllMetrics(t *testing.T) {
	c := NewCollector(nil)
	c.RecordSubmitted("io", "HIGH")
	c.Reset()

	s := c.Summary()
	assert.EqualValues(t, 0, s.Tasks.Submitted)
}
