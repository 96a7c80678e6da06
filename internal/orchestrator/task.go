// Package orchestrator routes heterogeneous work through typed worker
// pools under priority and rate constraints, aggregates results through
// a single writer, and exposes metrics — the parallel-execution layer
// between ContextGather/callers and the rest of the system (spec §4.5).
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type distinguishes I/O-bound work (file, subprocess, network, LLM)
// from CPU-bound work (parsing, similarity, hashing).
type Type int

const (
	TypeIOBound Type = iota
	TypeCPUBound
)

func (t Type) String() string {
	if t == TypeCPUBound {
		return "cpu"
	}
	return "io"
}

// Priority orders the scheduler's four FIFO queues. Lower value sorts
// first: CRITICAL before HIGH before NORMAL before BACKGROUND.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityBackground
)

// priorityOrder is the dispatch order the scheduler drains in.
var priorityOrder = []Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityBackground}

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityNormal:
		return "NORMAL"
	case PriorityBackground:
		return "BACKGROUND"
	default:
		return "UNKNOWN"
	}
}

// Status is a task's lifecycle state.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Body is a task's unit of work. It receives a context carrying the
// task's own timeout and returns a result or an error; it must never
// panic — the pool recovers panics into a failed TaskResult, but a body
// that plans for cancellation is expected to honor ctx.Done().
type Body func(ctx context.Context) (any, error)

// Task is an immutable unit of schedulable work. Unlike the fn/args/
// kwargs triple the original orchestrator carries (to stay picklable
// across a process pool), Go tasks close over their arguments directly
// in Body — there is no serialization boundary between goroutines.
type Task struct {
	ID           string
	Type         Type
	Priority     Priority
	Body         Body
	Dependencies []string
	Timeout      time.Duration
	Retries      int
	IsLLMCall    bool
	Name         string
	Command      string
	CreatedAt    time.Time
}

// NewTask builds a task with a fresh ID and a 60s default timeout,
// matching the orchestrator's default (spec §6 "Orchestrator env
// defaults"). Use IOTask/CPUTask for the common cases.
func NewTask(kind Type, priority Priority, body Body) Task {
	return Task{
		ID:        uuid.NewString(),
		Type:      kind,
		Priority:  priority,
		Body:      body,
		Timeout:   60 * time.Second,
		CreatedAt: time.Now(),
	}
}

// IOTask builds an I/O-bound task (file, subprocess, network, LLM).
func IOTask(priority Priority, body Body) Task {
	return NewTask(TypeIOBound, priority, body)
}

// CPUTask builds a CPU-bound task (parsing, similarity, hashing).
func CPUTask(priority Priority, body Body) Task {
	return NewTask(TypeCPUBound, priority, body)
}

// TaskResult is the outcome of one task execution, serializable across
// the aggregator boundary.
type TaskResult struct {
	TaskID      string
	Status      Status
	Result      any
	Err         error
	StartedAt   time.Time
	CompletedAt time.Time
	DurationMs  float64
	Attempt     int
}

// Success reports whether the task completed without error.
func (r TaskResult) Success() bool { return r.Status == StatusCompleted }

// Failed reports whether the task ended in failure (not cancellation).
func (r TaskResult) Failed() bool { return r.Status == StatusFailed }
