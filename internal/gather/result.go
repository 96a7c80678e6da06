// Package gather implements context gathering (spec §4.6): typed
// source primitives (file/grep/bash/glob/symbol), a chunk broker that
// fits gathered sources within a context size budget, and a markdown
// template renderer that aggregates results for LLM consumption.
package gather

import (
	"fmt"
	"time"
)

// Result is the common return type of every gather primitive
// (gatherFile, gatherGrep, gatherBash, gatherGlob, gatherSymbol).
// It carries enough metadata for the broker to estimate chunk sizes
// and for the template renderer to format each source consistently.
type Result struct {
	SourceType SourceType
	SourceRef  string

	Content string

	SizeBytes int
	LineCount int

	Success bool
	Error   string

	DurationMs float64
	GatheredAt time.Time

	Metadata map[string]any
}

// Failed reports whether the gather operation did not succeed.
func (r Result) Failed() bool { return !r.Success }

// SizeKB returns the content size in kilobytes.
func (r Result) SizeKB() float64 { return float64(r.SizeBytes) / 1024 }

// Summary renders a one-line manifest-style description.
func (r Result) Summary() string {
	status := "✓"
	if !r.Success {
		status = "✗"
	}
	size := "-"
	if r.SizeBytes > 0 {
		size = fmt.Sprintf("%.1fKB", r.SizeKB())
	}
	return status + " " + string(r.SourceType) + ": " + r.SourceRef + " (" + size + ")"
}

func errorResult(sourceType SourceType, sourceRef, errMsg string, durationMs float64) Result {
	return Result{
		SourceType: sourceType,
		SourceRef:  sourceRef,
		Success:    false,
		Error:      errMsg,
		DurationMs: durationMs,
		GatheredAt: time.Now().UTC(),
	}
}
