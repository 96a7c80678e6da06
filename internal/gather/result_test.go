package gather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultSummaryFormatsSuccessAndFailure(t *testing.T) {
	ok := Result{SourceType: SourceFile, SourceRef: "a.go", SizeBytes: 2048, Success: true}
	assert.Contains(t, ok.Summary(), "✓ file: a.go (2.0KB)")

	bad := errorResult(SourceFile, "missing.go", "not found", 1.5)
	assert.True(t, bad.Failed())
	assert.Contains(t, bad.Summary(), "✗ file: missing.go (-)")
}

func TestResultSizeKB(t *testing.T) {
	r := Result{SizeBytes: 1536}
	assert.InDelta(t, 1.5, r.SizeKB(), 0.001)
}
