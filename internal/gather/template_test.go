package gather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateRenderIncludesBannerManifestAndCorpus(t *testing.T) {
	plan := NewPlan("fix-bug", "understand caching")
	results := []Result{
		{SourceType: SourceFile, SourceRef: "src/cache.go", Content: "package cache\n", SizeBytes: 14, LineCount: 1, Success: true},
		{SourceType: SourceBash, SourceRef: "babel status", Success: false, Error: "REJECTED"},
	}

	out := NewTemplate(plan, 1, 1).Render(results)

	assert.Contains(t, out, "CONTEXT GATHER: fix-bug")
	assert.Contains(t, out, "## MANIFEST")
	assert.Contains(t, out, "## CORPUS")
	assert.Contains(t, out, "[1/2] FILE: src/cache.go")
	assert.Contains(t, out, "```go")
	assert.Contains(t, out, "**ERROR**: REJECTED")
	assert.Contains(t, out, "END CONTEXT GATHER")
}

func TestTemplateRenderShowsChunkInfoWhenMultiChunk(t *testing.T) {
	plan := NewPlan("op", "intent")
	out := NewTemplate(plan, 2, 3).Render(nil)
	assert.Contains(t, out, "Chunk: 2 of 3")
}

func TestLanguageHintFromExtension(t *testing.T) {
	assert.Equal(t, "go", languageHint("internal/gather/plan.go"))
	assert.Equal(t, "", languageHint("CacheError"))
}
