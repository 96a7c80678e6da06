package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktiyab/babel-tool-sub001/internal/babelcfg"
)

func TestNewClaudeExtractorRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewClaudeExtractor(babelcfg.RemoteLLMSettings{Provider: "claude"})
	assert.Error(t, err)
}

func TestNewClaudeExtractorBuildsWithAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-key")

	ex, err := NewClaudeExtractor(babelcfg.RemoteLLMSettings{Provider: "claude", Model: "claude-sonnet-4-5"})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", string(ex.model))
}

func TestExtractJSONTrimsSurroundingProse(t *testing.T) {
	in := "Sure, here you go:\n" + `{"artifacts":[],"meta":{"extractable":false,"reason":"chit chat"}}` + "\nHope that helps!"
	got := extractJSON(in)
	assert.Equal(t, `{"artifacts":[],"meta":{"extractable":false,"reason":"chit chat"}}`, got)
}

func TestExtractJSONReturnsInputWhenNoBraces(t *testing.T) {
	assert.Equal(t, "no json here", extractJSON("no json here"))
}

func TestBuildExtractionPromptIncludesExistingArtifacts(t *testing.T) {
	prompt := buildExtractionPrompt("we should use postgres", []ExistingArtifact{
		{ArtifactType: "decision", Summary: "use sqlite", ArtifactID: "d_abc123"},
	})
	assert.Contains(t, prompt, "use sqlite")
	assert.Contains(t, prompt, "d_abc123")
	assert.Contains(t, prompt, "we should use postgres")
}

func TestBuildExtractionPromptWithoutExistingArtifacts(t *testing.T) {
	prompt := buildExtractionPrompt("just a note", nil)
	assert.Contains(t, prompt, "just a note")
	assert.NotContains(t, prompt, "Existing artifacts")
}
