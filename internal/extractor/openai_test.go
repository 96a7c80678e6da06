package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktiyab/babel-tool-sub001/internal/babelcfg"
)

func TestNewOpenAIExtractorRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewOpenAIExtractor(babelcfg.RemoteLLMSettings{Provider: "openai"})
	assert.Error(t, err)
}

func TestNewOpenAIExtractorBuildsWithAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-key")

	ex, err := NewOpenAIExtractor(babelcfg.RemoteLLMSettings{Provider: "openai", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", ex.model)
}
