package babelcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvidersRegistryHasLocalAndRemoteEntries(t *testing.T) {
	assert.True(t, Providers["ollama"].IsLocal)
	assert.False(t, Providers["claude"].IsLocal)
	assert.Equal(t, "ANTHROPIC_API_KEY", Providers["claude"].EnvKey)
}

func TestLocalAndRemoteProviderKeysPartitionRegistry(t *testing.T) {
	local := localProviderKeys()
	remote := remoteProviderKeys()
	assert.Contains(t, local, "ollama")
	assert.Contains(t, remote, "claude")
	assert.Contains(t, remote, "openai")
	assert.NotContains(t, remote, "ollama")
}
