package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolatedHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
}

func TestInitCreatesBabelDirAndWiresEnvironment(t *testing.T) {
	isolatedHome(t)
	root := t.TempDir()

	e, err := Init(root)
	require.NoError(t, err)
	defer e.Close()

	assert.DirExists(t, filepath.Join(root, ".babel", "shared"))
	assert.DirExists(t, filepath.Join(root, ".babel", "local"))
	assert.NotNil(t, e.EventLog)
	assert.NotNil(t, e.Graph())
	assert.NotNil(t, e.Resolver)
	assert.NotNil(t, e.Orchestrator)
	assert.NotNil(t, e.Gatherer)
	assert.NotNil(t, e.Symbols)
	assert.NotNil(t, e.Memos)
	assert.NotNil(t, e.OfflineQueue)
	assert.Equal(t, "auto", e.Settings.LLM.Active)
}

func TestOpenFailsWithoutExistingBabelDir(t *testing.T) {
	isolatedHome(t)
	root := t.TempDir()

	_, err := Open(root)
	assert.Error(t, err)
}

func TestOpenFindsBabelDirWalkingUpFromSubdirectory(t *testing.T) {
	isolatedHome(t)
	root := t.TempDir()

	e, err := Init(root)
	require.NoError(t, err)
	e.Close()

	sub := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	opened, err := Open(sub)
	require.NoError(t, err)
	defer opened.Close()
	assert.Equal(t, root, opened.Layout.Root)
}

func TestWithExtractorSetsField(t *testing.T) {
	isolatedHome(t)
	root := t.TempDir()

	e, err := Init(root)
	require.NoError(t, err)
	defer e.Close()

	assert.Nil(t, e.Extractor)
	e.WithExtractor(nil)
	assert.Nil(t, e.Extractor)
}

func TestInitAutoWiresClaudeExtractorWhenKeyPresent(t *testing.T) {
	isolatedHome(t)
	root := t.TempDir()
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-key")
	t.Setenv("BABEL_LLM_ACTIVE", "remote")
	t.Setenv("BABEL_LLM_REMOTE_PROVIDER", "claude")

	e, err := Init(root)
	require.NoError(t, err)
	defer e.Close()

	assert.NotNil(t, e.Extractor)
}

func TestInitLeavesExtractorNilWhenLocalActive(t *testing.T) {
	isolatedHome(t)
	root := t.TempDir()
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-key")
	t.Setenv("BABEL_LLM_ACTIVE", "local")

	e, err := Init(root)
	require.NoError(t, err)
	defer e.Close()

	assert.Nil(t, e.Extractor)
}
