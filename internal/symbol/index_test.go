package symbol_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktiyab/babel-tool-sub001/internal/symbol"
)

func pythonLikeConfig() symbol.LanguageConfig {
	return symbol.LanguageConfig{
		Name:           "toy",
		Extensions:     []string{".toy"},
		Nesting:        symbol.NestingIndent,
		ContainerTypes: map[symbol.Type]bool{symbol.TypeClass: true},
		Queries: []symbol.SymbolQuery{
			{Type: symbol.TypeClass, Pattern: regexp.MustCompile(`^class\s+(?P<name>\w+)`)},
			{Type: symbol.TypeFunction, Pattern: regexp.MustCompile(`^\s*def\s+(?P<name>\w+)`)},
		},
		ExtractFn: func(cfg symbol.LanguageConfig, path string, content []byte, gitHash string) ([]symbol.Symbol, error) {
			return []symbol.Symbol{{SymbolType: symbol.TypeFunction, Name: "stub_" + gitHash, QualifiedName: "stub_" + gitHash, FilePath: path, GitHash: gitHash}}, nil
		},
	}
}

func TestIndexUsesCacheWhenGitHashUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.toy")
	require.NoError(t, os.WriteFile(path, []byte("class A: pass"), 0o644))

	registry := symbol.NewParserRegistry()
	registry.Register(pythonLikeConfig())

	idx := symbol.NewIndex(registry, nil)
	require.NoError(t, idx.Index([]string{path}, "h1"))

	matches := idx.Query("stub_h1", symbol.TypeFunction)
	require.NotEmpty(t, matches)

	require.NoError(t, os.WriteFile(path, []byte("class A: pass\n# changed but same hash passed"), 0o644))
	require.NoError(t, idx.Index([]string{path}, "h1"))
	matches = idx.Query("stub_h1", symbol.TypeFunction)
	assert.Len(t, matches, 1)
}

func TestIncrementalUpdateReplacesOnlyChangedFile(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.toy")
	pathB := filepath.Join(dir, "b.toy")
	require.NoError(t, os.WriteFile(pathA, []byte("class A: pass"), 0o644))
	require.NoError(t, os.WriteFile(pathB, []byte("class B: pass"), 0o644))

	registry := symbol.NewParserRegistry()
	registry.Register(pythonLikeConfig())
	idx := symbol.NewIndex(registry, nil)
	require.NoError(t, idx.Index([]string{pathA, pathB}, "h1"))

	require.NoError(t, idx.IncrementalUpdate([]string{pathA}, "h2"))

	// B's unchanged "stub_h1" shares the "stub" token with the query,
	// so it still matches, ranked below A's re-extracted symbol.
	matches := idx.Query("stub_h2", symbol.TypeFunction)
	require.Len(t, matches, 2)
	assert.Equal(t, pathA, matches[0].Symbol.FilePath)
	assert.Equal(t, "stub_h1", matches[1].Symbol.Name)
}

func TestExclusionSetAppliesTieredPatterns(t *testing.T) {
	set := symbol.NewExclusionSet()
	patterns := set.Patterns("python", nil)
	assert.Contains(t, patterns, "**/__pycache__/*")
	assert.Contains(t, patterns, "**/.git/*")
	assert.Contains(t, patterns, "**/test_*.py")

	includeTests := true
	patterns = set.Patterns("python", &includeTests)
	assert.NotContains(t, patterns, "**/test_*.py")

	set.AddLanguage("python", "**/scratch/*")
	assert.Contains(t, set.Patterns("python", nil), "**/scratch/*")
}
