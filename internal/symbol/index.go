// Package symbol implements the language-agnostic code-symbol index
// (spec §4.4): per-language configuration, extraction, caching, and
// token-scored query, feeding symbol-level retrieval into ContextGather.
package symbol

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ktiyab/babel-tool-sub001/internal/tokenizer"
)

// Match pairs a symbol with its query score, best first.
type Match struct {
	Symbol Symbol
	Score  float64
}

// Index is the SymbolIndex (spec §4.4): registered languages, a
// persisted cache, and the live symbol table it serves queries from.
type Index struct {
	mu       sync.RWMutex
	registry *ParserRegistry
	cache    *Cache
	bySym    map[string][]Symbol // file_path -> symbols, current generation
}

// NewIndex builds an index over a registry and a (possibly freshly
// loaded) cache.
func NewIndex(registry *ParserRegistry, cache *Cache) *Index {
	if cache == nil {
		cache = NewCache()
	}
	return &Index{registry: registry, cache: cache, bySym: map[string][]Symbol{}}
}

// Index extracts symbols for every path, reusing the cache when a
// file's git hash is unchanged (spec §4.4 Cache).
func (idx *Index) Index(paths []string, gitHash string) error {
	for _, p := range paths {
		if err := idx.indexOne(p, gitHash); err != nil && err != ErrUnsupportedLanguage {
			return err
		}
	}
	return nil
}

func (idx *Index) indexOne(path, gitHash string) error {
	if cached, ok := idx.cache.Get(path, gitHash); ok {
		idx.mu.Lock()
		idx.bySym[path] = cached
		idx.mu.Unlock()
		return nil
	}

	cfg, err := idx.registry.ForPath(path)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if cfg.MaxFileSize > 0 && int64(len(content)) > cfg.MaxFileSize {
		return ErrFileTooLarge
	}
	if cfg.ExtractFn == nil {
		return ErrUnsupportedLanguage
	}

	symbols, err := cfg.ExtractFn(cfg, path, content, gitHash)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	idx.bySym[path] = symbols
	idx.mu.Unlock()
	idx.cache.Put(path, gitHash, symbols)
	return nil
}

// IncrementalUpdate reindexes only the given changed paths, replacing
// their prior cache entries (spec §9 S9).
func (idx *Index) IncrementalUpdate(changedPaths []string, gitHash string) error {
	for _, p := range changedPaths {
		idx.cache.Delete(p)
	}
	return idx.Index(changedPaths, gitHash)
}

// Remove drops a file's symbols entirely (e.g. on file deletion).
func (idx *Index) Remove(path string) {
	idx.mu.Lock()
	delete(idx.bySym, path)
	idx.mu.Unlock()
	idx.cache.Delete(path)
}

// Query returns symbols ranked by token score against name, optionally
// filtered to one symbol kind.
func (idx *Index) Query(name string, kind Type) []Match {
	queryTokens := tokenizer.Name(name)
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var matches []Match
	for _, symbols := range idx.bySym {
		for _, s := range symbols {
			if kind != "" && s.SymbolType != kind {
				continue
			}
			score := tokenizer.MatchScore(queryTokens, s.Name) +
				0.5*tokenizer.MatchScore(queryTokens, s.QualifiedName)
			if score > 0 {
				matches = append(matches, Match{Symbol: s, Score: score})
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Symbol.QualifiedName < matches[j].Symbol.QualifiedName
	})
	return matches
}

// FindExact returns the first symbol whose simple or qualified name
// matches name case-insensitively — used by the gather_symbol source
// primitive (spec §4.6).
func (idx *Index) FindExact(name string) (Symbol, bool) {
	lower := strings.ToLower(name)
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var paths []string
	for p := range idx.bySym {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		for _, s := range idx.bySym[p] {
			if strings.ToLower(s.Name) == lower || strings.ToLower(s.QualifiedName) == lower {
				return s, true
			}
		}
	}
	return Symbol{}, false
}

// Registry exposes the index's language registry (for Exclusions()
// lookups by callers walking the filesystem).
func (idx *Index) Registry() *ParserRegistry { return idx.registry }

// Save persists the cache to disk.
func (idx *Index) Save(path string) error { return idx.cache.Save(path) }
