package symbol

import (
	"encoding/json"
	"os"
	"strings"
)

// cacheKey uniquely identifies one file's cached extraction per spec
// §4.4: the cache is keyed by (file_path, git_hash), so any content
// change (new hash) invalidates the entry without needing a diff.
type cacheKey struct {
	FilePath string `json:"file_path"`
	GitHash  string `json:"git_hash"`
}

type cacheEntry struct {
	Key     cacheKey `json:"key"`
	Symbols []Symbol `json:"symbols"`
}

// Cache is the on-disk symbol cache (spec §6: symbol_cache.json).
type Cache struct {
	entries map[string]cacheEntry // keyed by FilePath, latest git_hash wins
}

// NewCache builds an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]cacheEntry{}}
}

// LoadCache reads a cache file; a missing file is treated as empty.
func LoadCache(path string) (*Cache, error) {
	c := NewCache()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []cacheEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		c.entries[e.Key.FilePath] = e
	}
	return c, nil
}

// Save writes the cache to path as a JSON array, sorted implicitly by
// map iteration order (Go's encoding/json marshals deterministically
// per-field, but entry order is not guaranteed; callers that need a
// byte-stable file should sort the result before writing elsewhere).
func (c *Cache) Save(path string) error {
	entries := make([]cacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Get returns the cached symbols for a file if the git hash matches.
func (c *Cache) Get(filePath, gitHash string) ([]Symbol, bool) {
	e, ok := c.entries[filePath]
	if !ok || e.Key.GitHash != gitHash {
		return nil, false
	}
	return e.Symbols, true
}

// Put stores (or replaces) a file's cached symbols for a git hash.
func (c *Cache) Put(filePath, gitHash string, symbols []Symbol) {
	c.entries[filePath] = cacheEntry{Key: cacheKey{FilePath: filePath, GitHash: gitHash}, Symbols: symbols}
}

// Delete drops a file's cache entry entirely (e.g. on file removal).
func (c *Cache) Delete(filePath string) {
	delete(c.entries, filePath)
}

// FindExact looks up a symbol by simple or qualified name (case
// insensitive) across every cached file, without needing a live Index —
// used by the gather package's symbol source, which only has a
// persisted cache on disk to work from.
func (c *Cache) FindExact(name string) (Symbol, bool) {
	lower := strings.ToLower(name)
	for _, e := range c.entries {
		for _, s := range e.Symbols {
			if strings.ToLower(s.Name) == lower || strings.ToLower(s.QualifiedName) == lower {
				return s, true
			}
		}
	}
	return Symbol{}, false
}

// Files lists every file path currently cached.
func (c *Cache) Files() []string {
	out := make([]string, 0, len(c.entries))
	for f := range c.entries {
		out = append(out, f)
	}
	return out
}
