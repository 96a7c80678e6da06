package symbol

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// ErrUnsupportedLanguage is returned when no LanguageConfig is
// registered for a file's extension.
var ErrUnsupportedLanguage = fmt.Errorf("symbol: unsupported language")

// ErrFileTooLarge is returned when a file exceeds its language config's
// MaxFileSize.
var ErrFileTooLarge = fmt.Errorf("symbol: file too large")

// ParserRegistry holds every registered LanguageConfig, keyed by name
// and by extension, and is the single place new languages are added.
type ParserRegistry struct {
	mu         sync.RWMutex
	byName     map[string]LanguageConfig
	byExt      map[string]string // extension -> language name
	exclusions *ExclusionSet
}

// NewParserRegistry builds an empty registry with default exclusions.
func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{
		byName:     map[string]LanguageConfig{},
		byExt:      map[string]string{},
		exclusions: NewExclusionSet(),
	}
}

// Register adds or replaces a language config.
func (r *ParserRegistry) Register(cfg LanguageConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[cfg.Name] = cfg
	for _, ext := range cfg.Extensions {
		r.byExt[strings.ToLower(ext)] = cfg.Name
	}
}

// Exclusions returns the registry's shared exclusion set.
func (r *ParserRegistry) Exclusions() *ExclusionSet { return r.exclusions }

// Get returns the config for a language name.
func (r *ParserRegistry) Get(name string) (LanguageConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.byName[name]
	return cfg, ok
}

// ForPath resolves the LanguageConfig matching a file's extension.
func (r *ParserRegistry) ForPath(path string) (LanguageConfig, error) {
	ext := strings.ToLower(filepath.Ext(path))
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byExt[ext]
	if !ok {
		return LanguageConfig{}, ErrUnsupportedLanguage
	}
	return r.byName[name], nil
}

// Languages lists every registered language name.
func (r *ParserRegistry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	return out
}
