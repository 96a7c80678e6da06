// Package babelpath discovers a project's .babel directory and names the
// fixed on-disk layout underneath it (spec §6).
package babelpath

import (
	"os"
	"path/filepath"
)

// DirName is the project-local directory babel owns.
const DirName = ".babel"

// Layout names every path within a project's .babel directory. Nothing in
// this package opens or creates these files; it only computes paths that
// eventlog, babelcfg, and symbol consult.
type Layout struct {
	Root string // the project root containing .babel
	Dir  string // <root>/.babel
}

// NewLayout builds a Layout rooted at root without touching the filesystem.
func NewLayout(root string) Layout {
	return Layout{Root: root, Dir: filepath.Join(root, DirName)}
}

// Discover walks up from start looking for an existing .babel directory,
// the same parent-walk shape as the teacher's project-file discovery.
// It does not create anything; callers decide whether to initialize.
func Discover(start string) (Layout, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return NewLayout(dir), true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Layout{}, false
		}
		dir = parent
	}
}

func (l Layout) SharedJournal() string { return filepath.Join(l.Dir, "shared", "events.jsonl") }
func (l Layout) LocalJournal() string  { return filepath.Join(l.Dir, "local", "events.jsonl") }
func (l Layout) GraphDB() string       { return filepath.Join(l.Dir, "graph.db") }
func (l Layout) SymbolCache() string   { return filepath.Join(l.Dir, "symbol_cache.json") }
func (l Layout) ProjectConfig() string { return filepath.Join(l.Dir, "config.yaml") }
func (l Layout) Memos() string         { return filepath.Join(l.Dir, "memos.json") }

// ExtractorQueue is the offline extraction queue's backing file (spec
// §4.7), local-only like the local journal — never synced or tracked.
func (l Layout) ExtractorQueue() string { return filepath.Join(l.Dir, "local", "extractor_queue.json") }

// EnsureDirs creates the shared/ and local/ subdirectories (not the files
// themselves — eventlog creates journals lazily on first append).
func (l Layout) EnsureDirs() error {
	for _, d := range []string{filepath.Join(l.Dir, "shared"), filepath.Join(l.Dir, "local")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// UserConfig returns ~/.babel/config.yaml, the middle layer in spec §6's
// configuration stack: above env vars and defaults, below project config
// and explicit overrides.
func UserConfig() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName, "config.yaml"), nil
}
