package symbol

import "sort"

// ExclusionSet is the three-tier exclusion registry spec §4.4 requires:
// common patterns, language-specific patterns, and toggleable test-file
// patterns, all mutable and introspectable at runtime. Ported from the
// Python ExclusionConfig's tier design (common / language / test).
type ExclusionSet struct {
	common       map[string]bool
	language     map[string]map[string]bool
	test         map[string]map[string]bool
	includeTests bool
}

// NewExclusionSet builds a registry seeded with the built-in defaults.
func NewExclusionSet() *ExclusionSet {
	e := &ExclusionSet{
		common:   toSet(defaultCommon),
		language: cloneTiers(defaultLanguage),
		test:     cloneTiers(defaultTest),
	}
	return e
}

// Patterns returns the combined, deduplicated, sorted pattern list for a
// language. includeTests overrides the set-level default when non-nil.
func (e *ExclusionSet) Patterns(lang string, includeTests *bool) []string {
	out := map[string]bool{}
	for p := range e.common {
		out[p] = true
	}
	for p := range e.language[lang] {
		out[p] = true
	}
	shouldExcludeTests := !e.includeTests
	if includeTests != nil {
		shouldExcludeTests = !*includeTests
	}
	if shouldExcludeTests {
		for p := range e.test[lang] {
			out[p] = true
		}
	}
	return sortedKeys(out)
}

// AddCommon adds a pattern applied to every language.
func (e *ExclusionSet) AddCommon(pattern string) { e.common[pattern] = true }

// AddLanguage adds a pattern scoped to one language.
func (e *ExclusionSet) AddLanguage(lang, pattern string) {
	if e.language[lang] == nil {
		e.language[lang] = map[string]bool{}
	}
	e.language[lang][pattern] = true
}

// RemoveCommon removes a common pattern, reporting whether it existed.
func (e *ExclusionSet) RemoveCommon(pattern string) bool {
	if !e.common[pattern] {
		return false
	}
	delete(e.common, pattern)
	return true
}

// RemoveLanguage removes a language-scoped pattern, reporting whether it existed.
func (e *ExclusionSet) RemoveLanguage(lang, pattern string) bool {
	if !e.language[lang][pattern] {
		return false
	}
	delete(e.language[lang], pattern)
	return true
}

// SetIncludeTests toggles the set-level default for whether test files
// are indexed.
func (e *ExclusionSet) SetIncludeTests(include bool) { e.includeTests = include }

// IncludeTestsEnabled reports the current set-level default.
func (e *ExclusionSet) IncludeTestsEnabled() bool { return e.includeTests }

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}

func cloneTiers(src map[string][]string) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(src))
	for lang, patterns := range src {
		out[lang] = toSet(patterns)
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var defaultCommon = []string{
	"**/.git/*", "**/.svn/*", "**/.hg/*",
	"**/.idea/*", "**/.vscode/*", "**/*.swp", "**/*.swo",
	"**/build/*", "**/dist/*", "**/out/*",
	"**/docs/_build/*", "**/_site/*",
	"**/coverage/*", "**/htmlcov/*", "**/.coverage",
	"**/logs/*", "**/*.log",
	"**/tmp/*", "**/temp/*", "**/*.tmp",
}

var defaultLanguage = map[string][]string{
	"go": {
		"**/vendor/*", "**/.git/*",
	},
	"python": {
		"**/__pycache__/*", "**/*.pyc", "**/*.pyo",
		"**/.venv/*", "**/venv/*", "**/env/*", "**/.env/*",
		"**/site-packages/*", "**/migrations/*",
		"**/.tox/*", "**/.nox/*", "**/.pytest_cache/*",
		"**/.mypy_cache/*", "**/.ruff_cache/*",
		"**/eggs/*", "**/*.egg-info/*",
	},
	"javascript": {
		"**/node_modules/*", "**/bower_components/*", "**/.npm/*",
		"**/*.min.js", "**/*.bundle.js", "**/vendor/*",
	},
	"typescript": {
		"**/node_modules/*", "**/.next/*", "**/out/*",
		"**/*.d.ts", "**/.turbo/*", "**/.vercel/*",
	},
	"markdown": {},
	"html": {
		"**/*.min.html", "**/vendor/*", "**/dist/*", "**/build/*",
		"**/__templates__/*", "**/template_cache/*",
	},
	"css": {
		"**/*.min.css", "**/vendor/*", "**/node_modules/*",
		"**/dist/*", "**/build/*", "**/*.generated.css", "**/css-modules/*",
	},
}

var defaultTest = map[string][]string{
	"go": {
		"**/*_test.go",
	},
	"python": {
		"**/test_*.py", "**/*_test.py", "**/tests/*", "**/testing/*", "**/conftest.py",
	},
	"javascript": {
		"**/*.test.js", "**/*.spec.js", "**/__tests__/*", "**/test/*",
	},
	"typescript": {
		"**/*.test.ts", "**/*.test.tsx", "**/*.spec.ts", "**/*.spec.tsx",
		"**/__tests__/*", "**/test/*",
	},
}
