package symbol

import "regexp"

// NestingStyle tells an extractor how a language expresses containment
// of methods inside classes, so it can track a parent-symbol stack
// without a real parse tree.
type NestingStyle int

const (
	NestingNone   NestingStyle = iota
	NestingIndent              // Python-style: containment by indentation
	NestingBrace               // C-family: containment by brace depth
)

// SymbolQuery matches one line-oriented pattern to a symbol type. Pattern
// must have a named capture group "name"; spec §4.4 calls this "a hook
// or named field" — the named group is the hook.
type SymbolQuery struct {
	Type    Type
	Pattern *regexp.Regexp
}

// LanguageConfig is the per-language registration spec §4.4 requires.
// TreeSitterGrammar is metadata only (see DESIGN.md for why this build
// extracts via regex/AST-lite rather than a real tree-sitter binding).
// Extraction itself lives in internal/extract, which depends on this
// package rather than the reverse.
type LanguageConfig struct {
	Name              string
	Extensions        []string
	TreeSitterGrammar string
	Queries           []SymbolQuery
	MaxFileSize       int64
	ExcludePatterns   []string
	Nesting           NestingStyle
	ContainerTypes    map[Type]bool // symbol types that open a new nesting scope
	CommentPrefix     string        // leading-comment docstring marker, e.g. "//" or "#"

	// ExtractFn performs the language's extraction; Index treats a
	// config without one as unsupported. internal/extract's Default is
	// the shared line-oriented walk (Python, JavaScript, TypeScript);
	// Go, markdown, HTML and CSS register their own functions.
	ExtractFn func(cfg LanguageConfig, path string, content []byte, gitHash string) ([]Symbol, error)
}
