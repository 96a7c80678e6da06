package extract

import "github.com/ktiyab/babel-tool-sub001/internal/symbol"

// RegisterDefaults wires every built-in LanguageConfig into a registry.
// This is the single place a new language's config gets onto the
// index's extension dispatch table.
func RegisterDefaults(r *symbol.ParserRegistry) {
	r.Register(Go())
	r.Register(Python())
	r.Register(JavaScript())
	r.Register(TypeScript())
	r.Register(MarkdownConfig())
	r.Register(HTML())
	r.Register(CSS())
}
