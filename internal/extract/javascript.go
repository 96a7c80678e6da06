package extract

import (
	"regexp"

	"github.com/ktiyab/babel-tool-sub001/internal/symbol"
)

// javascriptQueries is shared by JavaScript and TypeScript (which
// extends it with interface/type/enum patterns), matching the Python
// source's JAVASCRIPT_QUERIES re-export.
var javascriptQueries = []symbol.SymbolQuery{
	{Type: symbol.TypeClass, Pattern: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?class\s+(?P<name>\w+)`)},
	{Type: symbol.TypeFunction, Pattern: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s+(?P<name>\w+)\s*\(`)},
	{Type: symbol.TypeFunction, Pattern: regexp.MustCompile(`^\s*(?:export\s+)?const\s+(?P<name>\w+)\s*=\s*(?:async\s*)?\([^)]*\)\s*=>`)},
	{Type: symbol.TypeMethod, Pattern: regexp.MustCompile(`^\s*(?:async\s+)?(?:static\s+)?(?:get\s+|set\s+)?(?P<name>\w+)\s*\([^)]*\)\s*\{`)},
}

// JavaScript registers the JavaScript LanguageConfig. Brace nesting
// makes a method declared inside a class body attach as TypeMethod
// automatically via Default's container stack.
func JavaScript() symbol.LanguageConfig {
	return symbol.LanguageConfig{
		Name:              "javascript",
		Extensions:        []string{".js", ".jsx"},
		TreeSitterGrammar: "tree-sitter-javascript",
		Nesting:           symbol.NestingBrace,
		CommentPrefix:     "//",
		MaxFileSize:       2 << 20,
		ContainerTypes:    map[symbol.Type]bool{symbol.TypeClass: true},
		Queries:           javascriptQueries,
		ExtractFn:         Default,
	}
}
