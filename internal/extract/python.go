package extract

import (
	"regexp"

	"github.com/ktiyab/babel-tool-sub001/internal/symbol"
)

// Python registers the Python LanguageConfig: indentation-based
// containment, so a `def` nested under a `class` becomes a method
// (mirrors CodeSymbolStore.parse_file's class/function/method split).
func Python() symbol.LanguageConfig {
	return symbol.LanguageConfig{
		Name:              "python",
		Extensions:        []string{".py"},
		TreeSitterGrammar: "tree-sitter-python",
		Nesting:           symbol.NestingIndent,
		CommentPrefix:     "#",
		MaxFileSize:       2 << 20,
		ContainerTypes:    map[symbol.Type]bool{symbol.TypeClass: true},
		Queries: []symbol.SymbolQuery{
			{Type: symbol.TypeClass, Pattern: regexp.MustCompile(`^\s*class\s+(?P<name>\w+)\s*[:(]`)},
			{Type: symbol.TypeFunction, Pattern: regexp.MustCompile(`^\s*(?:async\s+)?def\s+(?P<name>\w+)\s*\(`)},
		},
		ExtractFn: Default,
	}
}
