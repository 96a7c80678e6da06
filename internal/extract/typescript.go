package extract

import (
	"regexp"

	"github.com/ktiyab/babel-tool-sub001/internal/symbol"
)

// TypeScript registers the TypeScript LanguageConfig: JavaScript's
// queries plus interface/type-alias/enum declarations.
func TypeScript() symbol.LanguageConfig {
	queries := append([]symbol.SymbolQuery{}, javascriptQueries...)
	queries = append(queries,
		symbol.SymbolQuery{Type: symbol.TypeInterface, Pattern: regexp.MustCompile(`^\s*(?:export\s+)?interface\s+(?P<name>\w+)`)},
		symbol.SymbolQuery{Type: symbol.TypeTypeAlias, Pattern: regexp.MustCompile(`^\s*(?:export\s+)?type\s+(?P<name>\w+)\s*=`)},
		symbol.SymbolQuery{Type: symbol.TypeEnum, Pattern: regexp.MustCompile(`^\s*(?:export\s+)?(?:const\s+)?enum\s+(?P<name>\w+)`)},
	)

	return symbol.LanguageConfig{
		Name:              "typescript",
		Extensions:        []string{".ts", ".tsx"},
		TreeSitterGrammar: "tree-sitter-typescript",
		Nesting:           symbol.NestingBrace,
		CommentPrefix:     "//",
		MaxFileSize:       2 << 20,
		ContainerTypes:    map[symbol.Type]bool{symbol.TypeClass: true, symbol.TypeInterface: true},
		Queries:           queries,
		ExtractFn:         Default,
	}
}
