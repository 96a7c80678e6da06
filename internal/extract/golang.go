package extract

import (
	"regexp"

	"github.com/ktiyab/babel-tool-sub001/internal/symbol"
)

// Go registers the Go LanguageConfig: struct declarations as classes,
// interface declarations as interfaces, other type declarations as type
// aliases, top-level funcs, and methods recognized by their receiver
// clause (so they attach directly as a method without relying on the
// brace-nesting stack — Go methods aren't lexically nested in their
// receiver's declaration).
func Go() symbol.LanguageConfig {
	return symbol.LanguageConfig{
		Name:              "go",
		Extensions:        []string{".go"},
		TreeSitterGrammar: "tree-sitter-go",
		Nesting:           symbol.NestingBrace,
		CommentPrefix:     "//",
		MaxFileSize:       2 << 20,
		ContainerTypes:    map[symbol.Type]bool{symbol.TypeClass: true, symbol.TypeInterface: true},
		Queries: []symbol.SymbolQuery{
			{Type: symbol.TypeMethod, Pattern: regexp.MustCompile(`^func\s*\([^)]*\s+\*?(?P<recv>\w+)\)\s+(?P<name>\w+)\s*\(`)},
			{Type: symbol.TypeInterface, Pattern: regexp.MustCompile(`^type\s+(?P<name>\w+)\s+interface\s*\{`)},
			{Type: symbol.TypeClass, Pattern: regexp.MustCompile(`^type\s+(?P<name>\w+)\s+struct\s*\{`)},
			{Type: symbol.TypeTypeAlias, Pattern: regexp.MustCompile(`^type\s+(?P<name>\w+)\s*=?\s*\w`)},
			{Type: symbol.TypeFunction, Pattern: regexp.MustCompile(`^func\s+(?P<name>\w+)\s*\(`)},
		},
		ExtractFn: goExtract,
	}
}

// goExtract runs the default line-oriented walk, then re-parents any
// receiver method onto its struct by name instead of relying on lexical
// containment, since Go methods are declared at the top level.
func goExtract(cfg symbol.LanguageConfig, path string, content []byte, gitHash string) ([]symbol.Symbol, error) {
	symbols, err := Default(cfg, path, content, gitHash)
	if err != nil {
		return nil, err
	}

	recvPattern := regexp.MustCompile(`^func\s*\([^)]*\s+\*?(\w+)\)\s+\w+\s*\(`)
	for i := range symbols {
		if symbols[i].SymbolType != symbol.TypeMethod {
			continue
		}
		m := recvPattern.FindStringSubmatch(symbols[i].Signature)
		if m == nil {
			continue
		}
		symbols[i].ParentSymbol = m[1]
		symbols[i].QualifiedName = m[1] + "." + symbols[i].Name
	}
	return symbols, nil
}
