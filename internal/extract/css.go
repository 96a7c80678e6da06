package extract

import (
	"regexp"
	"strings"

	"github.com/ktiyab/babel-tool-sub001/internal/symbol"
)

var cssIDSelector = regexp.MustCompile(`(?m)^\s*#([\w-]+)\s*\{`)
var cssClassSelector = regexp.MustCompile(`(?m)^\s*\.([\w-]+)\s*\{`)
var cssCustomProperty = regexp.MustCompile(`(?m)^\s*(--[\w-]+)\s*:`)
var cssKeyframes = regexp.MustCompile(`(?m)^\s*@keyframes\s+([\w-]+)\s*\{`)

// CSS registers the CSS LanguageConfig: architectural selectors only —
// id selectors, filtered component-root classes, custom properties,
// and @keyframes — not every rule in the sheet (spec-supplemented per
// SPEC_FULL §6).
func CSS() symbol.LanguageConfig {
	return symbol.LanguageConfig{
		Name:        "css",
		Extensions:  []string{".css"},
		MaxFileSize: 2 << 20,
		ExtractFn:   cssExtract,
	}
}

func cssExtract(cfg symbol.LanguageConfig, path string, content []byte, gitHash string) ([]symbol.Symbol, error) {
	if cfg.MaxFileSize > 0 && int64(len(content)) > cfg.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	text := string(content)
	var symbols []symbol.Symbol

	add := func(typ symbol.Type, name string, idx int) {
		line := 1 + strings.Count(text[:idx], "\n")
		symbols = append(symbols, symbol.Symbol{
			SymbolType:    typ,
			Name:          name,
			QualifiedName: name,
			FilePath:      path,
			LineStart:     line,
			LineEnd:       line,
			Visibility:    symbol.VisibilityPublic,
			GitHash:       gitHash,
		})
	}

	for _, m := range cssIDSelector.FindAllStringSubmatchIndex(text, -1) {
		add(symbol.TypeID, "#"+text[m[2]:m[3]], m[0])
	}
	for _, m := range cssClassSelector.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		if isComponentRootClass(name) {
			add(symbol.TypeClass, "."+name, m[0])
		}
	}
	for _, m := range cssCustomProperty.FindAllStringSubmatchIndex(text, -1) {
		add(symbol.TypeVariable, text[m[2]:m[3]], m[0])
	}
	for _, m := range cssKeyframes.FindAllStringSubmatchIndex(text, -1) {
		add(symbol.TypeAnimation, text[m[2]:m[3]], m[0])
	}
	return symbols, nil
}

// isComponentRootClass applies the BEM filter: component roots have no
// "__" (element) or "--" (modifier) separator and are longer than a
// typical utility class abbreviation.
func isComponentRootClass(name string) bool {
	if strings.Contains(name, "__") || strings.Contains(name, "--") {
		return false
	}
	return len(name) > 3
}
