package extract

import (
	"regexp"
	"strings"

	"github.com/ktiyab/babel-tool-sub001/internal/symbol"
)

// headingPattern matches a markdown ATX heading, capturing its level
// (1-3 hashes map to document/section/subsection) and title text.
var headingPattern = regexp.MustCompile(`^(#{1,3})\s+(.+?)\s*$`)

// anchorPattern extracts a trailing [TAG-###] anchor from a heading
// title, e.g. "Decision log [DEC-001]".
var anchorPattern = regexp.MustCompile(`\[([A-Z]+-\d+)\]\s*$`)

// Markdown is the deliberate regex exception spec §4.4 and §9's Open
// Question 2 call for: no grammar dependency, heading-level extraction
// with [TAG-###] anchor preservation. Registered as a LanguageConfig's
// ExtractFn, never as Default.
func Markdown(cfg symbol.LanguageConfig, path string, content []byte, gitHash string) ([]symbol.Symbol, error) {
	if cfg.MaxFileSize > 0 && int64(len(content)) > cfg.MaxFileSize {
		return nil, ErrFileTooLarge
	}

	lines := strings.Split(string(content), "\n")
	type headingFrame struct {
		title string
		level int
	}
	var stack []headingFrame
	var symbols []symbol.Symbol

	levelType := map[int]symbol.Type{1: symbol.TypeDocument, 2: symbol.TypeSection, 3: symbol.TypeSubsection}

	for i, line := range lines {
		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		level := len(m[1])
		title := m[2]

		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}

		var parent string
		var qualifiedParts []string
		for _, f := range stack {
			qualifiedParts = append(qualifiedParts, f.title)
		}
		if len(stack) > 0 {
			parent = stack[len(stack)-1].title
		}
		qualifiedParts = append(qualifiedParts, title)
		qualified := strings.Join(qualifiedParts, ".")

		typ := levelType[level]
		if typ == "" {
			typ = symbol.TypeSubsection
		}

		name := title
		if anchor := anchorPattern.FindStringSubmatch(title); anchor != nil {
			name = anchor[1]
		}

		symbols = append(symbols, symbol.Symbol{
			SymbolType:    typ,
			Name:          name,
			QualifiedName: qualified,
			FilePath:      path,
			LineStart:     i + 1,
			LineEnd:       headingBlockEnd(lines, i, level),
			Signature:     strings.TrimSpace(line),
			ParentSymbol:  parent,
			Visibility:    symbol.VisibilityPublic,
			GitHash:       gitHash,
		})

		stack = append(stack, headingFrame{title: title, level: level})
	}
	return symbols, nil
}

// headingBlockEnd is the line before the next heading at the same or
// shallower level, or EOF.
func headingBlockEnd(lines []string, start, level int) int {
	for i := start + 1; i < len(lines); i++ {
		m := headingPattern.FindStringSubmatch(lines[i])
		if m != nil && len(m[1]) <= level {
			return i
		}
	}
	return len(lines)
}
