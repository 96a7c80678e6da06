// Package extract implements per-language symbol extraction (spec §4.4):
// a line-oriented "AST-lite" walk for most languages, with markdown
// carved out as a deliberate regex exception (spec §9, Open Question 2).
package extract

import (
	"fmt"
	"strings"

	"github.com/ktiyab/babel-tool-sub001/internal/symbol"
)

// ErrFileTooLarge is returned when content exceeds a language config's
// MaxFileSize.
var ErrFileTooLarge = fmt.Errorf("extract: file too large")

// Run dispatches to cfg.ExtractFn if set, else Default.
func Run(cfg symbol.LanguageConfig, path string, content []byte, gitHash string) ([]symbol.Symbol, error) {
	if cfg.ExtractFn != nil {
		return cfg.ExtractFn(cfg, path, content, gitHash)
	}
	return Default(cfg, path, content, gitHash)
}

// containerFrame is a currently-open container on the parent stack.
// endLine is the 1-based line (computed by blockEnd at push time) past
// which this container's body is closed.
type containerFrame struct {
	name    string
	endLine int
}

// Default walks content line by line, matching each line against the
// config's queries in order (first match wins per line), tracking a
// container stack so nested functions become methods with ParentSymbol
// set. A container's extent is computed once via blockEnd at the point
// it's opened, and the stack pops lazily as the scan passes that line.
func Default(cfg symbol.LanguageConfig, path string, content []byte, gitHash string) ([]symbol.Symbol, error) {
	if cfg.MaxFileSize > 0 && int64(len(content)) > cfg.MaxFileSize {
		return nil, ErrFileTooLarge
	}

	lines := strings.Split(string(content), "\n")
	var stack []containerFrame
	var symbols []symbol.Symbol

	for i, line := range lines {
		lineNo := i + 1
		for len(stack) > 0 && lineNo > stack[len(stack)-1].endLine {
			stack = stack[:len(stack)-1]
		}

		q, match := matchQuery(cfg.Queries, line)
		if !match.matched {
			continue
		}

		name := match.name
		typ := q.Type
		var parent string
		if len(stack) > 0 {
			parent = stack[len(stack)-1].name
			if typ == symbol.TypeFunction {
				typ = symbol.TypeMethod
			}
		}

		qualified := name
		if parent != "" {
			qualified = parent + "." + name
		}

		depth := nestingDepth(cfg.Nesting, line)
		lineEnd := blockEnd(cfg.Nesting, lines, i, depth)

		symbols = append(symbols, symbol.Symbol{
			SymbolType:    typ,
			Name:          name,
			QualifiedName: qualified,
			FilePath:      path,
			LineStart:     lineNo,
			LineEnd:       lineEnd,
			Signature:     truncate(strings.TrimSpace(line), 200),
			Docstring:     leadingComment(lines, i, cfg.CommentPrefix),
			ParentSymbol:  parent,
			Visibility:    visibilityOf(name),
			GitHash:       gitHash,
		})

		if cfg.ContainerTypes[q.Type] {
			stack = append(stack, containerFrame{name: name, endLine: lineEnd})
		}
	}
	return symbols, nil
}

type queryMatch struct {
	matched bool
	name    string
}

func matchQuery(queries []symbol.SymbolQuery, line string) (symbol.SymbolQuery, queryMatch) {
	for _, q := range queries {
		m := q.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		idx := q.Pattern.SubexpIndex("name")
		if idx < 0 || idx >= len(m) || m[idx] == "" {
			continue
		}
		return q, queryMatch{matched: true, name: m[idx]}
	}
	return symbol.SymbolQuery{}, queryMatch{}
}

func nestingDepth(style symbol.NestingStyle, line string) int {
	switch style {
	case symbol.NestingIndent:
		n := 0
		for _, r := range line {
			if r == ' ' {
				n++
			} else if r == '\t' {
				n += 4
			} else {
				break
			}
		}
		return n
	case symbol.NestingBrace:
		return strings.Count(line, "{") - strings.Count(line, "}")
	default:
		return 0
	}
}

// blockEnd estimates where a symbol's body ends: for indent nesting, the
// line before the first subsequent non-blank line at or below the
// opening indent; for brace nesting, the line where cumulative brace
// depth (starting from the opening line) returns to zero; otherwise the
// opening line itself.
func blockEnd(style symbol.NestingStyle, lines []string, start, openDepth int) int {
	switch style {
	case symbol.NestingIndent:
		for i := start + 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "" {
				continue
			}
			if nestingDepth(style, lines[i]) <= openDepth {
				return i
			}
		}
		return len(lines)
	case symbol.NestingBrace:
		depth := strings.Count(lines[start], "{") - strings.Count(lines[start], "}")
		if depth <= 0 {
			return start + 1
		}
		for i := start + 1; i < len(lines); i++ {
			depth += strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
			if depth <= 0 {
				return i + 1
			}
		}
		return len(lines)
	default:
		return start + 1
	}
}

func leadingComment(lines []string, declLine int, prefix string) string {
	if prefix == "" {
		return ""
	}
	var out []string
	for i := declLine - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			break
		}
		if !strings.HasPrefix(trimmed, prefix) {
			break
		}
		out = append([]string{strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))}, out...)
	}
	return strings.Join(out, "\n")
}

func visibilityOf(name string) symbol.Visibility {
	if strings.HasPrefix(name, "_") {
		return symbol.VisibilityPrivate
	}
	return symbol.VisibilityPublic
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
