package extract

import "github.com/ktiyab/babel-tool-sub001/internal/symbol"

// MarkdownConfig registers markdown's deliberate regex-only extraction
// path (spec §4.4, §9 Open Question 2).
func MarkdownConfig() symbol.LanguageConfig {
	return symbol.LanguageConfig{
		Name:            "markdown",
		Extensions:      []string{".md", ".markdown"},
		MaxFileSize:     4 << 20,
		ExcludePatterns: nil,
		ExtractFn:       Markdown,
	}
}
