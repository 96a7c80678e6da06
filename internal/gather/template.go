package gather

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// extensionLang maps a file extension to its fenced-code-block
// language hint.
var extensionLang = map[string]string{
	".py": "python", ".js": "javascript", ".ts": "typescript", ".tsx": "typescript",
	".jsx": "javascript", ".rs": "rust", ".go": "go", ".java": "java", ".rb": "ruby",
	".php": "php", ".c": "c", ".h": "c", ".cpp": "cpp", ".hpp": "cpp", ".cs": "csharp",
	".swift": "swift", ".kt": "kotlin", ".scala": "scala", ".sh": "bash", ".bash": "bash",
	".zsh": "zsh", ".fish": "fish", ".sql": "sql", ".json": "json", ".yaml": "yaml",
	".yml": "yaml", ".toml": "toml", ".xml": "xml", ".html": "html", ".css": "css",
	".scss": "scss", ".less": "less", ".md": "markdown", ".rst": "rst", ".txt": "text",
	".ini": "ini", ".cfg": "ini", ".conf": "ini", ".env": "bash",
	".dockerfile": "dockerfile", ".makefile": "makefile",
}

// languageHint returns the fenced-block language for a file path, or
// "" if sourceRef isn't a path or has no known extension.
func languageHint(sourceRef string) string {
	if !strings.ContainsAny(sourceRef, "/\\") {
		return ""
	}
	return extensionLang[strings.ToLower(filepath.Ext(sourceRef))]
}

const bannerLine = "════════════════════════════════════════════════════════"
const ruleLine = "────────────────────────────────────────────────────────"

// Template renders gathered Results into a structured markdown
// document: banner, header, manifest table, and an indexed corpus —
// formatted for LLM consumption (spec §4.6 Render).
type Template struct {
	Plan         *Plan
	ChunkNumber  int
	TotalChunks  int
}

// NewTemplate builds a renderer for plan, at chunk chunkNumber of totalChunks.
func NewTemplate(plan *Plan, chunkNumber, totalChunks int) *Template {
	if chunkNumber < 1 {
		chunkNumber = 1
	}
	if totalChunks < 1 {
		totalChunks = 1
	}
	return &Template{Plan: plan, ChunkNumber: chunkNumber, TotalChunks: totalChunks}
}

// Render formats results into the full markdown document.
func (t *Template) Render(results []Result) string {
	sections := []string{
		t.renderBanner(),
		t.renderHeader(results),
		t.renderManifest(results),
		t.renderCorpus(results),
		t.renderFooter(),
	}
	return strings.Join(sections, "\n")
}

func (t *Template) renderBanner() string {
	return fmt.Sprintf("%s\nCONTEXT GATHER: %s\n%s\n", bannerLine, t.Plan.Operation, bannerLine)
}

func (t *Template) renderHeader(results []Result) string {
	var totalSizeKB float64
	successful := 0
	for _, r := range results {
		totalSizeKB += float64(r.SizeBytes) / 1024
		if r.Success {
			successful++
		}
	}
	failed := len(results) - successful

	chunkInfo := ""
	if t.TotalChunks > 1 {
		chunkInfo = fmt.Sprintf("\n- Chunk: %d of %d", t.ChunkNumber, t.TotalChunks)
	}
	statusNote := ""
	if failed > 0 {
		statusNote = fmt.Sprintf("\n- Warnings: %d source(s) failed to gather", failed)
	}
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 UTC")

	return fmt.Sprintf("## HEADER\n- Intent: %s%s\n- Total Size: %.1f KB across %d sources\n- Gathered: %s%s\n",
		t.Plan.Intent, chunkInfo, totalSizeKB, len(results), timestamp, statusNote)
}

func (t *Template) renderManifest(results []Result) string {
	var b strings.Builder
	b.WriteString("## MANIFEST\n\n")
	b.WriteString("| # | Type | Source | Size | Status |\n")
	b.WriteString("|---|------|--------|------|--------|\n")

	for i, r := range results {
		status := "✓"
		if !r.Success {
			status = "✗"
		}
		size := "-"
		if r.SizeBytes > 0 {
			size = fmt.Sprintf("%.1fKB", r.SizeKB())
		}
		ref := r.SourceRef
		if len(ref) > 40 {
			ref = "..." + ref[len(ref)-37:]
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", i+1, r.SourceType, ref, size, status)
	}
	b.WriteString("\n")
	return b.String()
}

func (t *Template) renderCorpus(results []Result) string {
	var b strings.Builder
	b.WriteString(ruleLine + "\n## CORPUS\n" + ruleLine + "\n\n")

	total := len(results)
	for i, r := range results {
		b.WriteString(t.renderSource(r, i+1, total))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Template) renderSource(r Result, index, total int) string {
	header := fmt.Sprintf("### [%d/%d] %s: %s", index, total, strings.ToUpper(string(r.SourceType)), r.SourceRef)

	var metaParts []string
	if r.LineCount > 0 {
		metaParts = append(metaParts, fmt.Sprintf("Lines: %d", r.LineCount))
	}
	if r.SizeBytes > 0 {
		metaParts = append(metaParts, fmt.Sprintf("Size: %.1fKB", r.SizeKB()))
	}
	if r.DurationMs > 0 {
		metaParts = append(metaParts, fmt.Sprintf("Time: %.0fms", r.DurationMs))
	}
	metaLine := ""
	if len(metaParts) > 0 {
		metaLine = "- " + strings.Join(metaParts, " | ")
	}

	if !r.Success {
		return fmt.Sprintf("%s\n%s\n- **ERROR**: %s\n", header, metaLine, r.Error)
	}

	lang := t.contentLanguage(r)
	content := r.Content
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return fmt.Sprintf("%s\n%s\n```%s\n%s```\n", header, metaLine, lang, content)
}

func (t *Template) contentLanguage(r Result) string {
	switch r.SourceType {
	case SourceFile:
		return languageHint(r.SourceRef)
	case SourceBash:
		return "bash"
	default:
		return ""
	}
}

func (t *Template) renderFooter() string {
	return fmt.Sprintf("%s\nEND CONTEXT GATHER\n%s\n", bannerLine, bannerLine)
}

// RenderContext is a convenience wrapper over Template.Render.
func RenderContext(plan *Plan, results []Result, chunkNumber, totalChunks int) string {
	return NewTemplate(plan, chunkNumber, totalChunks).Render(results)
}

// RenderToFile renders context and writes it to outputPath.
func RenderToFile(plan *Plan, results []Result, outputPath string, chunkNumber, totalChunks int) (string, error) {
	content := RenderContext(plan, results, chunkNumber, totalChunks)
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return "", err
	}
	return outputPath, nil
}
