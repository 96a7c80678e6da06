package gather

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ktiyab/babel-tool-sub001/internal/babelpath"
	"github.com/ktiyab/babel-tool-sub001/internal/symbol"
)

// maxFileSize is the ceiling for a single gathered file (1MB).
const maxFileSize = 1024 * 1024

// maxBashOutput truncates combined stdout+stderr beyond 100KB.
const maxBashOutput = 100 * 1024

// gatherFile reads path and returns its content, rejecting missing
// files, directories, oversize files (>1MB), and binary content.
func gatherFile(path string) Result {
	start := time.Now()
	elapsed := func() float64 { return float64(time.Since(start)) / float64(time.Millisecond) }

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errorResult(SourceFile, path, fmt.Sprintf("File not found: %s", path), elapsed())
	}
	if err != nil {
		return errorResult(SourceFile, path, err.Error(), elapsed())
	}
	if info.IsDir() {
		return errorResult(SourceFile, path, fmt.Sprintf("Path is a directory: %s", path), elapsed())
	}
	if info.Size() > maxFileSize {
		return errorResult(SourceFile, path, fmt.Sprintf(
			"File too large: %.1fKB (max: %.0fKB)", float64(info.Size())/1024, float64(maxFileSize)/1024), elapsed())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return errorResult(SourceFile, path, fmt.Sprintf("Encoding error: %v", err), elapsed())
	}

	content := decodeText(raw)
	if strings.ContainsRune(content, 0) {
		return errorResult(SourceFile, path, "Binary file detected", elapsed())
	}

	lineCount := countLines(content)
	abs, _ := filepath.Abs(path)

	return Result{
		SourceType: SourceFile,
		SourceRef:  path,
		Content:    content,
		SizeBytes:  len(content),
		LineCount:  lineCount,
		Success:    true,
		DurationMs: elapsed(),
		GatheredAt: time.Now().UTC(),
		Metadata: map[string]any{
			"encoding":      "utf-8",
			"absolute_path": abs,
		},
	}
}

// decodeText returns raw decoded as UTF-8 text, falling back to a
// byte-preserving latin-1 style decode (one rune per byte) when it
// isn't valid UTF-8 — mirroring the Python primitive's latin-1 retry.
func decodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// gatherGrep searches path for pattern, preferring ripgrep (rg) and
// falling back to POSIX grep. Exit code 1 (no matches) is success.
func gatherGrep(ctx context.Context, pattern, path string, maxMatches, contextLines int) Result {
	start := time.Now()
	elapsed := func() float64 { return float64(time.Since(start)) / float64(time.Millisecond) }

	if path == "" {
		path = "."
	}
	if maxMatches <= 0 {
		maxMatches = 100
	}

	searchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tool := "grep"
	var cmd *exec.Cmd
	if _, err := exec.LookPath("rg"); err == nil {
		tool = "rg"
		args := []string{"--line-number", "--no-heading", "--color=never", fmt.Sprintf("--max-count=%d", maxMatches)}
		if contextLines > 0 {
			args = append(args, fmt.Sprintf("-C%d", contextLines))
		}
		args = append(args, pattern, path)
		cmd = exec.CommandContext(searchCtx, "rg", args...)
	} else {
		args := []string{"-rn", "--color=never"}
		if contextLines > 0 {
			args = append(args, "-C", strconv.Itoa(contextLines))
		}
		args = append(args, pattern, path)
		cmd = exec.CommandContext(searchCtx, "grep", args...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	if searchCtx.Err() == context.DeadlineExceeded {
		return errorResult(SourceGrep, pattern, "Search timed out", elapsed())
	}

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return errorResult(SourceGrep, pattern, runErr.Error(), elapsed())
		}
	}
	if exitCode != 0 && exitCode != 1 {
		return errorResult(SourceGrep, pattern, fmt.Sprintf("Search failed: %s", stderr.String()), elapsed())
	}

	content := stdout.String()
	var lines []string
	if strings.TrimSpace(content) != "" {
		lines = strings.Split(strings.TrimSpace(content), "\n")
	}
	matchCount := 0
	for _, l := range lines {
		if l != "" && !strings.HasPrefix(l, "--") {
			matchCount++
		}
	}

	return Result{
		SourceType: SourceGrep,
		SourceRef:  pattern,
		Content:    content,
		SizeBytes:  len(content),
		LineCount:  len(lines),
		Success:    true,
		DurationMs: elapsed(),
		GatheredAt: time.Now().UTC(),
		Metadata: map[string]any{
			"path":        path,
			"match_count": matchCount,
			"tool":        tool,
			"max_matches": maxMatches,
		},
	}
}

// gatherBash runs command in a shell, combining stdout and stderr and
// truncating output beyond 100KB. The caller is responsible for
// clearing the command through the safety gate before calling this.
func gatherBash(ctx context.Context, command string, timeout time.Duration, cwd string) Result {
	start := time.Now()
	elapsed := func() float64 { return float64(time.Since(start)) / float64(time.Millisecond) }

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	if cwd != "" {
		cmd.Dir = cwd
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return errorResult(SourceBash, command, fmt.Sprintf("Command timed out after %s", timeout), elapsed())
	}

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return errorResult(SourceBash, command, runErr.Error(), elapsed())
		}
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n--- STDERR ---\n" + stderr.String()
	}
	truncated := false
	if len(output) > maxBashOutput {
		output = output[:maxBashOutput] + "\n... (truncated)"
		truncated = true
	}

	resolvedCwd := cwd
	if resolvedCwd == "" {
		resolvedCwd, _ = os.Getwd()
	}

	errMsg := ""
	if exitCode != 0 {
		errMsg = fmt.Sprintf("Exit code: %d", exitCode)
	}

	return Result{
		SourceType: SourceBash,
		SourceRef:  command,
		Content:    output,
		SizeBytes:  len(output),
		LineCount:  countLines(output),
		Success:    exitCode == 0,
		Error:      errMsg,
		DurationMs: elapsed(),
		GatheredAt: time.Now().UTC(),
		Metadata: map[string]any{
			"exit_code": exitCode,
			"cwd":       resolvedCwd,
			"truncated": truncated,
		},
	}
}

// gatherGlob expands pattern under basePath, returning a sorted list
// of matching file paths (directories are excluded).
func gatherGlob(pattern, basePath string) Result {
	start := time.Now()
	elapsed := func() float64 { return float64(time.Since(start)) / float64(time.Millisecond) }

	if basePath == "" {
		basePath = "."
	}
	fullPattern := pattern
	if !strings.HasPrefix(pattern, "/") {
		fullPattern = filepath.Join(basePath, pattern)
	}

	matches, err := doubleStarGlob(fullPattern)
	if err != nil {
		return errorResult(SourceGlob, pattern, err.Error(), elapsed())
	}

	var files []string
	var totalSize int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
		totalSize += info.Size()
	}
	sort.Strings(files)
	content := strings.Join(files, "\n")

	return Result{
		SourceType: SourceGlob,
		SourceRef:  pattern,
		Content:    content,
		SizeBytes:  len(content),
		LineCount:  len(files),
		Success:    true,
		DurationMs: elapsed(),
		GatheredAt: time.Now().UTC(),
		Metadata: map[string]any{
			"base_path":          basePath,
			"match_count":        len(files),
			"total_file_size":    totalSize,
			"total_file_size_kb": float64(totalSize) / 1024,
		},
	}
}

// doubleStarGlob expands pattern, supporting a "**" path segment (for
// recursive matching) on top of filepath.Glob's single-level "*".
func doubleStarGlob(pattern string) ([]string, error) {
	if !strings.Contains(pattern, "**") {
		return filepath.Glob(pattern)
	}

	parts := strings.SplitN(pattern, "**", 2)
	root := strings.TrimSuffix(parts[0], "/")
	if root == "" {
		root = "."
	}
	rest := strings.TrimPrefix(parts[1], "/")

	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if rest == "" {
			out = append(out, path)
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if ok, _ := filepath.Match(rest, filepath.Base(rel)); ok {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// estimateFileSize cheaply estimates a file's size without reading its
// content, used by the ChunkBroker before gathering.
func estimateFileSize(path string) int {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return int(info.Size())
}

// estimateGrepSize roughly estimates grep result size via match counts
// (grep -rc), assuming ~100 bytes per matched line.
func estimateGrepSize(pattern, path string) int {
	if path == "" {
		path = "."
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "grep", "-rc", pattern, path)
	out, err := cmd.Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return 0
		}
	}

	total := 0
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		idx := strings.LastIndex(line, ":")
		if idx < 0 {
			continue
		}
		if count, err := strconv.Atoi(line[idx+1:]); err == nil {
			total += count
		}
	}
	return total * 100
}

// gatherSymbol resolves name against the project's persisted symbol
// cache and returns the matching symbol's source lines, padded with
// contextLines of surrounding context.
func gatherSymbol(name, projectDir string, contextLines int) Result {
	start := time.Now()
	elapsed := func() float64 { return float64(time.Since(start)) / float64(time.Millisecond) }

	if contextLines <= 0 {
		contextLines = 5
	}
	if projectDir == "" {
		projectDir, _ = os.Getwd()
	}

	layout, ok := babelpath.Discover(projectDir)
	if !ok {
		return errorResult(SourceSymbol, name, "No .babel directory found (run: babel map --index)", elapsed())
	}
	projectRoot := layout.Root

	cachePath := layout.SymbolCache()
	if _, err := os.Stat(cachePath); err != nil {
		return errorResult(SourceSymbol, name, "Symbol index not found (run: babel map --index)", elapsed())
	}

	cache, err := symbol.LoadCache(cachePath)
	if err != nil {
		return errorResult(SourceSymbol, name, fmt.Sprintf("Failed to read symbol cache: %v", err), elapsed())
	}

	sym, found := cache.FindExact(name)
	if !found {
		return errorResult(SourceSymbol, name, fmt.Sprintf("Symbol not found: %s", name), elapsed())
	}

	fullPath := filepath.Join(projectRoot, sym.FilePath)
	raw, err := os.ReadFile(fullPath)
	if err != nil {
		return errorResult(SourceSymbol, name, fmt.Sprintf("Source file not found: %s", sym.FilePath), elapsed())
	}

	allLines := strings.Split(decodeText(raw), "\n")
	startIdx := sym.LineStart - 1 - contextLines
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := sym.LineEnd + contextLines
	if endIdx > len(allLines) {
		endIdx = len(allLines)
	}
	extracted := allLines[startIdx:endIdx]
	content := strings.Join(extracted, "\n")

	var header strings.Builder
	fmt.Fprintf(&header, "# Symbol: %s\n", sym.QualifiedName)
	fmt.Fprintf(&header, "# Type: %s\n", sym.SymbolType)
	fmt.Fprintf(&header, "# File: %s:%d-%d\n", sym.FilePath, sym.LineStart, sym.LineEnd)
	if sym.Signature != "" {
		fmt.Fprintf(&header, "# Signature: %s\n", sym.Signature)
	}
	fmt.Fprintf(&header, "# Lines: %d-%d (context: %d)\n\n", startIdx+1, endIdx, contextLines)

	formatted := header.String() + content

	return Result{
		SourceType: SourceSymbol,
		SourceRef:  name,
		Content:    formatted,
		SizeBytes:  len(formatted),
		LineCount:  len(extracted),
		Success:    true,
		DurationMs: elapsed(),
		GatheredAt: time.Now().UTC(),
		Metadata: map[string]any{
			"qualified_name": sym.QualifiedName,
			"symbol_type":    string(sym.SymbolType),
			"file_path":      sym.FilePath,
			"line_start":     sym.LineStart,
			"line_end":       sym.LineEnd,
			"signature":      sym.Signature,
			"context_lines":  contextLines,
			"actual_lines":   fmt.Sprintf("%d-%d", startIdx+1, endIdx),
		},
	}
}

