package gather

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatherFileReturnsContentAndMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	r := gatherFile(path)
	assert.True(t, r.Success)
	assert.Equal(t, "package main\n", r.Content)
	assert.Equal(t, 1, r.LineCount)
	assert.Equal(t, "utf-8", r.Metadata["encoding"])
}

func TestGatherFileMissingReturnsError(t *testing.T) {
	r := gatherFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.False(t, r.Success)
	assert.Contains(t, r.Error, "not found")
}

func TestGatherFileRejectsDirectory(t *testing.T) {
	r := gatherFile(t.TempDir())
	assert.False(t, r.Success)
	assert.Contains(t, r.Error, "directory")
}

func TestGatherFileRejectsOversize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	big := make([]byte, maxFileSize+10)
	require.NoError(t, os.WriteFile(path, big, 0o644))

	r := gatherFile(path)
	assert.False(t, r.Success)
	assert.Contains(t, r.Error, "too large")
}

func TestGatherFileRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bin.dat")
	require.NoError(t, os.WriteFile(path, []byte("abc\x00def"), 0o644))

	r := gatherFile(path)
	assert.False(t, r.Success)
	assert.Contains(t, r.Error, "Binary")
}

func TestGatherGlobFindsFilesSortedRecursively(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "a.go"), []byte("a"), 0o644))

	r := gatherGlob("**/*.go", dir)
	assert.True(t, r.Success)
	assert.Equal(t, 2, r.LineCount)
}

func TestGatherBashCapturesExitCodeAndOutput(t *testing.T) {
	r := gatherBash(context.Background(), "echo hi", 0, "")
	assert.True(t, r.Success)
	assert.Contains(t, r.Content, "hi")
	assert.Equal(t, 0, r.Metadata["exit_code"])
}

func TestGatherBashNonZeroExitIsFailure(t *testing.T) {
	r := gatherBash(context.Background(), "exit 3", 0, "")
	assert.False(t, r.Success)
	assert.Equal(t, 3, r.Metadata["exit_code"])
	assert.Contains(t, r.Error, "Exit code: 3")
}

func TestEstimateFileSizeReturnsZeroForMissing(t *testing.T) {
	assert.Equal(t, 0, estimateFileSize(filepath.Join(t.TempDir(), "nope")))
}
