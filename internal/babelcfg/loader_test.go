package babelcfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home) // belt-and-suspenders for os.UserHomeDir on some platforms
	return home
}

func TestLoaderLoadReturnsDefaultsWithNoFilesOrEnv(t *testing.T) {
	isolatedHome(t)
	projectDir := t.TempDir()

	l := NewLoader(projectDir)
	settings, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "auto", settings.LLM.Active)
	assert.Equal(t, 4, settings.Parallel.IOWorkers)
	assert.Equal(t, projectDir, settings.ProjectPath)
}

func TestLoaderEnvLayerOverridesDefaults(t *testing.T) {
	isolatedHome(t)
	projectDir := t.TempDir()

	t.Setenv("BABEL_LLM_ACTIVE", "local")
	t.Setenv("BABEL_IO_WORKERS", "9")
	t.Setenv("BABEL_TASK_TIMEOUT", "12.5")

	settings, err := NewLoader(projectDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "local", settings.LLM.Active)
	assert.Equal(t, 9, settings.Parallel.IOWorkers)
	assert.Equal(t, 12500*time.Millisecond, settings.Parallel.TaskTimeout)
}

func TestLoaderUserConfigOverridesEnv(t *testing.T) {
	home := isolatedHome(t)
	projectDir := t.TempDir()

	t.Setenv("BABEL_LLM_ACTIVE", "local")

	userDir := filepath.Join(home, ".babel")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte("llm:\n  active: remote\n"), 0o644))

	settings, err := NewLoader(projectDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "remote", settings.LLM.Active)
}

func TestLoaderProjectConfigOverridesUserConfig(t *testing.T) {
	home := isolatedHome(t)
	projectDir := t.TempDir()

	userDir := filepath.Join(home, ".babel")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte("llm:\n  active: remote\n"), 0o644))

	projectBabelDir := filepath.Join(projectDir, ".babel")
	require.NoError(t, os.MkdirAll(projectBabelDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(projectBabelDir, "config.yaml"), []byte("llm:\n  active: local\n"), 0o644))

	settings, err := NewLoader(projectDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "local", settings.LLM.Active)
}

func TestLoaderExplicitSetBeatsEveryFileLayer(t *testing.T) {
	isolatedHome(t)
	projectDir := t.TempDir()

	projectBabelDir := filepath.Join(projectDir, ".babel")
	require.NoError(t, os.MkdirAll(projectBabelDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(projectBabelDir, "config.yaml"), []byte("llm:\n  active: local\n"), 0o644))

	l := NewLoader(projectDir)
	l.Set("llm.active", "remote")

	settings, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "remote", settings.LLM.Active)
}

func TestLoaderProjectTOMLOverridesProjectYAML(t *testing.T) {
	isolatedHome(t)
	projectDir := t.TempDir()

	projectBabelDir := filepath.Join(projectDir, ".babel")
	require.NoError(t, os.MkdirAll(projectBabelDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(projectBabelDir, "config.yaml"), []byte("llm:\n  active: local\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(projectBabelDir, "config.toml"), []byte("[llm]\nactive = \"remote\"\n"), 0o644))

	settings, err := NewLoader(projectDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "remote", settings.LLM.Active)
}

func TestLoaderSaveAndReloadProjectConfig(t *testing.T) {
	isolatedHome(t)
	projectDir := t.TempDir()

	l := NewLoader(projectDir)
	s := Defaults()
	s.LLM.Active = "remote"
	s.LLM.Remote.Provider = "openai"
	require.NoError(t, l.SaveProject(s))

	reloaded, err := NewLoader(projectDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "remote", reloaded.LLM.Active)
	assert.Equal(t, "openai", reloaded.LLM.Remote.Provider)
}
