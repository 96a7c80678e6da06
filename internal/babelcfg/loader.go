package babelcfg

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ktiyab/babel-tool-sub001/internal/babelpath"
)

// Loader resolves Settings through the precedence chain spec.md §6
// requires: explicit > project config.yaml > user config.yaml > env
// vars > defaults. Each file layer is parsed with viper (YAML) or
// BurntSushi/toml (the project-only alternate format); layers are
// deep-merged by hand so each wins or loses in exactly that order,
// independent of viper's own (different) Set/env precedence rules.
type Loader struct {
	projectDir string
	explicit   map[string]any
}

// NewLoader builds a Loader rooted at projectDir. An empty projectDir
// falls back to BABEL_PROJECT_PATH, then the current working directory.
func NewLoader(projectDir string) *Loader {
	if projectDir == "" {
		if env := os.Getenv("BABEL_PROJECT_PATH"); env != "" {
			projectDir = env
		} else {
			projectDir, _ = os.Getwd()
		}
	}
	return &Loader{projectDir: projectDir, explicit: map[string]any{}}
}

// Set stages an explicit override (e.g. from a `config set` call),
// highest priority in the chain. key is dotted ("llm.local.model").
func (l *Loader) Set(key string, value any) {
	setNested(l.explicit, key, value)
}

// Load resolves Settings by merging every layer in ascending priority.
func (l *Loader) Load() (Settings, error) {
	merged := settingsMap(Defaults())

	deepMerge(merged, envLayer())

	if data, err := os.ReadFile(userConfigPath()); err == nil {
		if m, perr := parseYAML(data); perr == nil {
			deepMerge(merged, m)
		}
	}

	layout := babelpath.NewLayout(l.projectDir)
	if data, err := os.ReadFile(layout.ProjectConfig()); err == nil {
		if m, perr := parseYAML(data); perr == nil {
			deepMerge(merged, m)
		}
	}
	if data, err := os.ReadFile(projectTOMLPath(layout)); err == nil {
		var m map[string]any
		if _, perr := toml.Decode(string(data), &m); perr == nil {
			deepMerge(merged, m)
		}
	}

	deepMerge(merged, l.explicit)
	merged["project_path"] = l.projectDir

	v := viper.New()
	if err := v.MergeConfigMap(merged); err != nil {
		return Settings{}, err
	}
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// SaveProject writes s to the project's .babel/config.yaml.
func (l *Loader) SaveProject(s Settings) error {
	layout := babelpath.NewLayout(l.projectDir)
	if err := layout.EnsureDirs(); err != nil {
		return err
	}
	return writeYAML(layout.ProjectConfig(), s)
}

// SaveUser writes s to ~/.babel/config.yaml.
func (l *Loader) SaveUser(s Settings) error {
	path := userConfigPath()
	if path == "" {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeYAML(path, s)
}

func writeYAML(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func userConfigPath() string {
	path, err := babelpath.UserConfig()
	if err != nil {
		return ""
	}
	return path
}

func projectTOMLPath(layout babelpath.Layout) string {
	return filepath.Join(layout.Dir, "config.toml")
}

func parseYAML(data []byte) (map[string]any, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return v.AllSettings(), nil
}

// settingsMap round-trips Settings through YAML marshal/unmarshal into
// a plain map, so defaults merge through the same shape the file
// layers do.
func settingsMap(s Settings) map[string]any {
	data, err := yaml.Marshal(s)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// deepMerge merges override into base in place; nested maps merge
// recursively, everything else is replaced (override wins).
func deepMerge(base, override map[string]any) {
	for k, v := range override {
		if bv, ok := base[k]; ok {
			if bm, ok := asMap(bv); ok {
				if ov, ok := asMap(v); ok {
					deepMerge(bm, ov)
					base[k] = bm
					continue
				}
			}
		}
		base[k] = v
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func setNested(m map[string]any, dottedKey string, value any) {
	parts := strings.Split(dottedKey, ".")
	cur := m
	for i, p := range parts {
		if i == len(parts)-1 {
			cur[p] = value
			return
		}
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
}

// envLayer reads the BABEL_* environment variables spec.md §6 names
// into a nested map at the same priority tier as the other layers.
func envLayer() map[string]any {
	m := map[string]any{}

	setIfPresent(m, "llm.active", os.Getenv("BABEL_LLM_ACTIVE"))
	setIfPresent(m, "llm.local.provider", os.Getenv("BABEL_LLM_LOCAL_PROVIDER"))
	setIfPresent(m, "llm.local.model", os.Getenv("BABEL_LLM_LOCAL_MODEL"))
	setIfPresent(m, "llm.local.base_url", os.Getenv("BABEL_LLM_LOCAL_BASE_URL"))
	setIfPresent(m, "llm.remote.provider", os.Getenv("BABEL_LLM_REMOTE_PROVIDER"))
	setIfPresent(m, "llm.remote.model", os.Getenv("BABEL_LLM_REMOTE_MODEL"))

	if v, ok := envBool("BABEL_PARALLEL_ENABLED"); ok {
		setNested(m, "parallel.enabled", v)
	}
	if v, ok := envInt("BABEL_IO_WORKERS"); ok {
		setNested(m, "parallel.io_workers", v)
	}
	if v, ok := envInt("BABEL_CPU_WORKERS"); ok {
		setNested(m, "parallel.cpu_workers", v)
	}
	if v, ok := envInt("BABEL_LLM_CONCURRENT"); ok {
		setNested(m, "parallel.llm_concurrent", v)
	}
	if v, ok := envFloat("BABEL_LLM_RATE_LIMIT"); ok {
		setNested(m, "parallel.llm_rate_limit", v)
	}
	if v, ok := envDurationSeconds("BABEL_TASK_TIMEOUT"); ok {
		setNested(m, "parallel.task_timeout", v)
	}
	if v, ok := envDurationSeconds("BABEL_SHUTDOWN_TIMEOUT"); ok {
		setNested(m, "parallel.shutdown_timeout", v)
	}
	if v, ok := envBool("BABEL_FALLBACK_SEQUENTIAL"); ok {
		setNested(m, "parallel.fallback_sequential", v)
	}

	return m
}

func setIfPresent(m map[string]any, key, value string) {
	if value != "" {
		setNested(m, key, value)
	}
}

func envBool(key string) (bool, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	switch v {
	case "true", "1", "yes", "on", "True", "TRUE":
		return true, true
	case "false", "0", "no", "off", "False", "FALSE":
		return false, true
	default:
		return false, false
	}
}

func envInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func envFloat(key string) (float64, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

func envDurationSeconds(key string) (time.Duration, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(f * float64(time.Second)), true
}
