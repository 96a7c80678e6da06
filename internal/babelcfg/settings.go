// Package babelcfg layers project configuration the way the teacher's
// internal/config layers config.yaml/BD_* env vars, but with the
// precedence order spec.md §6 requires: explicit Set call, then project
// .babel/config.yaml, then user ~/.babel/config.yaml, then BABEL_* env
// vars, then built-in defaults.
package babelcfg

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

// LocalLLMSettings configures a locally-hosted model (e.g. Ollama).
type LocalLLMSettings struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model" yaml:"model"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
}

// EffectiveModel returns Model as-is; local models have no provider
// default since they're installed by the user.
func (l LocalLLMSettings) EffectiveModel() string { return l.Model }

// Validate rejects a provider that isn't registered as local.
func (l LocalLLMSettings) Validate() error {
	info, ok := Providers[l.Provider]
	if !ok || !info.IsLocal {
		return fmt.Errorf("provider %q is not a local provider; valid: %s", l.Provider, strings.Join(localProviderKeys(), ", "))
	}
	return nil
}

// RemoteLLMSettings configures a hosted provider (Claude, OpenAI, Gemini).
type RemoteLLMSettings struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model" yaml:"model,omitempty"`
}

// EffectiveModel falls back to the provider's default model when unset.
func (r RemoteLLMSettings) EffectiveModel() string {
	if r.Model != "" {
		return r.Model
	}
	return Providers[r.Provider].DefaultModel
}

// APIKeyEnv names the environment variable this provider's key lives
// in. Empty for local providers.
func (r RemoteLLMSettings) APIKeyEnv() string {
	return Providers[r.Provider].EnvKey
}

// APIKey reads the provider's key from the environment. Never
// persisted to a config file (spec.md config.yaml layer excludes
// secrets by design).
func (r RemoteLLMSettings) APIKey() string {
	env := r.APIKeyEnv()
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

// IsAvailable reports whether this provider is configured (has a key).
func (r RemoteLLMSettings) IsAvailable() bool { return r.APIKey() != "" }

// Validate rejects an unknown or local-only provider, or a model the
// provider's registry doesn't list.
func (r RemoteLLMSettings) Validate() error {
	info, ok := Providers[r.Provider]
	if !ok {
		return fmt.Errorf("unknown provider %q; valid: %s", r.Provider, strings.Join(remoteProviderKeys(), ", "))
	}
	if info.IsLocal {
		return fmt.Errorf("provider %q is not a remote provider; valid: %s", r.Provider, strings.Join(remoteProviderKeys(), ", "))
	}
	if r.Model != "" && len(info.Models) > 0 {
		found := false
		for _, m := range info.Models {
			if m == r.Model {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown model %q for %s; valid: %s", r.Model, r.Provider, strings.Join(info.Models, ", "))
		}
	}
	return nil
}

// LLMSettings picks between a local and a remote model (spec.md §6
// "active ∈ {local, remote, auto}"; in auto the remote config wins if
// its API key env var is set, else local).
type LLMSettings struct {
	Active string            `mapstructure:"active" yaml:"active"`
	Local  LocalLLMSettings  `mapstructure:"local" yaml:"local"`
	Remote RemoteLLMSettings `mapstructure:"remote" yaml:"remote"`
}

// ActiveIsLocal resolves the "auto" mode into a concrete local/remote
// choice.
func (l LLMSettings) ActiveIsLocal() bool {
	switch l.Active {
	case "local":
		return true
	case "remote":
		return false
	default: // auto
		return !l.Remote.IsAvailable()
	}
}

// Validate checks the active mode and both nested configs.
func (l LLMSettings) Validate() error {
	switch l.Active {
	case "local", "remote", "auto":
	default:
		return fmt.Errorf("unknown active mode %q; valid: local, remote, auto", l.Active)
	}
	if err := l.Local.Validate(); err != nil {
		return fmt.Errorf("local config: %w", err)
	}
	if err := l.Remote.Validate(); err != nil {
		return fmt.Errorf("remote config: %w", err)
	}
	return nil
}

// DisplaySettings are presentation preferences the CLI boundary reads;
// babel's event log and graph never consult them.
type DisplaySettings struct {
	Symbols string `mapstructure:"symbols" yaml:"symbols"`
	Format  string `mapstructure:"format" yaml:"format"`
}

func (d DisplaySettings) Validate() error {
	switch d.Symbols {
	case "unicode", "ascii", "auto":
	default:
		return fmt.Errorf("unknown symbols setting %q; valid: unicode, ascii, auto", d.Symbols)
	}
	switch d.Format {
	case "auto", "table", "list", "detail", "summary", "json":
	default:
		return fmt.Errorf("unknown format %q; valid: auto, table, list, detail, summary, json", d.Format)
	}
	return nil
}

// CoherenceSettings tune how aggressively captures get checked against
// the existing graph for contradictions.
type CoherenceSettings struct {
	AutoCheck bool   `mapstructure:"auto_check" yaml:"auto_check"`
	Threshold string `mapstructure:"threshold" yaml:"threshold"`
}

func (c CoherenceSettings) Validate() error {
	switch c.Threshold {
	case "strict", "normal", "relaxed":
		return nil
	default:
		return fmt.Errorf("unknown threshold %q; valid: strict, normal, relaxed", c.Threshold)
	}
}

// ParallelSettings is the layered counterpart of orchestrator.Config —
// same fields, sourced through babelcfg's full precedence chain instead
// of orchestrator's narrow direct-env reads.
type ParallelSettings struct {
	Enabled            bool          `mapstructure:"enabled" yaml:"enabled"`
	IOWorkers          int           `mapstructure:"io_workers" yaml:"io_workers"`
	CPUWorkers         int           `mapstructure:"cpu_workers" yaml:"cpu_workers"`
	LLMConcurrent      int           `mapstructure:"llm_concurrent" yaml:"llm_concurrent"`
	LLMRateLimit       float64       `mapstructure:"llm_rate_limit" yaml:"llm_rate_limit"`
	TaskTimeout        time.Duration `mapstructure:"task_timeout" yaml:"task_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	FallbackSequential bool          `mapstructure:"fallback_sequential" yaml:"fallback_sequential"`
}

// Settings is the fully-resolved configuration tree (spec.md §6).
type Settings struct {
	LLM         LLMSettings       `mapstructure:"llm" yaml:"llm"`
	Display     DisplaySettings   `mapstructure:"display" yaml:"display"`
	Coherence   CoherenceSettings `mapstructure:"coherence" yaml:"coherence"`
	Parallel    ParallelSettings  `mapstructure:"parallel" yaml:"parallel"`
	ProjectPath string            `mapstructure:"project_path" yaml:"-"`
}

// Validate runs every section's Validate.
func (s Settings) Validate() error {
	if err := s.LLM.Validate(); err != nil {
		return err
	}
	if err := s.Display.Validate(); err != nil {
		return err
	}
	return s.Coherence.Validate()
}

// Defaults returns the built-in configuration, the lowest-priority
// layer in the precedence chain.
func Defaults() Settings {
	return Settings{
		LLM: LLMSettings{
			Active: "auto",
			Local: LocalLLMSettings{
				Provider: DefaultLocalProvider,
				Model:    "llama3.2",
				BaseURL:  "http://localhost:11434",
			},
			Remote: RemoteLLMSettings{
				Provider: DefaultRemoteProvider,
			},
		},
		Display: DisplaySettings{
			Symbols: "auto",
			Format:  "auto",
		},
		Coherence: CoherenceSettings{
			AutoCheck: true,
			Threshold: "normal",
		},
		Parallel: ParallelSettings{
			Enabled:            true,
			IOWorkers:          4,
			CPUWorkers:         cpuWorkerDefault(),
			LLMConcurrent:      3,
			LLMRateLimit:       10.0,
			TaskTimeout:        60 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			FallbackSequential: true,
		},
	}
}

func cpuWorkerDefault() int {
	if n := runtime.NumCPU() / 2; n > 1 {
		return n
	}
	return 1
}
