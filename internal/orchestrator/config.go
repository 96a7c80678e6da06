package orchestrator

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds the orchestrator's parallelization settings (spec §6
// "Orchestrator env defaults"). Ported field-for-field from the
// original OrchestratorConfig; env parsing here is a narrow, fixed set
// of typed knobs rather than the layered file+flag+env surface
// internal/babelcfg handles, so it stays on stdlib env lookups instead
// of pulling in viper for half a dozen scalars.
type Config struct {
	Enabled bool

	IOWorkers  int
	CPUWorkers int

	LLMConcurrent int
	LLMRateLimit  float64

	TaskTimeout     time.Duration
	ShutdownTimeout time.Duration

	FallbackSequential bool
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		IOWorkers:          4,
		CPUWorkers:         max(1, runtime.NumCPU()/2),
		LLMConcurrent:      3,
		LLMRateLimit:       10.0,
		TaskTimeout:        60 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		FallbackSequential: true,
	}
}

// ConfigFromEnv loads configuration from BABEL_* environment variables,
// falling back to DefaultConfig for anything unset or unparsable.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Enabled = envBool("BABEL_PARALLEL_ENABLED", cfg.Enabled)
	cfg.IOWorkers = envInt("BABEL_IO_WORKERS", cfg.IOWorkers)
	cfg.CPUWorkers = envInt("BABEL_CPU_WORKERS", cfg.CPUWorkers)
	cfg.LLMConcurrent = envInt("BABEL_LLM_CONCURRENT", cfg.LLMConcurrent)
	cfg.LLMRateLimit = envFloat("BABEL_LLM_RATE_LIMIT", cfg.LLMRateLimit)
	cfg.TaskTimeout = envSeconds("BABEL_TASK_TIMEOUT", cfg.TaskTimeout)
	cfg.ShutdownTimeout = envSeconds("BABEL_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.FallbackSequential = envBool("BABEL_FALLBACK_SEQUENTIAL", cfg.FallbackSequential)
	return cfg
}

// Validate rejects configurations the pools/limiter can't act on.
func (c Config) Validate() error {
	if c.IOWorkers < 1 {
		return fmt.Errorf("orchestrator: BABEL_IO_WORKERS must be >= 1, got %d", c.IOWorkers)
	}
	if c.CPUWorkers < 1 {
		return fmt.Errorf("orchestrator: BABEL_CPU_WORKERS must be >= 1, got %d", c.CPUWorkers)
	}
	if c.LLMConcurrent < 1 {
		return fmt.Errorf("orchestrator: BABEL_LLM_CONCURRENT must be >= 1, got %d", c.LLMConcurrent)
	}
	if c.TaskTimeout <= 0 {
		return fmt.Errorf("orchestrator: BABEL_TASK_TIMEOUT must be > 0, got %s", c.TaskTimeout)
	}
	return nil
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch v {
	case "true", "1", "yes", "on", "True", "TRUE":
		return true
	case "false", "0", "no", "off", "False", "FALSE":
		return false
	default:
		return fallback
	}
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return time.Duration(f * float64(time.Second))
}
