package babelcfg

import "github.com/ktiyab/babel-tool-sub001/internal/orchestrator"

// OrchestratorConfig projects the layered Parallel settings onto
// orchestrator.Config, so callers that went through the full
// file+env+explicit precedence chain still hand the orchestrator its
// native type rather than reaching back into os.Getenv themselves.
func (s Settings) OrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		Enabled:            s.Parallel.Enabled,
		IOWorkers:          s.Parallel.IOWorkers,
		CPUWorkers:         s.Parallel.CPUWorkers,
		LLMConcurrent:      s.Parallel.LLMConcurrent,
		LLMRateLimit:       s.Parallel.LLMRateLimit,
		TaskTimeout:        s.Parallel.TaskTimeout,
		ShutdownTimeout:    s.Parallel.ShutdownTimeout,
		FallbackSequential: s.Parallel.FallbackSequential,
	}
}
