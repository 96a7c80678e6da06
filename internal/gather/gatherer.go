package gather

import (
	"context"
	"fmt"
	"time"

	"github.com/ktiyab/babel-tool-sub001/internal/orchestrator"
)

// gatherTimeout bounds each individual gather_* call submitted to the
// orchestrator.
const gatherTimeout = 30 * time.Second

// Gatherer runs a Plan's sources, in parallel through an orchestrator
// when one is available and enabled, falling back to sequential
// execution otherwise. Every submitted task sets IsLLMCall=false so
// gathering never competes for the orchestrator's LLM rate limit.
type Gatherer struct {
	orch *orchestrator.Orchestrator
}

// NewGatherer builds a Gatherer. orch may be nil, in which case every
// plan runs sequentially.
func NewGatherer(orch *orchestrator.Orchestrator) *Gatherer {
	return &Gatherer{orch: orch}
}

// Gather runs every source in plan, returning results in plan order.
func (g *Gatherer) Gather(ctx context.Context, plan *Plan) []Result {
	return g.GatherSources(ctx, plan.Sources)
}

// GatherSources runs sources, returning results in the same order.
func (g *Gatherer) GatherSources(ctx context.Context, sources []Source) []Result {
	if len(sources) == 0 {
		return nil
	}
	if g.orch != nil && g.orch.Enabled() {
		return g.gatherParallel(ctx, sources)
	}
	return g.gatherSequential(ctx, sources)
}

func (g *Gatherer) gatherParallel(ctx context.Context, sources []Source) []Result {
	tasks := make([]orchestrator.Task, len(sources))
	ids := make([]string, len(sources))

	for i, source := range sources {
		source := source
		task := orchestrator.IOTask(mapPriority(source.Priority), func(ctx context.Context) (any, error) {
			return runOne(ctx, source), nil
		})
		task.Name = fmt.Sprintf("gather_%s_%d", source.Type, i)
		task.Timeout = gatherTimeout
		tasks[i] = task
		ids[i] = task.ID
	}

	if err := g.orch.SubmitBatch(tasks); err != nil {
		return g.gatherSequential(ctx, sources)
	}

	collected := g.orch.CollectResults(ctx, ids, gatherTimeout+5*time.Second)

	results := make([]Result, len(sources))
	for i, id := range ids {
		tr, ok := collected[id]
		if !ok {
			results[i] = errorResult(sources[i].Type, sources[i].Ref, "gather task did not complete before timeout", 0)
			continue
		}
		if !tr.Success() {
			errMsg := "task failed"
			if tr.Err != nil {
				errMsg = tr.Err.Error()
			}
			results[i] = errorResult(sources[i].Type, sources[i].Ref, errMsg, tr.DurationMs)
			continue
		}
		r, ok := tr.Result.(Result)
		if !ok {
			results[i] = errorResult(sources[i].Type, sources[i].Ref, "unexpected gather result type", tr.DurationMs)
			continue
		}
		results[i] = r
	}
	return results
}

func (g *Gatherer) gatherSequential(ctx context.Context, sources []Source) []Result {
	results := make([]Result, len(sources))
	for i, source := range sources {
		results[i] = runOne(ctx, source)
	}
	return results
}

// runOne dispatches a single source to its gather primitive.
func runOne(ctx context.Context, s Source) Result {
	switch s.Type {
	case SourceFile:
		return gatherFile(s.Ref)
	case SourceGrep:
		path, _ := s.Params["path"].(string)
		maxMatches := paramInt(s.Params, "max_matches", 100)
		contextLines := paramInt(s.Params, "context_lines", 0)
		return gatherGrep(ctx, s.Ref, path, maxMatches, contextLines)
	case SourceBash:
		timeoutSeconds := paramFloat(s.Params, "timeout", 30)
		cwd, _ := s.Params["cwd"].(string)
		if violation := checkBashCommandSafety(s.Ref); violation != nil {
			return errorResult(SourceBash, s.Ref, violation.Error(), 0)
		}
		return gatherBash(ctx, s.Ref, time.Duration(timeoutSeconds*float64(time.Second)), cwd)
	case SourceGlob:
		basePath, _ := s.Params["base_path"].(string)
		return gatherGlob(s.Ref, basePath)
	case SourceSymbol:
		projectDir, _ := s.Params["project_dir"].(string)
		contextLines := paramInt(s.Params, "context_lines", 5)
		return gatherSymbol(s.Ref, projectDir, contextLines)
	default:
		return errorResult(s.Type, s.Ref, fmt.Sprintf("Unknown source type: %s", s.Type), 0)
	}
}

func paramInt(params map[string]any, key string, fallback int) int {
	if v, ok := params[key]; ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return fallback
}

func paramFloat(params map[string]any, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// mapPriority translates a gather SourcePriority into the
// orchestrator's Priority (LOW maps to BACKGROUND — the orchestrator
// has no LOW tier since gather sources are never LLM calls).
func mapPriority(p SourcePriority) orchestrator.Priority {
	switch p {
	case PriorityCritical:
		return orchestrator.PriorityCritical
	case PriorityHigh:
		return orchestrator.PriorityHigh
	case PriorityLow:
		return orchestrator.PriorityBackground
	default:
		return orchestrator.PriorityNormal
	}
}

// GatherContext is a convenience wrapper for a one-off plan gather
// with no orchestrator (sequential execution).
func GatherContext(ctx context.Context, plan *Plan) []Result {
	return NewGatherer(nil).Gather(ctx, plan)
}

// GatherFiles gathers a list of plain file paths sequentially.
func GatherFiles(ctx context.Context, paths []string) []Result {
	plan := NewPlan("gather_files", "Gather multiple files")
	for _, p := range paths {
		plan.AddFile(p, PriorityNormal, "")
	}
	return GatherContext(ctx, plan)
}
