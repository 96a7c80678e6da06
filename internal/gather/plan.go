package gather

// SourceType enumerates the kinds of context sources a plan can request.
type SourceType string

const (
	SourceFile   SourceType = "file"
	SourceGrep   SourceType = "grep"
	SourceBash   SourceType = "bash"
	SourceGlob   SourceType = "glob"
	SourceSymbol SourceType = "symbol"
)

// SourcePriority orders sources within a plan. Distinct from the
// orchestrator's Priority: gather plans use LOW where the orchestrator
// uses BACKGROUND, since a gather source is never itself an LLM call.
type SourcePriority int

const (
	PriorityCritical SourcePriority = 0
	PriorityHigh     SourcePriority = 1
	PriorityNormal   SourcePriority = 2
	PriorityLow      SourcePriority = 3
)

// Source describes one thing to gather: a file to read, a pattern to
// grep, a command to run, a glob to expand, or a symbol to look up.
type Source struct {
	Type     SourceType
	Ref      string
	Params   map[string]any
	Priority SourcePriority
	Group    string

	EstimatedSizeBytes int
}

func newSource(t SourceType, ref string, priority SourcePriority, group string) Source {
	return Source{Type: t, Ref: ref, Params: map[string]any{}, Priority: priority, Group: group}
}

// FileSource builds a file-read source.
func FileSource(path string, priority SourcePriority, group string) Source {
	return newSource(SourceFile, path, priority, group)
}

// GrepSource builds a grep source scoped to path (default ".").
func GrepSource(pattern, path string, priority SourcePriority, group string) Source {
	s := newSource(SourceGrep, pattern, priority, group)
	if path == "" {
		path = "."
	}
	s.Params["path"] = path
	return s
}

// BashSource builds a shell-command source. The safety gate later
// rejects it if the command invokes a babel subcommand that is not
// SAFE; commands that do not invoke babel are not restricted.
func BashSource(command string, priority SourcePriority, group string, timeoutSeconds float64) Source {
	s := newSource(SourceBash, command, priority, group)
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	s.Params["timeout"] = timeoutSeconds
	return s
}

// GlobSource builds a glob-expansion source.
func GlobSource(pattern string, priority SourcePriority, group string) Source {
	return newSource(SourceGlob, pattern, priority, group)
}

// SymbolSource builds a symbol-lookup source against projectDir's index.
func SymbolSource(name, projectDir string, priority SourcePriority, group string) Source {
	s := newSource(SourceSymbol, name, priority, group)
	if projectDir != "" {
		s.Params["project_dir"] = projectDir
	}
	return s
}

// Plan is an ordered set of sources gathered under one intent.
type Plan struct {
	Operation string
	Intent    string
	Sources   []Source
	CreatedBy string
}

// NewPlan starts an empty plan for the given operation and intent.
func NewPlan(operation, intent string) *Plan {
	return &Plan{Operation: operation, Intent: intent}
}

// AddFile appends a file source and returns the plan for chaining.
func (p *Plan) AddFile(path string, priority SourcePriority, group string) *Plan {
	p.Sources = append(p.Sources, FileSource(path, priority, group))
	return p
}

// AddGrep appends a grep source and returns the plan for chaining.
func (p *Plan) AddGrep(pattern, path string, priority SourcePriority, group string) *Plan {
	p.Sources = append(p.Sources, GrepSource(pattern, path, priority, group))
	return p
}

// AddBash appends a bash source and returns the plan for chaining.
func (p *Plan) AddBash(command string, priority SourcePriority, group string, timeoutSeconds float64) *Plan {
	p.Sources = append(p.Sources, BashSource(command, priority, group, timeoutSeconds))
	return p
}

// AddGlob appends a glob source and returns the plan for chaining.
func (p *Plan) AddGlob(pattern string, priority SourcePriority, group string) *Plan {
	p.Sources = append(p.Sources, GlobSource(pattern, priority, group))
	return p
}

// AddSymbol appends a symbol source and returns the plan for chaining.
func (p *Plan) AddSymbol(name, projectDir string, priority SourcePriority, group string) *Plan {
	p.Sources = append(p.Sources, SymbolSource(name, projectDir, priority, group))
	return p
}

// SourceCount returns the number of sources in the plan.
func (p *Plan) SourceCount() int { return len(p.Sources) }

// TotalEstimatedSize sums each source's EstimatedSizeBytes.
func (p *Plan) TotalEstimatedSize() int {
	total := 0
	for _, s := range p.Sources {
		total += s.EstimatedSizeBytes
	}
	return total
}

// SourcesByType filters sources by type, preserving order.
func (p *Plan) SourcesByType(t SourceType) []Source {
	var out []Source
	for _, s := range p.Sources {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

// SourcesByGroup filters sources by their explicit group tag.
func (p *Plan) SourcesByGroup(group string) []Source {
	var out []Source
	for _, s := range p.Sources {
		if s.Group == group {
			out = append(out, s)
		}
	}
	return out
}
