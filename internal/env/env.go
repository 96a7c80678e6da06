// Package env builds and wires the per-project dependency graph (spec
// §9 "Global singletons → explicit context"): one Environment holds
// the event log, graph projection, ref index, orchestrator, symbol
// index, resolver, layered config, and memo store for a single
// project directory, and is passed explicitly rather than reached for
// through package-level singletons.
package env

import (
	"fmt"
	"os"

	"github.com/ktiyab/babel-tool-sub001/internal/babelcfg"
	"github.com/ktiyab/babel-tool-sub001/internal/babelpath"
	"github.com/ktiyab/babel-tool-sub001/internal/event"
	"github.com/ktiyab/babel-tool-sub001/internal/eventlog"
	"github.com/ktiyab/babel-tool-sub001/internal/extract"
	"github.com/ktiyab/babel-tool-sub001/internal/extractor"
	"github.com/ktiyab/babel-tool-sub001/internal/gather"
	"github.com/ktiyab/babel-tool-sub001/internal/graph"
	"github.com/ktiyab/babel-tool-sub001/internal/metrics"
	"github.com/ktiyab/babel-tool-sub001/internal/orchestrator"
	"github.com/ktiyab/babel-tool-sub001/internal/refindex"
	"github.com/ktiyab/babel-tool-sub001/internal/resolver"
	"github.com/ktiyab/babel-tool-sub001/internal/symbol"
)

// Environment is the full set of collaborators one project needs. Every
// field is a concrete, already-wired value — callers pass *Environment
// down to whatever needs it instead of calling a package-level getter.
type Environment struct {
	Layout   babelpath.Layout
	Settings babelcfg.Settings

	EventLog     *eventlog.EventLog
	Projector    *graph.Projector
	RefIndex     *refindex.RefIndex
	Resolver     *resolver.Resolver
	Orchestrator *orchestrator.Orchestrator
	Gatherer     *gather.Gatherer
	Symbols      *symbol.Index
	Memos        *babelcfg.MemoStore
	Extractor    extractor.Extractor // nil until a caller wires a provider adapter
	OfflineQueue *extractor.OfflineQueue

	metrics *metrics.Collector
}

// Graph is a convenience accessor to the live projection.
func (e *Environment) Graph() *graph.Graph { return e.Projector.Graph() }

// Metrics returns the orchestrator's metrics collector.
func (e *Environment) Metrics() *metrics.Collector { return e.metrics }

// Open wires an Environment for an existing project, discovered by
// walking up from start. Returns an error if no .babel directory is
// found; use Init to create one.
func Open(start string) (*Environment, error) {
	layout, ok := babelpath.Discover(start)
	if !ok {
		return nil, fmt.Errorf("env: no .babel directory found above %s (run Init first)", start)
	}
	return build(layout)
}

// Init creates a new project's .babel directory at root and wires an
// Environment over it. It is a no-op if the directory already exists.
func Init(root string) (*Environment, error) {
	layout := babelpath.NewLayout(root)
	if err := layout.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("env: init %s: %w", root, err)
	}
	return build(layout)
}

func build(layout babelpath.Layout) (*Environment, error) {
	settings, err := babelcfg.NewLoader(layout.Root).Load()
	if err != nil {
		return nil, fmt.Errorf("env: load config: %w", err)
	}

	log, err := eventlog.Open(layout.SharedJournal(), layout.LocalJournal())
	if err != nil {
		return nil, fmt.Errorf("env: open event log: %w", err)
	}

	projector := graph.NewProjector()
	sharedEvents, err := log.Stream(event.ScopeShared)
	if err != nil {
		return nil, fmt.Errorf("env: stream shared journal: %w", err)
	}
	localEvents, err := log.Stream(event.ScopeLocal)
	if err != nil {
		return nil, fmt.Errorf("env: stream local journal: %w", err)
	}
	ordered := eventlog.MergeOrdered(sharedEvents, localEvents)
	if err := projector.Rebuild(ordered); err != nil {
		return nil, fmt.Errorf("env: rebuild graph projection: %w", err)
	}

	refs := refindex.New()
	for _, e := range ordered {
		refs.Add(e)
	}

	mc := metrics.NewCollector(metrics.NoopRecorder())
	orch, err := orchestrator.New(settings.OrchestratorConfig(), mc)
	if err != nil {
		return nil, fmt.Errorf("env: start orchestrator: %w", err)
	}

	registry := symbol.NewParserRegistry()
	extract.RegisterDefaults(registry)
	cache, err := loadOrCreateSymbolCache(layout.SymbolCache())
	if err != nil {
		return nil, fmt.Errorf("env: load symbol cache: %w", err)
	}
	symbols := symbol.NewIndex(registry, cache)

	memos, err := babelcfg.NewMemoStore(layout.Memos(), "")
	if err != nil {
		return nil, fmt.Errorf("env: open memo store: %w", err)
	}

	ex := buildExtractor(settings.LLM)

	return &Environment{
		Layout:       layout,
		Settings:     settings,
		EventLog:     log,
		Projector:    projector,
		RefIndex:     refs,
		Resolver:     resolver.New(projector.Graph()),
		Orchestrator: orch,
		Gatherer:     gather.NewGatherer(orch),
		Symbols:      symbols,
		Memos:        memos,
		Extractor:    ex,
		OfflineQueue: extractor.NewOfflineQueue(layout.ExtractorQueue()),
		metrics:      mc,
	}, nil
}

// buildExtractor wires a concrete provider adapter when the active
// remote provider has an API key available. Returns nil when the
// active config is local (Ollama has no Go client in this build — spec
// §9's open question on model discovery leaves that provider adapter
// to the caller) or no key is configured; WithExtractor lets a caller
// override this after Init/Open.
func buildExtractor(llm babelcfg.LLMSettings) extractor.Extractor {
	if llm.ActiveIsLocal() {
		return nil
	}
	if !llm.Remote.IsAvailable() {
		return nil
	}
	switch llm.Remote.Provider {
	case "claude":
		ex, err := extractor.NewClaudeExtractor(llm.Remote)
		if err != nil {
			return nil
		}
		return ex
	case "openai":
		ex, err := extractor.NewOpenAIExtractor(llm.Remote)
		if err != nil {
			return nil
		}
		return ex
	default:
		return nil
	}
}

func loadOrCreateSymbolCache(path string) (*symbol.Cache, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return symbol.NewCache(), nil
	}
	return symbol.LoadCache(path)
}

// Close shuts down the orchestrator's pools. Safe to call once per
// Environment; does not close journal files (eventlog opens/closes
// them per call, never holds them open).
func (e *Environment) Close() {
	e.Orchestrator.Shutdown(true, false)
}

// SaveSymbols persists the symbol cache back to its on-disk location.
func (e *Environment) SaveSymbols() error {
	return e.Symbols.Save(e.Layout.SymbolCache())
}

// WithExtractor wires a concrete Extractor (a provider adapter) into
// the Environment. Environments are usable without one — callers that
// never extract structure from captured text never need to call this.
func (e *Environment) WithExtractor(ex extractor.Extractor) *Environment {
	e.Extractor = ex
	return e
}
