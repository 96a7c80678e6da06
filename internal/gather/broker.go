package gather

import (
	"path/filepath"
	"sort"
	"strings"
)

// ChunkStrategy selects how the broker groups sources into chunks.
type ChunkStrategy string

const (
	// StrategySize fills chunks in source order until the size limit.
	StrategySize ChunkStrategy = "size"
	// StrategyCoherence groups related sources (same directory,
	// test/implementation pairs, search results last) before filling
	// chunks — the default, since it keeps related context together.
	StrategyCoherence ChunkStrategy = "coherence"
	// StrategyPriority sorts by SourcePriority before filling chunks.
	StrategyPriority ChunkStrategy = "priority"
)

// defaultContextLimitKB is a safe default context budget for most LLMs.
const defaultContextLimitKB = 100

// templateOverheadBytes accounts for the banner/header/manifest
// formatting ContextTemplate adds on top of raw source content.
const templateOverheadBytes = 2048

// Chunk is a group of sources that together fit within the broker's
// context limit.
type Chunk struct {
	Sources       []Source
	EstimatedSize int
}

func (c *Chunk) add(s Source) {
	c.Sources = append(c.Sources, s)
	c.EstimatedSize += s.EstimatedSizeBytes
}

// SourceCount returns how many sources are in the chunk.
func (c *Chunk) SourceCount() int { return len(c.Sources) }

// EstimatedSizeKB returns the chunk's estimated size in kilobytes.
func (c *Chunk) EstimatedSizeKB() float64 { return float64(c.EstimatedSize) / 1024 }

// ChunkBroker splits a Plan's sources into Chunks that each fit within
// a context size budget, using one of three strategies.
type ChunkBroker struct {
	contextLimit int
	strategy     ChunkStrategy
}

// NewChunkBroker builds a broker with the given context budget (KB)
// and chunking strategy. A non-positive limit falls back to the default.
func NewChunkBroker(contextLimitKB int, strategy ChunkStrategy) *ChunkBroker {
	if contextLimitKB <= 0 {
		contextLimitKB = defaultContextLimitKB
	}
	if strategy == "" {
		strategy = StrategyCoherence
	}
	return &ChunkBroker{contextLimit: contextLimitKB*1024 - templateOverheadBytes, strategy: strategy}
}

// PlanChunks estimates source sizes and groups them into chunks
// according to the broker's strategy.
func (b *ChunkBroker) PlanChunks(plan *Plan) []*Chunk {
	if len(plan.Sources) == 0 {
		return nil
	}
	b.estimateSizes(plan.Sources)

	switch b.strategy {
	case StrategySize:
		return b.chunkBySize(plan.Sources)
	case StrategyPriority:
		return b.chunkByPriority(plan.Sources)
	case StrategyCoherence:
		return b.chunkByCoherence(plan.Sources)
	default:
		return b.chunkBySize(plan.Sources)
	}
}

func (b *ChunkBroker) estimateSizes(sources []Source) {
	for i := range sources {
		s := &sources[i]
		if s.EstimatedSizeBytes > 0 {
			continue
		}
		switch s.Type {
		case SourceFile:
			s.EstimatedSizeBytes = estimateFileSize(s.Ref)
		case SourceGrep:
			path, _ := s.Params["path"].(string)
			s.EstimatedSizeBytes = estimateGrepSize(s.Ref, path)
		case SourceBash:
			s.EstimatedSizeBytes = 5 * 1024
		case SourceGlob:
			s.EstimatedSizeBytes = 2 * 1024
		}
		if s.EstimatedSizeBytes == 0 {
			s.EstimatedSizeBytes = 1024
		}
	}
}

func (b *ChunkBroker) chunkBySize(sources []Source) []*Chunk {
	var chunks []*Chunk
	current := &Chunk{}

	for _, s := range sources {
		if current.EstimatedSize+s.EstimatedSizeBytes > b.contextLimit && len(current.Sources) > 0 {
			chunks = append(chunks, current)
			current = &Chunk{}
		}
		current.add(s)
	}
	if len(current.Sources) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func (b *ChunkBroker) chunkByPriority(sources []Source) []*Chunk {
	sorted := append([]Source(nil), sources...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })
	return b.chunkBySize(sorted)
}

func (b *ChunkBroker) chunkByCoherence(sources []Source) []*Chunk {
	ordered := groupByAffinity(sources)

	sort.SliceStable(ordered, func(i, j int) bool {
		si := strings.HasPrefix(ordered[i].name, "search:")
		sj := strings.HasPrefix(ordered[j].name, "search:")
		if si != sj {
			return sj
		}
		return minPriority(ordered[i].sources) < minPriority(ordered[j].sources)
	})

	var chunks []*Chunk
	current := &Chunk{}

	for _, g := range ordered {
		sort.SliceStable(g.sources, func(i, j int) bool { return g.sources[i].Priority < g.sources[j].Priority })
		for _, s := range g.sources {
			if current.EstimatedSize+s.EstimatedSizeBytes > b.contextLimit && len(current.Sources) > 0 {
				chunks = append(chunks, current)
				current = &Chunk{}
			}
			current.add(s)
		}
	}
	if len(current.Sources) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func minPriority(sources []Source) SourcePriority {
	min := SourcePriority(999)
	for _, s := range sources {
		if s.Priority < min {
			min = s.Priority
		}
	}
	return min
}

// namedGroup is a coherence group with its sources, kept in
// first-occurrence order so that grouping stays deterministic instead
// of depending on Go's randomized map iteration.
type namedGroup struct {
	name    string
	sources []Source
}

func groupByAffinity(sources []Source) []namedGroup {
	index := map[string]int{}
	var ordered []namedGroup
	for _, s := range sources {
		key := determineGroup(s)
		if i, ok := index[key]; ok {
			ordered[i].sources = append(ordered[i].sources, s)
			continue
		}
		index[key] = len(ordered)
		ordered = append(ordered, namedGroup{name: key, sources: []Source{s}})
	}
	return ordered
}

// determineGroup assigns a source to a coherence group: explicit tag
// first, then test/implementation pairing, then directory, then by
// source type: grep results form one search group, which
// chunkByCoherence always places last; bash and glob sources form meta
// groups that are ordered by priority like the rest.
func determineGroup(s Source) string {
	if s.Group != "" {
		return "explicit:" + s.Group
	}

	switch s.Type {
	case SourceFile:
		name := strings.ToLower(filepath.Base(s.Ref))
		if strings.Contains(name, "test") || strings.Contains(name, "spec") {
			impl := name
			for _, affix := range []string{"test_", "_test", "spec_", "_spec"} {
				impl = strings.ReplaceAll(impl, affix, "")
			}
			return "test:" + impl
		}
		return "dir:" + filepath.Dir(s.Ref)
	case SourceGrep:
		return "search:grep"
	case SourceBash:
		return "meta:commands"
	case SourceGlob:
		return "meta:glob"
	default:
		return "other"
	}
}

// EstimateChunkCount estimates how many chunks a plan will need
// without materializing them.
func (b *ChunkBroker) EstimateChunkCount(plan *Plan) int {
	b.estimateSizes(plan.Sources)
	total := 0
	for _, s := range plan.Sources {
		total += s.EstimatedSizeBytes
	}
	if total == 0 {
		return 1
	}
	count := (total + b.contextLimit - 1) / b.contextLimit
	if count < 1 {
		count = 1
	}
	return count
}

// FitsInSingleChunk reports whether plan's estimated total size fits
// within the broker's context limit.
func (b *ChunkBroker) FitsInSingleChunk(plan *Plan) bool {
	b.estimateSizes(plan.Sources)
	total := 0
	for _, s := range plan.Sources {
		total += s.EstimatedSizeBytes
	}
	return total <= b.contextLimit
}
