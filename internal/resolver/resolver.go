// Package resolver implements the IDResolver (spec §4.7): resolving a
// user-supplied reference to a node id by exact match, short-code
// decode, or token-scored fuzzy match — never auto-disambiguating.
package resolver

import (
	"sort"

	"github.com/ktiyab/babel-tool-sub001/internal/graph"
	"github.com/ktiyab/babel-tool-sub001/internal/idalias"
	"github.com/ktiyab/babel-tool-sub001/internal/tokenizer"
)

// Status is the outcome of a Resolve call.
type Status string

const (
	StatusResolved  Status = "resolved"
	StatusAmbiguous Status = "ambiguous"
	StatusNone      Status = "none"
)

// Match pairs a candidate node id with the score (if any) that produced it.
type Match struct {
	NodeID string
	Score  float64
}

// Result is the resolver's output.
type Result struct {
	Status  Status
	Matches []Match
}

// Resolver resolves references against a live graph.
type Resolver struct {
	graph *graph.Graph
}

// New builds a Resolver over a graph.
func New(g *graph.Graph) *Resolver {
	return &Resolver{graph: g}
}

// Resolve tries, in order: (1) exact id match, (2) AA-BB short-code
// decode against every known node id, (3) token-scored fuzzy match
// against node summaries. The first step to produce any candidates
// wins; it never falls through to a later, looser step once an earlier
// one has an opinion.
func (r *Resolver) Resolve(ref string) Result {
	if n := r.graph.GetNode(ref); n != nil {
		return Result{Status: StatusResolved, Matches: []Match{{NodeID: ref, Score: 1}}}
	}

	ids := r.allNodeIDs()
	if decoded := idalias.Decode(ref, ids); len(decoded) > 0 {
		return classify(decoded)
	}

	return r.fuzzy(ref, ids)
}

func (r *Resolver) allNodeIDs() []string {
	var ids []string
	for _, t := range []graph.NodeType{
		graph.NodeProject, graph.NodePurpose, graph.NodeDecision, graph.NodeConstraint,
		graph.NodePrinciple, graph.NodeRequirement, graph.NodeTension, graph.NodeQuestion,
		graph.NodeMemo, graph.NodeTopic, graph.NodeSymbol, graph.NodeCommit,
	} {
		for _, n := range r.graph.GetNodesByType(t) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func classify(ids []string) Result {
	if len(ids) == 1 {
		return Result{Status: StatusResolved, Matches: []Match{{NodeID: ids[0], Score: 1}}}
	}
	matches := make([]Match, len(ids))
	for i, id := range ids {
		matches[i] = Match{NodeID: id, Score: 1}
	}
	return Result{Status: StatusAmbiguous, Matches: matches}
}

func (r *Resolver) fuzzy(ref string, ids []string) Result {
	queryTokens := tokenizer.Text(ref)
	if len(queryTokens) == 0 {
		return Result{Status: StatusNone}
	}

	var matches []Match
	for _, id := range ids {
		n := r.graph.GetNode(id)
		if n == nil {
			continue
		}
		score := tokenizer.MatchScore(queryTokens, n.Content.Summary) +
			tokenizer.MatchScore(queryTokens, n.Content.What)
		if score > 0 {
			matches = append(matches, Match{NodeID: id, Score: score})
		}
	}
	if len(matches) == 0 {
		return Result{Status: StatusNone}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) == 1 {
		return Result{Status: StatusResolved, Matches: matches}
	}
	if matches[0].Score > matches[1].Score {
		return Result{Status: StatusResolved, Matches: matches[:1]}
	}
	return Result{Status: StatusAmbiguous, Matches: matches}
}
