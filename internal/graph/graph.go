package graph

import "sort"

// Direction selects which side of an edge Graph.Edges walks from.
type Direction int

const (
	DirOut Direction = iota
	DirIn
	DirBoth
)

// Graph is the in-memory projection: an owned, single-writer store with
// concurrent-safe reads left to the caller (spec §5 — "concurrent
// readers are fine, writes go through the projector").
type Graph struct {
	nodes map[string]*Node
	edges map[[3]string]*Edge
	out   map[string][]*Edge // source id -> edges
	in    map[string][]*Edge // target id -> edges
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[[3]string]*Edge),
		out:   make(map[string][]*Edge),
		in:    make(map[string][]*Edge),
	}
}

// GetNode returns the node by id, or nil if absent.
func (g *Graph) GetNode(id string) *Node {
	return g.nodes[id]
}

// GetNodesByType returns every node of a type, sorted by id for
// deterministic iteration.
func (g *Graph) GetNodesByType(t NodeType) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetEdges returns the edges touching id in the given direction, sorted
// for deterministic iteration.
func (g *Graph) GetEdges(id string, dir Direction) []*Edge {
	var out []*Edge
	switch dir {
	case DirOut:
		out = append(out, g.out[id]...)
	case DirIn:
		out = append(out, g.in[id]...)
	case DirBoth:
		out = append(out, g.out[id]...)
		out = append(out, g.in[id]...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TargetID != out[j].TargetID {
			return out[i].TargetID < out[j].TargetID
		}
		return out[i].Relation < out[j].Relation
	})
	return out
}

// Neighbors walks outbound edges whose relation is in relations (or any
// relation if relations is empty) up to depth hops, returning the
// reached node ids (excluding the start id), deduplicated.
func (g *Graph) Neighbors(id string, relations []Relation, depth int) []string {
	allowed := make(map[Relation]bool, len(relations))
	for _, r := range relations {
		allowed[r] = true
	}
	visited := map[string]bool{id: true}
	frontier := []string{id}
	var result []string

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string
		for _, cur := range frontier {
			for _, e := range g.out[cur] {
				if len(relations) > 0 && !allowed[e.Relation] {
					continue
				}
				if visited[e.TargetID] {
					continue
				}
				visited[e.TargetID] = true
				result = append(result, e.TargetID)
				next = append(next, e.TargetID)
			}
		}
		frontier = next
	}
	sort.Strings(result)
	return result
}

// upsertNode inserts or replaces a node by id. Used only by the
// projector during folding.
func (g *Graph) upsertNode(n *Node) {
	g.nodes[n.ID] = n
}

// setStatus transitions a node's status if it differs, returning the
// StatusChange if one occurred.
func (g *Graph) setStatus(id string, to Status) (StatusChange, bool) {
	n, ok := g.nodes[id]
	if !ok || n.Status == to {
		return StatusChange{}, false
	}
	from := n.Status
	n.Status = to
	return StatusChange{NodeID: id, From: from, To: to}, true
}

// addEdge is idempotent: applying the same (source, target, relation)
// tuple more than once yields exactly one edge (spec invariant 4).
// Returns the edge and whether it was newly added.
func (g *Graph) addEdge(e Edge) (*Edge, bool) {
	key := edgeKey(e)
	if existing, ok := g.edges[key]; ok {
		return existing, false
	}
	stored := e
	g.edges[key] = &stored
	g.out[e.SourceID] = append(g.out[e.SourceID], &stored)
	g.in[e.TargetID] = append(g.in[e.TargetID], &stored)
	return &stored, true
}
