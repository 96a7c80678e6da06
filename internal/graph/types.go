// Package graph implements the GraphProjector (spec §4.2): a deterministic
// fold of the event log into a directed knowledge graph of artifacts,
// tensions, questions, and commits.
package graph

// NodeType enumerates the derived node kinds (spec §3).
type NodeType string

const (
	NodeProject     NodeType = "project"
	NodePurpose     NodeType = "purpose"
	NodeDecision    NodeType = "decision"
	NodeConstraint  NodeType = "constraint"
	NodePrinciple   NodeType = "principle"
	NodeRequirement NodeType = "requirement"
	NodeTension     NodeType = "tension"
	NodeQuestion    NodeType = "question"
	NodeMemo        NodeType = "memo"
	NodeTopic       NodeType = "topic"
	NodeSymbol      NodeType = "symbol"
	NodeCommit      NodeType = "commit"
)

// Status is a node's lifecycle status. Deprecation and resolution are
// transitions, never deletes (spec §3 Node invariants).
type Status string

const (
	StatusActive     Status = "active"
	StatusSuperseded Status = "superseded"
	StatusDeprecated Status = "deprecated"
	StatusResolved   Status = "resolved"
)

// Relation enumerates edge kinds (spec §3).
type Relation string

const (
	RelSupports       Relation = "supports"
	RelInforms        Relation = "informs"
	RelChallenges     Relation = "challenges"
	RelResolves       Relation = "resolves"
	RelSupersedes     Relation = "supersedes"
	RelAppliesTo      Relation = "applies_to"
	RelLinksToCommit  Relation = "links_to_commit"
)

// Content holds a node's structured payload. Every field but Summary is
// optional; Extra carries type-specific data (e.g. a commit's SHA) that
// doesn't warrant its own first-class field.
type Content struct {
	Summary    string            `json:"summary,omitempty"`
	What       string            `json:"what,omitempty"`
	Why        string            `json:"why,omitempty"`
	Domain     string            `json:"domain,omitempty"`
	Resolution string            `json:"resolution,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Consensus  bool              `json:"consensus,omitempty"`
	Evidence   []string          `json:"evidence,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Node is a derived graph vertex (spec §3).
type Node struct {
	ID            string
	Type          NodeType
	Content       Content
	OriginEventID string
	Scope         string
	Status        Status
}

// Edge is a derived, set-valued graph edge (spec §3): duplicates under
// the same (Source, Target, Relation) key are idempotent.
type Edge struct {
	SourceID      string
	TargetID      string
	Relation      Relation
	OriginEventID string
}

func edgeKey(e Edge) [3]string { return [3]string{e.SourceID, e.TargetID, string(e.Relation)} }

// StatusChange records a node's status transition during one fold step.
type StatusChange struct {
	NodeID string
	From   Status
	To     Status
}

// Delta is the output of folding one event: whatever nodes/edges/status
// transitions it produced. Folding the same event twice from an empty
// graph produces the same Delta (determinism, spec §4.2).
type Delta struct {
	Nodes         []*Node
	Edges         []*Edge
	StatusChanges []StatusChange
}
