package graph

import (
	"errors"
	"fmt"

	"github.com/ktiyab/babel-tool-sub001/internal/event"
)

// ErrProjectionConflict names a fold step that finds the same derived
// node id claimed by two incompatible types. Per spec §4.2 this is never
// fatal, and Project never returns it: the projector surfaces a tension
// node instead and continues.
var ErrProjectionConflict = errors.New("graph: projection conflict")

// proposal is a pending STRUCTURE_PROPOSED record, not yet a node.
type proposal struct {
	eventID string
	typ     string
	summary string
	detail  string
}

// Projector folds events into a Graph (spec §4.2: "project as a fold").
// It is the single owner of graph mutation; concurrent Project calls
// from multiple goroutines are not supported — callers serialize
// through the same single-writer discipline the event log uses.
type Projector struct {
	graph      *Graph
	proposals  map[string]proposal // proposal event id -> proposal
	activeID   string              // id of the most recently declared purpose node; deprecating that node does not clear it
}

// NewProjector returns a projector over an empty graph.
func NewProjector() *Projector {
	return &Projector{graph: New(), proposals: make(map[string]proposal)}
}

// Graph returns the live projection. Safe to read concurrently with no
// in-flight Project call.
func (p *Projector) Graph() *Graph { return p.graph }

// Rebuild wipes all derived state and replays events in order (spec
// §4.2 "used after sync/merge"). Events must already be in canonical
// order (see eventlog.MergeOrdered).
func (p *Projector) Rebuild(events []event.Event) error {
	p.graph = New()
	p.proposals = make(map[string]proposal)
	p.activeID = ""
	for _, e := range events {
		if _, err := p.Project(e); err != nil {
			return err
		}
	}
	return nil
}

// Project folds one event into the graph, returning the delta it
// produced. It never returns an error for domain-level conflicts
// (those become tension nodes); the error return is reserved for
// malformed event data the decoder itself let through maliciously.
func (p *Projector) Project(e event.Event) (Delta, error) {
	switch data := e.Data.(type) {
	case event.ProjectCreatedData:
		return p.projectSimple(e, NodeProject, Content{Summary: data.Name}), nil
	case event.PurposeDeclaredData:
		return p.projectPurpose(e, data), nil
	case event.StructureProposedData:
		return p.projectProposal(e, data), nil
	case event.ArtifactConfirmedData:
		return p.projectConfirmation(e, data), nil
	case event.QuestionRaisedData:
		return p.projectSimple(e, NodeQuestion, Content{Summary: data.Summary}), nil
	case event.QuestionResolvedData:
		return p.resolveTarget(e, data.QuestionID, data.Resolution), nil
	case event.ChallengeRaisedData:
		return p.projectChallenge(e, data), nil
	case event.EndorsedData:
		return p.attachValidation(e, data.TargetID, true, ""), nil
	case event.EvidenceAttachedData:
		return p.attachValidation(e, data.TargetID, false, data.Evidence), nil
	case event.DeprecatedData:
		return p.deprecateTarget(e, data), nil
	case event.LinkCreatedData:
		return p.projectLink(e, data), nil
	case event.CommitCapturedData:
		return p.projectCommit(e, data), nil
	case event.UnknownData:
		return Delta{}, nil // forward-compatible: no structural effect
	default:
		return Delta{}, fmt.Errorf("graph: unhandled event data type %T", data)
	}
}

func nodeID(t NodeType, originEventID string) string {
	return fmt.Sprintf("%s_%s", t, originEventID)
}

func (p *Projector) projectSimple(e event.Event, t NodeType, c Content) Delta {
	id := nodeID(t, e.ID)
	if existing := p.graph.GetNode(id); existing != nil && existing.Type != t {
		return p.conflict(e, id, t)
	}
	n := &Node{ID: id, Type: t, Content: c, OriginEventID: e.ID, Scope: string(e.Scope), Status: StatusActive}
	p.graph.upsertNode(n)
	return Delta{Nodes: []*Node{n}}
}

func (p *Projector) projectPurpose(e event.Event, data event.PurposeDeclaredData) Delta {
	delta := p.projectSimple(e, NodePurpose, Content{Summary: data.What, What: data.What, Why: data.Why})
	if len(delta.Nodes) > 0 {
		p.activeID = delta.Nodes[0].ID
	}
	return delta
}

func (p *Projector) projectProposal(e event.Event, data event.StructureProposedData) Delta {
	p.proposals[e.ID] = proposal{eventID: e.ID, typ: data.ProposalType, summary: data.Summary, detail: data.Detail}
	return Delta{}
}

func (p *Projector) projectConfirmation(e event.Event, data event.ArtifactConfirmedData) Delta {
	t := NodeType(data.Type)
	id := nodeID(t, e.ID)
	if existing := p.graph.GetNode(id); existing != nil && existing.Type != t {
		return p.conflict(e, id, t)
	}

	n := &Node{
		ID:            id,
		Type:          t,
		Content:       Content{Summary: data.Summary, What: data.What, Why: data.Why, Domain: data.Domain},
		OriginEventID: e.ID,
		Scope:         string(e.Scope),
		Status:        StatusActive,
	}
	p.graph.upsertNode(n)
	delta := Delta{Nodes: []*Node{n}}
	delete(p.proposals, data.ProposalID)

	purposeID := data.PurposeID
	if purposeID == "" {
		purposeID = p.activeID
	}
	if purposeID != "" && p.graph.GetNode(purposeID) != nil {
		if edge, added := p.graph.addEdge(Edge{SourceID: id, TargetID: purposeID, Relation: RelInforms, OriginEventID: e.ID}); added {
			delta.Edges = append(delta.Edges, edge)
		}
	}
	return delta
}

func (p *Projector) projectChallenge(e event.Event, data event.ChallengeRaisedData) Delta {
	id := nodeID(NodeTension, e.ID)
	n := &Node{ID: id, Type: NodeTension, Content: Content{Summary: data.Summary}, OriginEventID: e.ID, Scope: string(e.Scope), Status: StatusActive}
	p.graph.upsertNode(n)
	delta := Delta{Nodes: []*Node{n}}
	if data.TargetID != "" {
		if edge, added := p.graph.addEdge(Edge{SourceID: id, TargetID: data.TargetID, Relation: RelChallenges, OriginEventID: e.ID}); added {
			delta.Edges = append(delta.Edges, edge)
		}
	}
	return delta
}

func (p *Projector) projectLink(e event.Event, data event.LinkCreatedData) Delta {
	edge, added := p.graph.addEdge(Edge{SourceID: data.SourceID, TargetID: data.TargetID, Relation: Relation(data.Relation), OriginEventID: e.ID})
	if !added {
		return Delta{}
	}
	return Delta{Edges: []*Edge{edge}}
}

func (p *Projector) projectCommit(e event.Event, data event.CommitCapturedData) Delta {
	id := nodeID(NodeCommit, e.ID)
	n := &Node{ID: id, Type: NodeCommit, Content: Content{Summary: data.Message, Extra: map[string]string{"sha": data.SHA}}, OriginEventID: e.ID, Scope: string(e.Scope), Status: StatusActive}
	p.graph.upsertNode(n)
	delta := Delta{Nodes: []*Node{n}}
	for _, artifactID := range data.Artifacts {
		if edge, added := p.graph.addEdge(Edge{SourceID: artifactID, TargetID: id, Relation: RelLinksToCommit, OriginEventID: e.ID}); added {
			delta.Edges = append(delta.Edges, edge)
		}
	}
	return delta
}

func (p *Projector) resolveTarget(e event.Event, targetID, resolution string) Delta {
	n := p.graph.GetNode(targetID)
	if n == nil {
		return Delta{}
	}
	n.Content.Resolution = resolution
	change, changed := p.graph.setStatus(targetID, StatusResolved)
	if !changed {
		return Delta{}
	}
	if edge, added := p.graph.addEdge(Edge{SourceID: targetID, TargetID: targetID, Relation: RelResolves, OriginEventID: e.ID}); added {
		return Delta{StatusChanges: []StatusChange{change}, Edges: []*Edge{edge}}
	}
	return Delta{StatusChanges: []StatusChange{change}}
}

func (p *Projector) deprecateTarget(e event.Event, data event.DeprecatedData) Delta {
	n := p.graph.GetNode(data.TargetID)
	if n == nil {
		return Delta{}
	}
	if data.Reason != "" {
		n.Content.Reason = data.Reason
	}
	change, changed := p.graph.setStatus(data.TargetID, StatusDeprecated)
	if !changed {
		return Delta{}
	}
	return Delta{StatusChanges: []StatusChange{change}}
}

func (p *Projector) attachValidation(e event.Event, targetID string, consensus bool, evidence string) Delta {
	n := p.graph.GetNode(targetID)
	if n == nil {
		return Delta{}
	}
	if consensus {
		n.Content.Consensus = true
	}
	if evidence != "" {
		n.Content.Evidence = append(n.Content.Evidence, evidence)
	}
	return Delta{Nodes: []*Node{n}}
}

func (p *Projector) conflict(e event.Event, conflictingID string, wantType NodeType) Delta {
	tensionID := nodeID(NodeTension, e.ID)
	n := &Node{
		ID:   tensionID,
		Type: NodeTension,
		Content: Content{
			Summary: fmt.Sprintf("projection conflict: %s already exists with a different type than %s", conflictingID, wantType),
		},
		OriginEventID: e.ID,
		Scope:         string(e.Scope),
		Status:        StatusActive,
	}
	p.graph.upsertNode(n)
	edge, added := p.graph.addEdge(Edge{SourceID: tensionID, TargetID: conflictingID, Relation: RelChallenges, OriginEventID: e.ID})
	delta := Delta{Nodes: []*Node{n}}
	if added {
		delta.Edges = append(delta.Edges, edge)
	}
	return delta
}
