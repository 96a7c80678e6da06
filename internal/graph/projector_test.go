package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktiyab/babel-tool-sub001/internal/event"
)

func mkEvent(id string, typ event.Type, data event.Data) event.Event {
	return event.Event{ID: id, Type: typ, Data: data, CreatedAt: time.Now().UTC(), Scope: event.ScopeShared}
}

func TestBootstrapCreatesPurposeNode(t *testing.T) {
	p := NewProjector()
	_, err := p.Project(mkEvent("e1", event.TypeProjectCreated, event.ProjectCreatedData{Name: "babel"}))
	require.NoError(t, err)
	_, err = p.Project(mkEvent("e2", event.TypePurposeDeclared, event.PurposeDeclaredData{What: "preserve intent"}))
	require.NoError(t, err)

	purposes := p.Graph().GetNodesByType(NodePurpose)
	require.Len(t, purposes, 1)
	assert.Equal(t, "preserve intent", purposes[0].Content.What)
	assert.Equal(t, "e2", purposes[0].OriginEventID)
}

func TestProposalConfirmationLinksToActivePurpose(t *testing.T) {
	p := NewProjector()
	_, _ = p.Project(mkEvent("e1", event.TypePurposeDeclared, event.PurposeDeclaredData{What: "preserve intent"}))
	_, _ = p.Project(mkEvent("e2", event.TypeStructureProposed, event.StructureProposedData{ProposalType: "decision", Summary: "use sqlite"}))
	_, err := p.Project(mkEvent("e3", event.TypeArtifactConfirmed, event.ArtifactConfirmedData{ProposalID: "e2", Type: "decision", Summary: "use sqlite"}))
	require.NoError(t, err)

	decisions := p.Graph().GetNodesByType(NodeDecision)
	require.Len(t, decisions, 1)
	assert.Equal(t, "use sqlite", decisions[0].Content.Summary)

	edges := p.Graph().GetEdges(decisions[0].ID, DirOut)
	require.Len(t, edges, 1)
	assert.Equal(t, RelInforms, edges[0].Relation)
}

func TestLinkCreatedIsIdempotent(t *testing.T) {
	p := NewProjector()
	for i := 0; i < 3; i++ {
		_, err := p.Project(mkEvent("link-"+string(rune('a'+i)), event.TypeLinkCreated, event.LinkCreatedData{SourceID: "a", TargetID: "b", Relation: "supports"}))
		require.NoError(t, err)
	}
	assert.Len(t, p.Graph().GetEdges("a", DirOut), 1)
}

func TestDeprecatePreservesNode(t *testing.T) {
	p := NewProjector()
	_, _ = p.Project(mkEvent("e1", event.TypeArtifactConfirmed, event.ArtifactConfirmedData{ProposalID: "none", Type: "decision", Summary: "x"}))
	id := p.Graph().GetNodesByType(NodeDecision)[0].ID

	_, err := p.Project(mkEvent("e2", event.TypeDeprecated, event.DeprecatedData{TargetID: id, Reason: "superseded by y"}))
	require.NoError(t, err)

	n := p.Graph().GetNode(id)
	require.NotNil(t, n)
	assert.Equal(t, StatusDeprecated, n.Status)
	assert.Equal(t, "superseded by y", n.Content.Reason)
}

func TestRebuildIsDeterministic(t *testing.T) {
	events := []event.Event{
		mkEvent("e1", event.TypeProjectCreated, event.ProjectCreatedData{Name: "babel"}),
		mkEvent("e2", event.TypePurposeDeclared, event.PurposeDeclaredData{What: "preserve intent"}),
		mkEvent("e3", event.TypeArtifactConfirmed, event.ArtifactConfirmedData{ProposalID: "none", Type: "decision", Summary: "use sqlite"}),
	}

	p1 := NewProjector()
	require.NoError(t, p1.Rebuild(events))
	p2 := NewProjector()
	require.NoError(t, p2.Rebuild(events))

	assert.Equal(t, len(p1.Graph().GetNodesByType(NodeDecision)), len(p2.Graph().GetNodesByType(NodeDecision)))
	assert.Equal(t, p1.Graph().GetNodesByType(NodeDecision)[0].ID, p2.Graph().GetNodesByType(NodeDecision)[0].ID)
}
