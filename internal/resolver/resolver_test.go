package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktiyab/babel-tool-sub001/internal/event"
	"github.com/ktiyab/babel-tool-sub001/internal/graph"
	"github.com/ktiyab/babel-tool-sub001/internal/idalias"
)

func TestResolveExactID(t *testing.T) {
	p := graph.NewProjector()
	_, err := p.Project(event.Event{ID: "e1", Type: event.TypeArtifactConfirmed, Data: event.ArtifactConfirmedData{ProposalID: "none", Type: "decision", Summary: "use sqlite"}})
	require.NoError(t, err)
	id := p.Graph().GetNodesByType(graph.NodeDecision)[0].ID

	r := New(p.Graph())
	res := r.Resolve(id)
	assert.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, id, res.Matches[0].NodeID)
}

func TestResolveShortCode(t *testing.T) {
	p := graph.NewProjector()
	_, err := p.Project(event.Event{ID: "e1", Type: event.TypeArtifactConfirmed, Data: event.ArtifactConfirmedData{ProposalID: "none", Type: "decision", Summary: "use sqlite"}})
	require.NoError(t, err)
	id := p.Graph().GetNodesByType(graph.NodeDecision)[0].ID
	code := idalias.Encode(id)

	r := New(p.Graph())
	res := r.Resolve(code)
	assert.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, id, res.Matches[0].NodeID)
}

func TestResolveFuzzyMatchesTokenizedSummary(t *testing.T) {
	p := graph.NewProjector()
	_, _ = p.Project(event.Event{ID: "e1", Type: event.TypeArtifactConfirmed, Data: event.ArtifactConfirmedData{ProposalID: "none", Type: "decision", Summary: "use sqlite for storage"}})

	r := New(p.Graph())
	res := r.Resolve("sqlite")
	assert.Equal(t, StatusResolved, res.Status)
}

func TestResolveNoneForUnknownReference(t *testing.T) {
	p := graph.NewProjector()
	r := New(p.Graph())
	res := r.Resolve("zzz-nonexistent-xyz")
	assert.Equal(t, StatusNone, res.Status)
}
