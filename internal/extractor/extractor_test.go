package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncAdapterImplementsExtractor(t *testing.T) {
	var ex Extractor = Func(func(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error) {
		return []Proposal{{SourceID: sourceID, ArtifactType: "decision", Confidence: 0.9, Rationale: "looks decisive"}}, nil
	})

	proposals, err := ex.Extract(context.Background(), "we decided to use postgres", "src-1", nil)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, "decision", proposals[0].ArtifactType)
	assert.Equal(t, "src-1", proposals[0].SourceID)
}

func TestFuncAdapterPropagatesErrOffline(t *testing.T) {
	ex := Func(func(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error) {
		return nil, ErrOffline
	})

	_, err := ex.Extract(context.Background(), "text", "src-1", nil)
	assert.ErrorIs(t, err, ErrOffline)
}
