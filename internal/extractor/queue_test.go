package extractor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineQueueEnqueueAndPending(t *testing.T) {
	q := NewOfflineQueue(filepath.Join(t.TempDir(), "queue.json"))

	require.NoError(t, q.Enqueue("fix the cache bug", "conv-1"))
	require.NoError(t, q.Enqueue("add retry logic", "conv-2"))

	pending, err := q.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "conv-1", pending[0].SourceID)
	assert.Equal(t, "conv-2", pending[1].SourceID)
}

func TestOfflineQueueDrainRemovesSucceededEntries(t *testing.T) {
	q := NewOfflineQueue(filepath.Join(t.TempDir(), "queue.json"))
	require.NoError(t, q.Enqueue("decision text", "src-1"))

	ex := Func(func(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error) {
		return []Proposal{{SourceID: sourceID, ArtifactType: "decision", Confidence: 0.8}}, nil
	})

	proposals, err := q.Drain(context.Background(), ex, nil)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, "src-1", proposals[0].SourceID)

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOfflineQueueDrainKeepsEntriesThatStayOffline(t *testing.T) {
	q := NewOfflineQueue(filepath.Join(t.TempDir(), "queue.json"))
	require.NoError(t, q.Enqueue("decision text", "src-1"))

	ex := Func(func(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error) {
		return nil, ErrOffline
	})

	proposals, err := q.Drain(context.Background(), ex, nil)
	require.NoError(t, err)
	assert.Empty(t, proposals)

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOfflineQueueDrainRetriesTransientFailureThenSucceeds(t *testing.T) {
	q := NewOfflineQueue(filepath.Join(t.TempDir(), "queue.json"))
	require.NoError(t, q.Enqueue("decision text", "src-1"))

	attempts := 0
	ex := Func(func(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("transient network blip")
		}
		return []Proposal{{SourceID: sourceID}}, nil
	})

	proposals, err := q.Drain(context.Background(), ex, nil)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestOfflineQueuePassesContextForSourceID(t *testing.T) {
	q := NewOfflineQueue(filepath.Join(t.TempDir(), "queue.json"))
	require.NoError(t, q.Enqueue("decision text", "src-1"))

	var sawExisting []ExistingArtifact
	ex := Func(func(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error) {
		sawExisting = existing
		return nil, nil
	})

	_, err := q.Drain(context.Background(), ex, func(sourceID string) []ExistingArtifact {
		return []ExistingArtifact{{ArtifactType: "decision", Summary: "use postgres", ArtifactID: "dec-1"}}
	})
	require.NoError(t, err)
	require.Len(t, sawExisting, 1)
	assert.Equal(t, "dec-1", sawExisting[0].ArtifactID)
}
