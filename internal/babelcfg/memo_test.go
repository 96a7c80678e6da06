package babelcfg

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MemoStore {
	t.Helper()
	s, err := NewMemoStore(filepath.Join(t.TempDir(), "memos.json"), "sess-1")
	require.NoError(t, err)
	return s
}

func TestMemoStoreAddGetList(t *testing.T) {
	s := newTestStore(t)

	m, err := s.Add("always run tests before committing", []string{"testing"}, false)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)

	got, ok := s.Get(m.ID)
	require.True(t, ok)
	assert.Equal(t, m.Content, got.Content)

	assert.Len(t, s.List(), 1)
}

func TestMemoStoreInitMemosSurfaceSeparately(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("regular preference", nil, false)
	require.NoError(t, err)
	foundational, err := s.Add("never force-push to main", nil, true)
	require.NoError(t, err)

	init := s.ListInit()
	require.Len(t, init, 1)
	assert.Equal(t, foundational.ID, init[0].ID)
}

func TestMemoStoreRemoveByPrefix(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Add("temporary note", nil, false)
	require.NoError(t, err)

	removed, err := s.Remove(m.ID[:4])
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, s.List())
}

func TestMemoStoreUpdateChangesContentAndContexts(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Add("original", nil, false)
	require.NoError(t, err)

	newContent := "revised"
	updated, ok, err := s.Update(m.ID, &newContent, []string{"topic-a"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "revised", updated.Content)
	assert.Equal(t, []string{"topic-a"}, updated.Contexts)
}

func TestMemoStoreGetRelevantMatchesContextIntersection(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("global note", nil, false)
	require.NoError(t, err)
	_, err = s.Add("scoped note", []string{"auth"}, false)
	require.NoError(t, err)
	_, err = s.Add("unrelated", []string{"billing"}, false)
	require.NoError(t, err)

	relevant := s.GetRelevant([]string{"auth"})
	assert.Len(t, relevant, 2)
}

func TestMemoStoreIncrementUse(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Add("counted memo", nil, false)
	require.NoError(t, err)

	ok, err := s.IncrementUse(m.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := s.Get(m.ID)
	assert.Equal(t, 1, got.UseCount)
}

func TestMemoStoreCandidateLifecyclePromotesAfterThreshold(t *testing.T) {
	s := newTestStore(t)

	c, err := s.AddCandidate("use feature flags for risky changes", []string{"release"})
	require.NoError(t, err)
	assert.False(t, ShouldSuggestPromotion(c))

	s2, err := NewMemoStore(s.path, "sess-2")
	require.NoError(t, err)
	c2, err := s2.AddCandidate("use feature flags for risky changes", []string{"release"})
	require.NoError(t, err)
	assert.True(t, ShouldSuggestPromotion(c2))

	pending := s2.PendingSuggestions()
	require.Len(t, pending, 1)

	memo, ok, err := s2.Promote(pending[0].ID, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "promoted", memo.Source)
	assert.Empty(t, s2.ListCandidates(true))
}

func TestMemoStoreDismissCandidate(t *testing.T) {
	s := newTestStore(t)
	c, err := s.AddCandidate("pattern to ignore", nil)
	require.NoError(t, err)

	ok, err := s.Dismiss(c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Empty(t, s.ListCandidates(false))
	assert.Len(t, s.ListCandidates(true), 1)
}
