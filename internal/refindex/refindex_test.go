package refindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktiyab/babel-tool-sub001/internal/event"
)

func TestQueryRanksTokenizedMatchesOverPartial(t *testing.T) {
	idx := New()
	idx.Add(event.Event{ID: "full", Data: event.ArtifactConfirmedData{Summary: "user profile auth flow"}})
	idx.Add(event.Event{ID: "partial", Data: event.ArtifactConfirmedData{Summary: "profile page layout"}})

	refs := idx.Query("UserProfile")
	require.NotEmpty(t, refs)
	assert.Equal(t, "full", refs[0].EventID)
}

func TestLoaderStopsAtBudget(t *testing.T) {
	events := map[string]event.Event{
		"a": {ID: "a", Data: event.ArtifactConfirmedData{Summary: "short"}},
		"b": {ID: "b", Data: event.ArtifactConfirmedData{Summary: "another short one here with more words"}},
	}
	loader := NewLoader(func(id string) (event.Event, bool) {
		e, ok := events[id]
		return e, ok
	})

	result := loader.Load([]string{"a", "b"}, TokenBudget(3))
	assert.False(t, result.Complete)
	assert.Len(t, result.Events, 1)

	result = loader.Load([]string{"a", "b"}, TokenBudget(1000))
	assert.True(t, result.Complete)
	assert.Len(t, result.Events, 2)
}
