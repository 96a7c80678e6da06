package eventlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktiyab/babel-tool-sub001/internal/event"
)

func openTemp(t *testing.T) *EventLog {
	t.Helper()
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "shared", "events.jsonl"), filepath.Join(dir, "local", "events.jsonl"))
	require.NoError(t, err)
	return l
}

func TestAppendThenStreamRoundTrips(t *testing.T) {
	l := openTemp(t)

	id, err := l.Append(event.ScopeShared, event.Event{
		Type: event.TypeProjectCreated,
		Data: event.ProjectCreatedData{Name: "babel"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	events, err := l.Stream(event.ScopeShared)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.True(t, l.Exists(id))
}

func TestAppendIsIdempotentForIdenticalPayload(t *testing.T) {
	l := openTemp(t)
	now := time.Now().UTC()
	e := event.Event{Type: event.TypePurposeDeclared, Data: event.PurposeDeclaredData{What: "preserve intent"}, CreatedAt: now}

	id1, err := l.Append(event.ScopeShared, e)
	require.NoError(t, err)
	id2, err := l.Append(event.ScopeShared, e)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	events, err := l.Stream(event.ScopeShared)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestScopeIsolation(t *testing.T) {
	l := openTemp(t)
	_, err := l.Append(event.ScopeShared, event.Event{Type: event.TypeProjectCreated, Data: event.ProjectCreatedData{Name: "a"}})
	require.NoError(t, err)
	_, err = l.Append(event.ScopeLocal, event.Event{Type: event.TypePurposeDeclared, Data: event.PurposeDeclaredData{What: "local only"}})
	require.NoError(t, err)

	shared, err := l.Stream(event.ScopeShared)
	require.NoError(t, err)
	assert.Len(t, shared, 1)

	local, err := l.Stream(event.ScopeLocal)
	require.NoError(t, err)
	assert.Len(t, local, 1)

	both, err := l.Stream("")
	require.NoError(t, err)
	assert.Len(t, both, 2)
}

func TestStreamToleratesTornTrailingLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shared", "events.jsonl")
	require.NoError(t, appendLine(path, event.Event{
		ID: "abc", Type: event.TypeProjectCreated, Data: event.ProjectCreatedData{Name: "x"}, CreatedAt: time.Now().UTC(), Scope: event.ScopeShared,
	}))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"id":"broken-tail`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, _, err := readJournal(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "abc", events[0].ID)
}

func TestSyncQuarantinesConflictingDuplicateID(t *testing.T) {
	dir := t.TempDir()
	sharedPath := filepath.Join(dir, "shared", "events.jsonl")
	localPath := filepath.Join(dir, "local", "events.jsonl")

	l, err := Open(sharedPath, localPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	id, err := l.Append(event.ScopeShared, event.Event{Type: event.TypeProjectCreated, Data: event.ProjectCreatedData{Name: "a"}, CreatedAt: now})
	require.NoError(t, err)

	// Simulate an external merge tool appending a conflicting record
	// under the same id with a different payload.
	require.NoError(t, appendLine(sharedPath, event.Event{
		ID: id, Type: event.TypeProjectCreated, Data: event.ProjectCreatedData{Name: "b"}, CreatedAt: now.Add(time.Second), Scope: event.ScopeShared,
	}))

	conflicts, err := l.Sync()
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, id, conflicts[0].ID)
}
