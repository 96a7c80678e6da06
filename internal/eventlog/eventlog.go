// Package eventlog implements the dual-scope, append-only event journal
// (spec §4.1): append, stream, exists, and the sync/quarantine path that
// reconciles the shared journal after an external merge.
package eventlog

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ktiyab/babel-tool-sub001/internal/event"
)

// Sentinel errors for the fixed taxonomy in spec §7.
var (
	// ErrDuplicateEventID is returned when an appended event's id already
	// exists with a different payload. Ids are content-addressed, so this
	// should only happen after a hash-space collision or a tampered line.
	ErrDuplicateEventID = errors.New("eventlog: duplicate event id with mismatched payload")
	// ErrScopeUnknown is returned for any scope other than ScopeShared/ScopeLocal.
	ErrScopeUnknown = errors.New("eventlog: unknown scope")
	// ErrJournalCorruption marks a journal whose corruption is not a
	// tolerable torn trailing line (e.g. a bad line mid-file).
	ErrJournalCorruption = errors.New("eventlog: journal corruption")
)

// EventLog owns the two per-scope journals for one project. It is safe
// for concurrent use: each scope serializes its own appends behind an
// advisory file lock (internal/lockfile), and the in-memory id index is
// guarded by a mutex.
type EventLog struct {
	sharedPath string
	localPath  string

	mu    sync.RWMutex
	known map[string]knownEvent // id -> event, across both scopes (invariant: ids never collide across scopes)
}

type knownEvent struct {
	scope    event.Scope
	typ      event.Type
	dataHash string
}

// Open constructs an EventLog for the given journal paths and replays
// both journals once to build the in-memory id index used for duplicate
// detection and Exists. It does not hold any journal open between calls;
// each Append/Stream opens, operates, and closes.
func Open(sharedPath, localPath string) (*EventLog, error) {
	l := &EventLog{
		sharedPath: sharedPath,
		localPath:  localPath,
		known:      make(map[string]knownEvent),
	}
	for _, scope := range []event.Scope{event.ScopeShared, event.ScopeLocal} {
		events, _, err := readJournal(l.pathFor(scope))
		if err != nil {
			return nil, fmt.Errorf("eventlog: open %s: %w", scope, err)
		}
		for _, e := range events {
			l.known[e.ID] = knownEvent{scope: scope, typ: e.Type, dataHash: payloadHash(e)}
		}
	}
	return l, nil
}

func (l *EventLog) pathFor(scope event.Scope) string {
	switch scope {
	case event.ScopeShared:
		return l.sharedPath
	case event.ScopeLocal:
		return l.localPath
	default:
		return ""
	}
}

// Append assigns the event an id (if unset), writes it to the scope's
// journal under an exclusive advisory lock, and returns the id. If the
// event's id already exists in the same scope with an identical record
// (type, data, created_at, parent ids), Append is a no-op and returns the
// existing id — at least once delivery by a retrying caller must not
// duplicate history. The same id with a different record, or already
// present in the other scope, is ErrDuplicateEventID.
func (l *EventLog) Append(scope event.Scope, e event.Event) (string, error) {
	if scope != event.ScopeShared && scope != event.ScopeLocal {
		return "", ErrScopeUnknown
	}
	path := l.pathFor(scope)

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.Scope = scope

	if e.ID == "" {
		id, err := event.NewID(e.Type, e.Data, e.CreatedAt, 0)
		if err != nil {
			return "", fmt.Errorf("eventlog: derive id: %w", err)
		}
		e.ID = id
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	hash := payloadHash(e)
	if existing, ok := l.known[e.ID]; ok {
		if existing.typ == e.Type && existing.dataHash == hash {
			return e.ID, nil
		}
		return "", fmt.Errorf("%w: id %s", ErrDuplicateEventID, e.ID)
	}

	unlock, err := lockExclusive(path)
	if err != nil {
		return "", fmt.Errorf("eventlog: lock %s: %w", scope, err)
	}
	defer unlock()

	if err := appendLine(path, e); err != nil {
		return "", fmt.Errorf("eventlog: append to %s: %w", scope, err)
	}

	l.known[e.ID] = knownEvent{scope: scope, typ: e.Type, dataHash: hash}
	return e.ID, nil
}

// Stream returns every event in a scope's journal in append order. A
// torn trailing line (the last line truncated by a crash mid-write) is
// silently dropped, not an error; anything else unparseable mid-file is
// ErrJournalCorruption. Passing "" streams both scopes merged in the
// canonical order (append index per scope, tie-break by (created_at,
// id)) that the projector's determinism invariant requires.
func (l *EventLog) Stream(scope event.Scope) ([]event.Event, error) {
	switch scope {
	case event.ScopeShared, event.ScopeLocal:
		events, _, err := readJournal(l.pathFor(scope))
		return events, err
	case "":
		shared, _, err := readJournal(l.sharedPath)
		if err != nil {
			return nil, err
		}
		local, _, err := readJournal(l.localPath)
		if err != nil {
			return nil, err
		}
		return MergeOrdered(shared, local), nil
	default:
		return nil, ErrScopeUnknown
	}
}

// Exists reports whether an id has been appended to either scope.
func (l *EventLog) Exists(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.known[id]
	return ok
}

// MergeOrdered merges two already-ordered event slices (one per scope)
// into the canonical replay order: append index within a scope is
// preserved, and interleaving across scopes is tie-broken by
// (created_at, id) per spec §4.2's determinism rule.
func MergeOrdered(shared, local []event.Event) []event.Event {
	out := make([]event.Event, 0, len(shared)+len(local))
	i, j := 0, 0
	for i < len(shared) && j < len(local) {
		a, b := shared[i], local[j]
		if lessCanonical(a, b) {
			out = append(out, a)
			i++
		} else {
			out = append(out, b)
			j++
		}
	}
	out = append(out, shared[i:]...)
	out = append(out, local[j:]...)
	return out
}

func lessCanonical(a, b event.Event) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func payloadHash(e event.Event) string {
	b, _ := event.Marshal(e)
	return string(b)
}
