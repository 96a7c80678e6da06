package eventlog

import (
	"github.com/ktiyab/babel-tool-sub001/internal/event"
)

// QuarantineConflict describes a shared-journal id collision discovered
// by Sync: two records with the same id but different payloads, most
// often produced by a naive textual git merge of two branches that both
// appended events around the same time. Per spec §4.1 the event log
// never resolves this by picking a winner — the conflict is handed back
// to the caller, which is expected to surface it as a `tension` node
// (typically by appending a CHALLENGE_RAISED event referencing both).
type QuarantineConflict struct {
	ID       string
	Known    event.Event // the first shared-journal record with this id (zero if that version is not in the shared journal)
	Incoming event.Event // the version just read off disk
}

// Sync re-reads the shared journal from disk (as an external process —
// typically `git pull` followed by a merge — may have appended to it
// since this EventLog was opened) and reconciles it against the
// in-memory id index built at Open time. New, non-conflicting ids are
// absorbed into the index so subsequent Append/Exists calls see them.
// Conflicting ids (same id, different payload) are never overwritten;
// they are returned for the caller to quarantine. Sync never rewrites
// the journal file itself — no in-place rewrites, per spec §4.1.
func (l *EventLog) Sync() ([]QuarantineConflict, error) {
	onDisk, _, err := readJournal(l.sharedPath)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var conflicts []QuarantineConflict
	seen := make(map[string]event.Event, len(onDisk))
	for _, incoming := range onDisk {
		hash := payloadHash(incoming)
		existing, ok := l.known[incoming.ID]
		switch {
		case !ok:
			l.known[incoming.ID] = knownEvent{scope: event.ScopeShared, typ: incoming.Type, dataHash: hash}
		case existing.dataHash != hash:
			conflicts = append(conflicts, QuarantineConflict{
				ID:       incoming.ID,
				Known:    seen[incoming.ID],
				Incoming: incoming,
			})
		}
		if _, dup := seen[incoming.ID]; !dup {
			seen[incoming.ID] = incoming
		}
	}
	return conflicts, nil
}

// Rebuild streams both scopes in canonical order. It performs no
// mutation itself; it exists so callers (the graph projector's
// Rebuild, spec §4.2) have a single call that returns "replay this from
// scratch" input without needing to know about scope merge order.
func (l *EventLog) Rebuild() ([]event.Event, error) {
	return l.Stream("")
}
