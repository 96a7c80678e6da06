package refindex

import (
	"github.com/ktiyab/babel-tool-sub001/internal/event"
)

// TokenBudget bounds how much text a Loader may hydrate, in
// approximate LLM tokens (spec §4.3: "caller-supplied TokenBudget").
type TokenBudget int

// approxTokens estimates an event's token cost crudely, at ~4 bytes
// per token.
func approxTokens(e event.Event) int {
	n := len(extractText(e)) + len(string(e.Type)) + len(e.ID)
	return (n + 3) / 4
}

// LoadResult carries whatever a Loader managed to hydrate plus whether
// it hit the budget before exhausting the candidate set.
type LoadResult struct {
	Events   []event.Event
	Complete bool
}

// Loader hydrates events on demand against a source of event bodies
// (typically eventlog.EventLog.Stream, but decoupled here so tests and
// the graph's own replay can supply a slice directly), enforcing a
// TokenBudget that is advisory in the sense that callers choose it, but
// never exceeded once set (spec §4.3).
type Loader struct {
	fetch func(id string) (event.Event, bool)
}

// NewLoader builds a Loader over a fetch function mapping event id to
// its full record.
func NewLoader(fetch func(id string) (event.Event, bool)) *Loader {
	return &Loader{fetch: fetch}
}

// Load hydrates candidate ids in their given order (typically the
// order RefIndex.Query already ranked them) until the budget would be
// exceeded, then stops and reports incompleteness.
func (l *Loader) Load(ids []string, budget TokenBudget) LoadResult {
	var spent int
	events := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		e, ok := l.fetch(id)
		if !ok {
			continue
		}
		cost := approxTokens(e)
		if budget > 0 && spent+cost > int(budget) {
			return LoadResult{Events: events, Complete: false}
		}
		spent += cost
		events = append(events, e)
	}
	return LoadResult{Events: events, Complete: true}
}

// LoadRanked is a convenience that queries refs for text, then hydrates
// the ranked ids through Load.
func (l *Loader) LoadRanked(idx *RefIndex, text string, budget TokenBudget) LoadResult {
	refs := idx.Query(text)
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.EventID
	}
	return l.Load(ids, budget)
}
