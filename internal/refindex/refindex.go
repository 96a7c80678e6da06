// Package refindex implements the reverse token index (Ref, spec §3/§4.3):
// an O(1) topic-token to event-id lookup, incrementally maintained as the
// event log grows, plus a budgeted Loader for hydrating events on demand.
package refindex

import (
	"sort"
	"sync"

	"github.com/ktiyab/babel-tool-sub001/internal/event"
	"github.com/ktiyab/babel-tool-sub001/internal/tokenizer"
)

// Ref is one entry of the reverse index: a normalized token pointing at
// an event, with a weight that grows by one each time Add indexes that
// event's text containing the token (repeats within one text count once).
type Ref struct {
	Token   string
	EventID string
	Weight  float64
}

// RefIndex is the inverted index described in spec §4.3. Indexing is
// incremental: Add is called once per appended event, not as a batch
// rebuild, so it stays O(1) amortized per append.
type RefIndex struct {
	mu    sync.RWMutex
	byTok map[string]map[string]float64 // token -> event id -> weight
}

// New returns an empty index.
func New() *RefIndex {
	return &RefIndex{byTok: make(map[string]map[string]float64)}
}

// Add indexes one event's free text under every token it tokenizes to.
// Calling Add twice for the same event id simply re-accumulates weight;
// callers that replay the log from scratch should build a fresh index
// rather than re-Add existing events, to avoid double counting.
func (r *RefIndex) Add(e event.Event) {
	text := extractText(e)
	if text == "" {
		return
	}
	tokens := tokenizer.Text(text)
	if len(tokens) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tok := range tokens {
		bucket, ok := r.byTok[tok]
		if !ok {
			bucket = make(map[string]float64)
			r.byTok[tok] = bucket
		}
		bucket[e.ID]++
	}
}

// Lookup returns the event ids indexed under an exact normalized token,
// sorted by descending weight then id for a stable order.
func (r *RefIndex) Lookup(token string) []Ref {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bucket := r.byTok[token]
	if len(bucket) == 0 {
		return nil
	}
	refs := make([]Ref, 0, len(bucket))
	for id, w := range bucket {
		refs = append(refs, Ref{Token: token, EventID: id, Weight: w})
	}
	sortRefs(refs)
	return refs
}

// Query tokenizes free text and returns event ids ranked by accumulated
// weight: each query token that exactly matches an indexed token adds
// that ref's weight to its event's score, summed per event across every
// query token, then sorted descending. Substring matches score nothing.
func (r *RefIndex) Query(text string) []Ref {
	queryTokens := tokenizer.Text(text)
	if len(queryTokens) == 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	scores := make(map[string]float64)
	for _, qt := range queryTokens {
		if bucket, ok := r.byTok[qt]; ok {
			for id, w := range bucket {
				scores[id] += w
			}
		}
	}
	refs := make([]Ref, 0, len(scores))
	for id, score := range scores {
		refs = append(refs, Ref{EventID: id, Weight: score})
	}
	sortRefs(refs)
	return refs
}

func sortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Weight != refs[j].Weight {
			return refs[i].Weight > refs[j].Weight
		}
		return refs[i].EventID < refs[j].EventID
	})
}

// extractText pulls the free-text fields worth indexing out of an
// event's payload, per type. Fields that aren't prose (ids, scopes) are
// deliberately excluded.
func extractText(e event.Event) string {
	switch d := e.Data.(type) {
	case event.ProjectCreatedData:
		return d.Name
	case event.PurposeDeclaredData:
		return d.What + " " + d.Why
	case event.StructureProposedData:
		return d.Summary + " " + d.Detail
	case event.ArtifactConfirmedData:
		return d.Summary + " " + d.What + " " + d.Why + " " + d.Domain
	case event.QuestionRaisedData:
		return d.Summary
	case event.QuestionResolvedData:
		return d.Resolution
	case event.ChallengeRaisedData:
		return d.Summary
	case event.EvidenceAttachedData:
		return d.Evidence
	case event.DeprecatedData:
		return d.Reason
	case event.CommitCapturedData:
		return d.Message
	default:
		return ""
	}
}
