package extractor

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ktiyab/babel-tool-sub001/internal/lockfile"
)

// drainRetryElapsed bounds how long Drain retries one queued entry
// against a transient extractor failure before giving up and leaving
// the entry queued for the next Drain call.
const drainRetryElapsed = 30 * time.Second

// OfflineQueue persists QueuedExtractions to disk so capture keeps
// working while the host is offline; entries are drained (and removed)
// once the extractor is reachable again. It is persistent but not
// append-only: draining mutates the file in place (spec §4.7).
type OfflineQueue struct {
	path string
	mu   sync.Mutex
}

// NewOfflineQueue builds a queue backed by the file at path.
func NewOfflineQueue(path string) *OfflineQueue {
	return &OfflineQueue{path: path}
}

// Enqueue appends one extraction request to the persisted queue.
func (q *OfflineQueue) Enqueue(text, sourceID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load()
	if err != nil {
		return err
	}
	entries = append(entries, QueuedExtraction{Text: text, SourceID: sourceID, QueuedAt: time.Now().UTC()})
	return q.save(entries)
}

// Pending returns a snapshot of queued entries without draining them.
func (q *OfflineQueue) Pending() ([]QueuedExtraction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

// Len reports how many entries are currently queued.
func (q *OfflineQueue) Len() (int, error) {
	entries, err := q.Pending()
	return len(entries), err
}

// ContextFunc supplies the existing-artifacts context an extractor
// should see for a given source id.
type ContextFunc func(sourceID string) []ExistingArtifact

// Drain attempts to extract every queued entry through ex, retrying
// each one with exponential backoff against transient failures.
// Entries that still fail when backoff is exhausted, or that the
// extractor reports ErrOffline for, remain queued for the next Drain.
// Returns every Proposal produced by entries that succeeded.
func (q *OfflineQueue) Drain(ctx context.Context, ex Extractor, contextFor ContextFunc) ([]Proposal, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	var proposals []Proposal
	var remaining []QueuedExtraction

	for _, entry := range entries {
		var existing []ExistingArtifact
		if contextFor != nil {
			existing = contextFor(entry.SourceID)
		}

		var result []Proposal
		bo := backoff.WithContext(newDrainBackoff(), ctx)
		retryErr := backoff.Retry(func() error {
			r, err := ex.Extract(ctx, entry.Text, entry.SourceID, existing)
			if err == nil {
				result = r
				return nil
			}
			if err == ErrOffline {
				return backoff.Permanent(err)
			}
			return err
		}, bo)

		if retryErr != nil {
			remaining = append(remaining, entry)
			continue
		}
		proposals = append(proposals, result...)
	}

	if err := q.save(remaining); err != nil {
		return proposals, err
	}
	return proposals, nil
}

func newDrainBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = drainRetryElapsed
	return bo
}

func (q *OfflineQueue) load() ([]QueuedExtraction, error) {
	f, err := os.OpenFile(q.path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := lockfile.FlockSharedNonBlock(f); err == nil {
		defer lockfile.FlockUnlock(f)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, nil
	}

	var entries []QueuedExtraction
	dec := json.NewDecoder(f)
	if err := dec.Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (q *OfflineQueue) save(entries []QueuedExtraction) error {
	f, err := os.OpenFile(q.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lockfile.FlockExclusiveBlocking(f); err == nil {
		defer lockfile.FlockUnlock(f)
	}

	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}

	if entries == nil {
		entries = []QueuedExtraction{}
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
