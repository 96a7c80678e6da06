// Package extractor defines the Extractor contract (spec §4.7):
// structure proposal from free text, with an offline queue so a
// disconnected host can keep capturing and drain later.
package extractor

import "time"

// Proposal is structure the extractor suggests from captured text.
// The extractor proposes; only the caller, via EventLog.Append,
// ever writes to the project's history.
type Proposal struct {
	SourceID     string
	ArtifactType string
	Content      map[string]any
	Confidence   float64
	Rationale    string
}

// ExistingArtifact summarizes an already-known artifact, injected into
// extraction prompts to steer the extractor away from duplicates.
type ExistingArtifact struct {
	ArtifactType string
	Summary      string
	ArtifactID   string
}

// QueuedExtraction is one extraction request waiting for the host to
// come back online. The queue is persistent (survives restarts) but
// not append-only — drained entries are removed, not retained as history.
type QueuedExtraction struct {
	Text     string    `json:"text"`
	SourceID string    `json:"source_id"`
	QueuedAt time.Time `json:"queued_at"`
}
