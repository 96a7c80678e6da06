package extractor

import (
	"context"
	"errors"
)

// ErrOffline is returned by an Extractor implementation when it cannot
// reach its LLM provider — the signal that tells the caller to queue the
// request in an OfflineQueue instead of failing the capture.
var ErrOffline = errors.New("extractor: host offline")

// Extractor proposes structure from captured text (spec §4.7). It
// never writes to the event log; the caller decides whether and how
// to persist a Proposal.
type Extractor interface {
	Extract(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error)
}

// Func adapts a plain function to the Extractor interface.
type Func func(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error)

// Extract implements Extractor.
func (f Func) Extract(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error) {
	return f(ctx, text, sourceID, existing)
}
