package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"

	"github.com/ktiyab/babel-tool-sub001/internal/babelcfg"
)

const claudeMaxTokens = 2048

// extractionResponse is the JSON shape Claude is instructed to return.
// Claude proposes structure; it never decides whether a proposal is
// accepted, so confidence/rationale travel with every artifact.
type extractionResponse struct {
	Artifacts []struct {
		ArtifactType string         `json:"artifact_type"`
		Content      map[string]any `json:"content"`
		Confidence   float64        `json:"confidence"`
		Rationale    string         `json:"rationale"`
	} `json:"artifacts"`
	Meta struct {
		Extractable bool   `json:"extractable"`
		Reason      string `json:"reason"`
	} `json:"meta"`
}

// ClaudeExtractor implements Extractor against the Anthropic Messages
// API. It proposes structure from free text; the caller still decides
// whether and how to persist any Proposal it returns.
type ClaudeExtractor struct {
	client     anthropic.Client
	model      anthropic.Model
	maxRetries uint64
}

// NewClaudeExtractor builds a ClaudeExtractor from remote LLM settings.
// Returns an error if no API key is configured for the active provider.
func NewClaudeExtractor(settings babelcfg.RemoteLLMSettings) (*ClaudeExtractor, error) {
	apiKey := settings.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("extractor: %s not set", settings.APIKeyEnv())
	}
	return &ClaudeExtractor{
		client:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:      anthropic.Model(settings.EffectiveModel()),
		maxRetries: 3,
	}, nil
}

// Extract asks Claude to propose structure from text, injecting
// existing artifacts into the prompt so the model steers away from
// duplicates (spec §4.7 context-aware extraction).
func (c *ClaudeExtractor) Extract(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: extractionSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildExtractionPrompt(text, existing))),
		},
	}

	raw, err := c.completeWithRetry(ctx, params)
	if err != nil {
		if isConnectivityError(err) {
			return nil, fmt.Errorf("%w: %w", ErrOffline, err)
		}
		return nil, fmt.Errorf("extractor: claude request: %w", err)
	}

	var parsed extractionResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("extractor: parse claude response: %w", err)
	}
	if !parsed.Meta.Extractable {
		return nil, nil
	}

	proposals := make([]Proposal, 0, len(parsed.Artifacts))
	for _, a := range parsed.Artifacts {
		proposals = append(proposals, Proposal{
			SourceID:     sourceID,
			ArtifactType: a.ArtifactType,
			Content:      a.Content,
			Confidence:   a.Confidence,
			Rationale:    a.Rationale,
		})
	}
	return proposals, nil
}

func (c *ClaudeExtractor) completeWithRetry(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries)

	var text string
	op := func() error {
		message, err := c.client.Messages.New(ctx, params)
		if err != nil {
			if !isRetryableClaudeError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if len(message.Content) == 0 {
			return backoff.Permanent(errors.New("extractor: empty claude response"))
		}
		block := message.Content[0]
		if block.Type != "text" {
			return backoff.Permanent(fmt.Errorf("extractor: unexpected claude content type %q", block.Type))
		}
		text = block.Text
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return text, nil
}

func isRetryableClaudeError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

func isConnectivityError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

// extractJSON trims any prose Claude wraps the JSON object in, taking
// the outermost {...} span.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

func buildExtractionPrompt(text string, existing []ExistingArtifact) string {
	var b strings.Builder
	if len(existing) > 0 {
		b.WriteString("Existing artifacts already captured for this project (do not propose duplicates):\n")
		for _, e := range existing {
			fmt.Fprintf(&b, "- [%s] %s (%s)\n", e.ArtifactType, e.Summary, e.ArtifactID)
		}
		b.WriteString("\n")
	}
	b.WriteString("Captured text:\n")
	b.WriteString(text)
	return b.String()
}

const extractionSystemPrompt = `You propose structure from a developer's free-text reasoning capture. You never decide anything; a human reviews and confirms every proposal.

Respond with a single JSON object, no prose before or after:

{
  "artifacts": [
    {
      "artifact_type": "decision" | "constraint" | "principle" | "requirement" | "question" | "purpose",
      "content": {"what": "...", "why": "..."},
      "confidence": 0.0-1.0,
      "rationale": "why you proposed this artifact type"
    }
  ],
  "meta": {"extractable": true|false, "reason": "why nothing was extractable, if artifacts is empty"}
}

Propose only what the text actually states. If the text is small talk or contains nothing worth structuring, return an empty artifacts array and set extractable to false.`
