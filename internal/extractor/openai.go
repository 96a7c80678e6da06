package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ktiyab/babel-tool-sub001/internal/babelcfg"
)

const openaiMaxTokens = 2048

// OpenAIExtractor implements Extractor against the OpenAI chat
// completions API, for projects configured with llm.remote.provider
// "openai".
type OpenAIExtractor struct {
	client     *openai.Client
	model      string
	maxRetries uint64
}

// NewOpenAIExtractor builds an OpenAIExtractor from remote LLM
// settings. Returns an error if no API key is configured.
func NewOpenAIExtractor(settings babelcfg.RemoteLLMSettings) (*OpenAIExtractor, error) {
	apiKey := settings.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("extractor: %s not set", settings.APIKeyEnv())
	}
	return &OpenAIExtractor{
		client:     openai.NewClient(apiKey),
		model:      settings.EffectiveModel(),
		maxRetries: 3,
	}, nil
}

// Extract asks the model to propose structure from text, injecting
// existing artifacts into the prompt the same way ClaudeExtractor does.
func (o *OpenAIExtractor) Extract(ctx context.Context, text, sourceID string, existing []ExistingArtifact) ([]Proposal, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildExtractionPrompt(text, existing)},
		},
		Temperature: 0,
		MaxTokens:   openaiMaxTokens,
	}

	raw, err := o.completeWithRetry(ctx, req)
	if err != nil {
		if isOpenAIConnectivityError(err) {
			return nil, fmt.Errorf("%w: %w", ErrOffline, err)
		}
		return nil, fmt.Errorf("extractor: openai request: %w", err)
	}

	var parsed extractionResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("extractor: parse openai response: %w", err)
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

func (o *OpenAIExtractor) completeWithRetry(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), o.maxRetries)

	var text string
	op := func() error {
		resp, err := o.client.CreateChatCompletion(ctx, req)
		if err != nil {
			if !isRetryableOpenAIError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(errors.New("extractor: openai returned no choices"))
		}
		text = resp.Choices[0].Message.Content
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return text, nil
}

func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isOpenAIConnectivityError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500
	}
	return false
}
