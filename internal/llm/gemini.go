package llm

import (
	"context"
	"strings"
	"time"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a Gemini client for the given model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// Complete sends the system and user prompts in one request with a bounded
// retry on transient failures.
func (g *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error) {
	contents := []*genai.Content{
		{Parts: []*genai.Part{{Text: userPrompt}}},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			lastErr = err
		} else if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = ErrEmptyResponse
		} else {
			text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
			var usage Usage
			if meta := resp.UsageMetadata; meta != nil {
				usage = Usage{
					PromptTokens:     int(meta.PromptTokenCount),
					CompletionTokens: int(meta.CandidatesTokenCount),
					TotalTokens:      int(meta.TotalTokenCount),
				}
			}
			return text, usage, nil
		}
		select {
		case <-ctx.Done():
			return "", Usage{}, ctx.Err()
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		}
	}
	return "", Usage{}, lastErr
}
