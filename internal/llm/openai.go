package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Placeholder value shipped in .env.example; treated the same as no key.
const placeholderAPIKey = "your_openai_api_key_here"

const defaultOpenAIBaseURL = "https://api.openai.com/v1/chat/completions"

// OpenAIClient calls an OpenAI-compatible Chat Completions endpoint.
type OpenAIClient struct {
	http      *http.Client
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
}

// NewOpenAIClient creates a client for the given model. An empty baseURL
// selects the OpenAI API; maxTokens <= 0 defaults to 6000.
func NewOpenAIClient(apiKey, model, baseURL string, maxTokens int) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if maxTokens <= 0 {
		maxTokens = 6000
	}
	return &OpenAIClient{
		http:      &http.Client{Timeout: 120 * time.Second},
		apiKey:    apiKey,
		model:     model,
		baseURL:   baseURL,
		maxTokens: maxTokens,
	}
}

func (c *OpenAIClient) Name() string { return "OpenAI:" + c.model }
func (c *OpenAIClient) Close() error { return nil }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	// Newer models reject max_tokens in favor of max_completion_tokens.
	MaxTokens           int `json:"max_tokens,omitempty"`
	MaxCompletionTokens int `json:"max_completion_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends one system+user exchange and returns the reply text with its
// token usage.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error) {
	if c.apiKey == "" || c.apiKey == placeholderAPIKey {
		return "", Usage{}, ErrNotConfigured
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	if usesCompletionTokenCap(c.model) {
		body.MaxCompletionTokens = c.maxTokens
	} else {
		body.MaxTokens = c.maxTokens
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", Usage{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", Usage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", Usage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("openai: unexpected status %s: %s", resp.Status, snippet)
		if resp.StatusCode == http.StatusBadRequest && bytes.Contains(snippet, []byte("context_length_exceeded")) {
			return "", Usage{}, NewPermanentError(err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return "", Usage{}, fmt.Errorf("%w: %s", ErrNotConfigured, resp.Status)
		}
		return "", Usage{}, err
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", Usage{}, err
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", Usage{}, ErrEmptyResponse
	}
	usage := Usage{
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
		TotalTokens:      out.Usage.TotalTokens,
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), usage, nil
}

func usesCompletionTokenCap(model string) bool {
	return strings.HasPrefix(model, "gpt-5")
}
