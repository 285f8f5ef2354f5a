// Package llm provides the model clients used by the report analyzer.
package llm

import "context"

// Usage carries the token accounting reported by a provider for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Client is a single-shot chat completion client.
type Client interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error)
	Close() error
}

// NewErrClient returns a client whose calls always fail with err. It lets a
// client factory defer construction failures to call time.
func NewErrClient(name string, err error) Client {
	return &errClient{name: name, err: err}
}

type errClient struct {
	name string
	err  error
}

func (e *errClient) Name() string { return e.name }
func (e *errClient) Close() error { return nil }

func (e *errClient) Complete(context.Context, string, string) (string, Usage, error) {
	return "", Usage{}, e.err
}
