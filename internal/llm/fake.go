package llm

import "context"

// FakeClient returns a canned response for offline runs and tests.
type FakeClient struct {
	Response  string
	FakeUsage Usage
	Err       error

	LastSystemPrompt string
	LastUserPrompt   string
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Complete(_ context.Context, systemPrompt, userPrompt string) (string, Usage, error) {
	f.LastSystemPrompt = systemPrompt
	f.LastUserPrompt = userPrompt
	if f.Err != nil {
		return "", Usage{}, f.Err
	}
	return f.Response, f.FakeUsage, nil
}
