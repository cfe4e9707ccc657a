// Package llmtest provides a scripted llms.Model for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// FakeModel answers every call with Content or Err. With Block set it waits
// for the context to end, which exercises timeouts.
type FakeModel struct {
	Content string
	Err     error
	Block   bool

	mu       sync.Mutex
	calls    int
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (f *FakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}

	f.mu.Lock()
	f.calls++
	f.messages = messages
	f.options = opts
	f.mu.Unlock()

	if f.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.Content}},
	}, nil
}

func (f *FakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func (f *FakeModel) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeModel) Options() llms.CallOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.options
}

// Prompt returns the text of message i from the last call.
func (f *FakeModel) Prompt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.messages) {
		return ""
	}
	var out string
	for _, p := range f.messages[i].Parts {
		if tc, ok := p.(llms.TextContent); ok {
			out += tc.Text
		}
	}
	return out
}

// Role returns the role of message i from the last call.
func (f *FakeModel) Role(i int) schema.ChatMessageType {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.messages) {
		return ""
	}
	return f.messages[i].Role
}
