package graph

import (
	"context"
	"sync"

	"shate-rag-be/pkg/llm"
)

// funcLLM answers every completion with fn and records the last user message of each request.
type funcLLM struct {
	mu    sync.Mutex
	fn    func(system, user string) (string, error)
	calls []string
}

func (f *funcLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	var system, user string
	for _, m := range history {
		switch m.Role {
		case llm.RoleSystem:
			system = m.Content
		case llm.RoleUser:
			user = m.Content
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, user)
	f.mu.Unlock()
	return f.fn(system, user)
}

func (f *funcLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (f *funcLLM) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
