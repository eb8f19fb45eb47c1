package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolChoiceRequired forces the model to call one of the supplied tools, whichever it picks.
const ToolChoiceRequired = "required"

var ErrNoChoices = errors.New("completion returned no choices")

// Message represents a chat message in a provider-agnostic format
type Message struct {
	ID         string
	Role       string // "user", "assistant", "system", "tool"
	Content    string
	Name       string
	ToolCalls  []ToolCall
	ToolCallID string // set on tool responses
}

func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON object
}

// Tool describes a function the model may be forced to call. Parameters is a JSON schema.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func ApplyOptions(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// ToolCaller is implemented by backends that support structured tool invocation.
// choice is either a tool name (exactly that tool) or ToolChoiceRequired.
type ToolCaller interface {
	CallTool(ctx context.Context, history []Message, tools []Tool, choice string, options ...Option) (*Message, error)
}

// CompletionService is the full contract the question answering graph depends on.
type CompletionService interface {
	LLMProvider
	ToolCaller
}
