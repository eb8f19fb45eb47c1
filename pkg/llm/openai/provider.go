package openai

import (
	"context"
	"fmt"
	"math"

	"shate-rag-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat completion endpoint,
// in practice the LiteLLM proxy that fronts the fast/best/mql model aliases.
type OpenAIProvider struct {
	client    *goopenai.Client
	ModelName string
}

var (
	_ llm.LLMProvider = &OpenAIProvider{}
	_ llm.ToolCaller  = &OpenAIProvider{}
)

func NewOpenAIProvider(baseURL, apiKey, modelName string) *OpenAIProvider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client:    goopenai.NewClientWithConfig(cfg),
		ModelName: modelName,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0.7}, opts...)

	resp, err := p.client.CreateChatCompletion(ctx, p.request(history, options))
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// CallTool binds tools to the request and forces a call according to choice.
func (p *OpenAIProvider) CallTool(ctx context.Context, history []llm.Message, tools []llm.Tool, choice string, opts ...llm.Option) (*llm.Message, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0}, opts...)

	req := p.request(history, options)
	for _, t := range tools {
		req.Tools = append(req.Tools, goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	switch choice {
	case "":
	case llm.ToolChoiceRequired:
		req.ToolChoice = llm.ToolChoiceRequired
	default:
		req.ToolChoice = goopenai.ToolChoice{
			Type:     goopenai.ToolTypeFunction,
			Function: goopenai.ToolFunction{Name: choice},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai tool call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, llm.ErrNoChoices
	}

	msg := fromOpenAIMessage(resp.Choices[0].Message)
	msg.ID = resp.ID
	return &msg, nil
}

func (p *OpenAIProvider) request(history []llm.Message, options llm.Options) goopenai.ChatCompletionRequest {
	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	messages := make([]goopenai.ChatCompletionMessage, len(history))
	for i, m := range history {
		messages[i] = toOpenAIMessage(m)
	}

	req := goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature(options.Temperature),
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}
	return req
}

// temperature maps 0 to the smallest positive float32. The request field is omitempty,
// so a literal 0 would leave the server default in place.
func temperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func toOpenAIMessage(m llm.Message) goopenai.ChatCompletionMessage {
	role := m.Role
	if role == "model" {
		role = goopenai.ChatMessageRoleAssistant
	}
	out := goopenai.ChatCompletionMessage{
		Role:       role,
		Content:    m.Content,
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, goopenai.ToolCall{
			ID:   tc.ID,
			Type: goopenai.ToolTypeFunction,
			Function: goopenai.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return out
}

func fromOpenAIMessage(m goopenai.ChatCompletionMessage) llm.Message {
	out := llm.Message{
		Role:       m.Role,
		Content:    m.Content,
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}
