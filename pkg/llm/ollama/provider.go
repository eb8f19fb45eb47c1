package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shate-rag-be/pkg/llm"

	"github.com/google/uuid"
)

// OllamaProvider talks to the native /api/chat endpoint of a local Ollama daemon.
// Ollama has no tool_choice, so a named choice is enforced by sending only that tool.
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var (
	_ llm.LLMProvider = &OllamaProvider{}
	_ llm.ToolCaller  = &OllamaProvider{}
)

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Tools    []ollamaTool    `json:"tools,omitempty"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
	ToolName  string           `json:"tool_name,omitempty"`
}

type ollamaTool struct {
	Type     string             `json:"type"`
	Function ollamaToolFunction `json:"function"`
}

type ollamaToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// ollamaToolCall carries arguments as a JSON object, not an encoded string.
type ollamaToolCall struct {
	ID       string `json:"id,omitempty"`
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0.7}, opts...)

	msg, err := o.do(ctx, o.request(history, nil, options))
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// CallTool binds tools to the request. A tool name as choice narrows the bound tools to it;
// ToolChoiceRequired keeps them all.
func (o *OllamaProvider) CallTool(ctx context.Context, history []llm.Message, tools []llm.Tool, choice string, opts ...llm.Option) (*llm.Message, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0}, opts...)

	var bound []ollamaTool
	for _, t := range tools {
		if choice != "" && choice != llm.ToolChoiceRequired && t.Name != choice {
			continue
		}
		bound = append(bound, ollamaTool{
			Type:     "function",
			Function: ollamaToolFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}
	if len(tools) > 0 && len(bound) == 0 {
		return nil, fmt.Errorf("tool %q is not among the supplied tools", choice)
	}

	msg, err := o.do(ctx, o.request(history, bound, options))
	if err != nil {
		return nil, err
	}

	out := llm.Message{ID: "ollama-" + uuid.NewString(), Role: llm.RoleAssistant, Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		id := tc.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		args := string(tc.Function.Arguments)
		if args == "" || args == "null" {
			args = "{}"
		}
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{ID: id, Name: tc.Function.Name, Arguments: args})
	}
	return &out, nil
}

func (o *OllamaProvider) request(history []llm.Message, tools []ollamaTool, options llm.Options) ollamaChatRequest {
	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	messages := make([]ollamaMessage, len(history))
	for i, m := range history {
		messages[i] = toOllamaMessage(m)
	}

	return ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Tools:    tools,
		Stream:   false,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	}
}

func toOllamaMessage(m llm.Message) ollamaMessage {
	role := m.Role
	if role == "model" {
		role = llm.RoleAssistant
	}
	out := ollamaMessage{Role: role, Content: m.Content}
	if role == llm.RoleTool {
		out.ToolName = m.Name
	}
	for _, tc := range m.ToolCalls {
		var call ollamaToolCall
		call.ID = tc.ID
		call.Function.Name = tc.Name
		call.Function.Arguments = json.RawMessage(tc.Arguments)
		if !json.Valid(call.Function.Arguments) {
			call.Function.Arguments = json.RawMessage("{}")
		}
		out.ToolCalls = append(out.ToolCalls, call)
	}
	return out
}

func (o *OllamaProvider) do(ctx context.Context, payload ollamaChatRequest) (*ollamaMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/chat", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var decoded ollamaChatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &decoded.Message, nil
}
