package factory

import (
	"fmt"

	"shate-rag-be/pkg/llm"
	"shate-rag-be/pkg/llm/ollama"
	"shate-rag-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "openai", "litellm":
		return openai.NewOpenAIProvider(baseURL, apiKey, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// NewCompletionService builds a backend that can also force tool calls.
func NewCompletionService(providerType, modelName, baseURL, apiKey string) (llm.CompletionService, error) {
	provider, err := NewLLMProvider(providerType, modelName, baseURL, apiKey)
	if err != nil {
		return nil, err
	}
	svc, ok := provider.(llm.CompletionService)
	if !ok {
		return nil, fmt.Errorf("LLM provider %s does not support tool calls", providerType)
	}
	return svc, nil
}
