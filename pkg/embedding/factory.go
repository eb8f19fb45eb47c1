package embedding

import "fmt"

func NewProvider(providerType, baseURL, apiKey, model string) (EmbeddingProvider, error) {
	switch providerType {
	case "openai", "litellm":
		return NewOpenAIProvider(baseURL, apiKey, model), nil
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
