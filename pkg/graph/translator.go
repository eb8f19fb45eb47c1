package graph

import (
	"context"
	"strings"

	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/pkg/llm"
)

const maxSubQueries = 2

// Translator expands a question into standalone sub-questions.
type Translator struct {
	llm    llm.LLMProvider
	model  string
	logger logger.ILogger
}

func NewTranslator(provider llm.LLMProvider, model string, log logger.ILogger) *Translator {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Translator{llm: provider, model: model, logger: log}
}

// Translate never fails the request: on error or empty output the question is used as is.
func (t *Translator) Translate(ctx context.Context, question string) []string {
	raw, err := t.llm.Generate(ctx, QueryTranslationPrompt(question), llm.WithModel(t.model), llm.WithTemperature(0))
	if err != nil {
		t.logger.Warn("TRANSLATOR", "Query translation failed, using the original question", map[string]interface{}{"error": err.Error()})
		return []string{question}
	}

	subQueries := SplitSubQueries(raw)
	if len(subQueries) == 0 {
		return []string{question}
	}
	t.logger.Debug("TRANSLATOR", "Question expanded", map[string]interface{}{"sub_queries": subQueries})
	return subQueries
}

// SplitSubQueries keeps the non-blank lines of raw, at most two.
func SplitSubQueries(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxSubQueries {
			break
		}
	}
	return out
}
