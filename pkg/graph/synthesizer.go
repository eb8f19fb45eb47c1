package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/pkg/llm"
)

var ErrSynthesis = errors.New("answer synthesis failed")

type Synthesizer struct {
	llm    llm.LLMProvider
	model  string
	logger logger.ILogger
}

func NewSynthesizer(provider llm.LLMProvider, model string, log logger.ILogger) *Synthesizer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Synthesizer{llm: provider, model: model, logger: log}
}

// Synthesize answers question from documents only. With no documents the refusal is returned
// without a model call.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, documents []string) (string, error) {
	if len(documents) == 0 {
		s.logger.Info("SYNTHESIZER", "No evidence, returning refusal", map[string]interface{}{"question": question})
		return RefusalMessage, nil
	}

	prompt := SynthesisPrompt(question, BuildEvidence(documents))
	answer, err := s.llm.Generate(ctx, prompt, llm.WithModel(s.model), llm.WithTemperature(0.3))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty completion", ErrSynthesis)
	}
	return answer, nil
}
