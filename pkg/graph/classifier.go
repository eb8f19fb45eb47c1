package graph

import (
	"context"
	"fmt"

	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/internal/pkg/metrics"
	"shate-rag-be/pkg/llm"
)

type Classifier struct {
	llm    llm.LLMProvider
	model  string
	logger logger.ILogger
}

func NewClassifier(provider llm.LLMProvider, model string, log logger.ILogger) *Classifier {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Classifier{llm: provider, model: model, logger: log}
}

// Classify asks the model for sources once per sub-query (or the question when there are none).
// Decisions are not deduplicated. A completion error fails the whole classification.
func (c *Classifier) Classify(ctx context.Context, question string, subQueries []string) ([]RoutingDecision, error) {
	queries := subQueries
	if len(queries) == 0 {
		queries = []string{question}
	}

	var decisions []RoutingDecision
	for _, q := range queries {
		raw, err := c.llm.Chat(ctx, []llm.Message{
			{Role: llm.RoleSystem, Content: RouterSystemPrompt},
			{Role: llm.RoleUser, Content: q},
		}, llm.WithModel(c.model), llm.WithTemperature(0))
		if err != nil {
			return nil, fmt.Errorf("classification failed: %w", err)
		}

		parsed, stage := ParseDecisions(raw, q)
		switch stage {
		case StageJSON:
		case StageNone:
			metrics.DroppedSubQueries.Inc()
			c.logger.Warn("CLASSIFIER", "No routing decision for sub-query, dropping it", map[string]interface{}{
				"query": q,
				"raw":   raw,
			})
		default:
			metrics.ClassifierFallbacks.WithLabelValues(stage).Inc()
			c.logger.Info("CLASSIFIER", "Classifier output recovered by fallback", map[string]interface{}{
				"query": q,
				"stage": stage,
			})
		}
		decisions = append(decisions, parsed...)
	}

	c.logger.Debug("CLASSIFIER", "Classification done", map[string]interface{}{
		"queries":   len(queries),
		"decisions": len(decisions),
	})
	return decisions, nil
}
