package retriever

import "context"

// Answerer produces one formatted answer from the structured store.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

type StructuredRetriever struct {
	answerer Answerer
}

func NewStructuredRetriever(answerer Answerer) *StructuredRetriever {
	return &StructuredRetriever{answerer: answerer}
}

func (s *StructuredRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	text, err := s.answerer.Answer(ctx, query)
	if err != nil {
		return nil, err
	}
	return []Document{{
		Content:  text,
		Metadata: Metadata{SourceType: SourceTypeStructured, Score: 1},
	}}, nil
}
