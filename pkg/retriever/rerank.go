package retriever

import (
	"context"
	"fmt"
	"sort"

	"shate-rag-be/pkg/rerank"
)

// Rerank scores docs against query, orders them by relevance and keeps the best topN.
// A nil scorer keeps the incoming order.
func Rerank(ctx context.Context, scorer rerank.Scorer, query string, docs []Document, topN int) ([]Document, error) {
	if len(docs) == 0 {
		return docs, nil
	}

	out := make([]Document, len(docs))
	copy(out, docs)

	if scorer != nil {
		scores, err := scorer.Score(ctx, query, Contents(out))
		if err != nil {
			return nil, fmt.Errorf("rerank: %w", err)
		}
		if len(scores) != len(out) {
			return nil, fmt.Errorf("rerank: got %d scores for %d documents", len(scores), len(out))
		}
		for i := range out {
			out[i].Metadata.Score = scores[i]
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Metadata.Score > out[j].Metadata.Score
		})
	}

	if topN > 0 && topN < len(out) {
		out = out[:topN]
	}
	return out, nil
}
