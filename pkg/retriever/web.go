package retriever

import (
	"context"
	"fmt"

	"shate-rag-be/pkg/rerank"
	"shate-rag-be/pkg/websearch"
)

type WebRetriever struct {
	searcher websearch.Searcher
	scorer   rerank.Scorer
	topN     int
}

func NewWebRetriever(searcher websearch.Searcher, scorer rerank.Scorer, topN int) *WebRetriever {
	return &WebRetriever{searcher: searcher, scorer: scorer, topN: topN}
}

func (w *WebRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	results, err := w.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}

	docs := make([]Document, 0, len(results))
	for _, r := range results {
		if r.Content == "" {
			continue
		}
		docs = append(docs, Document{
			Content: r.Content,
			Metadata: Metadata{
				SourceType: SourceTypeWeb,
				Title:      r.Title,
				URL:        r.URL,
				Source:     r.URL,
				Score:      r.Score,
			},
		})
	}
	return Rerank(ctx, w.scorer, query, docs, w.topN)
}
