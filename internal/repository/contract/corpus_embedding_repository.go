package contract

import "context"

type ScoredCorpusEmbedding struct {
	DocIndex   int
	Similarity float64
}

type CorpusEmbeddingRepository interface {
	// ReplaceAll swaps the whole table for the given vectors, indexed by position.
	ReplaceAll(ctx context.Context, vectors [][]float32) error
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredCorpusEmbedding, error)
}
