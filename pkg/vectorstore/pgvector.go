package vectorstore

import (
	"context"
	"fmt"

	"shate-rag-be/internal/repository/contract"
)

// PgIndex delegates similarity search to a pgvector table mirrored from the corpus artifact.
type PgIndex struct {
	repo contract.CorpusEmbeddingRepository
}

// NewPgIndex replaces the table content with the given vectors, keyed by corpus position.
func NewPgIndex(ctx context.Context, repo contract.CorpusEmbeddingRepository, vectors [][]float32) (*PgIndex, error) {
	if err := repo.ReplaceAll(ctx, vectors); err != nil {
		return nil, fmt.Errorf("sync corpus embeddings: %w", err)
	}
	return &PgIndex{repo: repo}, nil
}

func (p *PgIndex) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	rows, err := p.repo.SearchSimilarWithScore(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(rows))
	for i, r := range rows {
		hits[i] = Hit{Index: r.DocIndex, Score: r.Similarity}
	}
	return TopK(hits, k), nil
}
