package implementation

import (
	"context"

	"shate-rag-be/internal/model"
	"shate-rag-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CorpusEmbeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewCorpusEmbeddingRepository(db *gorm.DB) contract.CorpusEmbeddingRepository {
	return &CorpusEmbeddingRepositoryImpl{db: db}
}

func (r *CorpusEmbeddingRepositoryImpl) ReplaceAll(ctx context.Context, vectors [][]float32) error {
	models := make([]*model.CorpusEmbedding, len(vectors))
	for i, v := range vectors {
		models[i] = &model.CorpusEmbedding{DocIndex: i, EmbeddingValue: pgvector.NewVector(v)}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.CorpusEmbedding{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.CreateInBatches(models, 200).Error
	})
}

func (r *CorpusEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredCorpusEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	// cosine distance is 1 - cosine similarity
	type result struct {
		DocIndex   int
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)
	err := r.db.WithContext(ctx).
		Table("corpus_embeddings").
		Select("doc_index, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredCorpusEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredCorpusEmbedding{DocIndex: res.DocIndex, Similarity: res.Similarity}
	}
	return scored, nil
}
