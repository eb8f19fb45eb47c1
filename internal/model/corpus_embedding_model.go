package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// CorpusEmbedding mirrors one corpus record vector. DocIndex is the record position in the artifact.
type CorpusEmbedding struct {
	Id             uint            `gorm:"primaryKey"`
	DocIndex       int             `gorm:"not null;uniqueIndex"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (CorpusEmbedding) TableName() string {
	return "corpus_embeddings"
}
