package retriever

import (
	"context"
	"fmt"

	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/pkg/corpus"
	"shate-rag-be/pkg/embedding"
	"shate-rag-be/pkg/rerank"
	"shate-rag-be/pkg/vectorstore"
)

type HybridOptions struct {
	LexicalK      int
	VectorK       int
	LexicalWeight float64
	VectorWeight  float64
	TopN          int
}

func DefaultHybridOptions() HybridOptions {
	return HybridOptions{
		LexicalK:      5,
		VectorK:       5,
		LexicalWeight: 0.5,
		VectorWeight:  0.5,
		TopN:          3,
	}
}

// HybridRetriever blends BM25 and vector rankings over the support corpus, then reranks.
// The corpus is fixed at construction and only read afterwards.
type HybridRetriever struct {
	records  []corpus.Record
	lexical  *BM25
	vectors  vectorstore.Index
	embedder embedding.EmbeddingProvider
	scorer   rerank.Scorer
	opts     HybridOptions
	logger   logger.ILogger
}

func NewHybridRetriever(
	records []corpus.Record,
	vectors vectorstore.Index,
	embedder embedding.EmbeddingProvider,
	scorer rerank.Scorer,
	opts HybridOptions,
	log logger.ILogger,
) (*HybridRetriever, error) {
	if len(records) == 0 {
		return nil, corpus.ErrCorpusMissing
	}
	if vectors == nil || embedder == nil {
		return nil, fmt.Errorf("hybrid retriever needs a vector index and an embedding provider")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.PageContent
	}

	return &HybridRetriever{
		records:  records,
		lexical:  NewBM25(texts),
		vectors:  vectors,
		embedder: embedder,
		scorer:   scorer,
		opts:     opts,
		logger:   log,
	}, nil
}

func (h *HybridRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	lexicalHits := h.lexical.Search(query, h.opts.LexicalK)

	emb, err := h.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	vectorHits, err := h.vectors.Search(ctx, emb.Embedding.Values, h.opts.VectorK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	fused := Fuse(
		RankedList{Hits: lexicalHits, Weight: h.opts.LexicalWeight},
		RankedList{Hits: vectorHits, Weight: h.opts.VectorWeight},
	)

	candidates := make([]Document, 0, len(fused))
	for _, hit := range fused {
		if hit.Index < 0 || hit.Index >= len(h.records) {
			continue
		}
		candidates = append(candidates, h.document(hit))
	}

	h.logger.Debug("HYBRID_RETRIEVER", "Candidates fused", map[string]interface{}{
		"lexical":    len(lexicalHits),
		"vector":     len(vectorHits),
		"candidates": len(candidates),
	})

	return Rerank(ctx, h.scorer, query, candidates, h.opts.TopN)
}

func (h *HybridRetriever) document(hit vectorstore.Hit) Document {
	r := h.records[hit.Index]
	return Document{
		Content: r.PageContent,
		Metadata: Metadata{
			SourceType: SourceTypeCorpus,
			ID:         r.MetaString("id"),
			Title:      r.MetaString("title"),
			Source:     r.MetaString("source"),
			Page:       r.MetaInt("page"),
			Score:      hit.Score,
		},
	}
}
