package retriever

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shate-rag-be/pkg/corpus"
	"shate-rag-be/pkg/embedding"
	"shate-rag-be/pkg/vectorstore"
	"shate-rag-be/pkg/websearch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEmbedder struct {
	vector []float32
	err    error
}

func (f fixedEmbedder) Generate(context.Context, string, string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vector}}, nil
}

type keywordScorer struct {
	keyword string
	err     error
}

func (k keywordScorer) Score(_ context.Context, _ string, texts []string) ([]float64, error) {
	if k.err != nil {
		return nil, k.err
	}
	scores := make([]float64, len(texts))
	for i, t := range texts {
		if strings.Contains(strings.ToLower(t), k.keyword) {
			scores[i] = 0.9
		} else {
			scores[i] = 0.1
		}
	}
	return scores, nil
}

func policyCorpus() []corpus.Record {
	return []corpus.Record{
		{PageContent: "Chính sách đổi trả trong 30 ngày với hóa đơn", Metadata: map[string]interface{}{"id": "a", "title": "policy.pdf", "page": float64(1)}, Embedding: []float32{1, 0, 0}},
		{PageContent: "Hướng dẫn chọn size giày theo chiều dài bàn chân", Metadata: map[string]interface{}{"id": "b", "title": "size.pdf"}, Embedding: []float32{0, 1, 0}},
		{PageContent: "Cách bảo quản giày da: lau bằng khăn mềm", Metadata: map[string]interface{}{"id": "c", "title": "care.pdf"}, Embedding: []float32{0, 0, 1}},
		{PageContent: "Chính sách bảo hành keo đế 6 tháng", Metadata: map[string]interface{}{"id": "d", "title": "policy.pdf", "page": float64(2)}, Embedding: []float32{0.7071, 0, 0.7071}},
	}
}

func newHybrid(t *testing.T, embedder embedding.EmbeddingProvider, opts HybridOptions) *HybridRetriever {
	t.Helper()
	records := policyCorpus()
	vectors := make([][]float32, len(records))
	for i, r := range records {
		vectors[i] = r.Embedding
	}
	index, err := vectorstore.NewMemoryIndex(vectors)
	require.NoError(t, err)

	h, err := NewHybridRetriever(records, index, embedder, nil, opts, nil)
	require.NoError(t, err)
	return h
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"giày", "da", "đế", "cao", "su", "size", "42"}, tokenize("Giày DA, đế cao-su! size 42"))
}

func TestBM25_Search(t *testing.T) {
	bm := NewBM25([]string{
		"giày thể thao chạy bộ",
		"dép đi trong nhà",
		"giày da công sở, giày da bò",
	})
	hits := bm.Search("giày da", 2)
	require.Len(t, hits, 2)
	assert.Equal(t, 2, hits[0].Index)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	none := bm.Search("", 3)
	require.Len(t, none, 3)
	for i, h := range none {
		assert.Equal(t, i, h.Index)
		assert.Zero(t, h.Score)
	}
}

func TestFuse(t *testing.T) {
	lexical := []vectorstore.Hit{{Index: 2}, {Index: 0}, {Index: 1}}
	vector := []vectorstore.Hit{{Index: 0}, {Index: 3}}

	fused := Fuse(RankedList{Hits: lexical, Weight: 0.5}, RankedList{Hits: vector, Weight: 0.5})

	require.Len(t, fused, 4)
	assert.Equal(t, 0, fused[0].Index)
	assert.InDelta(t, 0.5/62+0.5/61, fused[0].Score, 1e-12)
	assert.Equal(t, 2, fused[1].Index)
	assert.Equal(t, 3, fused[2].Index)
	assert.Equal(t, 1, fused[3].Index)
}

func TestRerank(t *testing.T) {
	docs := []Document{{Content: "Dép nhựa"}, {Content: "Giày sneaker"}, {Content: "Tất cổ cao"}}

	out, err := Rerank(context.Background(), keywordScorer{keyword: "giày"}, "giày", docs, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Giày sneaker", out[0].Content)
	assert.Equal(t, 0.9, out[0].Metadata.Score)
	assert.Equal(t, "Dép nhựa", out[1].Content)
	assert.Zero(t, docs[1].Metadata.Score, "input must not be mutated")

	kept, err := Rerank(context.Background(), nil, "giày", docs, 0)
	require.NoError(t, err)
	assert.Equal(t, docs, kept)

	_, err = Rerank(context.Background(), keywordScorer{err: errors.New("down")}, "q", docs, 1)
	assert.Error(t, err)
}

func TestHybridRetriever_Retrieve(t *testing.T) {
	h := newHybrid(t, fixedEmbedder{vector: []float32{1, 0, 0}}, DefaultHybridOptions())

	docs, err := h.Retrieve(context.Background(), "chính sách đổi trả")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "Chính sách đổi trả trong 30 ngày với hóa đơn", docs[0].Content)
	assert.Equal(t, SourceTypeCorpus, docs[0].Metadata.SourceType)
	assert.Equal(t, "policy.pdf", docs[0].Metadata.Title)
	assert.Equal(t, "a", docs[0].Metadata.ID)
	assert.Equal(t, 1, docs[0].Metadata.Page)
}

func TestHybridRetriever_Idempotent(t *testing.T) {
	h := newHybrid(t, fixedEmbedder{vector: []float32{0, 0.6, 0.8}}, DefaultHybridOptions())

	for _, q := range []string{"bảo quản giày da", "size", "chính sách", "không liên quan"} {
		first, err := h.Retrieve(context.Background(), q)
		require.NoError(t, err)
		second, err := h.Retrieve(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, first, second, q)
	}
}

func TestHybridRetriever_Errors(t *testing.T) {
	_, err := NewHybridRetriever(nil, nil, nil, nil, DefaultHybridOptions(), nil)
	assert.ErrorIs(t, err, corpus.ErrCorpusMissing)

	h := newHybrid(t, fixedEmbedder{err: errors.New("embedding down")}, DefaultHybridOptions())
	_, err = h.Retrieve(context.Background(), "đổi trả")
	assert.ErrorContains(t, err, "embedding down")
}

type fakeSearcher struct {
	results []websearch.Result
	err     error
}

func (f fakeSearcher) Search(context.Context, string) ([]websearch.Result, error) {
	return f.results, f.err
}

func TestWebRetriever(t *testing.T) {
	searcher := fakeSearcher{results: []websearch.Result{
		{Title: "Tin thời trang", URL: "https://a.example", Content: "Xu hướng áo khoác 2025"},
		{Title: "Empty", URL: "https://b.example"},
		{Title: "Giá giày", URL: "https://c.example", Content: "Giá giày chạy bộ tăng 5%"},
	}}

	w := NewWebRetriever(searcher, keywordScorer{keyword: "giày"}, 1)
	docs, err := w.Retrieve(context.Background(), "giá giày")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Giá giày chạy bộ tăng 5%", docs[0].Content)
	assert.Equal(t, "https://c.example", docs[0].Metadata.URL)
	assert.Equal(t, SourceTypeWeb, docs[0].Metadata.SourceType)

	_, err = NewWebRetriever(fakeSearcher{err: websearch.ErrMissingAPIKey}, nil, 3).Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, websearch.ErrMissingAPIKey)
}

type fakeAnswerer struct {
	text string
	err  error
}

func (f fakeAnswerer) Answer(context.Context, string) (string, error) {
	return f.text, f.err
}

func TestStructuredRetriever(t *testing.T) {
	docs, err := NewStructuredRetriever(fakeAnswerer{text: "Tổng tồn kho: **120** đôi"}).Retrieve(context.Background(), "tồn kho")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Tổng tồn kho: **120** đôi", docs[0].Content)
	assert.Equal(t, SourceTypeStructured, docs[0].Metadata.SourceType)

	_, err = NewStructuredRetriever(fakeAnswerer{err: errors.New("boom")}).Retrieve(context.Background(), "x")
	assert.Error(t, err)
}

func TestGreetingRetriever(t *testing.T) {
	docs, err := NewGreetingRetriever().Retrieve(context.Background(), "Xin chào")
	require.NoError(t, err)
	assert.Equal(t, []string{GreetingText}, Contents(docs))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewGreetingRetriever().Retrieve(ctx, "Xin chào")
	assert.ErrorIs(t, err, context.Canceled)
}
