package vectorstore

import (
	"context"
	"errors"
	"sort"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Hit points at a corpus position with its cosine similarity.
type Hit struct {
	Index int
	Score float64
}

type Index interface {
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)
}

// MemoryIndex is a brute-force cosine index over L2-normalized vectors.
// It is built once and never mutated, so concurrent searches need no locking.
type MemoryIndex struct {
	dimension int
	vectors   [][]float32
}

func NewMemoryIndex(vectors [][]float32) (*MemoryIndex, error) {
	idx := &MemoryIndex{vectors: vectors}
	for _, v := range vectors {
		if idx.dimension == 0 {
			idx.dimension = len(v)
		}
		if len(v) != idx.dimension {
			return nil, ErrDimensionMismatch
		}
	}
	return idx, nil
}

func (m *MemoryIndex) Len() int {
	return len(m.vectors)
}

func (m *MemoryIndex) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.vectors) == 0 {
		return nil, nil
	}
	if len(vector) != m.dimension {
		return nil, ErrDimensionMismatch
	}

	hits := make([]Hit, len(m.vectors))
	for i, v := range m.vectors {
		hits[i] = Hit{Index: i, Score: dot(v, vector)}
	}
	return TopK(hits, k), nil
}

// TopK orders hits by score descending with ties broken by corpus position, then truncates.
func TopK(hits []Hit, k int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Index < hits[j].Index
	})
	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
