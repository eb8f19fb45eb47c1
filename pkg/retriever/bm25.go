package retriever

import (
	"math"
	"regexp"
	"strings"

	"shate-rag-be/pkg/vectorstore"
)

const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}]+`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// BM25 is an Okapi BM25 index over a fixed corpus. Terms whose IDF would go negative
// are floored to a fraction of the average IDF.
type BM25 struct {
	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

func NewBM25(texts []string) *BM25 {
	idx := &BM25{
		termFreqs: make([]map[string]int, len(texts)),
		docLens:   make([]int, len(texts)),
		idf:       make(map[string]float64),
	}

	df := make(map[string]int)
	total := 0
	for i, text := range texts {
		tokens := tokenize(text)
		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		for tok := range freqs {
			df[tok]++
		}
		idx.termFreqs[i] = freqs
		idx.docLens[i] = len(tokens)
		total += len(tokens)
	}
	if len(texts) > 0 {
		idx.avgDocLen = float64(total) / float64(len(texts))
	}

	n := float64(len(texts))
	sum := 0.0
	var negative []string
	for term, freq := range df {
		v := math.Log(n-float64(freq)+0.5) - math.Log(float64(freq)+0.5)
		idx.idf[term] = v
		sum += v
		if v < 0 {
			negative = append(negative, term)
		}
	}
	if len(df) > 0 {
		floor := bm25Epsilon * sum / float64(len(df))
		for _, term := range negative {
			idx.idf[term] = floor
		}
	}
	return idx
}

func (b *BM25) Len() int {
	return len(b.docLens)
}

func (b *BM25) Scores(query string) []float64 {
	scores := make([]float64, len(b.docLens))
	if b.avgDocLen == 0 {
		return scores
	}
	for _, term := range tokenize(query) {
		idf, ok := b.idf[term]
		if !ok {
			continue
		}
		for i, freqs := range b.termFreqs {
			tf := float64(freqs[term])
			if tf == 0 {
				continue
			}
			norm := bm25K1 * (1 - bm25B + bm25B*float64(b.docLens[i])/b.avgDocLen)
			scores[i] += idf * tf * (bm25K1 + 1) / (tf + norm)
		}
	}
	return scores
}

// Search returns the k best corpus positions, ties broken by position.
func (b *BM25) Search(query string, k int) []vectorstore.Hit {
	scores := b.Scores(query)
	hits := make([]vectorstore.Hit, len(scores))
	for i, s := range scores {
		hits[i] = vectorstore.Hit{Index: i, Score: s}
	}
	return vectorstore.TopK(hits, k)
}
