package retriever

import (
	"sort"

	"shate-rag-be/pkg/vectorstore"
)

// rrfC dampens the contribution of lower ranks in reciprocal rank fusion.
const rrfC = 60

type RankedList struct {
	Hits   []vectorstore.Hit
	Weight float64
}

// Fuse blends ranked lists with weighted reciprocal rank fusion. Positions keep the order in
// which they first appear across the lists when their fused scores tie.
func Fuse(lists ...RankedList) []vectorstore.Hit {
	scores := make(map[int]float64)
	var order []int
	for _, list := range lists {
		for rank, hit := range list.Hits {
			if _, seen := scores[hit.Index]; !seen {
				order = append(order, hit.Index)
			}
			scores[hit.Index] += list.Weight / float64(rank+1+rrfC)
		}
	}

	fused := make([]vectorstore.Hit, len(order))
	for i, idx := range order {
		fused[i] = vectorstore.Hit{Index: idx, Score: scores[idx]}
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}
