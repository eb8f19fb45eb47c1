package graph

import (
	"shate-rag-be/pkg/retriever"
)

// Branch is one independent retrieval invocation. It holds no reference to its siblings.
type Branch struct {
	Question  string
	Decision  RoutingDecision
	Retriever retriever.Retriever
}

type Router struct {
	retrievers map[Source]retriever.Retriever
}

func NewRouter(retrievers map[Source]retriever.Retriever) *Router {
	return &Router{retrievers: retrievers}
}

// Route maps every decision to a branch. A source without a registered retriever yields a
// branch with a nil Retriever, which fails at dispatch.
func (r *Router) Route(question string, decisions []RoutingDecision) []Branch {
	branches := make([]Branch, 0, len(decisions))
	for _, d := range decisions {
		branches = append(branches, Branch{
			Question:  question,
			Decision:  d,
			Retriever: r.retrievers[d.Source],
		})
	}
	return branches
}
