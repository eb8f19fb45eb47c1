package graph

import (
	"strings"
	"time"

	"shate-rag-be/pkg/retriever"
)

const EvidenceSeparator = "\n\n"

// BranchResult is what one retrieval branch contributed.
type BranchResult struct {
	Decision  RoutingDecision
	Documents []retriever.Document
	Err       error
	Duration  time.Duration
}

func (b BranchResult) Failed() bool {
	return b.Err != nil
}

// State is threaded through the assistant graph. Question is set once by the caller,
// SubQueries and Decisions once by their nodes, Documents only grows and Generation is set last.
type State struct {
	Question   string
	SubQueries []string
	Decisions  []RoutingDecision
	Branches   []BranchResult
	Documents  []retriever.Document
	Generation string
}

func NewState(question string) *State {
	return &State{Question: question}
}

// Queries returns the expanded sub-queries, or the question when nothing was expanded.
func (s *State) Queries() []string {
	if len(s.SubQueries) > 0 {
		return s.SubQueries
	}
	return []string{s.Question}
}

// Merge appends branch results in the given order. Failed branches contribute nothing.
func (s *State) Merge(results []BranchResult) {
	s.Branches = append(s.Branches, results...)
	for _, r := range results {
		if r.Failed() {
			continue
		}
		s.Documents = append(s.Documents, r.Documents...)
	}
}

func (s *State) DocumentTexts() []string {
	return retriever.Contents(s.Documents)
}

// BuildEvidence joins document texts with a blank line.
func BuildEvidence(texts []string) string {
	return strings.Join(texts, EvidenceSeparator)
}
