package graph

import "strings"

type Source string

const (
	SourceStructured Source = "mongodb_retriever"
	SourceSemantic   Source = "vectordb_retriever"
	SourceWeb        Source = "internet_retriever"
	SourceGreeting   Source = "greeting"
)

// Sources lists the closed set of routing targets.
var Sources = []Source{SourceStructured, SourceSemantic, SourceWeb, SourceGreeting}

// ParseSource accepts the exact source names, case and surrounding space insensitive.
func ParseSource(s string) (Source, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, src := range Sources {
		if string(src) == s {
			return src, true
		}
	}
	return "", false
}

// RoutingDecision sends one sub-query to one retrieval source.
type RoutingDecision struct {
	Source Source `json:"source"`
	Query  string `json:"query"`
}
