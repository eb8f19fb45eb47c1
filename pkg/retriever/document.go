package retriever

import "context"

const (
	SourceTypeCorpus     = "vectordb"
	SourceTypeWeb        = "internet"
	SourceTypeStructured = "mongodb"
	SourceTypeGreeting   = "greeting"
)

type Metadata struct {
	SourceType string  `json:"source_type"`
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title,omitempty"`
	URL        string  `json:"url,omitempty"`
	Source     string  `json:"source,omitempty"`
	Page       int     `json:"page,omitempty"`
	Score      float64 `json:"score"`
}

// Document is one ranked piece of evidence. Adapters produce it and nothing mutates it afterwards.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Retriever returns a finite ranked list for a query. Each call runs the full pipeline again.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

type RetrieverFunc func(ctx context.Context, query string) ([]Document, error)

func (f RetrieverFunc) Retrieve(ctx context.Context, query string) ([]Document, error) {
	return f(ctx, query)
}

// Contents extracts the text of each document in order.
func Contents(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Content
	}
	return out
}
