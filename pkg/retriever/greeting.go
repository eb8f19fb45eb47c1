package retriever

import "context"

const GreetingText = "Hello! How can I assist you today?"

// GreetingRetriever answers small talk with a canned line and never leaves the process.
type GreetingRetriever struct{}

func NewGreetingRetriever() GreetingRetriever {
	return GreetingRetriever{}
}

func (GreetingRetriever) Retrieve(ctx context.Context, _ string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []Document{{
		Content:  GreetingText,
		Metadata: Metadata{SourceType: SourceTypeGreeting, Score: 1},
	}}, nil
}
