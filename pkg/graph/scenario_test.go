package graph_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shate-rag-be/pkg/graph"
	"shate-rag-be/pkg/llm"
	"shate-rag-be/pkg/mongostore"
	"shate-rag-be/pkg/retriever"
	"shate-rag-be/pkg/structured"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// shopLLM plays every model role of one request: routing, query generation, result
// formatting and the final answer.
type shopLLM struct {
	mu        sync.Mutex
	routes    map[string]string
	query     string
	formatted string
	synthesis []string
	toolCalls int
}

func (m *shopLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	last := history[len(history)-1].Content
	if history[0].Role == llm.RoleSystem && history[0].Content == graph.RouterSystemPrompt {
		for keyword, route := range m.routes {
			if strings.Contains(last, keyword) {
				return route, nil
			}
		}
		return "[]", nil
	}

	if strings.Contains(last, "Kết quả truy vấn (JSON)") {
		return m.formatted, nil
	}

	m.mu.Lock()
	m.synthesis = append(m.synthesis, last)
	m.mu.Unlock()
	return "Câu trả lời tổng hợp", nil
}

func (m *shopLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return m.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (m *shopLLM) CallTool(_ context.Context, _ []llm.Message, _ []llm.Tool, _ string, _ ...llm.Option) (*llm.Message, error) {
	m.mu.Lock()
	m.toolCalls++
	m.mu.Unlock()
	args, _ := json.Marshal(map[string]string{"query": m.query})
	return &llm.Message{
		ID:        "chatcmpl-1",
		Role:      llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{{ID: "call_1", Name: structured.QueryToolName, Arguments: string(args)}},
	}, nil
}

func (m *shopLLM) synthesisPrompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.synthesis...)
}

type shopStore struct {
	docs     []bson.D
	executed []string
}

func (s *shopStore) Schema(context.Context, []string) (string, error) {
	return "Collection: productvariants\nFields:\n- productId (ObjectId)\n- size (string)\n- stock (int)\n", nil
}

func (s *shopStore) Aggregate(_ context.Context, q *mongostore.Query) ([]bson.D, error) {
	s.executed = append(s.executed, q.Collection)
	return s.docs, nil
}

func newShopAssistant(t *testing.T, model *shopLLM, retrievers map[graph.Source]retriever.Retriever) *graph.Assistant {
	t.Helper()
	a, err := graph.NewAssistant(graph.AssistantDeps{
		Classifier:  graph.NewClassifier(model, "fast-model", nil),
		Router:      graph.NewRouter(retrievers),
		Dispatcher:  graph.NewDispatcher(4, nil),
		Synthesizer: graph.NewSynthesizer(model, "best-model", nil),
	})
	require.NoError(t, err)
	return a
}

func TestScenario_InventoryQuestion(t *testing.T) {
	model := &shopLLM{
		routes:    map[string]string{"tồn kho": `[{"source": "mongodb_retriever"}]`},
		query:     "db.productvariants.aggregate([{ $match: { size: '42' } }, { $group: { _id: '$size', total: { $sum: '$stock' } } }])",
		formatted: "Size 42 hiện còn **17** đôi trong kho.",
	}
	store := &shopStore{docs: []bson.D{{{Key: "_id", Value: "42"}, {Key: "total", Value: int32(17)}}}}

	flow, err := structured.NewFlow(structured.FlowConfig{
		LLM:         model,
		Store:       store,
		Allowlist:   mongostore.NewAllowlist([]string{"productvariants", "products", "promotions"}),
		QueryModel:  "mql-model",
		FormatModel: "fast-model",
	})
	require.NoError(t, err)

	a := newShopAssistant(t, model, map[graph.Source]retriever.Retriever{
		graph.SourceStructured: retriever.NewStructuredRetriever(flow),
	})

	state, err := a.Answer(context.Background(), "Size 42 còn tồn kho bao nhiêu đôi?")
	require.NoError(t, err)

	assert.Equal(t, []graph.RoutingDecision{{Source: graph.SourceStructured, Query: "Size 42 còn tồn kho bao nhiêu đôi?"}}, state.Decisions)
	assert.Equal(t, []string{"productvariants"}, store.executed)
	assert.Equal(t, 2, model.toolCalls)
	require.Len(t, state.Documents, 1)
	assert.Equal(t, retriever.SourceTypeStructured, state.Documents[0].Metadata.SourceType)
	assert.Equal(t, "Size 42 hiện còn **17** đôi trong kho.", state.Documents[0].Content)

	prompts := model.synthesisPrompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "**17** đôi")
	assert.Equal(t, "Câu trả lời tổng hợp", state.Generation)
}

func TestScenario_Greeting(t *testing.T) {
	model := &shopLLM{routes: map[string]string{"Xin chào": `["greeting"]`}}
	var external atomic.Int32
	offline := retriever.RetrieverFunc(func(context.Context, string) ([]retriever.Document, error) {
		external.Add(1)
		return nil, nil
	})

	a := newShopAssistant(t, model, map[graph.Source]retriever.Retriever{
		graph.SourceGreeting:   retriever.NewGreetingRetriever(),
		graph.SourceSemantic:   offline,
		graph.SourceWeb:        offline,
		graph.SourceStructured: offline,
	})

	state, err := a.Answer(context.Background(), "Xin chào shop")
	require.NoError(t, err)
	assert.Zero(t, external.Load())
	assert.Equal(t, []string{retriever.GreetingText}, state.DocumentTexts())
	assert.Equal(t, "Câu trả lời tổng hợp", state.Generation)
}

func TestScenario_SemanticAndWebInParallel(t *testing.T) {
	model := &shopLLM{routes: map[string]string{
		"đổi trả": `[{"source": "vectordb_retriever"}, {"source": "internet_retriever"}]`,
	}}

	release := make(chan struct{})
	var running atomic.Int32
	waitForSibling := func(text string, delay time.Duration) retriever.Retriever {
		return retriever.RetrieverFunc(func(ctx context.Context, _ string) ([]retriever.Document, error) {
			if running.Add(1) == 2 {
				close(release)
			}
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			time.Sleep(delay)
			return []retriever.Document{{Content: text}}, nil
		})
	}

	a := newShopAssistant(t, model, map[graph.Source]retriever.Retriever{
		graph.SourceSemantic: waitForSibling("Đổi trả miễn phí trong 30 ngày.", 15*time.Millisecond),
		graph.SourceWeb:      waitForSibling("Các hãng lớn cho đổi trả 60 ngày.", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	state, err := a.Answer(ctx, "Chính sách đổi trả của shop so với thị trường?")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Đổi trả miễn phí trong 30 ngày.",
		"Các hãng lớn cho đổi trả 60 ngày.",
	}, state.DocumentTexts())

	prompts := model.synthesisPrompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Đổi trả miễn phí trong 30 ngày.\n\nCác hãng lớn cho đổi trả 60 ngày.")
}
