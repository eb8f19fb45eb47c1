package structured

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"shate-rag-be/pkg/llm"
	"shate-rag-be/pkg/mongostore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type toolResponse struct {
	msg *llm.Message
	err error
}

// fakeLLM replays scripted tool responses and records every request.
type fakeLLM struct {
	mu        sync.Mutex
	tools     []toolResponse
	format    string
	formatErr error

	toolCalls []recordedCall
	prompts   []string
}

type recordedCall struct {
	history []llm.Message
	choice  string
	model   string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, history[len(history)-1].Content)
	return f.format, f.formatErr
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (f *fakeLLM) CallTool(_ context.Context, history []llm.Message, _ []llm.Tool, choice string, opts ...llm.Option) (*llm.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := llm.ApplyOptions(llm.Options{}, opts...)
	f.toolCalls = append(f.toolCalls, recordedCall{history: append([]llm.Message(nil), history...), choice: choice, model: o.Model})
	if len(f.tools) == 0 {
		return nil, errors.New("unexpected tool call")
	}
	next := f.tools[0]
	f.tools = f.tools[1:]
	if next.err != nil {
		return nil, next.err
	}
	m := *next.msg
	return &m, nil
}

func queryMessage(id, query string) *llm.Message {
	args, _ := json.Marshal(map[string]string{"query": query})
	return &llm.Message{
		ID:        id,
		Role:      llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{{ID: "call_" + id, Name: QueryToolName, Arguments: string(args)}},
	}
}

func textMessage(id, text string) *llm.Message {
	return &llm.Message{ID: id, Role: llm.RoleAssistant, Content: text}
}

type fakeStore struct {
	mu          sync.Mutex
	schema      string
	docs        []bson.D
	err         error
	schemaNames [][]string
	executed    []*mongostore.Query
}

func (s *fakeStore) Schema(_ context.Context, names []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemaNames = append(s.schemaNames, names)
	return s.schema, nil
}

func (s *fakeStore) Aggregate(_ context.Context, q *mongostore.Query) ([]bson.D, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executed = append(s.executed, q)
	return s.docs, s.err
}

var allowed = []string{"productvariants", "products", "promotions"}

func newFlow(t *testing.T, fake *fakeLLM, store *fakeStore) *Flow {
	t.Helper()
	f, err := NewFlow(FlowConfig{
		LLM:         fake,
		Store:       store,
		Allowlist:   mongostore.NewAllowlist(allowed),
		QueryModel:  "mql-model",
		FormatModel: "fast-model",
	})
	require.NoError(t, err)
	return f
}

const stockQuery = "db.productvariants.aggregate([{ $group: { _id: null, total: { $sum: '$stock' } } }])"

func TestFlow_HappyPath(t *testing.T) {
	fake := &fakeLLM{
		tools: []toolResponse{
			{msg: queryMessage("gen-1", stockQuery)},
			{msg: queryMessage("check-1", stockQuery)},
		},
		format: "Tổng số lượng tồn kho hiện tại là **120** đôi.",
	}
	store := &fakeStore{
		schema: "Collection: productvariants\nFields:\n- stock (int)\n",
		docs:   []bson.D{{{Key: "_id", Value: nil}, {Key: "total", Value: int32(120)}}},
	}
	f := newFlow(t, fake, store)

	state, err := f.Run(context.Background(), "Tổng số lượng hàng tồn kho của shop?")
	require.NoError(t, err)

	assert.Equal(t, fake.format, state.Answer)
	assert.Equal(t, 1, state.Attempts)
	assert.Equal(t, stockQuery, state.GeneratedQuery)
	assert.Equal(t, 1, state.ResultCount)
	assert.Contains(t, state.Result, `"total": 120`)

	// schema requested for exactly the allowlist
	require.Len(t, store.schemaNames, 1)
	assert.Equal(t, allowed, store.schemaNames[0])
	require.Len(t, store.executed, 1)
	assert.Equal(t, "productvariants", store.executed[0].Collection)

	// generation is forced onto the query tool, the check pass only needs some tool call
	require.Len(t, fake.toolCalls, 2)
	assert.Equal(t, QueryToolName, fake.toolCalls[0].choice)
	assert.Equal(t, "mql-model", fake.toolCalls[0].model)
	assert.Equal(t, llm.ToolChoiceRequired, fake.toolCalls[1].choice)

	// the check pass sees only the system prompt and the generated query text
	check := fake.toolCalls[1].history
	require.Len(t, check, 2)
	assert.Equal(t, llm.RoleSystem, check[0].Role)
	assert.Equal(t, stockQuery, check[1].Content)

	// the generator saw the allowlist summary and the schema tool exchange
	gen := fake.toolCalls[0].history
	require.Len(t, gen, 5)
	assert.Equal(t, "Tổng số lượng hàng tồn kho của shop?", gen[1].Content)
	assert.Equal(t, "Available collections: productvariants, products, promotions", gen[2].Content)
	assert.Equal(t, SchemaCallID, gen[3].ToolCalls[0].ID)
	assert.Equal(t, SchemaToolName, gen[3].ToolCalls[0].Name)
	assert.Equal(t, SchemaCallID, gen[4].ToolCallID)
	assert.Equal(t, store.schema, gen[4].Content)

	// the checked call carries the generated message id
	var checked *llm.Message
	for i := range state.Conversation {
		if state.Conversation[i].ToolCalls != nil && state.Conversation[i].ToolCalls[0].ID == "call_check-1" {
			checked = &state.Conversation[i]
		}
	}
	require.NotNil(t, checked)
	assert.Equal(t, "gen-1", checked.ID)

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "Tổng số lượng hàng tồn kho của shop?")
	assert.Contains(t, fake.prompts[0], `"total": 120`)
	assert.False(t, state.Truncated)
	assert.NotContains(t, fake.prompts[0], "bản ghi đầu tiên")
}

func TestFlow_OversizedResultIsFlaggedToFormatter(t *testing.T) {
	const listQuery = "db.products.aggregate([{ $project: { name: 1 } }])"
	fake := &fakeLLM{
		tools: []toolResponse{
			{msg: queryMessage("g", listQuery)},
			{msg: queryMessage("c", listQuery)},
		},
		format: "Shop có rất nhiều mẫu giày, dưới đây là một phần danh sách.",
	}
	docs := make([]bson.D, mongostore.MaxResultDocuments+1)
	for i := range docs {
		docs[i] = bson.D{{Key: "name", Value: fmt.Sprintf("Giày %d", i)}}
	}
	f := newFlow(t, fake, &fakeStore{docs: docs})

	state, err := f.Run(context.Background(), "Liệt kê tất cả sản phẩm")
	require.NoError(t, err)

	assert.True(t, state.Truncated)
	assert.Equal(t, mongostore.MaxResultDocuments, state.ResultCount)
	assert.NotContains(t, state.Result, fmt.Sprintf("Giày %d", mongostore.MaxResultDocuments))
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "bản ghi đầu tiên")
}

func TestFlow_EmptyResultUsesFixedMessage(t *testing.T) {
	fake := &fakeLLM{
		tools: []toolResponse{
			{msg: queryMessage("g", "db.promotions.aggregate([{ $match: { active: 'active' } }])")},
			{msg: queryMessage("c", "db.promotions.aggregate([{ $match: { active: 'active' } }])")},
		},
		format: `[{"code": "SALE"}]`,
	}
	f := newFlow(t, fake, &fakeStore{})

	answer, err := f.Answer(context.Background(), "Có mã khuyến mãi nào đang chạy không?")
	require.NoError(t, err)
	assert.Equal(t, NoResultsMessage, answer)
	assert.Empty(t, fake.prompts, "empty results must not reach the formatter")
}

func TestFlow_CollectionConfinement(t *testing.T) {
	outside := []string{
		"db.users.aggregate([{ $project: { email: 1 } }])",
		"db.orders.aggregate([{ $group: { _id: '$status', n: { $sum: 1 } } }])",
		"db.products.aggregate([{ $lookup: { from: 'users', localField: 'x', foreignField: '_id', as: 'u' } }])",
		"db.productvariants.aggregate([{ $unionWith: 'orderitems' }])",
		"db.products.aggregate([{ $facet: { a: [{ $lookup: { from: 'sessions', pipeline: [], as: 's' } }] } }])",
		"db.products.aggregate([{ $out: 'promotions' }])",
		"db.products.find({})",
	}

	for _, q := range outside {
		t.Run(q, func(t *testing.T) {
			fake := &fakeLLM{tools: []toolResponse{{msg: queryMessage("g", q)}, {msg: queryMessage("c", q)}}}
			store := &fakeStore{docs: []bson.D{{{Key: "email", Value: "a@b.c"}}}}
			f := newFlow(t, fake, store)

			state, err := f.Run(context.Background(), "liệt kê email khách hàng")
			require.NoError(t, err)
			assert.Empty(t, store.executed)
			assert.Error(t, state.ExecErr)
			assert.Equal(t, FailureMessage, state.Answer)
			assert.Empty(t, fake.prompts)
		})
	}

	// whatever reaches the store only names allowlisted collections
	inside := []string{
		stockQuery,
		"db.products.aggregate([{ $lookup: { from: 'productvariants', localField: '_id', foreignField: 'productId', as: 'v' } }])",
		"db.promotions.aggregate([{ $unionWith: { coll: 'products', pipeline: [] } }])",
	}
	allow := mongostore.NewAllowlist(allowed)
	for _, q := range inside {
		fake := &fakeLLM{tools: []toolResponse{{msg: queryMessage("g", q)}, {msg: queryMessage("c", q)}}, format: "ok"}
		store := &fakeStore{docs: []bson.D{{{Key: "n", Value: int32(1)}}}}
		_, err := newFlow(t, fake, store).Run(context.Background(), "q")
		require.NoError(t, err)
		require.Len(t, store.executed, 1)
		for _, ref := range mongostore.Referenced(store.executed[0]) {
			assert.True(t, allow.Allows(ref), ref)
		}
	}
}

func TestFlow_RetriesUntilToolCall(t *testing.T) {
	fake := &fakeLLM{
		tools: []toolResponse{
			{msg: textMessage("g1", "Mình sẽ truy vấn bảng products.")},
			{msg: queryMessage("g2", stockQuery)},
			{msg: queryMessage("c", stockQuery)},
		},
		format: "Còn 120 đôi.",
	}
	store := &fakeStore{docs: []bson.D{{{Key: "total", Value: int32(120)}}}}

	state, err := newFlow(t, fake, store).Run(context.Background(), "tồn kho?")
	require.NoError(t, err)
	assert.Equal(t, 2, state.Attempts)
	assert.Equal(t, "Còn 120 đôi.", state.Answer)

	second := fake.toolCalls[1].history
	assert.Equal(t, retryNudge, second[len(second)-1].Content)
}

func TestFlow_RetryCap(t *testing.T) {
	fake := &fakeLLM{tools: []toolResponse{
		{msg: textMessage("g1", "...")},
		{msg: textMessage("g2", "...")},
		{msg: textMessage("g3", "...")},
		{msg: textMessage("g4", "...")},
	}}
	store := &fakeStore{}

	state, err := newFlow(t, fake, store).Run(context.Background(), "tồn kho?")
	assert.ErrorIs(t, err, ErrQueryGeneration)
	assert.Equal(t, DefaultMaxQueryAttempts, state.Attempts)
	assert.Len(t, fake.toolCalls, DefaultMaxQueryAttempts)
	assert.Empty(t, store.executed)
}

func TestFlow_ExecutionErrorIsRenderedSafely(t *testing.T) {
	fake := &fakeLLM{
		tools:  []toolResponse{{msg: queryMessage("g", stockQuery)}, {msg: queryMessage("c", stockQuery)}},
		format: "should not be used",
	}
	store := &fakeStore{err: errors.New("(Location16436) Unrecognized pipeline stage name: '$sumx'")}

	state, err := newFlow(t, fake, store).Run(context.Background(), "tồn kho?")
	require.NoError(t, err)
	assert.Equal(t, FailureMessage, state.Answer)
	assert.NotContains(t, state.Answer, "Location16436")
	assert.Contains(t, state.Result, "Error:")
}

func TestFlow_FormatterRawJSONIsReplaced(t *testing.T) {
	fake := &fakeLLM{
		tools:  []toolResponse{{msg: queryMessage("g", stockQuery)}, {msg: queryMessage("c", stockQuery)}},
		format: "```json\n[{\"total\": 120}]\n```",
	}
	store := &fakeStore{docs: []bson.D{{{Key: "total", Value: int32(120)}}}}

	answer, err := newFlow(t, fake, store).Answer(context.Background(), "tồn kho?")
	require.NoError(t, err)
	assert.Equal(t, FailureMessage, answer)
}

func TestFlow_CheckWithoutToolCallKeepsGeneratedQuery(t *testing.T) {
	fake := &fakeLLM{
		tools:  []toolResponse{{msg: queryMessage("g", stockQuery)}, {msg: textMessage("c", "looks fine")}},
		format: "Còn 120 đôi.",
	}
	store := &fakeStore{docs: []bson.D{{{Key: "total", Value: int32(120)}}}}

	state, err := newFlow(t, fake, store).Run(context.Background(), "tồn kho?")
	require.NoError(t, err)
	assert.Equal(t, stockQuery, state.GeneratedQuery)
	assert.Equal(t, "Còn 120 đôi.", state.Answer)
}

func TestFlow_GenerationErrorPropagates(t *testing.T) {
	fake := &fakeLLM{tools: []toolResponse{{err: errors.New("proxy unavailable")}}}

	_, err := newFlow(t, fake, &fakeStore{}).Answer(context.Background(), "tồn kho?")
	assert.ErrorContains(t, err, "proxy unavailable")
}

func TestNewFlow_Validation(t *testing.T) {
	_, err := NewFlow(FlowConfig{})
	assert.Error(t, err)

	_, err = NewFlow(FlowConfig{LLM: &fakeLLM{}, Store: &fakeStore{}, Allowlist: mongostore.NewAllowlist(nil)})
	assert.Error(t, err)
}
