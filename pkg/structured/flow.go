package structured

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/internal/pkg/metrics"
	"shate-rag-be/pkg/graph"
	"shate-rag-be/pkg/llm"
	"shate-rag-be/pkg/mongostore"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	NodeListCollections = "list_collections"
	NodeFetchSchema     = "fetch_schema"
	NodeGenerateQuery   = "generate_query"
	NodeCheckQuery      = "check_query"
	NodeRunQuery        = "run_query"
	NodeFormatAnswer    = "format_answer"

	DefaultMaxQueryAttempts = 3
)

var ErrQueryGeneration = errors.New("model did not produce a query tool call")

// Store is the structured data boundary: schema introspection and query execution.
type Store interface {
	Schema(ctx context.Context, collections []string) (string, error)
	Aggregate(ctx context.Context, q *mongostore.Query) ([]bson.D, error)
}

// State lives for one invocation only.
type State struct {
	Query          string
	Collections    []string
	Conversation   []llm.Message
	Attempts       int
	GeneratedQuery string
	Result         string
	ResultCount    int
	Truncated      bool
	ExecErr        error
	Answer         string
}

func (s *State) last() *llm.Message {
	if len(s.Conversation) == 0 {
		return nil
	}
	return &s.Conversation[len(s.Conversation)-1]
}

type FlowConfig struct {
	LLM              llm.CompletionService
	Store            Store
	Allowlist        *mongostore.Allowlist
	QueryModel       string
	FormatModel      string
	MaxQueryAttempts int
	Logger           logger.ILogger
}

// Flow generates, validates, runs and formats one aggregation confined to the allowlist.
type Flow struct {
	cfg   FlowConfig
	graph *graph.StateGraph[*State]
}

func NewFlow(cfg FlowConfig) (*Flow, error) {
	if cfg.LLM == nil || cfg.Store == nil || cfg.Allowlist == nil {
		return nil, errors.New("structured flow needs a completion service, a store and an allowlist")
	}
	if len(cfg.Allowlist.Names()) == 0 {
		return nil, errors.New("structured flow allowlist is empty")
	}
	if cfg.MaxQueryAttempts <= 0 {
		cfg.MaxQueryAttempts = DefaultMaxQueryAttempts
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}

	f := &Flow{cfg: cfg}
	f.graph = graph.New[*State]("structured").
		AddNode(NodeListCollections, f.listCollections).
		AddNode(NodeFetchSchema, f.fetchSchema).
		AddNode(NodeGenerateQuery, f.generateQuery).
		AddNode(NodeCheckQuery, f.checkQuery).
		AddNode(NodeRunQuery, f.runQuery).
		AddNode(NodeFormatAnswer, f.formatAnswer).
		AddEdge(NodeListCollections, NodeFetchSchema).
		AddEdge(NodeFetchSchema, NodeGenerateQuery).
		AddConditionalEdge(NodeGenerateQuery, f.needsCheck).
		AddEdge(NodeCheckQuery, NodeRunQuery).
		AddEdge(NodeRunQuery, NodeFormatAnswer).
		AddEdge(NodeFormatAnswer, graph.End).
		SetEntry(NodeListCollections).
		SetMaxSteps(cfg.MaxQueryAttempts + 8)
	if err := f.graph.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Answer runs the sub-graph and returns the formatted text.
func (f *Flow) Answer(ctx context.Context, query string) (string, error) {
	state, err := f.Run(ctx, query)
	if err != nil {
		return "", err
	}
	return state.Answer, nil
}

// Run is Answer with the final state exposed.
func (f *Flow) Run(ctx context.Context, query string) (*State, error) {
	state := &State{
		Query:        query,
		Conversation: []llm.Message{{Role: llm.RoleUser, Content: query}},
	}
	err := f.graph.Run(ctx, state)
	if state.Attempts > 0 {
		metrics.QueryAttempts.Observe(float64(state.Attempts))
	}
	if err != nil {
		return state, err
	}
	return state, nil
}

func (f *Flow) listCollections(_ context.Context, s *State) error {
	s.Collections = f.cfg.Allowlist.Names()
	s.Conversation = append(s.Conversation, llm.Message{
		Role:    llm.RoleAssistant,
		Content: "Available collections: " + strings.Join(s.Collections, ", "),
	})
	return nil
}

func (f *Flow) fetchSchema(ctx context.Context, s *State) error {
	s.Conversation = append(s.Conversation, llm.Message{
		Role: llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{{
			ID:        SchemaCallID,
			Name:      SchemaToolName,
			Arguments: schemaArguments(s.Collections),
		}},
	})

	schema, err := f.cfg.Store.Schema(ctx, s.Collections)
	if err != nil {
		return fmt.Errorf("fetch schema: %w", err)
	}
	s.Conversation = append(s.Conversation, llm.Message{
		Role:       llm.RoleTool,
		Name:       SchemaToolName,
		ToolCallID: SchemaCallID,
		Content:    schema,
	})
	return nil
}

func (f *Flow) generateQuery(ctx context.Context, s *State) error {
	if s.Attempts > 0 {
		s.Conversation = append(s.Conversation, llm.Message{Role: llm.RoleUser, Content: retryNudge})
	}
	s.Attempts++

	history := append([]llm.Message{{Role: llm.RoleSystem, Content: queryAgentPrompt}}, s.Conversation...)
	msg, err := f.cfg.LLM.CallTool(ctx, history, []llm.Tool{queryTool}, QueryToolName,
		llm.WithModel(f.cfg.QueryModel), llm.WithTemperature(0))
	if err != nil {
		return fmt.Errorf("generate query: %w", err)
	}
	s.Conversation = append(s.Conversation, *msg)
	return nil
}

// needsCheck loops back to generation until a query call appears or attempts run out.
func (f *Flow) needsCheck(_ context.Context, s *State) (string, error) {
	if _, ok := queryCall(s.last()); ok {
		return NodeCheckQuery, nil
	}
	if s.Attempts >= f.cfg.MaxQueryAttempts {
		f.cfg.Logger.Warn("STRUCTURED", "Query generation gave up", map[string]interface{}{
			"query":    s.Query,
			"attempts": s.Attempts,
		})
		return "", fmt.Errorf("%w after %d attempts", ErrQueryGeneration, s.Attempts)
	}
	return NodeGenerateQuery, nil
}

// checkQuery asks the model to re-emit the generated query as a fresh tool call and
// stitches the result onto the original message id.
func (f *Flow) checkQuery(ctx context.Context, s *State) error {
	original := s.last()
	call, _ := queryCall(original)
	text, err := queryText(call)
	if err != nil {
		text = call.Arguments
	}

	msg, err := f.cfg.LLM.CallTool(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: queryAgentPrompt},
		{Role: llm.RoleUser, Content: text},
	}, []llm.Tool{queryTool}, llm.ToolChoiceRequired, llm.WithModel(f.cfg.QueryModel), llm.WithTemperature(0))
	if err != nil {
		return fmt.Errorf("check query: %w", err)
	}

	if _, ok := queryCall(msg); !ok {
		f.cfg.Logger.Warn("STRUCTURED", "Check pass returned no query, keeping the generated one", map[string]interface{}{"query": text})
		checked := *original
		msg = &checked
	}
	msg.ID = original.ID
	s.Conversation = append(s.Conversation, *msg)
	return nil
}

func (f *Flow) runQuery(ctx context.Context, s *State) error {
	call, _ := queryCall(s.last())

	content, err := f.execute(ctx, s, call)
	if err != nil {
		s.ExecErr = err
		content = "Error: " + err.Error()
		f.cfg.Logger.Warn("STRUCTURED", "Query execution failed", map[string]interface{}{
			"query": s.GeneratedQuery,
			"error": err.Error(),
		})
	}
	s.Result = content
	s.Conversation = append(s.Conversation, llm.Message{
		Role:       llm.RoleTool,
		Name:       QueryToolName,
		ToolCallID: call.ID,
		Content:    content,
	})
	return nil
}

func (f *Flow) execute(ctx context.Context, s *State, call llm.ToolCall) (string, error) {
	text, err := queryText(call)
	if err != nil {
		return "", fmt.Errorf("read query arguments: %w", err)
	}
	s.GeneratedQuery = text

	q, err := mongostore.ParseQuery(text)
	if err != nil {
		return "", err
	}
	if err := f.cfg.Allowlist.Check(q); err != nil {
		return "", err
	}

	docs, err := f.cfg.Store.Aggregate(ctx, q)
	if err != nil {
		return "", err
	}
	docs, s.Truncated = mongostore.Truncate(docs)
	if s.Truncated {
		f.cfg.Logger.Warn("STRUCTURED", "Query result truncated", map[string]interface{}{
			"query": text,
			"limit": mongostore.MaxResultDocuments,
		})
	}
	s.ResultCount = len(docs)
	return mongostore.RenderResults(docs)
}

func (f *Flow) formatAnswer(ctx context.Context, s *State) error {
	switch {
	case s.ExecErr != nil:
		s.Answer = FailureMessage
		return nil
	case s.ResultCount == 0:
		s.Answer = NoResultsMessage
		return nil
	}

	out, err := f.cfg.LLM.Generate(ctx, FormatPrompt(s.Query, s.Result, s.Truncated),
		llm.WithModel(f.cfg.FormatModel), llm.WithTemperature(0))
	if err != nil {
		return fmt.Errorf("format answer: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" || looksLikeJSON(out) {
		f.cfg.Logger.Warn("STRUCTURED", "Formatter returned raw data, replacing it", map[string]interface{}{"query": s.Query})
		s.Answer = FailureMessage
		return nil
	}
	s.Answer = out
	return nil
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "```json"), "```"))
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return false
	}
	return json.Valid([]byte(s))
}
