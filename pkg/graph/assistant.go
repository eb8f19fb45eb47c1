package graph

import (
	"context"
	"errors"
	"strings"

	"shate-rag-be/internal/pkg/logger"
)

const (
	NodeTranslate  = "translate"
	NodeClassify   = "classify"
	NodeDispatch   = "dispatch"
	NodeSynthesize = "synthesize"
)

var ErrEmptyQuestion = errors.New("question is empty")

type QuestionClassifier interface {
	Classify(ctx context.Context, question string, subQueries []string) ([]RoutingDecision, error)
}

type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question string, documents []string) (string, error)
}

type QueryTranslator interface {
	Translate(ctx context.Context, question string) []string
}

type AssistantDeps struct {
	Translator  QueryTranslator // optional
	Classifier  QuestionClassifier
	Router      *Router
	Dispatcher  *Dispatcher
	Synthesizer AnswerSynthesizer
	Logger      logger.ILogger
}

// Assistant wires translate? -> classify -> dispatch -> synthesize into one graph.
type Assistant struct {
	deps  AssistantDeps
	graph *StateGraph[*State]
}

func NewAssistant(deps AssistantDeps) (*Assistant, error) {
	if deps.Classifier == nil || deps.Router == nil || deps.Dispatcher == nil || deps.Synthesizer == nil {
		return nil, errors.New("assistant needs a classifier, router, dispatcher and synthesizer")
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}

	a := &Assistant{deps: deps}
	g := New[*State]("assistant").
		AddNode(NodeClassify, a.classify).
		AddNode(NodeDispatch, a.dispatch).
		AddNode(NodeSynthesize, a.synthesize).
		AddConditionalEdge(NodeClassify, routeAfterClassify).
		AddEdge(NodeDispatch, NodeSynthesize).
		AddEdge(NodeSynthesize, End).
		SetEntry(NodeClassify)

	if deps.Translator != nil {
		g.AddNode(NodeTranslate, a.translate).
			AddEdge(NodeTranslate, NodeClassify).
			SetEntry(NodeTranslate)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	a.graph = g
	return a, nil
}

// Answer runs the graph for one question and returns the final state.
func (a *Assistant) Answer(ctx context.Context, question string) (*State, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	state := NewState(question)
	if err := a.graph.Run(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

func (a *Assistant) translate(ctx context.Context, s *State) error {
	s.SubQueries = a.deps.Translator.Translate(ctx, s.Question)
	return nil
}

func (a *Assistant) classify(ctx context.Context, s *State) error {
	decisions, err := a.deps.Classifier.Classify(ctx, s.Question, s.SubQueries)
	if err != nil {
		return err
	}
	s.Decisions = decisions
	a.deps.Logger.Info("ASSISTANT", "Question classified", map[string]interface{}{
		"question":  s.Question,
		"decisions": decisions,
	})
	return nil
}

func routeAfterClassify(_ context.Context, s *State) (string, error) {
	if len(s.Decisions) == 0 {
		return NodeSynthesize, nil
	}
	return NodeDispatch, nil
}

func (a *Assistant) dispatch(ctx context.Context, s *State) error {
	branches := a.deps.Router.Route(s.Question, s.Decisions)
	results, err := a.deps.Dispatcher.Dispatch(ctx, branches)
	if err != nil {
		return err
	}
	s.Merge(results)
	return nil
}

func (a *Assistant) synthesize(ctx context.Context, s *State) error {
	answer, err := a.deps.Synthesizer.Synthesize(ctx, s.Question, s.DocumentTexts())
	if err != nil {
		return err
	}
	s.Generation = answer
	return nil
}
