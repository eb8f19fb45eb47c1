package graph

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// End is the terminal pseudo node.
const End = "__end__"

const defaultMaxSteps = 25

var (
	ErrNoEntry     = errors.New("graph has no entry node")
	ErrUnknownNode = errors.New("unknown graph node")
	ErrNoEdge      = errors.New("node has no outgoing edge")
	ErrStepLimit   = errors.New("graph step limit exceeded")
)

// NodeFunc mutates the shared state. S is normally a pointer type.
type NodeFunc[S any] func(ctx context.Context, state S) error

// EdgeFunc picks the next node from the state after the source node ran.
type EdgeFunc[S any] func(ctx context.Context, state S) (string, error)

// StateGraph runs nodes over one state value following static and conditional edges.
// It is built once and safe to run concurrently with distinct states.
type StateGraph[S any] struct {
	name        string
	nodes       map[string]NodeFunc[S]
	edges       map[string]string
	conditional map[string]EdgeFunc[S]
	entry       string
	maxSteps    int
	tracer      trace.Tracer
}

func New[S any](name string) *StateGraph[S] {
	return &StateGraph[S]{
		name:        name,
		nodes:       make(map[string]NodeFunc[S]),
		edges:       make(map[string]string),
		conditional: make(map[string]EdgeFunc[S]),
		maxSteps:    defaultMaxSteps,
		tracer:      otel.Tracer("shate-rag-be/graph"),
	}
}

func (g *StateGraph[S]) AddNode(name string, fn NodeFunc[S]) *StateGraph[S] {
	g.nodes[name] = fn
	return g
}

func (g *StateGraph[S]) AddEdge(from, to string) *StateGraph[S] {
	g.edges[from] = to
	return g
}

// AddConditionalEdge replaces any static edge leaving from.
func (g *StateGraph[S]) AddConditionalEdge(from string, fn EdgeFunc[S]) *StateGraph[S] {
	g.conditional[from] = fn
	return g
}

func (g *StateGraph[S]) SetEntry(name string) *StateGraph[S] {
	g.entry = name
	return g
}

func (g *StateGraph[S]) SetMaxSteps(n int) *StateGraph[S] {
	if n > 0 {
		g.maxSteps = n
	}
	return g
}

// Validate checks that the entry and every static edge target exist and that each node can leave.
func (g *StateGraph[S]) Validate() error {
	if g.entry == "" {
		return ErrNoEntry
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("%w: entry %q", ErrUnknownNode, g.entry)
	}
	for name := range g.nodes {
		_, static := g.edges[name]
		_, cond := g.conditional[name]
		if !static && !cond {
			return fmt.Errorf("%w: %q", ErrNoEdge, name)
		}
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("%w: edge source %q", ErrUnknownNode, from)
		}
		if _, ok := g.nodes[to]; !ok && to != End {
			return fmt.Errorf("%w: edge target %q", ErrUnknownNode, to)
		}
	}
	return nil
}

// Run executes from the entry node until End, a node error, cancellation or the step limit.
func (g *StateGraph[S]) Run(ctx context.Context, state S) error {
	current := g.entry
	if current == "" {
		return ErrNoEntry
	}

	for step := 0; current != End; step++ {
		if step >= g.maxSteps {
			return fmt.Errorf("%w: %s after %d steps", ErrStepLimit, g.name, step)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fn, ok := g.nodes[current]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownNode, current)
		}
		if err := g.runNode(ctx, current, fn, state); err != nil {
			return err
		}

		next, err := g.next(ctx, current, state)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func (g *StateGraph[S]) runNode(ctx context.Context, name string, fn NodeFunc[S], state S) error {
	ctx, span := g.tracer.Start(ctx, g.name+"."+name, trace.WithAttributes(attribute.String("graph.node", name)))
	defer span.End()

	if err := fn(ctx, state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (g *StateGraph[S]) next(ctx context.Context, current string, state S) (string, error) {
	if fn, ok := g.conditional[current]; ok {
		next, err := fn(ctx, state)
		if err != nil {
			return "", fmt.Errorf("%s: %w", current, err)
		}
		return next, nil
	}
	if next, ok := g.edges[current]; ok {
		return next, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoEdge, current)
}
