package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/internal/pkg/metrics"
	"shate-rag-be/pkg/retriever"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrNoRetriever = errors.New("no retriever registered for source")

type Dispatcher struct {
	concurrency int
	logger      logger.ILogger
}

func NewDispatcher(concurrency int, log logger.ILogger) *Dispatcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Dispatcher{concurrency: concurrency, logger: log}
}

// Dispatch runs every branch concurrently and waits for all of them. Results come back in
// branch order. A failed branch is logged and reported with no documents. If ctx ends first,
// nothing is returned but ctx.Err().
func (d *Dispatcher) Dispatch(ctx context.Context, branches []Branch) ([]BranchResult, error) {
	results, _, err := ParallelMap(ctx, branches, d.concurrency, func(ctx context.Context, i int, b Branch) (BranchResult, error) {
		return d.run(ctx, i, b), nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (d *Dispatcher) run(ctx context.Context, i int, b Branch) BranchResult {
	source := string(b.Decision.Source)
	ctx, span := otel.Tracer("shate-rag-be/graph").Start(ctx, "branch."+source)
	span.SetAttributes(attribute.Int("branch.index", i), attribute.String("branch.query", b.Decision.Query))
	defer span.End()

	start := time.Now()
	var (
		docs []retriever.Document
		err  error
	)
	if b.Retriever == nil {
		err = fmt.Errorf("%w: %s", ErrNoRetriever, source)
	} else {
		docs, err = b.Retriever.Retrieve(ctx, b.Decision.Query)
	}
	elapsed := time.Since(start)
	metrics.BranchDuration.WithLabelValues(source).Observe(elapsed.Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.BranchTotal.WithLabelValues(source, "failed").Inc()
		d.logger.Warn("DISPATCHER", "Retrieval branch failed", map[string]interface{}{
			"source": source,
			"query":  b.Decision.Query,
			"error":  err.Error(),
		})
		return BranchResult{Decision: b.Decision, Err: err, Duration: elapsed}
	}

	metrics.BranchTotal.WithLabelValues(source, "ok").Inc()
	d.logger.Debug("DISPATCHER", "Retrieval branch finished", map[string]interface{}{
		"source":    source,
		"documents": len(docs),
		"ms":        elapsed.Milliseconds(),
	})
	return BranchResult{Decision: b.Decision, Documents: docs, Duration: elapsed}
}
