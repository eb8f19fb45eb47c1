package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BranchTotal counts dispatched retrieval branches by source and outcome.
	BranchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shate_branch_total",
		Help: "Retrieval branches by source and status",
	}, []string{"source", "status"})

	BranchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shate_branch_duration_seconds",
		Help:    "Retrieval branch latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"source"})

	// DroppedSubQueries counts sub-queries for which the classifier produced no decision.
	DroppedSubQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shate_classifier_dropped_subqueries_total",
		Help: "Sub-queries that produced no routing decision",
	})

	ClassifierFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shate_classifier_fallback_total",
		Help: "Classifier outputs recovered by a fallback parse stage",
	}, []string{"stage"})

	QueryAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shate_structured_query_attempts",
		Help:    "Query generation attempts per structured query",
		Buckets: []float64{1, 2, 3, 4, 5},
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shate_request_duration_seconds",
		Help:    "End to end question answering latency",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"status"})
)
