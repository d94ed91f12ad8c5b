package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values for the operation counters.
const (
	resultFound    = "found"
	resultNotFound = "not_found"
	resultInvalid  = "invalid"
	resultError    = "error"
	resultOK       = "ok"
)

var (
	// resolveTotal counts ResolveKinship calls by result.
	resolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindred_resolve_total",
		Help: "Total kinship resolutions by result",
	}, []string{"result"})

	// classifyTotal counts ClassifyKin calls by result.
	classifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindred_classify_total",
		Help: "Total depth classifications by result",
	}, []string{"result"})

	// operationDuration tracks end-to-end latency including the store fetch.
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kindred_operation_duration_seconds",
		Help:    "Engine operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	}, []string{"op"})

	// droppedEdges counts edges discarded by BuildGraph, by reason.
	droppedEdges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindred_graph_dropped_edges_total",
		Help: "Relationship edges dropped while building a kinship graph",
	}, []string{"reason"})
)
