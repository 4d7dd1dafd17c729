// Package metrics holds the Prometheus collectors of the data layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeNotFound  = "not_found"
	OutcomeConflict  = "conflict"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
	OutcomeRefused   = "refused"
)

var (
	// storeOperations counts store operations by document kind, operation and outcome
	storeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_store_operations_total",
		Help: "Total document store operations by kind, operation and outcome",
	}, []string{"kind", "op", "outcome"})

	// storeDuration tracks store operation latency
	storeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "companion_store_operation_duration_seconds",
		Help:    "Document store operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	}, []string{"kind", "op"})

	// indexRebuildDuration tracks full recipe index rebuilds
	indexRebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "companion_index_rebuild_seconds",
		Help:    "Recipe index rebuild duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	// indexEntries is the number of entries in the last written index
	indexEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "companion_index_entries",
		Help: "Number of recipes in the last rebuilt index",
	})

	// chatTurns counts assistant turns by outcome
	chatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_chat_turns_total",
		Help: "Total chat turns by outcome",
	}, []string{"outcome"})

	// chatToolCalls counts tool invocations made by the assistant
	chatToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_chat_tool_calls_total",
		Help: "Total assistant tool calls by tool and outcome",
	}, []string{"tool", "outcome"})
)

// ObserveStoreOp records one store operation.
func ObserveStoreOp(kind, op, outcome string, start time.Time) {
	storeOperations.WithLabelValues(kind, op, outcome).Inc()
	storeDuration.WithLabelValues(kind, op).Observe(time.Since(start).Seconds())
}

// ObserveIndexRebuild records a successful index rebuild.
func ObserveIndexRebuild(start time.Time, entries int) {
	indexRebuildDuration.Observe(time.Since(start).Seconds())
	indexEntries.Set(float64(entries))
}

// ObserveChatTurn records one assistant turn.
func ObserveChatTurn(outcome string) {
	chatTurns.WithLabelValues(outcome).Inc()
}

// ObserveToolCall records one assistant tool call.
func ObserveToolCall(tool, outcome string) {
	chatToolCalls.WithLabelValues(tool, outcome).Inc()
}
