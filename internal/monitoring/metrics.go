package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the ordering backend, exposed by the metrics
// server on its own port.
var (
	// ToolCalls counts dispatched tool calls by tool name and outcome
	// (success, error, not_found).
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remy_tool_calls_total",
		Help: "Tool calls dispatched on behalf of the voice assistant.",
	}, []string{"tool", "outcome"})

	// ToolCallDuration observes end-to-end dispatch latency per tool.
	ToolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "remy_tool_call_duration_seconds",
		Help:    "Latency of tool call dispatch including the internal endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool"})

	// CartOperations counts cart mutations by operation (add, remove,
	// update, clear).
	CartOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remy_cart_operations_total",
		Help: "Cart mutations performed through the API.",
	}, []string{"operation"})

	// Notifications counts staff SMS notifications by outcome (sent,
	// config_error, delivery_error).
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remy_notifications_total",
		Help: "Staff SMS notifications by outcome.",
	}, []string{"outcome"})
)
