package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var llmLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "intake",
		Subsystem: "conversation",
		Name:      "llm_latency_seconds",
		Help:      "Latency of LLM completions",
		// Focus on sub-10s buckets with a few higher ones for visibility.
		Buckets: []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30},
	},
	[]string{"agent", "status"},
)

var llmTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "intake",
		Subsystem: "conversation",
		Name:      "llm_tokens_total",
		Help:      "Tokens used by the LLM",
	},
	[]string{"agent", "type"}, // type: input, output, total
)

var bookingsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "intake",
		Subsystem: "conversation",
		Name:      "bookings_total",
		Help:      "Bookings finalized through the chat flow",
	},
)

var turnsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "intake",
		Subsystem: "conversation",
		Name:      "turns_total",
		Help:      "Conversation turns processed, labelled by resulting phase",
	},
	[]string{"phase"},
)

func init() {
	prometheus.MustRegister(llmLatency)
	prometheus.MustRegister(llmTokensTotal)
	prometheus.MustRegister(bookingsTotal)
	prometheus.MustRegister(turnsTotal)
}

// RegisterMetrics registers conversation metrics with a custom registry.
// Use this when exposing a non-default registry.
func RegisterMetrics(reg prometheus.Registerer) {
	if reg == nil || reg == prometheus.DefaultRegisterer {
		return
	}
	reg.MustRegister(llmLatency, llmTokensTotal, bookingsTotal, turnsTotal)
}

func observeLLMUsage(agent string, usage TokenUsage) {
	if usage.InputTokens > 0 {
		llmTokensTotal.WithLabelValues(agent, "input").Add(float64(usage.InputTokens))
	}
	if usage.OutputTokens > 0 {
		llmTokensTotal.WithLabelValues(agent, "output").Add(float64(usage.OutputTokens))
	}
	if usage.TotalTokens > 0 {
		llmTokensTotal.WithLabelValues(agent, "total").Add(float64(usage.TotalTokens))
	}
}
