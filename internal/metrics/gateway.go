package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chatdesk"

// Model gateway metrics.
var (
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of model gateway requests",
		},
		[]string{"operation", "model", "status"},
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Model gateway request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation", "model"},
	)

	GatewayTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_tokens_total",
			Help:      "Total tokens consumed by the model gateway",
		},
		[]string{"model", "type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	EmbeddingBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "embedding_budget_tokens_remaining",
			Help:      "Embedding tokens left in the current budget window, -1 when unlimited",
		},
		[]string{"provider", "window"}, // "daily" / "monthly"
	)
)

var registerOnce sync.Once

// Register registers the HTTP, gateway, search and router metrics. Call once
// from main; repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestDuration,
			HTTPRequestsTotal,
			HTTPRequestsInFlight,
			GatewayRequestsTotal,
			GatewayRequestDuration,
			GatewayTokensTotal,
			EmbeddingCacheTotal,
			EmbeddingBudgetTokensRemaining,
			ProviderRequestsTotal,
			ProviderRequestDuration,
			ProviderItemsTotal,
			ClassifierUnexpectedTotal,
			RouterHops,
			RouterTransitionsTotal,
			RouterHopLimitTotal,
		)
	})
}
