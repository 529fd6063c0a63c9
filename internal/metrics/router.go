package metrics

import "github.com/prometheus/client_golang/prometheus"

// Conversation router metrics.
var (
	RouterHops = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "router_hops",
			Help:      "Gateway calls made per user turn",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 12, 16},
		},
	)

	RouterTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "router_transitions_total",
			Help:      "State transitions taken by the router",
		},
		[]string{"from", "to"},
	)

	RouterHopLimitTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "router_hop_limit_total",
			Help:      "Turns aborted because the transition limit was reached",
		},
	)
)
