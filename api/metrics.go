package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the realtime layer. Registered on the
// default registry and exposed via /metrics.
var (
	metricOpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "procboard_websocket_connections_open",
		Help: "Number of currently open websocket connections.",
	})

	metricIdentifiedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "procboard_presence_users_online",
		Help: "Number of users currently registered as online.",
	})

	metricMessagesRouted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "procboard_chat_messages_routed_total",
		Help: "Total chat messages persisted and routed.",
	})

	metricDeliveriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "procboard_chat_deliveries_dropped_total",
		Help: "Total best-effort deliveries dropped because a send queue was full.",
	})

	metricPresenceBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "procboard_presence_broadcasts_total",
		Help: "Total presence snapshot broadcasts.",
	})

	metricInvalidationBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "procboard_state_invalidation_broadcasts_total",
		Help: "Total state invalidation broadcasts triggered by REST mutations.",
	})
)
