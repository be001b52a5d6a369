package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BroadcastsTotal counts broadcast invocations that had at least one
	// registered connection to deliver to.
	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_broadcasts_total",
			Help: "Total broadcast operations",
		},
	)

	// DeliveriesTotal counts per-recipient delivery attempts by outcome.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Per-connection delivery attempts by status (ok/failed)",
		},
		[]string{"status"},
	)

	// ConnectionsCurrent tracks the current registry size.
	ConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connections_current",
			Help: "Currently registered connections",
		},
	)

	// NotificationsRejectedTotal counts inbound notifications rejected at
	// the transport edge before reaching the broadcaster.
	NotificationsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_notifications_rejected_total",
			Help: "Inbound notifications rejected by reason (malformed/unauthorized)",
		},
		[]string{"reason"},
	)
)
