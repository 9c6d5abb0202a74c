package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscribersGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notify_subscribers",
			Help: "Number of registered notification subscribers",
		},
		[]string{"channel"},
	)

	notificationsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_notifications_received_total",
			Help: "Total number of notifications received from the database",
		},
		[]string{"channel"},
	)

	deliveriesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_deliveries_dropped_total",
			Help: "Total number of deliveries skipped because a subscriber buffer was full",
		},
		[]string{"channel"},
	)

	subscribersPruned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_subscribers_pruned_total",
			Help: "Total number of closed subscribers removed during broadcast",
		},
		[]string{"channel"},
	)

	reconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_reconnects_total",
			Help: "Total number of listener reconnect attempts",
		},
	)
)
