package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhookUpdatesTotal,
		webhookUpdatesDroppedTotal,
		eventFailuresTotal,
	)
}

var (
	webhookUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_updates_total",
			Help: "Inbound webhook updates by kind.",
		},
		[]string{"kind"}, // message, callback, ignored, invalid
	)

	webhookUpdatesDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_updates_dropped_total",
			Help: "Updates accepted but never processed.",
		},
		[]string{"reason"}, // queue_full, stopped, duplicate, rate_limited
	)

	eventFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_failures_total",
			Help: "Events whose processing aborted with an error.",
		},
		[]string{"kind"},
	)
)

func IncWebhookUpdate(kind string) {
	webhookUpdatesTotal.WithLabelValues(norm(kind)).Inc()
}

func IncUpdateDropped(reason string) {
	webhookUpdatesDroppedTotal.WithLabelValues(norm(reason)).Inc()
}

func IncEventFailure(kind string) {
	eventFailuresTotal.WithLabelValues(norm(kind)).Inc()
}
