package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(adminDecisionsTotal) }

var adminDecisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_decisions_total",
		Help: "Approve/reject button presses handled from the admin chat.",
	},
	[]string{"action"}, // approve, reject, unauthorized
)

func IncAdminDecision(action string) {
	adminDecisionsTotal.WithLabelValues(norm(action)).Inc()
}
