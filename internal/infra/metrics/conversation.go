package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		registrationsCreatedTotal,
		conversationTransitionsTotal,
		validationFailuresTotal,
		conversationStatesExpiredTotal,
	)
}

var (
	registrationsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_created_total",
			Help: "Registrations created, by plan type.",
		},
		[]string{"plan_type"},
	)

	conversationTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_transitions_total",
			Help: "Step changes of the registration flow.",
		},
		[]string{"from", "to"},
	)

	validationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "User input rejected by step validation.",
		},
		[]string{"step"},
	)

	conversationStatesExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conversation_states_expired_total",
			Help: "Abandoned conversations removed by the sweeper.",
		},
	)
)

func IncRegistrationCreated(planType string) {
	registrationsCreatedTotal.WithLabelValues(norm(planType)).Inc()
}

func IncTransition(from, to string) {
	conversationTransitionsTotal.WithLabelValues(norm(from), norm(to)).Inc()
}

func IncValidationFailure(step string) {
	validationFailuresTotal.WithLabelValues(norm(step)).Inc()
}

func AddStatesExpired(n int) {
	conversationStatesExpiredTotal.Add(float64(n))
}
