package statemachine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors a machine records into. One Metrics value is
// normally shared by every machine in a process (or in a registry).
type Metrics struct {
	transitionsTotal *prometheus.CounterVec
	rejectedTotal    *prometheus.CounterVec
	hookDuration     *prometheus.HistogramVec
	resetsTotal      *prometheus.CounterVec
}

// NewMetrics creates the state machine collectors and registers them with
// registerer. A nil registerer creates unregistered collectors.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		// TransitionsTotal tracks successful state changes.
		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statemachine_transitions_total",
			Help: "Total number of state transitions by machine, from_state, event, and to_state",
		}, []string{"machine", "from_state", "event", "to_state"}),

		// RejectedTotal tracks events that the current state does not accept.
		rejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statemachine_rejected_events_total",
			Help: "Total number of events rejected as invalid transitions by machine, state, and event",
		}, []string{"machine", "state", "event"}),

		// HookDuration tracks on-enter and on-exit hook execution time.
		hookDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statemachine_hook_duration_seconds",
			Help:    "Duration of state hook execution by machine, state, phase (enter or exit), and outcome",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"machine", "state", "phase", "outcome"}),

		// ResetsTotal tracks direct resets to the initial state.
		resetsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statemachine_resets_total",
			Help: "Total number of resets to the initial state by machine",
		}, []string{"machine"}),
	}
}

func sanitizeMachine(name string) string {
	if name == "" {
		return "unnamed"
	}

	return name
}
