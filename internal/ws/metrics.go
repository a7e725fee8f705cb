package ws

import (
	"github.com/prometheus/client_golang/prometheus"

	"reflex_drills/internal/game"
)

var (
	SessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reflex_sessions_started_total",
			Help: "Sessions started or restarted",
		},
		[]string{"game"},
	)
	SessionsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reflex_sessions_completed_total",
			Help: "Sessions that reached the terminal phase",
		},
		[]string{"game", "tier"},
	)
	TrialsEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reflex_trials_evaluated_total",
			Help: "Evaluated trials by result",
		},
		[]string{"game", "result"},
	)
	TrialLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reflex_trial_latency_seconds",
			Help:    "Latency of answered trials including penalties",
			Buckets: []float64{0.15, 0.2, 0.25, 0.3, 0.4, 0.5, 0.75, 1, 1.5, 2, 4, 8},
		},
		[]string{"game"},
	)
	StaleEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reflex_stale_events_total",
			Help: "Inputs and timer callbacks dropped because their phase was over",
		},
		[]string{"game"},
	)
	InputsThrottled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reflex_ws_messages_throttled_total",
			Help: "WebSocket messages dropped by the per-connection limiter",
		},
	)
	ActiveHosts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reflex_active_sessions",
			Help: "Sessions currently hosted",
		},
	)
)

func init() {
	prometheus.MustRegister(SessionsStarted)
	prometheus.MustRegister(SessionsCompleted)
	prometheus.MustRegister(TrialsEvaluated)
	prometheus.MustRegister(TrialLatency)
	prometheus.MustRegister(StaleEvents)
	prometheus.MustRegister(InputsThrottled)
	prometheus.MustRegister(ActiveHosts)
}

func result(o game.Outcome) string {
	switch {
	case o.Premature:
		return "premature"
	case o.TimedOut:
		return "timeout"
	case o.Correct:
		return "correct"
	default:
		return "incorrect"
	}
}

// sessionHooks feeds engine events into the collectors above.
func sessionHooks() game.Hooks {
	return game.Hooks{
		OnOutcome: func(kind game.Kind, o game.Outcome) {
			TrialsEvaluated.WithLabelValues(string(kind), result(o)).Inc()
			if o.HasLatency {
				TrialLatency.WithLabelValues(string(kind)).Observe(o.Latency.Seconds())
			}
		},
		OnComplete: func(kind game.Kind, s game.Summary) {
			SessionsCompleted.WithLabelValues(string(kind), s.Tier).Inc()
		},
		OnStale: func(kind game.Kind, _ string) {
			StaleEvents.WithLabelValues(string(kind)).Inc()
		},
	}
}
