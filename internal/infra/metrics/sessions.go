package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(sessionsStarted, sessionsFinished, sessionMinutes)
}

var (
	sessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_sessions_started_total",
			Help: "Sessions opened at club terminals.",
		},
	)

	sessionsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_sessions_finished_total",
			Help: "Sessions finished, by trigger (terminal/sweeper).",
		},
		[]string{"trigger"},
	)

	sessionMinutes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loyalty_session_minutes",
			Help:    "Finished session durations in minutes.",
			Buckets: []float64{15, 30, 60, 120, 240, 480, 720},
		},
	)
)

func IncSessionStarted() {
	sessionsStarted.Inc()
}

func IncSessionFinished(trigger string, minutes int) {
	sessionsFinished.WithLabelValues(trigger).Inc()
	sessionMinutes.Observe(float64(minutes))
}
