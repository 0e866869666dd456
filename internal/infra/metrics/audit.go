package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(auditWritten, auditDropped)
}

var (
	auditWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_audit_entries_total",
			Help: "Audit entries successfully appended.",
		},
	)

	auditDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_audit_dropped_total",
			Help: "Audit entries lost, by reason (queue_full/write_error).",
		},
		[]string{"reason"},
	)
)

func IncAuditWritten() {
	auditWritten.Inc()
}

func IncAuditDropped(reason string) {
	auditDropped.WithLabelValues(reason).Inc()
}
