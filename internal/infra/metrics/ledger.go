package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(ledgerTransactions, ledgerPoints, ledgerApplyLatencyMs, ledgerRejections, tierChanges)
}

var (
	ledgerTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_transactions_total",
			Help: "Committed ledger transactions by type (earn/bonus/redeem/adjust).",
		},
		[]string{"type"},
	)

	ledgerPoints = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_points_total",
			Help: "Absolute points moved through the ledger by type and direction.",
		},
		[]string{"type", "direction"},
	)

	ledgerApplyLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loyalty_ledger_apply_latency_ms",
			Help:    "ApplyDelta latency distribution in milliseconds.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"success"},
	)

	ledgerRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_ledger_rejections_total",
			Help: "ApplyDelta rejections by reason (insufficient_balance/busy/not_found).",
		},
		[]string{"reason"},
	)

	tierChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_tier_changes_total",
			Help: "Count of committed deltas that moved a card to a different tier.",
		},
	)
)

func IncTransaction(typ string, delta int) {
	ledgerTransactions.WithLabelValues(typ).Inc()
	direction := "credit"
	if delta < 0 {
		direction = "debit"
		delta = -delta
	}
	ledgerPoints.WithLabelValues(typ, direction).Add(float64(delta))
}

func ObserveApplyLatency(ms float64, success bool) {
	ledgerApplyLatencyMs.WithLabelValues(strconv.FormatBool(success)).Observe(ms)
}

func IncLedgerRejection(reason string) {
	ledgerRejections.WithLabelValues(reason).Inc()
}

func IncTierChange() {
	tierChanges.Inc()
}
