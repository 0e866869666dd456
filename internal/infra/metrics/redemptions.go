package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(redemptions)
}

var redemptions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "loyalty_redemptions_total",
		Help: "Promo code redemption attempts by outcome (ok/not_found/expired/already_used/rate_limited/error).",
	},
	[]string{"outcome"},
)

func IncRedemption(outcome string) {
	redemptions.WithLabelValues(outcome).Inc()
}
