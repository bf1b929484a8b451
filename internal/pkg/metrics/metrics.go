package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPrepared = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusiongate_orders_prepared_total",
		Help: "Cross-chain orders prepared for signing",
	}, []string{"src_chain", "preset"})

	OrdersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusiongate_orders_submitted_total",
		Help: "Signed orders turned into relayer submissions",
	}, []string{"src_chain"})

	OrderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusiongate_order_failures_total",
		Help: "Order operations rejected, by error code",
	}, []string{"reason"})

	SecretsRevealed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fusiongate_secrets_revealed_total",
		Help: "Secrets handed out for deployed escrows",
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fusiongate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
