package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "printshop",
			Subsystem: "orders",
			Name:      "submitted_total",
			Help:      "Total orders accepted, by payment method and result.",
		},
		[]string{"method", "result"},
	)
	OrdersRedeemed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "printshop",
			Subsystem: "orders",
			Name:      "redeemed_total",
			Help:      "Total prepaid orders switched to a redemption code, by confirmation path.",
		},
		[]string{"path"},
	)
	GatewayErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "printshop",
			Subsystem: "gateway",
			Name:      "errors_total",
			Help:      "Total payment gateway failures, by operation.",
		},
		[]string{"operation"},
	)
	Webhooks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "printshop",
			Subsystem: "gateway",
			Name:      "webhooks_total",
			Help:      "Total payment gateway webhooks, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(OrdersSubmitted, OrdersRedeemed, GatewayErrors, Webhooks)
}
