// Package metrics exposes Prometheus instrumentation for the order
// lifecycle and ledger.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trogers1052/etf-trading-service/internal/models"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	ordersSubmitted  *prometheus.CounterVec
	ordersFilled     *prometheus.CounterVec
	ordersRejected   prometheus.Counter
	orderTimeouts    prometheus.Counter
	policyViolations prometheus.Counter
	settleSeconds    prometheus.Histogram
	openHoldings     prometheus.Gauge
}

// New creates the collector set on a private registry so tests can
// instantiate it repeatedly without duplicate registration panics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ordersSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "etf_orders_submitted_total",
			Help: "Orders submitted to the broker, by side.",
		}, []string{"side"}),
		ordersFilled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "etf_orders_filled_total",
			Help: "Orders settled as complete or partial fills, by side.",
		}, []string{"side"}),
		ordersRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "etf_orders_rejected_total",
			Help: "Orders rejected or cancelled by the broker.",
		}),
		orderTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "etf_order_timeouts_total",
			Help: "Orders still pending when status polling gave up.",
		}),
		policyViolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "etf_policy_violations_total",
			Help: "Orders blocked by a trading policy gate.",
		}),
		settleSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "etf_order_settle_seconds",
			Help:    "Time from broker submission to terminal settlement.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~256s
		}),
		openHoldings: factory.NewGauge(prometheus.GaugeOpts{
			Name: "etf_open_holdings",
			Help: "Number of open holdings in the ledger.",
		}),
	}
}

// Handler returns the /metrics HTTP handler for this collector set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OrderSubmitted(side models.OrderSide) {
	m.ordersSubmitted.WithLabelValues(string(side)).Inc()
}

func (m *Metrics) OrderFilled(side models.OrderSide, settleSeconds float64) {
	m.ordersFilled.WithLabelValues(string(side)).Inc()
	m.settleSeconds.Observe(settleSeconds)
}

func (m *Metrics) OrderRejected() {
	m.ordersRejected.Inc()
}

func (m *Metrics) OrderTimedOut() {
	m.orderTimeouts.Inc()
}

func (m *Metrics) PolicyViolation() {
	m.policyViolations.Inc()
}

// SetOpenHoldings records the current ledger holding count.
func (m *Metrics) SetOpenHoldings(n int) {
	m.openHoldings.Set(float64(n))
}
