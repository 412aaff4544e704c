package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the storefront collectors. A nil *Metrics is a no-op.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	ordersCreated prometheus.Counter
	stockAdjusted prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed.",
	})
	stockAdjusted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_adjustments_total",
		Help: "Manual stock adjustments committed.",
	})
	reg.MustRegister(requests, duration, ordersCreated, stockAdjusted)
	return &Metrics{
		requests:      requests,
		duration:      duration,
		ordersCreated: ordersCreated,
		stockAdjusted: stockAdjusted,
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IncOrdersCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *Metrics) IncStockAdjusted() {
	if m == nil || m.stockAdjusted == nil {
		return
	}
	m.stockAdjusted.Inc()
}
