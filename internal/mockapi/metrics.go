package mockapi

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/middleware"
)

// Metrics owns the backend's Prometheus registry.
type Metrics struct {
	registry       *prometheus.Registry
	http           *middleware.HTTPMetrics
	orderEvents    *prometheus.CounterVec
	stockConflicts *prometheus.CounterVec
}

// NewMetrics creates a registry with runtime, HTTP and store collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		http:     middleware.NewHTTPMetrics(reg, ServiceName),
		orderEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ServiceName,
			Name:      "order_events_total",
			Help:      "Orders placed and order status changes.",
		}, []string{"event"}),
		stockConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ServiceName,
			Name:      "stock_conflicts_total",
			Help:      "Cart and checkout requests refused for lack of stock.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.orderEvents, m.stockConflicts)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) orderEvent(event string) {
	m.orderEvents.WithLabelValues(event).Inc()
}

// observeStock counts err when it is a stock conflict.
func (m *Metrics) observeStock(op string, err error) {
	if errors.Is(err, apperrors.ErrConflict) {
		m.stockConflicts.WithLabelValues(op).Inc()
	}
}
