package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry        *prometheus.Registry
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	RealtimeEvents  *prometheus.CounterVec
	RealtimeClients prometheus.Gauge
}

func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	realtimeEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_total",
		Help:      "Total number of events fanned out to realtime listeners.",
	}, []string{"event"})

	realtimeClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_clients",
		Help:      "Currently connected realtime listeners.",
	})

	registry.MustRegister(
		httpRequests,
		httpLatency,
		realtimeEvents,
		realtimeClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry:        registry,
		HTTPRequests:    httpRequests,
		HTTPLatency:     httpLatency,
		RealtimeEvents:  realtimeEvents,
		RealtimeClients: realtimeClients,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) EventDelivered(event string) {
	if m == nil {
		return
	}
	m.RealtimeEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.RealtimeClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.RealtimeClients.Dec()
}
