package services

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "resorthub"

// Metrics holds the domain counters exposed on /metrics. Each instance owns
// its registry so tests never collide on global registration.
type Metrics struct {
	Registry      *prometheus.Registry
	reservations  *prometheus.CounterVec
	messages      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		reservations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "reservations",
				Name:      "events_total",
				Help:      "Reservation lifecycle events by outcome.",
			},
			[]string{"event"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "messaging",
				Name:      "messages_total",
				Help:      "Messages posted by conversation kind.",
			},
			[]string{"thread"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "notifications",
				Name:      "emitted_total",
				Help:      "Notifications written by kind.",
			},
			[]string{"kind"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests handled by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
	}

	m.Registry.MustRegister(
		m.reservations,
		m.messages,
		m.notifications,
		m.httpRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ReservationEvent(event string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(event).Inc()
}

// ReservationsExpired adds n expirations from a lazy or scheduled sweep.
func (m *Metrics) ReservationsExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.reservations.WithLabelValues("expired").Add(float64(n))
}

func (m *Metrics) MessagePosted(thread string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(thread).Inc()
}

func (m *Metrics) NotificationEmitted(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) HTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
