package monitoring

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth event labels.
const (
	AuthRegister      = "register"
	AuthLoginOK       = "login_ok"
	AuthLoginFailed   = "login_failed"
	AuthTokenRejected = "token_rejected"
)

// Metrics holds the Prometheus collectors for one API process. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AuthEventsTotal     *prometheus.CounterVec
}

// NewMetrics creates a private registry with HTTP, auth, runtime and
// (when db is non-nil) connection pool collectors.
func NewMetrics(db *sql.DB) *Metrics {
	registry := prometheus.NewRegistry()
	registerer := prometheus.WrapRegistererWith(prometheus.Labels{"service": "todotracker"}, registry)

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		AuthEventsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_events_total",
				Help: "Registrations, logins and rejected tokens",
			},
			[]string{"event"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		registry.MustRegister(collectors.NewDBStatsCollector(db, "todotracker"))
	}

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for gathering outside the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordAuthEvent(event string) {
	if m == nil {
		return
	}
	m.AuthEventsTotal.WithLabelValues(event).Inc()
}
