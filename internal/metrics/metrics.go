// Package metrics exposes lifecycle and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

const namespace = "recruito"

// Metrics owns its registry so several instances can coexist in tests
type Metrics struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	dependencies  *prometheus.CounterVec
	notifications *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interview",
			Name:      "transitions_total",
			Help:      "Lifecycle operations by action and outcome",
		}, []string{"action", "outcome"}),
		dependencies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dependency_calls_total",
			Help:      "Calls to external collaborators by outcome",
		}, []string{"dependency", "outcome"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications delivered by type and outcome",
		}, []string{"type", "outcome"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Registry is exposed for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveTransition(action string, err error) {
	m.transitions.WithLabelValues(action, outcome(err)).Inc()
}

func (m *Metrics) ObserveDependency(dependency string, err error) {
	m.dependencies.WithLabelValues(dependency, outcome(err)).Inc()
}

func (m *Metrics) ObserveNotification(kind string, err error) {
	m.notifications.WithLabelValues(kind, outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request latency labelled by the matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// outcome is "ok" or the domain error code
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.ErrorCode(err)
}
