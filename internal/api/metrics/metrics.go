// Package metrics defines the Prometheus metrics of the mock API. It is the
// single source of truth for metric names, labels and help strings.
//
// Every Metrics value owns its own registry, so several servers can run in
// one process without colliding on registration.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mockapi"

type Metrics struct {
	registry *prometheus.Registry

	// InjectedFaultsTotal counts requests aborted with a simulated 500.
	InjectedFaultsTotal prometheus.Counter

	// InjectedLatency observes every simulated delay, including zero delays
	// of the fast profile.
	InjectedLatency prometheus.Histogram

	// EntityMutationsTotal counts successful writes.
	// Labels:
	//   - entity: "user" or "role"
	//   - op: "create", "update", "delete" or "reassign"
	EntityMutationsTotal *prometheus.CounterVec

	// StoreResetsTotal counts reloads of the seed dataset.
	StoreResetsTotal prometheus.Counter

	// HTTPRequestsTotal counts handled requests.
	// Labels: method, route (echo path pattern), code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration measures time spent in the handler chain,
	// injected latency included.
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on a fresh registry, together with
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		InjectedFaultsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "injected_faults_total",
			Help:      "Total number of requests failed on purpose with a simulated server error.",
		}),
		InjectedLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "injected_latency_seconds",
			Help:      "Simulated network latency added before handling a request.",
			Buckets:   []float64{0, .1, .25, .5, .75, 1, 1.5, 2, 2.5, 3},
		}),
		EntityMutationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entity_mutations_total",
			Help:      "Total number of successful entity mutations.",
		}, []string{"entity", "op"}),
		StoreResetsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_resets_total",
			Help:      "Total number of times the store was reset to its seed data.",
		}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests, injected latency included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordMutation implements service.MutationRecorder.
func (m *Metrics) RecordMutation(entity, op string) {
	m.EntityMutationsTotal.WithLabelValues(entity, op).Inc()
}

// RecordFault counts one injected server error.
func (m *Metrics) RecordFault() { m.InjectedFaultsTotal.Inc() }

// ObserveLatency records one injected delay.
func (m *Metrics) ObserveLatency(d time.Duration) { m.InjectedLatency.Observe(d.Seconds()) }

// RecordReset counts one store reset.
func (m *Metrics) RecordReset() { m.StoreResetsTotal.Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and durations per route. Errors are
// passed to c.Error first so the status code reflects the rendered response.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			code := strconv.Itoa(c.Response().Status)

			m.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
