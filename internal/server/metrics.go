package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/njchilds90/symdiff"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	requests     *prometheus.CounterVec
	batchSize    prometheus.Histogram
}

// NewMetrics registers all collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tool",
				Name:      "calls_total",
				Help:      "Tool calls by tool and outcome kind.",
			},
			[]string{"tool", "kind"},
		),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "tool",
				Name:      "duration_seconds",
				Help:      "Tool call latency.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"tool"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"route", "status"},
		),
		batchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "batch",
				Name:      "size",
				Help:      "Number of calls per batch request.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
			},
		),
	}
	reg.MustRegister(m.toolCalls, m.toolDuration, m.requests, m.batchSize)
	reg.MustRegister(collectors.NewGoCollector())
	return m
}

// toolLabel keeps label cardinality bounded by the known tool set.
func toolLabel(tool string) string {
	for _, name := range symdiff.ToolNames() {
		if name == tool {
			return tool
		}
	}
	return "unknown"
}

// ObserveTool records one finished tool call.
func (m *Metrics) ObserveTool(tool string, resp symdiff.ToolResponse, d time.Duration) {
	kind := "ok"
	if resp.Error != "" {
		kind = resp.Kind
	}
	label := toolLabel(tool)
	m.toolCalls.WithLabelValues(label, kind).Inc()
	m.toolDuration.WithLabelValues(label).Observe(d.Seconds())
}

// ObserveBatch records the size of one batch request.
func (m *Metrics) ObserveBatch(n int) { m.batchSize.Observe(float64(n)) }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware counts requests by matched route pattern and status.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
