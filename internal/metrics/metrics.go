// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitDecisions  *prometheus.CounterVec
	RateLimitKeys       prometheus.Gauge
	LLMCallDuration     *prometheus.HistogramVec
}

// New builds the collectors and registers them on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hireme_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"path", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hireme_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		RateLimitDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hireme_rate_limit_decisions_total",
				Help: "Rate limiter decisions by route and outcome",
			},
			[]string{"path", "outcome"},
		),
		RateLimitKeys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hireme_rate_limit_tracked_keys",
				Help: "Number of client/route keys held by the in-memory limiter",
			},
		),
		LLMCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hireme_llm_call_duration_seconds",
				Help:    "Latency of language model calls by operation and result",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"operation", "result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RateLimitDecisions,
		m.RateLimitKeys,
		m.LLMCallDuration,
	)
	return m
}

// Middleware records request counts and durations.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			// keep 404 scans out of the label set
			path = "unmatched"
		}
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(path, method, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
	}
}

// ObserveLLM records the duration of one model call.
func (m *Metrics) ObserveLLM(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.LLMCallDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
}
