package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tariff"

// Estimate outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds all Prometheus metrics of the service
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Estimation metrics
	EstimatesTotal       *prometheus.CounterVec
	EstimateDuration     *prometheus.HistogramVec
	EstimatesClamped     *prometheus.CounterVec
	PreviewLines         prometheus.Histogram
	PlanCacheLookupTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics on a fresh registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		Registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		EstimatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "estimates_total",
				Help:      "Total number of cost estimations",
			},
			[]string{"method", "outcome"},
		),
		EstimateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "estimate_duration_seconds",
				Help:      "Cost estimation duration in seconds, plan lookup included",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
			[]string{"method"},
		),
		EstimatesClamped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "estimates_clamped_total",
				Help:      "Estimations whose negative result was floored to the fixed cost",
			},
			[]string{"method"},
		),
		PreviewLines: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "preview_lines",
				Help:      "Number of lines per billing preview",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
			},
		),
		PlanCacheLookupTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_cache_lookups_total",
				Help:      "Plan cache lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EstimatesTotal,
		m.EstimateDuration,
		m.EstimatesClamped,
		m.PreviewLines,
		m.PlanCacheLookupTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveEstimate records one estimation. A nil receiver is a no-op.
func (m *Metrics) ObserveEstimate(method string, start time.Time, clamped bool, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.EstimatesTotal.WithLabelValues(method, outcome).Inc()
	m.EstimateDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if clamped {
		m.EstimatesClamped.WithLabelValues(method).Inc()
	}
}

// ObservePreview records the size of a billing preview
func (m *Metrics) ObservePreview(lines int) {
	if m == nil {
		return
	}
	m.PreviewLines.Observe(float64(lines))
}

// ObserveCacheLookup records a plan cache hit or miss
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.PlanCacheLookupTotal.WithLabelValues(result).Inc()
}

// Middleware records request count and latency labelled by route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
