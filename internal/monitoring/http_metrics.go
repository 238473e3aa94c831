package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics covers the gin router plus the business counters the
// orchestrator and handlers report through BusinessMetricsRecorder.
type HTTPMetrics struct {
	requestDuration  *prometheus.HistogramVec
	requestsTotal    *prometheus.CounterVec
	responseSize     *prometheus.HistogramVec
	inFlightRequests *prometheus.GaugeVec

	businessOperations *prometheus.CounterVec
	businessDuration   *prometheus.HistogramVec
	cacheOperations    *prometheus.CounterVec
}

var requestLabels = []string{"method", "path", "status"}

func NewHTTPMetrics() *HTTPMetrics {
	businessLabels := []string{"operation_type", "category", "status"}

	return &HTTPMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, requestLabels),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, requestLabels),
		responseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "Size of HTTP responses in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 8),
		}, requestLabels),
		inFlightRequests: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Current number of HTTP requests being served",
		}, []string{"method", "path"}),

		businessOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "business",
			Name:      "operations_total",
			Help:      "Total number of bridge, quote and history operations",
		}, businessLabels),
		// a bridge run can take up to Bridge.RunTimeout
		businessDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "business",
			Name:      "operation_duration_seconds",
			Help:      "Duration of bridge, quote and history operations in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 30, 60, 300, 900, 1800},
		}, businessLabels),
		cacheOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Quote cache hits and misses",
		}, []string{"cache_type", "operation"}),
	}
}

func (m *HTTPMetrics) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(
		m.requestDuration,
		m.requestsTotal,
		m.responseSize,
		m.inFlightRequests,
		m.businessOperations,
		m.businessDuration,
		m.cacheOperations,
	)
}

// RecordBusinessMetric counts one operation. A zero duration skips the histogram.
func (m *HTTPMetrics) RecordBusinessMetric(operationType, category, status string, duration float64) {
	m.businessOperations.WithLabelValues(operationType, category, status).Inc()
	if duration > 0 {
		m.businessDuration.WithLabelValues(operationType, category, status).Observe(duration)
	}
}

// HTTPMetricsMiddleware labels requests by route template, falling back to
// the raw path for unmatched routes.
func HTTPMetricsMiddleware(metrics *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		inFlight := metrics.inFlightRequests.WithLabelValues(method, path)
		inFlight.Inc()
		defer inFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.requestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		metrics.requestsTotal.WithLabelValues(method, path, status).Inc()
		if size := c.Writer.Size(); size > 0 {
			metrics.responseSize.WithLabelValues(method, path, status).Observe(float64(size))
		}
	}
}

// BusinessMetricsRecorder names the business operations of the bridge.
type BusinessMetricsRecorder struct {
	metrics *HTTPMetrics
}

func NewBusinessMetricsRecorder(metrics *HTTPMetrics) *BusinessMetricsRecorder {
	return &BusinessMetricsRecorder{metrics: metrics}
}

// RecordBridgeRun covers a whole run, from wallet connect to the last hop.
func (r *BusinessMetricsRecorder) RecordBridgeRun(direction, status string, duration float64) {
	r.metrics.RecordBusinessMetric("bridge_run", direction, status, duration)
}

// RecordHop covers a single hop, labelled skipTx or lifiTx.
func (r *BusinessMetricsRecorder) RecordHop(hop, status string, duration float64) {
	r.metrics.RecordBusinessMetric("bridge_hop", hop, status, duration)
}

func (r *BusinessMetricsRecorder) RecordQuote(provider, status string, duration float64) {
	r.metrics.RecordBusinessMetric("quote", provider, status, duration)
}

func (r *BusinessMetricsRecorder) RecordHistoryOperation(operationType, status string, duration float64) {
	r.metrics.RecordBusinessMetric("history_operation", operationType, status, duration)
}

func (r *BusinessMetricsRecorder) RecordCacheOperation(cacheType, operation string) {
	r.metrics.cacheOperations.WithLabelValues(cacheType, operation).Inc()
}
