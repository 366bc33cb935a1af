// Package observability provides Prometheus metrics for the application.
package observability

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mediashare"

// Metrics holds all application metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Attempt metrics
	AttemptsTotal      *prometheus.CounterVec
	AttemptsInProgress prometheus.Gauge
	AttemptsRejected   prometheus.Counter
	AttemptDuration    prometheus.Histogram
	DownloadBytes      prometheus.Counter

	// Strategy metrics
	StrategyFailures *prometheus.CounterVec

	// Storage metrics
	CleanupFilesTotal prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// System metrics
	GoRoutines prometheus.Gauge
}

// New creates all application metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	metrics := &Metrics{
		registry: reg,

		// Attempt metrics
		AttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attempts",
			Name:      "total",
			Help:      "Total number of download attempts by the strategy that concluded them",
		}, []string{"strategy"}),
		AttemptsInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "attempts",
			Name:      "in_progress",
			Help:      "Number of download attempts currently in flight",
		}),
		AttemptsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attempts",
			Name:      "rejected_total",
			Help:      "Total number of attempts rejected because another one was in flight",
		}),
		AttemptDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "attempts",
			Name:      "duration_seconds",
			Help:      "Histogram of download attempt duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
		DownloadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attempts",
			Name:      "download_bytes_total",
			Help:      "Total bytes saved by the primary strategy",
		}),

		// Strategy metrics
		StrategyFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "failures_total",
			Help:      "Total number of strategy failures",
		}, []string{"strategy", "reason"}),

		// Storage metrics
		CleanupFilesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "cleanup_files_total",
			Help:      "Total number of stale temporary blobs removed",
		}),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPResponseSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "Histogram of HTTP response sizes in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
		}, []string{"method", "path"}),

		// System metrics
		GoRoutines: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "system",
			Name:      "goroutines",
			Help:      "Number of goroutines",
		}),
	}

	return metrics
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.SetGoroutines(runtime.NumGoroutine())
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration, size int) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(size))
}

// RecordAttemptStarted marks an attempt as in flight.
func (m *Metrics) RecordAttemptStarted() {
	m.AttemptsInProgress.Inc()
}

// RecordAttemptFinished records a concluded attempt.
func (m *Metrics) RecordAttemptFinished(strategy string, duration time.Duration, bytes int64) {
	m.AttemptsTotal.WithLabelValues(strategy).Inc()
	m.AttemptsInProgress.Dec()
	m.AttemptDuration.Observe(duration.Seconds())

	if bytes > 0 {
		m.DownloadBytes.Add(float64(bytes))
	}
}

// RecordAttemptRejected records an attempt refused while another was in flight.
func (m *Metrics) RecordAttemptRejected() {
	m.AttemptsRejected.Inc()
}

// RecordStrategyFailure records a failed strategy.
func (m *Metrics) RecordStrategyFailure(strategy, reason string) {
	m.StrategyFailures.WithLabelValues(strategy, reason).Inc()
}

// RecordCleanup records cleanup metrics.
func (m *Metrics) RecordCleanup(files int) {
	m.CleanupFilesTotal.Add(float64(files))
}

// SetGoroutines sets the current goroutine count.
func (m *Metrics) SetGoroutines(count int) {
	m.GoRoutines.Set(float64(count))
}
