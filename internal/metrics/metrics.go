// Package metrics exposes esglens counters and histograms to Prometheus.
//
// Metrics live in their own registry so tests can build as many instances
// as they like. A nil *Metrics is a valid no-op recorder.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/esglens/esglens/internal/insights"
)

const namespace = "esglens"

// Metrics holds every collector esglens reports.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	insightRequests *prometheus.CounterVec
	insightDuration *prometheus.HistogramVec
	uploads         *prometheus.CounterVec
	uploadRows      prometheus.Histogram
	datasetUpdated  prometheus.Gauge
	runsArchived    *prometheus.CounterVec
}

// New builds and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		insightRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_requests_total",
			Help:      "Insight generations by category and outcome.",
		}, []string{"category", "outcome"}),
		insightDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "insight_duration_seconds",
			Help:      "Histogram of insight generation latency by category.",
			Buckets:   []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60},
		}, []string{"category"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "ESG uploads by file format and result.",
		}, []string{"format", "result"}),
		uploadRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_rows",
			Help:      "Number of data rows per spreadsheet upload.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		datasetUpdated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_updated_timestamp_seconds",
			Help:      "Unix time the current dataset was last replaced.",
		}),
		runsArchived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_archived_total",
			Help:      "Report runs written to the archive by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.insightRequests,
		m.insightDuration,
		m.uploads,
		m.uploadRows,
		m.datasetUpdated,
		m.runsArchived,
	)

	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WrapHandler counts and times requests served by next under route.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snoop := httpsnoop.CaptureMetrics(next, w, r)
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(snoop.Code)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(snoop.Duration.Seconds())
	})
}

// ObserveInsight records one insight generation. Its signature matches
// insights.Observer.
func (m *Metrics) ObserveInsight(c insights.Category, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.insightRequests.WithLabelValues(string(c), outcome).Inc()
	if outcome != insights.OutcomeCached && outcome != insights.OutcomeDisabled {
		m.insightDuration.WithLabelValues(string(c)).Observe(elapsed.Seconds())
	}
}

// Upload result labels.
const (
	UploadAccepted = "accepted"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// ObserveUpload records an upload. rows is ignored for prebuilt reports.
func (m *Metrics) ObserveUpload(format, result string, rows int) {
	if m == nil {
		return
	}
	if format == "" {
		format = "unknown"
	}
	m.uploads.WithLabelValues(format, result).Inc()
	if result == UploadAccepted && rows > 0 {
		m.uploadRows.Observe(float64(rows))
	}
}

// DatasetReplaced marks the time the current dataset changed.
func (m *Metrics) DatasetReplaced(at time.Time) {
	if m == nil {
		return
	}
	m.datasetUpdated.Set(float64(at.Unix()))
}

// RunArchived counts a run archive attempt.
func (m *Metrics) RunArchived(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.runsArchived.WithLabelValues(result).Inc()
}
