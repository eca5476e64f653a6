// Package metrics provides Prometheus metrics for the dashboard service.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const nanosecondsPerMillisecond = 1e6

// Load outcomes used as the "result" label.
const (
	LoadOK      = "ok"
	LoadMissing = "missing"
	LoadError   = "error"
)

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Data set
	datasetRows         prometheus.Gauge
	datasetLoads        *prometheus.CounterVec
	datasetLoadDuration prometheus.Histogram

	// Recompute pipeline
	recomputes        prometheus.Counter
	recomputeDuration prometheus.Histogram
	filteredRows      prometheus.Gauge
	chartRenders      *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager on a fresh registry with opts applied.
// Call it once at startup, before any metric is recorded or scraped.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "minat",
		subsystem:        "dashboard",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.datasetRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_rows",
		Help:        "Number of rows in the loaded data set",
		ConstLabels: m.constLabels,
	})

	m.datasetLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_loads_total",
		Help:        "Data set loads by result (ok, missing, error)",
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.datasetLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_load_duration_milliseconds",
		Help:        "Time spent reading and typing the data file",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.recomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "recomputes_total",
		Help:        "Number of dashboard recomputations",
		ConstLabels: m.constLabels,
	})

	m.recomputeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "recompute_duration_milliseconds",
		Help:        "Time spent filtering and aggregating for one selection",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.filteredRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "filtered_rows",
		Help:        "Rows left after the most recent filter",
		ConstLabels: m.constLabels,
	})

	m.chartRenders = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "chart_renders_total",
		Help:        "Chart renders by chart and result",
		ConstLabels: m.constLabels,
	}, []string{"chart", "result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Errors by component and error type",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "Errors by endpoint, method and error type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutines",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		ConstLabels: m.constLabels,
	})
}

// Data Set Functions.

// UpdateDatasetRows sets the size of the loaded data set.
func UpdateDatasetRows(n int) {
	globalManager.datasetRows.Set(float64(n))
}

// RecordDatasetLoad counts a load with the given result and its duration.
func RecordDatasetLoad(result string, durationMs float64) {
	globalManager.datasetLoads.WithLabelValues(result).Inc()
	globalManager.datasetLoadDuration.Observe(durationMs)
}

// Recompute Functions.

// RecordRecompute counts a recomputation and the rows it kept.
func RecordRecompute(filtered int, durationMs float64) {
	globalManager.recomputes.Inc()
	globalManager.recomputeDuration.Observe(durationMs)
	globalManager.filteredRows.Set(float64(filtered))
}

// RecordChartRender counts a chart render; result is "ok" or "error".
func RecordChartRender(chart, result string) {
	globalManager.chartRenders.WithLabelValues(chart, result).Inc()
}

// HTTP Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Functions.

// UpdateSystemMetrics samples memory, goroutine and GC figures from the runtime.
func UpdateSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.Alloc))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		globalManager.systemGCPauseTime.Observe(float64(ms.PauseTotalNs) / float64(ms.NumGC) / nanosecondsPerMillisecond)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
