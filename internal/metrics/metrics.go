package metrics

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all the application metrics
type Metrics struct {
	// Upstream call metrics, one observation per attempt
	UpstreamRequestTotal    *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	UpstreamRetryTotal      *prometheus.CounterVec
	UpstreamErrorReports    *prometheus.CounterVec

	// HTTP server metrics
	HTTPRequestTotal    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Report archive job
	ArchiveRunTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// Default returns the process-wide metrics registered with the default registry
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New creates the metric set and registers it with reg.
// Collectors already registered under the same name are reused.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earsip_upstream_requests_total",
			Help: "Total number of upstream API attempts",
		}, []string{"method", "endpoint", "status"}),

		UpstreamRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "earsip_upstream_request_duration_seconds",
			Help:    "Upstream API attempt duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),

		UpstreamRetryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earsip_upstream_retries_total",
			Help: "Total number of upstream retries after a transient failure",
		}, []string{"method", "endpoint"}),

		UpstreamErrorReports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earsip_upstream_error_reports_total",
			Help: "Server-class upstream failures forwarded to the error reporter",
		}, []string{"endpoint", "status"}),

		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earsip_http_requests_total",
			Help: "Total number of HTTP requests served",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "earsip_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		ArchiveRunTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earsip_archive_runs_total",
			Help: "Report archive job runs by outcome",
		}, []string{"status"}),
	}

	m.UpstreamRequestTotal = registerOrGet(reg, m.UpstreamRequestTotal)
	m.UpstreamRequestDuration = registerOrGet(reg, m.UpstreamRequestDuration)
	m.UpstreamRetryTotal = registerOrGet(reg, m.UpstreamRetryTotal)
	m.UpstreamErrorReports = registerOrGet(reg, m.UpstreamErrorReports)
	m.HTTPRequestTotal = registerOrGet(reg, m.HTTPRequestTotal)
	m.HTTPRequestDuration = registerOrGet(reg, m.HTTPRequestDuration)
	m.ArchiveRunTotal = registerOrGet(reg, m.ArchiveRunTotal)

	return m
}

// registerOrGet registers c, returning the existing collector if one is already registered
func registerOrGet[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// ObserveUpstream records one upstream attempt. Safe on a nil receiver.
func (m *Metrics) ObserveUpstream(method, endpoint, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestTotal.WithLabelValues(method, endpoint, status).Inc()
	m.UpstreamRequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// IncUpstreamRetry records a retry decision. Safe on a nil receiver.
func (m *Metrics) IncUpstreamRetry(method, endpoint string) {
	if m == nil {
		return
	}
	m.UpstreamRetryTotal.WithLabelValues(method, endpoint).Inc()
}

// IncErrorReport records a server-class failure sent to the reporter. Safe on a nil receiver.
func (m *Metrics) IncErrorReport(endpoint string, status int) {
	if m == nil {
		return
	}
	m.UpstreamErrorReports.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// ObserveHTTP records one served request. Safe on a nil receiver.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncArchiveRun records an archive job outcome. Safe on a nil receiver.
func (m *Metrics) IncArchiveRun(status string) {
	if m == nil {
		return
	}
	m.ArchiveRunTotal.WithLabelValues(status).Inc()
}

var idSegment = regexp.MustCompile(`/\d+(/|$)`)

// EndpointLabel collapses numeric path segments so label cardinality stays bounded
func EndpointLabel(path string) string {
	for idSegment.MatchString(path) {
		path = idSegment.ReplaceAllString(path, "/:id$1")
	}
	return path
}
