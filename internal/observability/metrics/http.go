package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hrdocs"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	roadmapBuildsTotal   *prometheus.CounterVec
	complianceScore      *prometheus.HistogramVec
	missingMandatory     *prometheus.HistogramVec
	unknownRuleDocuments *prometheus.CounterVec
	documentSavesTotal   *prometheus.CounterVec
	documentImportsTotal *prometheus.CounterVec
	saveRetriesTotal     *prometheus.CounterVec
	exportsTotal         *prometheus.CounterVec
	mcpToolCallsTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	roadmapBuildsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "roadmap",
			Name:      "builds_total",
			Help:      "Total roadmap evaluations by entrypoint.",
		},
		[]string{"service", "endpoint"},
	)
	complianceScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "roadmap",
			Name:      "compliance_score",
			Help:      "Distribution of computed compliance scores.",
			Buckets:   []float64{0, 10, 25, 50, 75, 90, 99, 100},
		},
		[]string{"service", "endpoint"},
	)
	missingMandatory := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "roadmap",
			Name:      "missing_mandatory_documents",
			Help:      "Distribution of missing critical documents per evaluation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service", "endpoint"},
	)
	unknownRuleDocuments := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "roadmap",
			Name:      "unknown_rule_documents_total",
			Help:      "Rule document ids missing from the catalog, counted at startup.",
		},
		[]string{"service"},
	)
	documentSavesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "saves_total",
			Help:      "Total document create and save requests by outcome.",
		},
		[]string{"service", "operation", "outcome"},
	)
	documentImportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "imports_total",
			Help:      "Total document imports by mime type and outcome.",
		},
		[]string{"service", "mime_type", "outcome"},
	)
	saveRetriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "retries_total",
			Help:      "Total retried store and broker operations.",
		},
		[]string{"service", "operation"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "roadmap",
			Name:      "exports_total",
			Help:      "Total roadmap exports by format.",
		},
		[]string{"service", "format"},
	)
	mcpToolCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mcp",
			Name:      "tool_calls_total",
			Help:      "Total MCP tool calls by tool and status.",
		},
		[]string{"service", "tool", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		roadmapBuildsTotal,
		complianceScore,
		missingMandatory,
		unknownRuleDocuments,
		documentSavesTotal,
		documentImportsTotal,
		saveRetriesTotal,
		exportsTotal,
		mcpToolCallsTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		roadmapBuildsTotal:   roadmapBuildsTotal,
		complianceScore:      complianceScore,
		missingMandatory:     missingMandatory,
		unknownRuleDocuments: unknownRuleDocuments,
		documentSavesTotal:   documentSavesTotal,
		documentImportsTotal: documentImportsTotal,
		saveRetriesTotal:     saveRetriesTotal,
		exportsTotal:         exportsTotal,
		mcpToolCallsTotal:    mcpToolCallsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *HTTPServerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		path := routePattern(r)
		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePattern keeps label cardinality bounded: company and document ids
// are replaced by the chi route template once routing has happened.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/companies/"):
		return "/v1/companies/{companyID}/*"
	case strings.HasPrefix(path, "/mcp"):
		return "/mcp"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordAssessment(service, endpoint string, score, missingMandatory int) {
	m.roadmapBuildsTotal.WithLabelValues(service, endpoint).Inc()
	m.complianceScore.WithLabelValues(service, endpoint).Observe(float64(score))
	m.missingMandatory.WithLabelValues(service, endpoint).Observe(float64(missingMandatory))
}

func (m *HTTPServerMetrics) RecordUnknownRuleDocuments(service string, count int) {
	if count <= 0 {
		return
	}
	m.unknownRuleDocuments.WithLabelValues(service).Add(float64(count))
}

func (m *HTTPServerMetrics) RecordDocumentSave(service, operation, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.documentSavesTotal.WithLabelValues(service, operation, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordDocumentImport(service, mimeType, outcome string) {
	if mimeType == "" {
		mimeType = "unknown"
	}
	m.documentImportsTotal.WithLabelValues(service, mimeType, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordRetry(service, operation string) {
	m.saveRetriesTotal.WithLabelValues(service, operation).Inc()
}

func (m *HTTPServerMetrics) RecordExport(service, format string) {
	m.exportsTotal.WithLabelValues(service, format).Inc()
}

func (m *HTTPServerMetrics) RecordMCPToolCall(service, tool, status string) {
	if tool == "" {
		tool = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.mcpToolCallsTotal.WithLabelValues(service, tool, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
