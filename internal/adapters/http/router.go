package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/kirillkom/hrdocs-compliance/internal/config"
	"github.com/kirillkom/hrdocs-compliance/internal/core/ports"
	"github.com/kirillkom/hrdocs-compliance/internal/observability/metrics"
)

const metricsService = "api"

type Router struct {
	cfg        config.Config
	compliance ports.ComplianceService
	documents  ports.DocumentService
	profiles   ports.ProfileService
	exporter   ports.RoadmapExporter
	validator  *validator.Validate
	metrics    *metrics.HTTPServerMetrics
	mcp        http.Handler
}

func NewRouter(
	cfg config.Config,
	compliance ports.ComplianceService,
	documents ports.DocumentService,
	profiles ports.ProfileService,
	exporter ports.RoadmapExporter,
) *Router {
	return &Router{
		cfg:        cfg,
		compliance: compliance,
		documents:  documents,
		profiles:   profiles,
		exporter:   exporter,
		validator:  validator.New(),
	}
}

// WithMetrics exposes /metrics and records request and domain metrics.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

// WithMCPHandler mounts the MCP endpoint under /mcp.
func (rt *Router) WithMCPHandler(h http.Handler) *Router {
	rt.mcp = h
	return rt
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware, accessLogMiddleware)
	if rt.metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return rt.metrics.Middleware(metricsService, next)
		})
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/openapi.yaml", handleOpenAPI)

	control := rt.trafficControl()
	r.Group(func(r chi.Router) {
		r.Use(control)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/catalog", rt.handleCatalog)
			r.Route("/companies/{companyID}", func(r chi.Router) {
				r.Get("/profile", rt.handleGetProfile)
				r.Put("/profile", rt.handlePutProfile)
				r.Get("/roadmap", rt.handleRoadmap)
				r.Get("/roadmap.xlsx", rt.handleRoadmapExport)
				r.Get("/compliance", rt.handleCompliance)
				r.Get("/documents", rt.handleListDocuments)
				r.Post("/documents", rt.handleCreateDocument)
				r.Post("/documents/import", rt.handleImportDocument)
				r.Get("/documents/{documentID}", rt.handleGetDocument)
				r.Put("/documents/{documentID}", rt.handleSaveDocument)
			})
		})

		if rt.mcp != nil {
			r.Handle("/mcp", rt.mcp)
		}
	})

	return r
}

// trafficControl applies auth, rate limiting and the in-flight gate in that
// order, so rejected callers never hold a slot. The limiter and gate are
// built once and shared by every route the middleware wraps.
func (rt *Router) trafficControl() func(http.Handler) http.Handler {
	var limiter *rate.Limiter
	if rt.cfg.APIRateLimitRPS > 0 {
		burst := rt.cfg.APIRateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rt.cfg.APIRateLimitRPS), burst)
	}
	gate := newInFlightGate(rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait)
	return func(next http.Handler) http.Handler {
		return apiKeyMiddleware(rateLimitMiddleware(gate.wrap(next), limiter), rt.cfg.APIKey)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("http_handler_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		message = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func companyIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "companyID"))
}
