package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/http/handler"
	"github.com/straye-as/earsip/internal/http/middleware"
	"github.com/straye-as/earsip/internal/metrics"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Auth       *handler.AuthHandler
	Incoming   *handler.IncomingLetterHandler
	Outgoing   *handler.OutgoingLetterHandler
	Categories *handler.CategoryHandler
	Dashboard  *handler.DashboardHandler
	Reports    *handler.ReportHandler
	Proxy      *handler.ProxyHandler
	Health     *handler.HealthHandler
}

type Router struct {
	cfg         *config.Config
	logger      *zap.Logger
	gate        *middleware.SessionGate
	rateLimiter *middleware.RateLimiter
	metrics     *metrics.Metrics
	handlers    Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	gate *middleware.SessionGate,
	rateLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:         cfg,
		logger:      logger,
		gate:        gate,
		rateLimiter: rateLimiter,
		metrics:     m,
		handlers:    handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := rt.handlers

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	if rt.metrics != nil {
		r.Use(middleware.Metrics(rt.metrics))
	}
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Probes
	r.Get("/health", h.Health.Health)
	r.Get("/health/ready", h.Health.Ready)
	if rt.metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(rt.gate.ExpireOnLogout)

		// Public routes
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)

		// Session routes
		r.Group(func(r chi.Router) {
			r.Use(rt.gate.Require)

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/surat-masuk", func(r chi.Router) {
				r.Get("/", h.Incoming.List)
				r.Post("/", h.Incoming.Create)
				r.Get("/{id}", h.Incoming.Get)
				r.Put("/{id}", h.Incoming.Update)
				r.Delete("/{id}", h.Incoming.Delete)
			})

			r.Route("/surat-keluar", func(r chi.Router) {
				r.Get("/", h.Outgoing.List)
				r.Post("/", h.Outgoing.Create)
				r.Get("/{id}", h.Outgoing.Get)
				r.Put("/{id}", h.Outgoing.Update)
				r.Delete("/{id}", h.Outgoing.Delete)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.Categories.List)
				r.Post("/", h.Categories.Create)
				r.Put("/{id}", h.Categories.Update)
				r.Delete("/{id}", h.Categories.Delete)
			})

			r.Get("/dashboard/metrics", h.Dashboard.GetMetrics)

			r.Get("/reports/summary", h.Reports.Summary)
			r.Post("/reports/export", h.Reports.Export)

			if h.Proxy != nil {
				r.Handle("/proxy/*", h.Proxy)
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"not_found","title":"Not Found","status":404,"detail":"Route not found"}`))
	})

	return r
}
