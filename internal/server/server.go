package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/CycleVars_Go/internal/handler"
	"github.com/osse101/CycleVars_Go/internal/metrics"
)

// Config holds the HTTP listener settings
type Config struct {
	Port           int
	APIKey         string
	TrustedProxies []string
}

// Deps are the services behind the HTTP API
type Deps struct {
	Store    handler.Pinger
	Values   handler.ValueService
	Registry handler.DefinitionReloader
	Cycled   handler.CycledDefinitions
	Engine   handler.CycleEngine
	Progress handler.ProgressSnapshotter
	Presence handler.PresenceTracker
}

// Server serves health probes, metrics and the /api/v1 API
type Server struct {
	httpServer *http.Server
}

// NewServer builds the router and wraps it in an http.Server
func NewServer(cfg Config, deps Deps) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewRouter(cfg, deps),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// NewRouter wires middleware and routes.
// Chi middleware executes in the order defined, outermost first.
func NewRouter(cfg Config, deps Deps) http.Handler {
	detector := NewActivityDetector()

	r := chi.NewRouter()
	r.Use(SecurityHeadersMiddleware())
	r.Use(loggingMiddleware)
	r.Use(RateLimitMiddleware(cfg.TrustedProxies, detector))
	r.Use(AuthMiddleware(cfg.APIKey, cfg.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(deps.Store))
	r.Get("/version", handler.HandleVersion())
	r.Handle("/metrics", promhttp.Handler())

	variables := handler.NewVariableHandler(deps.Values)
	presence := handler.NewPresenceHandler(deps.Presence)
	adminCycle := handler.NewAdminCycleHandler(deps.Engine, deps.Progress, deps.Cycled)
	adminVariables := handler.NewAdminVariablesHandler(deps.Registry)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/variables", func(r chi.Router) {
			r.Get("/{key}", variables.HandleGetValue)
			r.Put("/{key}", variables.HandleSetValue)
		})

		r.Route("/presence/{player}", func(r chi.Router) {
			r.Post("/join", presence.HandleJoin)
			r.Post("/leave", presence.HandleLeave)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/cycle/status", adminCycle.HandleGetStatus)
			r.Post("/cycle/run", adminCycle.HandleRun)
			r.Post("/variables/reload", adminVariables.HandleReload)
		})
	})

	return r
}

// Start listens until Stop is called
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
