package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/HerbHall/drivermatch/internal/plugin"
	"github.com/HerbHall/drivermatch/internal/version"
	pub "github.com/HerbHall/drivermatch/pkg/plugin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options tunes the HTTP server. Zero values disable the corresponding
// middleware.
type Options struct {
	// CORSOrigins lists the origins allowed to call the API. Empty disables
	// CORS handling.
	CORSOrigins []string
	// RateLimit is the sustained request rate per second for module routes.
	RateLimit float64
	RateBurst int
	// Gatherer backs GET /api/v1/metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server is the drivermatch HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *plugin.Registry
	logger     *zap.Logger
	mux        *http.ServeMux
	limiter    *rate.Limiter
	opts       Options
}

// New creates a server that mounts the routes of every initialized module.
func New(addr string, reg *plugin.Registry, opts Options, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		registry: reg,
		logger:   logger,
		mux:      mux,
		opts:     opts,
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	s.registerCoreRoutes()
	s.mountModuleRoutes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	if len(s.opts.CORSOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}).Handler(h)
	}
	return h
}

// registerCoreRoutes sets up routes that are always available.
func (s *Server) registerCoreRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/modules", s.handleModules)
	if s.opts.Gatherer != nil {
		s.mux.Handle("GET /api/v1/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
}

// mountModuleRoutes registers all module routes under /api/v1/{module}/.
func (s *Server) mountModuleRoutes() {
	for name, routes := range s.registry.AllRoutes() {
		for _, route := range routes {
			pattern := fmt.Sprintf("%s /api/v1/%s%s", route.Method, name, route.Path)
			s.mux.Handle(pattern, s.rateLimited(route.Handler))
			s.logger.Debug("mounted route",
				zap.String("module", name),
				zap.String("pattern", pattern),
			)
		}
	}
}

// rateLimited rejects requests beyond the configured rate with 429.
func (s *Server) rateLimited(next http.HandlerFunc) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			RateLimited(w, "request rate exceeded, retry shortly", r.URL.Path)
			return
		}
		next(w, r)
	})
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth returns the server health status together with the health of
// modules that report one.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	modules := s.registry.Health(r.Context())
	status := "ok"
	for _, h := range modules {
		if h.Status != pub.StatusHealthy {
			status = "degraded"
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Drivermatch-Version", version.Short())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"service": "drivermatch",
		"version": version.Map(),
		"modules": modules,
	})
}

// handleModules returns the registered modules.
func (s *Server) handleModules(w http.ResponseWriter, _ *http.Request) {
	type moduleResponse struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Enabled bool   `json:"enabled"`
	}
	all := s.registry.All()
	info := make([]moduleResponse, 0, len(all))
	for _, m := range all {
		info = append(info, moduleResponse{
			Name:    m.Name(),
			Version: m.Version(),
			Enabled: s.registry.Enabled(m.Name()),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Drivermatch-Version", version.Short())
	_ = json.NewEncoder(w).Encode(info)
}
