// Package api provides the HTTP API server and handlers for the Larder
// recipe-sharing server.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/larderapp/larder-server/internal/auth"
	"github.com/larderapp/larder-server/internal/config"
	"github.com/larderapp/larder-server/internal/logger"
	"github.com/larderapp/larder-server/internal/metrics"
	"github.com/larderapp/larder-server/internal/ratelimit"
	"github.com/larderapp/larder-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	sessions *auth.SessionCodec
	config   *config.Config
	router   *chi.Mux
	api      huma.API
	logger   *logger.Logger

	// loginLimiter throttles POST /login and POST /register per client IP.
	loginLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, sessions *auth.SessionCodec, cfg *config.Config, log *slog.Logger) *Server {
	s := &Server{
		store:        st,
		services:     services,
		sessions:     sessions,
		config:       cfg,
		router:       chi.NewRouter(),
		logger:       logger.Wrap(log),
		loginLimiter: ratelimit.NewWithEviction(cfg.Auth.LoginRate, cfg.Auth.LoginBurst, ratelimit.DefaultIdleTTL, ratelimit.DefaultSweepInterval),
	}

	// chi requires middleware before the first route, and humachi.New
	// already mounts the OpenAPI routes.
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(cfg.Server.Name+" API", "1.0.0")
	humaConfig.Info.Description = "Share recipes, tag them, and review each other's cooking."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// requestLogger returns the server logger tagged with the request ID in ctx.
func (s *Server) requestLogger(ctx context.Context) *logger.Logger {
	return s.logger.ForRequest(ctx)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.loginLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)

	if len(s.config.Server.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.Server.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", csrfHeader},
			ExposedHeaders:   []string{"Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.router.Use(s.sessionMiddleware)
}

// registerRoutes registers every route. Raw routes go straight on chi.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerRecipeRoutes()
	s.registerReviewRoutes()
	s.registerSearchRoutes()
	s.registerTagRoutes()
	s.registerUserRoutes()

	s.router.Get("/image/{id}", s.handleGetImage)
	s.router.Handle("/metrics", promhttp.Handler())
}
