// Package api provides the HTTP API server and handlers for the reader.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/disanlib/reader-server/internal/http/response"
	"github.com/disanlib/reader-server/internal/sse"
	"github.com/disanlib/reader-server/internal/validation"
)

// Options configures the HTTP surface.
type Options struct {
	Name               string
	Version            string
	CORSOrigins        []string
	RateLimitPerMinute int // 0 disables the per-IP limiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services  *Services
	backends  Backends
	media     MediaSource
	validator *validation.Validator
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
	opts      Options
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, backends Backends, media MediaSource, opts Options, logger *slog.Logger) *Server {
	if opts.Name == "" {
		opts.Name = "Di San Reader API"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	s := &Server{
		services:  services,
		backends:  backends,
		media:     media,
		validator: validation.New(),
		router:    chi.NewRouter(),
		logger:    logger,
		opts:      opts,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(opts.Name, opts.Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json"))

	if len(s.opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if s.opts.RateLimitPerMinute > 0 {
		s.router.Use(httprate.Limit(
			s.opts.RateLimitPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByRealIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				s.logger.Warn("Rate limit exceeded", "ip", r.RemoteAddr, "path", r.URL.Path)
				response.TooManyRequests(w, "Too many requests. Please try again later.", s.logger)
			}),
		))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerLibraryRoutes()
	s.registerSearchRoutes()
	s.registerPreferencesRoutes()
	s.registerReaderRoutes()
	s.registerChatRoutes()

	if s.services.Events != nil {
		s.router.Get("/api/v1/events", sse.NewHandler(s.services.Events, s.logger).ServeHTTP)
	}
	if s.media.Files != nil {
		s.router.Get("/media/*", s.handleMedia)
	}
}

// requestLogger logs each request once it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
