// Package server assembles the HTTP stack: shared middleware, health and
// metrics endpoints, session resolution and the per-client rate limiter.
// Feature packages mount their routes on Router.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/unlockenglish/tutorsite/internal/auth"
	"github.com/unlockenglish/tutorsite/internal/db"
	"github.com/unlockenglish/tutorsite/internal/metrics"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
	// RequestsPerMinute bounds rate-limited routes per client IP; 0 disables limiting.
	RequestsPerMinute int
	Burst             int
}

// Server is the tutorsite HTTP server.
type Server struct {
	cfg        Config
	db         *db.DB
	metrics    *metrics.Metrics
	auth       *auth.Service
	limiter    *rateLimiter
	root       chi.Router
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. authSvc and m may be nil.
func New(cfg Config, database *db.DB, m *metrics.Metrics, authSvc *auth.Service) *Server {
	s := &Server{
		cfg:     cfg,
		db:      database,
		metrics: m,
		auth:    authSvc,
	}
	if cfg.RequestsPerMinute > 0 {
		s.limiter = newRateLimiter(cfg.RequestsPerMinute, cfg.Burst)
	}

	s.root = s.buildRouter()
	s.router = s.root
	if authSvc != nil {
		s.router = s.root.With(authSvc.Middleware)
	}
	return s
}

// buildRouter creates and configures the chi router with the shared routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(timeoutExceptWebsocket(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			slog.Error("health check: database unreachable", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// timeoutExceptWebsocket applies middleware.Timeout to every request except
// websocket upgrades, which stay open for the life of the page.
func timeoutExceptWebsocket(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		timed := middleware.Timeout(d)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}
			timed.ServeHTTP(w, r)
		})
	}
}

// Router returns the router feature packages register on. The signed-in
// user, if any, is in the request context.
func (s *Server) Router() chi.Router { return s.router }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.root }

// Limit wraps h with the per-client rate limiter. Without a configured
// limit h is returned unchanged.
func (s *Server) Limit(h http.Handler) http.Handler {
	if s.limiter == nil {
		return h
	}
	return s.limiter.Middleware(h)
}

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.root,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("tutorsite server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
