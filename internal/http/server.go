// Package http provides the Gin HTTP servers and shared middleware.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/pseudonymizer/internal/config"
)

// HealthChecker reports whether a backing store is reachable.
// Implemented by the Redis client; nil means no live backend to probe.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server is an HTTP server wrapping a Gin router. The same type serves both
// the pseudonymization and the repersonalization APIs; the routes registered
// via SetupRouter decide which one a given instance is.
type Server struct {
	store  HealthChecker
	router *gin.Engine
	server *http.Server
	host   string
	port   int
	logger *slog.Logger
}

// NewServer creates a new Server. The store is probed by the readiness
// endpoint and may be nil when no backend is configured.
func NewServer(store HealthChecker, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		store:  store,
		host:   host,
		port:   port,
		logger: logger,
	}
}

// SetupRouter builds the router with the standard middleware chain
// (recovery, request ID, logging, optional CORS and rate limiting) and the
// health endpoints, then lets register attach the application routes.
func (s *Server) SetupRouter(cfg *config.Config, register func(router *gin.Engine)) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.RateLimitEnabled {
		router.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	if register != nil {
		register(router)
	}

	s.router = router
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, probing the
// mapping store backend when one is configured.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}

	ready := true
	if s.store == nil {
		components["mapping_store"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.store.Health(ctx); err != nil {
			s.logger.Warn("readiness probe failed", slog.Any("error", err))
			components["mapping_store"] = "error"
			ready = false
		} else {
			components["mapping_store"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server and blocks until it stops. SetupRouter must
// have been called first.
func (s *Server) Start(ctx context.Context) error {
	if s.server == nil {
		return fmt.Errorf("server router is not configured")
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
