// Package server assembles the HTTP surface of the relay: routing,
// middleware stack, and the http.Server lifecycle.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/leadline-ai/leadline/config"
	"github.com/leadline-ai/leadline/qualify"
	"github.com/leadline-ai/leadline/server/handlers"
	"github.com/leadline-ai/leadline/server/metrics"
	"github.com/leadline-ai/leadline/server/middleware"
)

// Router handles HTTP routing
type Router struct {
	router chi.Router
}

// NewRouter builds the route table and middleware stack around the
// orchestrator.
func NewRouter(o *qualify.Orchestrator, m *metrics.Metrics, logger *zap.Logger) *Router {
	r := chi.NewRouter()

	// Middleware stack, outermost first
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTimer)
	r.Use(middleware.PanicRecovery(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.PrometheusMetrics(m))

	r.Post("/api/start-chat", handlers.NewStartChatHandler(o, logger).ServeHTTP)
	r.Post("/api/chat", handlers.NewChatHandler(o, logger).ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})
	r.Handle("/metrics", m.Handler())

	return &Router{router: r}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	logger          *zap.Logger
	shutdownTimeout time.Duration
}

// NewServer creates a new server instance
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf(":%d", cfg.Port),
			Handler:        handler,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			MaxHeaderBytes: cfg.MaxHeaderBytes,
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// Start starts the server and blocks until ctx is cancelled or the listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Server started", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Info("Shutting down server")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during server shutdown: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}
