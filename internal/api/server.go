// Package api serves the scan engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/strikelab/optionscan/pkg/logger"
)

// Server wraps http.Server with the engine's lifecycle
type Server struct {
	inner  *http.Server
	logger *logger.Logger
}

// New creates a server listening on the given port. Write timeout is
// generous because a POST /api/scan runs the whole pipeline inline.
func New(port string, router http.Handler, log *logger.Logger) *Server {
	return &Server{
		inner: &http.Server{
			Addr:         ":" + port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.inner.Addr
}

// Start blocks serving requests until Shutdown or a listener error
func (s *Server) Start() error {
	s.logger.WithField("addr", s.inner.Addr).Info("Starting API server")

	if err := s.inner.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown drains in-flight requests until the context expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if err := s.inner.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
