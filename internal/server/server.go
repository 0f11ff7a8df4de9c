package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/krx-alert-portal/internal/app"
	"github.com/bobmcallan/krx-alert-portal/internal/common"
	"github.com/bobmcallan/krx-alert-portal/internal/config"
)

const (
	readTimeout = 15 * time.Second
	idleTimeout = 60 * time.Second

	// minWriteTimeout bounds a synchronous analyze_stock call over /mcp when
	// the backend client has no timeout of its own.
	minWriteTimeout = 120 * time.Second

	// writeTimeoutSlack is left after a configured backend timeout for
	// rendering the tool result.
	writeTimeoutSlack = 10 * time.Second
)

// Server serves the portal page, the query trigger, /mcp and the dev proxy.
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
	logger *common.Logger
}

// New creates the HTTP server for application.
func New(application *app.App) *Server {
	s := &Server{
		app:    application,
		logger: application.Logger,
	}

	s.router = s.setupRoutes()

	cfg := application.Config
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  idleTimeout,
	}

	return s
}

// writeTimeout outlives the backend client's timeout so a tool call that
// waits on the backend can still write its result.
func writeTimeout(cfg *config.Config) time.Duration {
	if d := cfg.Client.Timeout.Duration + writeTimeoutSlack; cfg.Client.Timeout.Duration > 0 && d > minWriteTimeout {
		return d
	}
	return minWriteTimeout
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	cfg := s.app.Config
	s.logger.Info().
		Str("address", s.server.Addr).
		Str("url", cfg.BaseURL()).
		Str("api_base", cfg.APIBase()).
		Bool("dev_proxy", s.app.DevProxy != nil).
		Dur("write_timeout", s.server.WriteTimeout).
		Msg("portal listening")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("portal server failed: %w", err)
	}

	return nil
}

// Shutdown stops accepting requests and drains open ones. Queries started by
// /analyze are owned by the app and end in app.Close.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("portal shutting down")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("portal shutdown failed: %w", err)
	}

	s.logger.Info().Msg("portal stopped")
	return nil
}

// Handler returns the routed handler with middleware, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
