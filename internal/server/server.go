// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/reviewdb/internal/config"
	"github.com/carterperez-dev/reviewdb/internal/health"
)

type Config struct {
	ServerConfig  config.ServerConfig
	HealthHandler *health.Handler
	Logger        *slog.Logger
}

type Server struct {
	httpServer *http.Server
	router     chi.Router
	health     *health.Handler
	logger     *slog.Logger
}

func New(cfg Config) *Server {
	router := chi.NewRouter()

	return &Server{
		router: router,
		health: cfg.HealthHandler,
		logger: cfg.Logger,
		httpServer: &http.Server{
			Addr: fmt.Sprintf(
				"%s:%d",
				cfg.ServerConfig.Host,
				cfg.ServerConfig.Port,
			),
			Handler:      router,
			ReadTimeout:  cfg.ServerConfig.ReadTimeout,
			WriteTimeout: cfg.ServerConfig.WriteTimeout,
			IdleTimeout:  cfg.ServerConfig.IdleTimeout,
		},
	}
}

func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	return nil
}

// Shutdown flips readiness first and waits out drainDelay so load
// balancers stop routing here before in-flight requests are cut off.
func (s *Server) Shutdown(ctx context.Context, drainDelay time.Duration) error {
	if s.health != nil {
		s.health.SetReady(false)
		s.health.SetShutdown(true)
	}

	s.logger.Info("draining connections", "delay", drainDelay)
	select {
	case <-time.After(drainDelay):
	case <-ctx.Done():
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}
