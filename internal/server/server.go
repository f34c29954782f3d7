// Package server assembles the interview service and runs its HTTP listener
// and reminder scheduler.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// Server wraps the API router with an HTTP listener
type Server struct {
	logger *logging.Logger
	config config.Config
	res    *Resources

	srv     *http.Server
	started atomic.Bool
}

// New constructs the HTTP server around res
func New(log *logging.Logger, cfg config.Config, res *Resources) *Server {
	return &Server{
		logger: log,
		config: cfg,
		res:    res,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
			Handler:           res.Router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run starts the reminder scheduler and serves HTTP until shutdown
func (s *Server) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	if err := s.res.Reminders.Start(ctx, s.config.ReminderSchedule); err != nil {
		return err
	}

	s.logger.Info("HTTP server listening", "addr", s.srv.Addr, "store", storeDescription(s.config))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops accepting requests, waits for the scheduler, and releases resources
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutdown requested for HTTP server")

	var errs []error
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("HTTP server shutdown with error", "err", err)
		errs = append(errs, err)
	}
	if err := s.res.Reminders.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.res.Close(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.logger.Info("HTTP server shutdown complete")
	return nil
}
