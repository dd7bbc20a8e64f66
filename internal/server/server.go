// Package server exposes the confirmation engine over an HTTP JSON API.
// This is the inbound collaborator surface; the renderer consumes engine
// events and this API, but the engine never depends on either.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mhalvorsen/vouchsafe/internal/engine"
	"github.com/mhalvorsen/vouchsafe/internal/seal"
)

// Config holds HTTP server configuration.
type Config struct {
	Port int
}

// Server serves the confirmation API.
type Server struct {
	cfg    Config
	eng    *engine.Engine
	store  *seal.Store
	logger *zap.Logger
	srv    *http.Server
}

// New creates a server around an engine and its seal store.
func New(cfg Config, eng *engine.Engine, store *seal.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, eng: eng, store: store, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/proposals", s.handleAdmit)
	mux.HandleFunc("POST /v1/input", s.handleInput)
	mux.HandleFunc("POST /v1/revision", s.handleRevision)
	mux.HandleFunc("GET /v1/current", s.handleCurrent)
	mux.HandleFunc("GET /v1/pending", s.handlePending)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /v1/records/recent", s.handleRecent)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler. For testing.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}

	s.logger.Info("http server listening", zap.String("addr", lis.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
