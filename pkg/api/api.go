// Package api exposes a small read-only HTTP surface over the ingestion
// service: health, watcher status, project and run listings, and a
// manual ingest trigger. Authentication is out of scope; the server is
// meant to sit behind the dashboard's own gateway.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/siliconops/ingestoor/pkg/config"
	"github.com/siliconops/ingestoor/pkg/ingest"
	"github.com/siliconops/ingestoor/pkg/store"
	"github.com/siliconops/ingestoor/pkg/watcher"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the API HTTP server lifecycle.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// Compile-time interface check.
var _ Server = (*server)(nil)

type server struct {
	log        logrus.FieldLogger
	cfg        *config.ServerConfig
	store      store.Store
	processor  *ingest.CSVProcessor
	watcher    watcher.Watcher
	httpServer *http.Server
}

// NewServer creates a new API server. The watcher may be nil when the
// server runs alongside one-shot processing.
func NewServer(
	log logrus.FieldLogger,
	cfg *config.ServerConfig,
	st store.Store,
	processor *ingest.CSVProcessor,
	w watcher.Watcher,
) Server {
	return &server{
		log:       log.WithField("component", "api"),
		cfg:       cfg,
		store:     st,
		processor: processor,
		watcher:   w,
	}
}

// Start begins serving HTTP requests.
func (s *server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Give the listener a moment to fail fast on a bad address.
	select {
	case err := <-errCh:
		return fmt.Errorf("starting http server: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	s.log.WithField("listen", s.cfg.Listen).Info("API server started")

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	s.log.Info("API server stopped")

	return nil
}
