package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/siliconops/ingestoor/pkg/api"
	"github.com/siliconops/ingestoor/pkg/ingest"
	"github.com/siliconops/ingestoor/pkg/store"
	"github.com/siliconops/ingestoor/pkg/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbound directory and ingest CSV files",
	Long: `Start the file watcher: sweep pre-existing CSV files, then ingest
new files as they arrive. When a server section is configured, the HTTP
API runs alongside the watcher.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	// Setup context with signal handling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
	}()

	st := store.NewStore(log, &cfg.Database)
	if err := st.Start(ctx); err != nil {
		return fmt.Errorf("starting store: %w", err)
	}

	defer func() {
		if err := st.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop store")
		}
	}()

	processor := ingest.NewCSVProcessor(log, st, &cfg.Ingest)

	w := watcher.NewWatcher(log, &cfg.Ingest, processor)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	defer func() {
		if err := w.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop watcher")
		}
	}()

	var srv api.Server

	if cfg.Server != nil {
		srv = api.NewServer(log, cfg.Server, st, processor, w)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("starting api server: %w", err)
		}

		defer func() {
			if err := srv.Stop(); err != nil {
				log.WithError(err).Warn("Failed to stop api server")
			}
		}()
	}

	// Block until shutdown.
	<-ctx.Done()

	log.Info("Shutting down")

	return nil
}
