package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/siliconops/ingestoor/pkg/ingest"
	"github.com/siliconops/ingestoor/pkg/store"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Process CSV files once and exit",
	Long: `Process a single CSV file, or sweep every pending file in the
configured inbound directory when no file argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx := context.Background()

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

	if len(args) == 1 {
		summary, err := processor.ProcessFile(ctx, args[0])
		if err != nil && !errors.Is(err, ingest.ErrNothingInserted) {
			return err
		}

		printSummary(summary)

		if err != nil {
			return err
		}

		return nil
	}

	summaries, err := processor.ProcessAll(ctx)
	if err != nil {
		return err
	}

	for _, summary := range summaries {
		printSummary(summary)
	}

	return nil
}

func printSummary(summary *ingest.Summary) {
	if summary == nil {
		return
	}

	fmt.Printf("%s: %s\n", summary.File, summary.Message)
}
