package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blitzmed/censusrecon/internal/exitcode"
	"github.com/blitzmed/censusrecon/internal/logging"
	"github.com/blitzmed/censusrecon/internal/pipeline"
	"github.com/blitzmed/censusrecon/internal/tableau"
)

var showProgress bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch encounters and reconcile a census file",
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&cfg.RosterPath, "roster", "", "Path to the census CSV (required)")
	f.StringVar(&cfg.ProfileName, "profile", "", "Client profile: elite, larkin, or concord (required)")
	f.StringVar(&cfg.SnapshotPath, "snapshot", "", "Reconcile from a saved encounter snapshot instead of fetching")
	f.StringVar(&cfg.SaveSnapshot, "save-snapshot", "", "Persist fetched encounters to this Parquet file")
	f.BoolVar(&showProgress, "progress", false, "Print progress percentages to stderr")
	_ = runCmd.MarkFlagRequired("roster")
	_ = runCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := loadConfig(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.ValidateForRun(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress pipeline.Progress
	if showProgress {
		progress = func(pct int) { fmt.Fprintf(os.Stderr, "\rprogress: %3d%%", pct) }
	}

	summary, err := pipeline.Run(ctx, &cfg, log, progress)
	if showProgress {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		var pe *pipeline.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("reconciliation failed")
			switch {
			case errors.Is(err, tableau.ErrNoData):
				os.Exit(exitcode.NoData)
			case pe.Phase == "fetch":
				os.Exit(exitcode.FetchError)
			case pe.Phase == "write":
				os.Exit(exitcode.WriteError)
			case pe.Phase == "roster":
				os.Exit(exitcode.ValidationError)
			default:
				os.Exit(exitcode.ReconcileError)
			}
		}
		log.Error().Err(err).Msg("reconciliation failed")
		os.Exit(exitcode.ReconcileError)
	}

	fmt.Printf("Reconciliation complete: %d roster rows classified against %d encounters (%d skipped) in %.1fs\n",
		summary.RowsClassified, summary.RowsFetched, summary.RowsSkipped, summary.DurationTotal.Seconds())
	for status, n := range summary.StatusCounts {
		if status == "" {
			status = "(blank)"
		}
		fmt.Printf("  %-28s %d\n", status, n)
	}
	fmt.Printf("Output: %s\n", summary.OutputPath)
	return nil
}
