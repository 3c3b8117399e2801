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
	"github.com/blitzmed/censusrecon/internal/snapshot"
	"github.com/blitzmed/censusrecon/internal/tableau"
)

var fetchOut string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the encounter view and save it as a snapshot",
	Long: "Exports the full encounter view for a profile and writes it to a Parquet\n" +
		"snapshot, so repeated reconciliations skip the slow fetch.",
	RunE: runFetch,
}

func init() {
	f := fetchCmd.Flags()
	f.StringVar(&cfg.ProfileName, "profile", "", "Client profile: elite, larkin, or concord (required)")
	f.StringVar(&fetchOut, "out", "encounters.parquet", "Snapshot output path")
	_ = fetchCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := loadConfig(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.ValidateTableau(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := tableau.New(ctx, tableau.Options{
		ServerURL:   cfg.Tableau.ServerURL,
		TokenName:   cfg.Tableau.TokenName,
		TokenSecret: cfg.Tableau.TokenSecret,
		SiteID:      cfg.Tableau.SiteID,
		ViewID:      cfg.Tableau.ViewID,
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("tableau sign-in failed")
		os.Exit(exitcode.FetchError)
	}
	defer client.Close(ctx)

	records, err := client.FetchEncounters(ctx, tableau.FetchOptions{
		LicenseKey: cfg.Profile().Spec().LicenseKey,
	})
	if err != nil {
		log.Error().Err(err).Msg("fetch failed")
		if errors.Is(err, tableau.ErrNoData) {
			os.Exit(exitcode.NoData)
		}
		os.Exit(exitcode.FetchError)
	}

	if err := snapshot.Write(fetchOut, records); err != nil {
		log.Error().Err(err).Msg("snapshot write failed")
		os.Exit(exitcode.WriteError)
	}

	fmt.Printf("Fetched %d encounter rows to %s\n", len(records), fetchOut)
	return nil
}
