// Package pipeline runs one reconciliation batch end to end: load roster →
// fetch (or load) encounters → build index → classify → write output. Each
// phase happens-before the next; the encounter index is fully built before
// the engine reads it.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blitzmed/censusrecon/internal/config"
	"github.com/blitzmed/censusrecon/internal/encounter"
	"github.com/blitzmed/censusrecon/internal/model"
	"github.com/blitzmed/censusrecon/internal/normalize"
	"github.com/blitzmed/censusrecon/internal/recon"
	"github.com/blitzmed/censusrecon/internal/roster"
	"github.com/blitzmed/censusrecon/internal/snapshot"
	"github.com/blitzmed/censusrecon/internal/tableau"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Progress receives monotonic batch progress in [0,100] for UI consumption.
type Progress func(pct int)

// Progress milestones. Fetch owns the first stretch because it dominates
// wall time; classification reports every few percent of the roster.
const (
	pctFetchEnd    = 40
	pctIndexBuilt  = 45
	pctClassifyEnd = 95
	pctDone        = 100
)

// Run executes one batch. The returned summary is valid even when rows were
// skipped; a non-nil error means the batch produced no output.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger, progress Progress) (*model.RunSummary, error) {
	totalStart := time.Now()
	runID := uuid.New()
	log = log.With().Str("run_id", runID.String()).Str("profile", cfg.Profile().String()).Logger()
	report := monotonic(progress)

	summary := &model.RunSummary{
		RunID:      runID.String(),
		Profile:    cfg.Profile().String(),
		RosterPath: cfg.RosterPath,
	}

	// Phase 1: roster load.
	log.Info().Str("roster", cfg.RosterPath).Msg("loading roster")
	table, err := roster.Read(cfg.RosterPath)
	if err != nil {
		return nil, &PipelineError{Phase: "roster", Err: err}
	}

	// Phase 2: encounter fetch (network or snapshot).
	fetchStart := time.Now()
	records, err := loadEncounters(ctx, cfg, table, log, report)
	if err != nil {
		return nil, &PipelineError{Phase: "fetch", Err: err}
	}
	summary.RowsFetched = int64(len(records))
	summary.DurationFetch = time.Since(fetchStart)
	report(pctFetchEnd)

	// Phase 3: index build. Only a fully received batch reaches here, so a
	// stalled fetch can never leave partial buckets behind.
	indexStart := time.Now()
	idx, stats := encounter.Build(records, log)
	summary.RowsSkipped = stats.RowsSkipped
	summary.NamesIndexed = stats.NamesIndexed
	summary.DurationIndex = time.Since(indexStart)
	report(pctIndexBuilt)

	// Phase 4: classification.
	if cfg.Profile() == model.ProfileConcord {
		filtered, dropped := recon.FilterConcordRows(table)
		if dropped > 0 {
			log.Info().Int("rows_dropped", dropped).Msg("excluded location/department rows")
		}
		table = filtered
	}

	classifyStart := time.Now()
	rctx := &recon.Context{
		Index:   idx,
		Profile: cfg.Profile(),
		Log:     log,
		Progress: func(done, total int) {
			if total == 0 {
				return
			}
			report(pctIndexBuilt + done*(pctClassifyEnd-pctIndexBuilt)/total)
		},
	}
	res, err := recon.Reconcile(table, rctx)
	if err != nil {
		return nil, &PipelineError{Phase: "classify", Err: err}
	}
	summary.RowsClassified = res.RowsClassified
	summary.RowsErrored = res.RowsErrored
	summary.StatusCounts = res.StatusCounts
	summary.DurationClassify = time.Since(classifyStart)
	report(pctClassifyEnd)

	// Phase 5: output write.
	writeStart := time.Now()
	order := roster.PreferredOrder
	if cfg.Profile() == model.ProfileConcord {
		order = roster.ConcordOrder
	}
	outPath, err := roster.Write(table, cfg.RosterPath, order)
	if err != nil {
		return nil, &PipelineError{Phase: "write", Err: err}
	}
	summary.OutputPath = outPath
	summary.DurationWrite = time.Since(writeStart)
	summary.DurationTotal = time.Since(totalStart)
	report(pctDone)

	log.Info().
		Int64("rows_fetched", summary.RowsFetched).
		Int64("rows_skipped", summary.RowsSkipped).
		Int64("rows_classified", summary.RowsClassified).
		Int64("rows_errored", summary.RowsErrored).
		Str("output", outPath).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("reconciliation complete")
	return summary, nil
}

// loadEncounters reads the snapshot when one is configured, otherwise
// fetches from the view, optionally persisting the batch for later runs.
func loadEncounters(ctx context.Context, cfg *config.Config, table *model.RosterTable, log zerolog.Logger, report Progress) ([]model.EncounterRecord, error) {
	if cfg.SnapshotPath != "" {
		log.Info().Str("snapshot", cfg.SnapshotPath).Msg("loading encounter snapshot")
		return snapshot.Read(cfg.SnapshotPath)
	}

	since := roster.OldestDOS(table)
	if since != nil {
		log.Info().Str("since", normalize.FormatMDY(*since)).Msg("fetch window start")
	}

	client, err := tableau.New(ctx, tableau.Options{
		ServerURL:   cfg.Tableau.ServerURL,
		TokenName:   cfg.Tableau.TokenName,
		TokenSecret: cfg.Tableau.TokenSecret,
		SiteID:      cfg.Tableau.SiteID,
		ViewID:      cfg.Tableau.ViewID,
	}, log)
	if err != nil {
		return nil, err
	}
	defer client.Close(ctx)

	records, err := client.FetchEncounters(ctx, tableau.FetchOptions{
		LicenseKey: cfg.Profile().Spec().LicenseKey,
		Since:      since,
		Progress: func(pct int) {
			report(pct * pctFetchEnd / 100)
		},
	})
	if err != nil {
		return nil, err
	}

	if cfg.SaveSnapshot != "" {
		if err := snapshot.Write(cfg.SaveSnapshot, records); err != nil {
			log.Warn().Err(err).Msg("snapshot save failed (non-fatal)")
		} else {
			log.Info().Str("snapshot", cfg.SaveSnapshot).Msg("encounter snapshot saved")
		}
	}
	return records, nil
}

// monotonic wraps a Progress so reported values never go backward and a nil
// callback is safe to call.
func monotonic(p Progress) Progress {
	last := 0
	return func(pct int) {
		if pct < last {
			pct = last
		}
		if pct > 100 {
			pct = 100
		}
		last = pct
		if p != nil {
			p(pct)
		}
	}
}
