// Package tracker drives tracking runs: it fans the configured pages out
// to a worker pool, sends each through the check pipeline, and records
// the run's outcome in the run history.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/rs/zerolog"
)

// runIDTimeFormat stamps run IDs down to the second; runs are manual or
// scheduled minutes apart, so collisions are not a concern.
const runIDTimeFormat = "20060102-150405"

// pageJob wraps one tracked page and the WaitGroup of its run.
type pageJob struct {
	Page  models.TrackedPage
	Index int
	RunWG *sync.WaitGroup
}

// Tracker coordinates one-shot tracking runs across all configured pages.
type Tracker struct {
	logger     zerolog.Logger
	gCfg       *config.GlobalConfig
	checker    *PageChecker
	runHistory *datastore.RunHistoryDB
	pages      []models.TrackedPage
}

// NewTracker creates a Tracker over the given pages. runHistory may be
// nil, in which case runs are not recorded.
func NewTracker(
	gCfg *config.GlobalConfig,
	logger zerolog.Logger,
	checker *PageChecker,
	runHistory *datastore.RunHistoryDB,
	pages []models.TrackedPage,
) *Tracker {
	return &Tracker{
		logger:     logger.With().Str("component", "Tracker").Logger(),
		gCfg:       gCfg,
		checker:    checker,
		runHistory: runHistory,
		pages:      pages,
	}
}

// Pages returns the pages this tracker checks.
func (t *Tracker) Pages() []models.TrackedPage {
	return t.pages
}

// Run checks every page once and returns the run summary. Individual page
// failures are collected into the summary; Run itself only fails when the
// run cannot start at all.
func (t *Tracker) Run(ctx context.Context) (*models.RunSummary, error) {
	startedAt := time.Now()
	runID := startedAt.Format(runIDTimeFormat)
	runLogger := t.logger.With().Str("run_id", runID).Logger()

	summary := &models.RunSummary{
		RunID:        runID,
		StartedAt:    startedAt,
		Status:       models.RunStatusStarted,
		PagesChecked: len(t.pages),
	}

	if len(t.pages) == 0 {
		runLogger.Warn().Msg("No pages configured, nothing to check")
		summary.Status = models.RunStatusCompleted
		summary.CompletedAt = time.Now()
		return summary, nil
	}

	dbRunID := t.recordRunStart(runLogger, runID, startedAt)

	usage := GetResourceUsage()
	runLogger.Info().
		Int("pages", len(t.pages)).
		Int64("alloc_mb", usage.AllocMB).
		Int("goroutines", usage.Goroutines).
		Float64("system_mem_used_percent", usage.SystemMemUsedPercent).
		Float64("cpu_usage_percent", usage.CPUUsagePercent).
		Msg("Starting tracking run")

	summary.Outcomes = t.checkAllPages(ctx, runLogger)
	summary.CompletedAt = time.Now()

	for _, outcome := range summary.Outcomes {
		switch outcome.Status {
		case models.PageStatusChanged:
			summary.PagesChanged++
		case models.PageStatusFailed:
			summary.PagesFailed++
		}
	}
	summary.Status = resolveRunStatus(ctx, summary)

	t.recordRunCompletion(runLogger, dbRunID, summary)

	runLogger.Info().
		Str("status", string(summary.Status)).
		Int("changed", summary.PagesChanged).
		Int("failed", summary.PagesFailed).
		Dur("duration", summary.Duration()).
		Msg("Tracking run finished")

	return summary, nil
}

// checkAllPages distributes the pages over a bounded worker pool and
// waits for every submitted check to finish. Pages whose jobs could not
// be submitted before cancellation produce no outcome.
func (t *Tracker) checkAllPages(ctx context.Context, runLogger zerolog.Logger) []models.PageOutcome {
	numWorkers := t.gCfg.TrackerConfig.MaxConcurrentChecks
	if numWorkers <= 0 {
		runLogger.Warn().Int("configured_workers", numWorkers).Msg("MaxConcurrentChecks is not configured or invalid, defaulting to 1 worker")
		numWorkers = 1
	}
	if numWorkers > len(t.pages) {
		numWorkers = len(t.pages)
	}

	// Each worker writes only its job's slot, so outcomes need no lock;
	// runWG.Wait orders the writes before the read below.
	outcomes := make([]models.PageOutcome, len(t.pages))
	workerChan := make(chan pageJob, numWorkers)

	var workersWG sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		workersWG.Add(1)
		go t.worker(ctx, i, workerChan, outcomes, &workersWG)
	}

	var runWG sync.WaitGroup
	runWG.Add(len(t.pages))
	for i, page := range t.pages {
		job := pageJob{Page: page, Index: i, RunWG: &runWG}
		select {
		case workerChan <- job:
		case <-ctx.Done():
			runLogger.Info().Str("page_id", page.ID).Msg("Context cancelled during job submission")
			runWG.Done()
		}
	}
	runWG.Wait()
	close(workerChan)
	workersWG.Wait()

	checked := make([]models.PageOutcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Status != "" {
			checked = append(checked, outcome)
		}
	}
	return checked
}

// worker receives page jobs until the channel closes. After cancellation
// it keeps draining so submitted jobs still release the run WaitGroup.
func (t *Tracker) worker(ctx context.Context, id int, jobs <-chan pageJob, outcomes []models.PageOutcome, wg *sync.WaitGroup) {
	defer wg.Done()
	t.logger.Debug().Int("worker_id", id).Msg("Tracking worker started")

	for job := range jobs {
		select {
		case <-ctx.Done():
			t.logger.Debug().Int("worker_id", id).Str("page_id", job.Page.ID).Msg("Context cancelled, skipping page")
			job.RunWG.Done()
			continue
		default:
		}

		outcomes[job.Index] = t.checker.CheckPage(ctx, job.Page)
		job.RunWG.Done()
	}

	t.logger.Debug().Int("worker_id", id).Msg("Tracking worker stopped")
}

// recordRunStart writes the run's opening row. Failures only cost the
// history entry, not the run.
func (t *Tracker) recordRunStart(runLogger zerolog.Logger, runID string, startedAt time.Time) int64 {
	if t.runHistory == nil {
		return 0
	}
	dbRunID, err := t.runHistory.RecordRunStart(runID, startedAt, len(t.pages))
	if err != nil {
		runLogger.Warn().Err(err).Msg("Failed to record run start in history")
		return 0
	}
	return dbRunID
}

func (t *Tracker) recordRunCompletion(runLogger zerolog.Logger, dbRunID int64, summary *models.RunSummary) {
	if t.runHistory == nil || dbRunID == 0 {
		return
	}
	if err := t.runHistory.UpdateRunCompletion(dbRunID, summary, completionNotes(summary)); err != nil {
		runLogger.Warn().Err(err).Msg("Failed to record run completion in history")
	}
}

// resolveRunStatus classifies a finished run from its outcomes.
func resolveRunStatus(ctx context.Context, summary *models.RunSummary) models.RunStatus {
	switch {
	case ctx.Err() != nil:
		return models.RunStatusInterrupted
	case summary.PagesFailed == 0:
		return models.RunStatusCompleted
	case summary.PagesFailed < len(summary.Outcomes):
		return models.RunStatusPartial
	default:
		return models.RunStatusFailed
	}
}

// completionNotes condenses the failed outcomes into a short history note.
func completionNotes(summary *models.RunSummary) string {
	failed := summary.FailedOutcomes()
	if len(failed) == 0 {
		return ""
	}
	parts := make([]string, 0, len(failed))
	for _, outcome := range failed {
		parts = append(parts, fmt.Sprintf("%s failed at %s", outcome.PageID, outcome.FailedStage))
	}
	return strings.Join(parts, "; ")
}
