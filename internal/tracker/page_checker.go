package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/aleister1102/pagewatch/internal/differ"
	"github.com/aleister1102/pagewatch/internal/extractor"
	"github.com/aleister1102/pagewatch/internal/fetcher"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/normalizer"
	"github.com/aleister1102/pagewatch/internal/reporter"
	"github.com/aleister1102/pagewatch/internal/sitemap"
	"github.com/aleister1102/pagewatch/internal/textextract"

	"github.com/rs/zerolog"
)

// ChangeNotifier is the slice of the notification helper the page checker
// needs. Kept small so tests can substitute a recorder.
type ChangeNotifier interface {
	SendPageChangeNotification(ctx context.Context, info models.PageChangeInfo)
}

// PageChecker runs a single tracked page through the full pipeline:
// load prior snapshot, fetch, extract, normalize, diff, report, persist.
type PageChecker struct {
	logger        zerolog.Logger
	gCfg          *config.GlobalConfig
	fetcher       *fetcher.PageFetcher
	extractor     *extractor.PayloadExtractor
	textExtractor *textextract.ContentExtractor
	sitemaps      *sitemap.Collector
	normalizer    *normalizer.Normalizer
	engine        *differ.Engine
	textDiffer    *differ.TextDiffer
	renderer      *reporter.Renderer
	snapshotStore datastore.SnapshotStore
	changeLog     *datastore.ChangeLogStore
	notifier      ChangeNotifier
}

// NewPageChecker creates a PageChecker. changeLog and notifier may be nil;
// the corresponding steps are skipped.
func NewPageChecker(
	gCfg *config.GlobalConfig,
	logger zerolog.Logger,
	pageFetcher *fetcher.PageFetcher,
	payloadExtractor *extractor.PayloadExtractor,
	textExtractor *textextract.ContentExtractor,
	sitemapCollector *sitemap.Collector,
	snapshotStore datastore.SnapshotStore,
	changeLog *datastore.ChangeLogStore,
	notifier ChangeNotifier,
) *PageChecker {
	return &PageChecker{
		logger:        logger.With().Str("component", "PageChecker").Logger(),
		gCfg:          gCfg,
		fetcher:       pageFetcher,
		extractor:     payloadExtractor,
		textExtractor: textExtractor,
		sitemaps:      sitemapCollector,
		normalizer:    normalizer.New(logger),
		engine:        differ.NewEngine(logger),
		textDiffer:    differ.NewTextDiffer(logger),
		renderer:      reporter.NewRenderer(gCfg.ReportConfig, logger),
		snapshotStore: snapshotStore,
		changeLog:     changeLog,
		notifier:      notifier,
	}
}

// CheckPage checks one page and reports what happened. Failures are
// captured in the outcome, never returned: one broken page must not stop
// the rest of the run.
func (pc *PageChecker) CheckPage(ctx context.Context, page models.TrackedPage) models.PageOutcome {
	started := time.Now()
	outcome := models.PageOutcome{PageID: page.ID, URL: page.URL}

	pageCtx, cancel := context.WithTimeout(ctx, pc.pageTimeout())
	defer cancel()

	prior, err := pc.loadPriorSnapshot(page.ID)
	if err != nil {
		return pc.failOutcome(outcome, models.StageLoad, err, started)
	}

	capturedAt := time.Now()

	fetched, err := pc.captureCurrentState(pageCtx, page, prior)
	if errors.Is(err, fetcher.ErrNotModified) {
		// Validators confirmed nothing changed; the stored snapshot is
		// still current, so there is nothing to diff or rewrite.
		pc.logger.Debug().Str("page_id", page.ID).Msg("Page not modified since last check")
		outcome.Status = models.PageStatusUnchanged
		outcome.Duration = time.Since(started)
		return outcome
	}
	if err != nil {
		return pc.failOutcome(outcome, models.StageFetch, err, started)
	}

	currentValue, err := pc.extractValue(page, fetched)
	if err != nil {
		return pc.failOutcome(outcome, models.StageExtract, err, started)
	}

	normalized := pc.normalizer.Normalize(currentValue, normalizer.OptionsForPage(pc.gCfg.NormalizeConfig, page))

	snapshot := &models.Snapshot{
		PageID:       page.ID,
		CapturedAt:   capturedAt,
		ETag:         fetched.ETag,
		LastModified: fetched.LastModified,
		Data:         normalized,
	}

	if prior == nil {
		// First observation of this page: store the baseline and report
		// nothing. The next run diffs against it.
		if err := pc.snapshotStore.Put(page.ID, snapshot); err != nil {
			return pc.failOutcome(outcome, models.StagePersist, err, started)
		}
		pc.logger.Info().Str("page_id", page.ID).Msg("Baseline snapshot stored")
		outcome.Status = models.PageStatusBaseline
		outcome.Duration = time.Since(started)
		return outcome
	}

	changes := pc.engine.Compare(prior.Data, normalized)
	if len(changes) > 0 {
		pc.reportChanges(pageCtx, page, prior, normalized, changes, capturedAt)
		outcome.Status = models.PageStatusChanged
		outcome.ChangeCount = len(changes)
	} else {
		outcome.Status = models.PageStatusUnchanged
	}

	// Persist even when unchanged: the server may have rotated its
	// validators, and fresh ones keep the next conditional fetch cheap.
	if err := pc.snapshotStore.Put(page.ID, snapshot); err != nil {
		return pc.failOutcome(outcome, models.StagePersist, err, started)
	}

	outcome.Duration = time.Since(started)
	return outcome
}

// pageTimeout bounds one page check end to end.
func (pc *PageChecker) pageTimeout() time.Duration {
	timeoutSecs := pc.gCfg.TrackerConfig.PageTimeoutSecs
	if timeoutSecs <= 0 {
		timeoutSecs = config.DefaultTrackerPageTimeoutSecs
	}
	return time.Duration(timeoutSecs) * time.Second
}

// loadPriorSnapshot loads the stored snapshot for a page. A page without
// one is not an error; it just has no baseline yet.
func (pc *PageChecker) loadPriorSnapshot(pageID string) (*models.Snapshot, error) {
	snapshot, err := pc.snapshotStore.Get(pageID)
	if errors.Is(err, models.ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// capturedState is what one fetch produced, whichever pipeline ran.
type capturedState struct {
	Markup       []byte
	ETag         string
	LastModified string
	// SitemapValue is set instead of Markup for sitemap-mode pages.
	SitemapValue models.Value
}

// captureCurrentState obtains the page's current raw state according to
// its mode, reusing the prior snapshot's validators for conditional GETs.
func (pc *PageChecker) captureCurrentState(ctx context.Context, page models.TrackedPage, prior *models.Snapshot) (*capturedState, error) {
	if page.Mode == models.WatchModeSitemap {
		value, err := pc.sitemaps.CollectURLs(ctx, page.URL)
		if err != nil {
			return nil, err
		}
		return &capturedState{SitemapValue: value}, nil
	}

	fetchInput := fetcher.FetchPageInput{URL: page.URL}
	if prior != nil {
		fetchInput.PreviousETag = prior.ETag
		fetchInput.PreviousLastModified = prior.LastModified
	}

	result, err := pc.fetcher.FetchPage(ctx, fetchInput)
	if err != nil {
		return nil, err
	}
	return &capturedState{
		Markup:       result.Markup,
		ETag:         result.ETag,
		LastModified: result.LastModified,
	}, nil
}

// extractValue turns the fetched state into the page's tracked value.
func (pc *PageChecker) extractValue(page models.TrackedPage, fetched *capturedState) (models.Value, error) {
	switch page.Mode {
	case models.WatchModeSitemap:
		return fetched.SitemapValue, nil
	case models.WatchModeText:
		return pc.textExtractor.ExtractText(fetched.Markup, page.URL)
	default:
		return pc.extractor.ExtractPayload(extractor.ExtractPayloadInput{
			Markup: fetched.Markup,
			Paths:  page.ExtractionPaths,
		})
	}
}

// reportChanges renders the change set, notifies, and appends to the
// change log. Delivery and log failures are logged but do not fail the
// check; the snapshot must still be persisted.
func (pc *PageChecker) reportChanges(
	ctx context.Context,
	page models.TrackedPage,
	prior *models.Snapshot,
	current models.Value,
	changes models.ChangeSet,
	capturedAt time.Time,
) {
	report := pc.renderer.RenderChangeSet(page.ID, page.URL, changes)

	info := models.PageChangeInfo{
		PageID:        page.ID,
		PageURL:       page.URL,
		CapturedAt:    capturedAt,
		AddedCount:    changes.CountByKind(models.ChangeKindAdded),
		RemovedCount:  changes.CountByKind(models.ChangeKindRemoved),
		ModifiedCount: changes.CountByKind(models.ChangeKindModified),
		ReportBody:    report.Body(),
	}

	if page.Mode == models.WatchModeText {
		info.DiffExcerpt = pc.renderTextExcerpt(prior.Data, current)
	}

	pc.logger.Info().
		Str("page_id", page.ID).
		Int("total_changes", len(changes)).
		Int("omitted", report.OmittedCount).
		Msg("Page changes detected")

	if pc.notifier != nil {
		pc.notifier.SendPageChangeNotification(ctx, info)
	}

	if pc.changeLog != nil {
		if err := pc.changeLog.AppendChanges(page.ID, page.URL, capturedAt, changes); err != nil {
			pc.logger.Warn().Err(err).Str("page_id", page.ID).Msg("Failed to append changes to change log")
		}
	}
}

// renderTextExcerpt produces the fenced line diff between the prior and
// current text of a text-mode page.
func (pc *PageChecker) renderTextExcerpt(previous, current models.Value) string {
	lineChanges := pc.textDiffer.ChangedLines(textextract.TextOf(previous), textextract.TextOf(current))
	if len(lineChanges) == 0 {
		return ""
	}
	return pc.renderer.RenderTextExcerpt(lineChanges)
}

func (pc *PageChecker) failOutcome(outcome models.PageOutcome, stage models.Stage, err error, started time.Time) models.PageOutcome {
	pc.logger.Error().
		Err(err).
		Str("page_id", outcome.PageID).
		Str("stage", string(stage)).
		Msg("Page check failed")

	outcome.Status = models.PageStatusFailed
	outcome.FailedStage = stage
	outcome.Error = err.Error()
	outcome.Duration = time.Since(started)
	return outcome
}
