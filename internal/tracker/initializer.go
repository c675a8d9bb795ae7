package tracker

import (
	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/aleister1102/pagewatch/internal/errorwrapper"
	"github.com/aleister1102/pagewatch/internal/extractor"
	"github.com/aleister1102/pagewatch/internal/fetcher"
	"github.com/aleister1102/pagewatch/internal/sitemap"
	"github.com/aleister1102/pagewatch/internal/textextract"

	"github.com/rs/zerolog"
)

// Components bundles everything a tracking run needs. Built once at
// startup by Build and shared with the CLI so it can close stores on
// shutdown.
type Components struct {
	Tracker       *Tracker
	SnapshotStore datastore.SnapshotStore
	ChangeLog     *datastore.ChangeLogStore
	RunHistory    *datastore.RunHistoryDB
}

// Close releases resources held by the components.
func (c *Components) Close() {
	if c.RunHistory != nil {
		_ = c.RunHistory.Close()
	}
}

// Build wires the full tracking pipeline from the global configuration.
// notifier may be nil to disable page change notifications.
func Build(gCfg *config.GlobalConfig, logger zerolog.Logger, notifier ChangeNotifier) (*Components, error) {
	if gCfg == nil {
		return nil, errorwrapper.NewError("global configuration is nil")
	}

	pages, err := BuildTrackedPages(gCfg.Pages)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to build tracked pages")
	}

	snapshotStore, err := datastore.NewFileSnapshotStore(gCfg.StorageConfig, logger)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to initialize snapshot store")
	}

	changeLog, err := initializeChangeLog(gCfg, logger)
	if err != nil {
		return nil, err
	}

	runHistory, err := initializeRunHistory(gCfg, logger)
	if err != nil {
		return nil, err
	}

	checker := NewPageChecker(
		gCfg,
		logger,
		fetcher.NewPageFetcher(gCfg.FetcherConfig, nil, logger),
		extractor.NewPayloadExtractor(gCfg.ExtractConfig, logger),
		textextract.NewContentExtractor(logger),
		sitemap.NewCollector(gCfg.SitemapConfig, gCfg.FetcherConfig, logger),
		snapshotStore,
		changeLog,
		notifier,
	)

	return &Components{
		Tracker:       NewTracker(gCfg, logger, checker, runHistory, pages),
		SnapshotStore: snapshotStore,
		ChangeLog:     changeLog,
		RunHistory:    runHistory,
	}, nil
}

func initializeChangeLog(gCfg *config.GlobalConfig, logger zerolog.Logger) (*datastore.ChangeLogStore, error) {
	if !gCfg.StorageConfig.EnableChangeLog {
		return nil, nil
	}
	changeLog, err := datastore.NewChangeLogStore(gCfg.StorageConfig, logger)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to initialize change log store")
	}
	return changeLog, nil
}

func initializeRunHistory(gCfg *config.GlobalConfig, logger zerolog.Logger) (*datastore.RunHistoryDB, error) {
	if !gCfg.StorageConfig.EnableRunHistory {
		return nil, nil
	}
	runHistory, err := datastore.NewRunHistoryDB(gCfg.StorageConfig.HistoryDBPath, logger)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to initialize run history database")
	}
	return runHistory, nil
}
