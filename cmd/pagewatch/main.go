package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/logger"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/notifier"
	"github.com/aleister1102/pagewatch/internal/tracker"
)

func main() {
	fmt.Println("PageWatch starting...")

	flags := ParseFlags()

	gCfg, err := config.LoadGlobalConfig(flags.ConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", flags.ConfigFile, err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}

	if flags.PageID != "" {
		selected := selectPages(gCfg.Pages, flags.PageID)
		if len(selected) == 0 {
			zLogger.Fatal().Str("page_id", flags.PageID).Msg("No configured page matches -page")
		}
		gCfg.Pages = selected
		zLogger.Info().Int("count", len(selected)).Str("page_id", flags.PageID).Msg("Restricting run to selected pages")
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}

	discordNotifier := notifier.NewDiscordNotifier(zLogger, &http.Client{Timeout: 20 * time.Second})
	notificationHelper := notifier.NewNotificationHelper(discordNotifier, gCfg.NotificationConfig, zLogger)

	if flags.TestNotify {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := notificationHelper.SendTestNotification(ctx); err != nil {
			zLogger.Fatal().Err(err).Msg("Test notification failed")
		}
		zLogger.Info().Msg("Test notification sent successfully")
		return
	}

	components, err := tracker.Build(gCfg, zLogger, notificationHelper)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize tracking pipeline")
	}
	defer components.Close()

	if flags.HistoryPage != "" {
		if err := printChangeHistory(components, flags.HistoryPage, flags.HistoryLimit); err != nil {
			zLogger.Fatal().Err(err).Msg("Failed to read change history")
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, initiating graceful shutdown...")
		cancel()
	}()

	summary, err := components.Tracker.Run(ctx)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Tracking run failed to start")
	}

	notificationHelper.SendRunSummaryNotification(ctx, summary)

	if ctx.Err() != nil {
		zLogger.Info().Msg("PageWatch shutting down due to interrupt.")
	} else {
		zLogger.Info().Msg("PageWatch finished.")
	}

	if summary.PagesFailed > 0 {
		components.Close()
		os.Exit(1)
	}
}

// selectPages narrows the configured pages to the IDs named in the
// comma-separated -page value.
func selectPages(pages []config.PageConfig, pageIDs string) []config.PageConfig {
	wanted := make(map[string]bool)
	for _, id := range strings.Split(pageIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}

	var selected []config.PageConfig
	for _, page := range pages {
		if wanted[page.ID] {
			selected = append(selected, page)
		}
	}
	return selected
}

func printChangeHistory(components *tracker.Components, pageID string, limit int) error {
	if components.ChangeLog == nil {
		return fmt.Errorf("change log is disabled in the configuration")
	}

	records, err := components.ChangeLog.GetRecordsForPage(pageID, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No recorded changes for page '%s'.\n", pageID)
		return nil
	}

	for _, record := range records {
		capturedAt := time.UnixMilli(record.CapturedAt).UTC().Format(time.RFC3339)
		switch record.Kind {
		case string(models.ChangeKindAdded):
			fmt.Printf("%s  + %s: %s\n", capturedAt, record.Path, record.NewValue)
		case string(models.ChangeKindRemoved):
			fmt.Printf("%s  - %s: %s\n", capturedAt, record.Path, record.OldValue)
		default:
			fmt.Printf("%s  ~ %s: %s -> %s\n", capturedAt, record.Path, record.OldValue, record.NewValue)
		}
	}
	return nil
}
