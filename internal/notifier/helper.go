package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/errorwrapper"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/urlhandler"
	"github.com/rs/zerolog"
)

// reportAttachmentThreshold is the rendered report size above which the
// full report rides along as a file attachment instead of being squeezed
// into the truncated embed description.
const reportAttachmentThreshold = 3500

// NotificationHelper provides a high-level interface for sending page
// change and run lifecycle notifications.
type NotificationHelper struct {
	discordNotifier *DiscordNotifier
	cfg             config.NotificationConfig
	logger          zerolog.Logger
}

// NewNotificationHelper creates a new NotificationHelper.
func NewNotificationHelper(dn *DiscordNotifier, cfg config.NotificationConfig, logger zerolog.Logger) *NotificationHelper {
	return &NotificationHelper{
		discordNotifier: dn,
		cfg:             cfg,
		logger:          logger.With().Str("component", "NotificationHelper").Logger(),
	}
}

// SendPageChangeNotification announces a detected change on a single page.
// Delivery failures are logged, never propagated: a missed notification
// must not fail the page check.
func (nh *NotificationHelper) SendPageChangeNotification(ctx context.Context, info models.PageChangeInfo) {
	if nh.discordNotifier == nil || nh.cfg.DiscordWebhookURL == "" {
		nh.logger.Debug().Str("page_id", info.PageID).Msg("Discord webhook not configured, skipping page change notification")
		return
	}

	payload := FormatPageChangeMessage(info, nh.cfg)

	var attachment *Attachment
	if len(info.ReportBody)+len(info.DiffExcerpt) > reportAttachmentThreshold {
		content := info.ReportBody
		if info.DiffExcerpt != "" {
			content += "\n\n" + info.DiffExcerpt
		}
		attachment = &Attachment{
			Filename: fmt.Sprintf("%s-changes.txt", urlhandler.SanitizeFilename(info.PageID)),
			Content:  []byte(content),
		}
	}

	if err := nh.discordNotifier.SendNotification(ctx, nh.cfg.DiscordWebhookURL, payload, attachment); err != nil {
		nh.logger.Error().Err(err).Str("page_id", info.PageID).Msg("Failed to send page change notification")
		return
	}
	nh.logger.Info().Str("page_id", info.PageID).Int("total_changes", info.TotalChanges()).Msg("Page change notification sent")
}

// SendRunSummaryNotification announces the outcome of a full tracking run.
// Which run statuses notify is governed by the notification config.
func (nh *NotificationHelper) SendRunSummaryNotification(ctx context.Context, summary *models.RunSummary) {
	if nh.discordNotifier == nil || nh.cfg.DiscordWebhookURL == "" {
		nh.logger.Debug().Msg("Discord webhook not configured, skipping run summary notification")
		return
	}

	notify := false
	switch summary.Status {
	case models.RunStatusCompleted:
		notify = nh.cfg.NotifyOnRunSummary
	case models.RunStatusPartial, models.RunStatusFailed, models.RunStatusInterrupted:
		notify = nh.cfg.NotifyOnRunSummary || nh.cfg.NotifyOnFailure
	default:
		nh.logger.Warn().Str("status", string(summary.Status)).Msg("Unknown run status for notification, skipping")
		return
	}
	if !notify {
		nh.logger.Debug().Str("status", string(summary.Status)).Msg("Notification for this run status is disabled, skipping")
		return
	}

	payload := FormatRunSummaryMessage(summary, nh.cfg)

	// The caller's context may already be cancelled when the run was
	// interrupted; give the farewell message its own deadline.
	notificationCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := nh.discordNotifier.SendNotification(notificationCtx, nh.cfg.DiscordWebhookURL, payload, nil); err != nil {
		nh.logger.Error().Err(err).Str("run_id", summary.RunID).Msg("Failed to send run summary notification")
		return
	}
	nh.logger.Info().Str("run_id", summary.RunID).Str("status", string(summary.Status)).Msg("Run summary notification sent")
}

// SendTestNotification delivers a connectivity test message. Unlike the
// other senders the error is returned so the caller can surface it.
func (nh *NotificationHelper) SendTestNotification(ctx context.Context) error {
	if nh.discordNotifier == nil || nh.cfg.DiscordWebhookURL == "" {
		return errorwrapper.NewError("discord webhook URL is not configured")
	}
	payload := FormatTestMessage(nh.cfg)
	return nh.discordNotifier.SendNotification(ctx, nh.cfg.DiscordWebhookURL, payload, nil)
}
