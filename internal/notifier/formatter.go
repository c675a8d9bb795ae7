package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/models"
)

// Discord formatting constants
const (
	SuccessEmbedColor = 0x5CB85C // Bootstrap success green
	ErrorEmbedColor   = 0xD9534F // Bootstrap danger red
	WarningEmbedColor = 0xF0AD4E // Bootstrap warning orange
	InfoEmbedColor    = 0x5BC0DE // Bootstrap info blue
)

const (
	// Discord caps embed descriptions at 4096 characters and field
	// values at 1024. Stay under both with headroom for the fences.
	maxDescriptionLength = 4000
	maxFieldValueLength  = 1000

	maxOutcomeSampleCount = 5
)

// buildMentions creates mention strings for Discord role IDs
func buildMentions(roleIDs []string) string {
	if len(roleIDs) == 0 {
		return ""
	}
	var mentions []string
	for _, roleID := range roleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
	}
	return strings.Join(mentions, " ")
}

// truncateString truncates a string to maxLength with ellipsis
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}

// formatDuration formats duration truncated to seconds
func formatDuration(d time.Duration) string {
	return d.Truncate(time.Second).String()
}

// FormatPageChangeMessage formats the notification for a single page whose
// tracked content changed.
func FormatPageChangeMessage(info models.PageChangeInfo, cfg config.NotificationConfig) models.DiscordMessagePayload {
	description := buildPageChangeDescription(info)

	embed := NewDiscordEmbedBuilder().
		WithTitle("📝 Page Change Detected").
		WithDescription(description).
		WithURL(info.PageURL).
		WithColor(pageChangeColor(info)).
		WithTimestamp(info.CapturedAt).
		WithFooter(cfg.Username).
		AddField("Page", fmt.Sprintf("`%s`", info.PageID), true).
		AddField("Changes", fmt.Sprintf("%d", info.TotalChanges()), true).
		Build()

	return buildPayloadWithMentions(embed, cfg, buildMentions(cfg.MentionRoleIDs))
}

// buildPageChangeDescription creates the description for a page change message
func buildPageChangeDescription(info models.PageChangeInfo) string {
	description := fmt.Sprintf(
		"🔔 **Change detected on `%s`**\n\n"+
			"**Added:** %d\n"+
			"**Removed:** %d\n"+
			"**Modified:** %d",
		info.PageID,
		info.AddedCount,
		info.RemovedCount,
		info.ModifiedCount,
	)

	if info.ReportBody != "" {
		description += "\n\n```\n" + info.ReportBody + "\n```"
	}
	if info.DiffExcerpt != "" {
		description += "\n" + info.DiffExcerpt
	}

	return truncateString(description, maxDescriptionLength)
}

// pageChangeColor picks the embed color from the shape of the change: pure
// removals look like regressions, pure additions like rollouts, everything
// else is a mixed edit.
func pageChangeColor(info models.PageChangeInfo) int {
	switch {
	case info.RemovedCount > 0 && info.AddedCount == 0 && info.ModifiedCount == 0:
		return ErrorEmbedColor
	case info.AddedCount > 0 && info.RemovedCount == 0 && info.ModifiedCount == 0:
		return SuccessEmbedColor
	default:
		return WarningEmbedColor
	}
}

// FormatRunSummaryMessage formats the end-of-run summary notification.
func FormatRunSummaryMessage(summary *models.RunSummary, cfg config.NotificationConfig) models.DiscordMessagePayload {
	statusIcon, color := runStatusBadge(summary)

	description := fmt.Sprintf(
		"%s **Tracking run %s**\n\n"+
			"**Pages Checked:** %d\n"+
			"**Pages Changed:** %d\n"+
			"**Pages Failed:** %d",
		statusIcon,
		strings.ToLower(string(summary.Status)),
		summary.PagesChecked,
		summary.PagesChanged,
		summary.PagesFailed,
	)

	embedBuilder := NewDiscordEmbedBuilder().
		WithTitle("🔄 Run Summary").
		WithDescription(description).
		WithColor(color).
		WithTimestamp(summary.CompletedAt).
		WithFooter(cfg.Username).
		AddField("Run ID", fmt.Sprintf("`%s`", summary.RunID), true).
		AddField("Duration", formatDuration(summary.Duration()), true)

	addChangedPagesField(embedBuilder, summary)
	addFailedPagesField(embedBuilder, summary)

	content := ""
	if summary.PagesFailed > 0 {
		content = buildMentions(cfg.MentionRoleIDs)
	}
	return buildPayloadWithMentions(embedBuilder.Build(), cfg, content)
}

// runStatusBadge maps the run outcome to an icon and embed color.
func runStatusBadge(summary *models.RunSummary) (string, int) {
	switch {
	case summary.Status == models.RunStatusInterrupted:
		return "⚠️", WarningEmbedColor
	case summary.PagesFailed > 0:
		return "❌", ErrorEmbedColor
	case summary.PagesChanged > 0:
		return "✅", SuccessEmbedColor
	default:
		return "✅", InfoEmbedColor
	}
}

// addChangedPagesField adds a sample of changed pages to the embed
func addChangedPagesField(embedBuilder *DiscordEmbedBuilder, summary *models.RunSummary) {
	changed := summary.ChangedOutcomes()
	if len(changed) == 0 {
		return
	}

	var lines []string
	for i, outcome := range changed {
		if i >= maxOutcomeSampleCount {
			break
		}
		lines = append(lines, fmt.Sprintf("• `%s` (%d changes)", outcome.PageID, outcome.ChangeCount))
	}
	if len(changed) > maxOutcomeSampleCount {
		lines = append(lines, fmt.Sprintf("• ... and %d more pages", len(changed)-maxOutcomeSampleCount))
	}

	embedBuilder.AddField("🔍 Changed Pages", truncateString(strings.Join(lines, "\n"), maxFieldValueLength), false)
}

// addFailedPagesField adds a sample of failed pages with their failing
// stage and error to the embed
func addFailedPagesField(embedBuilder *DiscordEmbedBuilder, summary *models.RunSummary) {
	failed := summary.FailedOutcomes()
	if len(failed) == 0 {
		return
	}

	var lines []string
	for i, outcome := range failed {
		if i >= maxOutcomeSampleCount {
			break
		}
		errText := truncateString(outcome.Error, 150)
		lines = append(lines, fmt.Sprintf("• `%s` (%s): %s", outcome.PageID, outcome.FailedStage, errText))
	}
	if len(failed) > maxOutcomeSampleCount {
		lines = append(lines, fmt.Sprintf("• ... and %d more pages", len(failed)-maxOutcomeSampleCount))
	}

	embedBuilder.AddField("⚠️ Failed Pages", truncateString(strings.Join(lines, "\n"), maxFieldValueLength), false)
}

// FormatTestMessage formats the connectivity test notification.
func FormatTestMessage(cfg config.NotificationConfig) models.DiscordMessagePayload {
	embed := NewDiscordEmbedBuilder().
		WithTitle("🧪 Test Notification").
		WithDescription("Webhook connectivity test. If you can read this, delivery works.").
		WithColor(InfoEmbedColor).
		WithTimestamp(time.Now()).
		WithFooter(cfg.Username).
		Build()

	return buildStandardPayload(embed, cfg)
}

// buildStandardPayload creates a standard payload without mentions
func buildStandardPayload(embed models.DiscordEmbed, cfg config.NotificationConfig) models.DiscordMessagePayload {
	return NewDiscordMessagePayloadBuilder().
		WithUsername(cfg.Username).
		WithAvatarURL(cfg.AvatarURL).
		AddEmbed(embed).
		Build()
}

// buildPayloadWithMentions creates a standard payload with mention content
func buildPayloadWithMentions(embed models.DiscordEmbed, cfg config.NotificationConfig, content string) models.DiscordMessagePayload {
	payloadBuilder := NewDiscordMessagePayloadBuilder().
		WithUsername(cfg.Username).
		WithAvatarURL(cfg.AvatarURL).
		WithContent(content).
		AddEmbed(embed)

	if content != "" && len(cfg.MentionRoleIDs) > 0 {
		payloadBuilder.WithAllowedMentions(models.AllowedMentions{
			Parse: []string{"roles"},
			Roles: cfg.MentionRoleIDs,
		})
	}

	return payloadBuilder.Build()
}
