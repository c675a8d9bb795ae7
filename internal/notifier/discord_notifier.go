// Package notifier delivers change reports and run summaries to a
// Discord webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/aleister1102/pagewatch/internal/errorwrapper"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/rs/zerolog"
)

const defaultNotifierTimeout = 20 * time.Second

// Attachment is an optional file sent along with a notification, used
// when a report is too long for an embed.
type Attachment struct {
	Filename string
	Content  []byte
}

// DiscordNotifier handles sending notifications to a Discord webhook.
type DiscordNotifier struct {
	logger     zerolog.Logger
	httpClient *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier. A nil client gets a
// default one with a 20s timeout.
func NewDiscordNotifier(logger zerolog.Logger, httpClient *http.Client) *DiscordNotifier {
	componentLogger := logger.With().Str("component", "DiscordNotifier").Logger()

	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultNotifierTimeout}
	}

	return &DiscordNotifier{
		logger:     componentLogger,
		httpClient: httpClient,
	}
}

// SendNotification sends a message payload and an optional attachment to
// the given webhook URL. An empty webhook URL skips the send silently so
// callers don't have to special-case unconfigured notifications.
func (dn *DiscordNotifier) SendNotification(ctx context.Context, webhookURL string, payload models.DiscordMessagePayload, attachment *Attachment) error {
	if webhookURL == "" {
		dn.logger.Debug().Msg("Webhook URL is empty, skipping Discord notification")
		return nil
	}

	if _, err := url.ParseRequestURI(webhookURL); err != nil {
		return errorwrapper.WrapError(err, "invalid Discord webhook URL")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to marshal Discord payload")
	}
	if err := writer.WriteField("payload_json", string(payloadJSON)); err != nil {
		return errorwrapper.WrapError(err, "failed to write payload_json to multipart")
	}

	if attachment != nil {
		part, err := writer.CreateFormFile("file[0]", attachment.Filename)
		if err != nil {
			return errorwrapper.WrapError(err, "failed to create form file")
		}
		if _, err := part.Write(attachment.Content); err != nil {
			return errorwrapper.WrapError(err, "failed to write attachment to form")
		}
	}

	if err := writer.Close(); err != nil {
		return errorwrapper.WrapError(err, "failed to close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, body)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to create Discord request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := dn.httpClient.Do(req)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to send Discord notification")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, string(respBody), webhookURL)
	}

	dn.logger.Debug().Int("status_code", resp.StatusCode).Msg("Discord notification sent")
	return nil
}
