package config

// NotificationConfig defines configuration for notifications
type NotificationConfig struct {
	AvatarURL          string   `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty" validate:"omitempty,url"`
	DiscordWebhookURL  string   `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty" validate:"omitempty,url"`
	MentionRoleIDs     []string `json:"mention_role_ids,omitempty" yaml:"mention_role_ids,omitempty"`
	NotifyOnFailure    bool     `json:"notify_on_failure" yaml:"notify_on_failure"`
	NotifyOnRunSummary bool     `json:"notify_on_run_summary" yaml:"notify_on_run_summary"`
	Username           string   `json:"username,omitempty" yaml:"username,omitempty"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		AvatarURL:          "",
		DiscordWebhookURL:  "",
		MentionRoleIDs:     []string{},
		NotifyOnFailure:    true,
		NotifyOnRunSummary: true,
		Username:           "pagewatch",
	}
}
