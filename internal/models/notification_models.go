package models

import (
	"time"
)

// DiscordMessagePayload is the top-level JSON body sent to a Discord
// webhook endpoint.
type DiscordMessagePayload struct {
	Content         string           `json:"content,omitempty"`
	Username        string           `json:"username,omitempty"`
	AvatarURL       string           `json:"avatar_url,omitempty"`
	Embeds          []DiscordEmbed   `json:"embeds,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

// AllowedMentions controls which mentions Discord resolves in the message.
type AllowedMentions struct {
	Parse []string `json:"parse,omitempty"` // e.g. "roles", "users", "everyone"
	Roles []string `json:"roles,omitempty"`
	Users []string `json:"users,omitempty"`
}

// DiscordEmbed is a rich content block within a Discord message.
type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	URL         string              `json:"url,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"` // ISO8601
	Color       int                 `json:"color,omitempty"`
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
}

// DiscordEmbedFooter is the footer line of an embed.
type DiscordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}

// DiscordEmbedField is a name/value pair within an embed.
type DiscordEmbedField struct {
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
	Inline bool   `json:"inline,omitempty"`
}

// PageChangeInfo carries everything the notifier needs to announce a
// detected page change. ReportBody is the rendered change report;
// DiffExcerpt is an optional fenced diff block for text-mode pages.
type PageChangeInfo struct {
	PageID        string
	PageURL       string
	CapturedAt    time.Time
	AddedCount    int
	RemovedCount  int
	ModifiedCount int
	ReportBody    string
	DiffExcerpt   string
}

// TotalChanges returns the number of change entries across all kinds.
func (info PageChangeInfo) TotalChanges() int {
	return info.AddedCount + info.RemovedCount + info.ModifiedCount
}
