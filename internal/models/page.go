package models

import (
	"github.com/aleister1102/pagewatch/internal/pathexpr"
)

// WatchMode selects which pipeline a tracked page flows through.
type WatchMode string

const (
	// WatchModeData extracts the embedded JSON payload from the page
	// markup and diffs it structurally. This is the default mode.
	WatchModeData WatchMode = "data"
	// WatchModeText converts the page body to markdown and diffs it
	// line by line.
	WatchModeText WatchMode = "text"
	// WatchModeSitemap fetches the URL as an XML sitemap and diffs the
	// sorted URL set.
	WatchModeSitemap WatchMode = "sitemap"
)

// IsValid reports whether the mode is one of the known pipeline modes.
func (m WatchMode) IsValid() bool {
	switch m {
	case WatchModeData, WatchModeText, WatchModeSitemap:
		return true
	default:
		return false
	}
}

// TrackedPage is the runtime description of a single page under tracking,
// with all path expressions already parsed.
type TrackedPage struct {
	ID              string
	URL             string
	Mode            WatchMode
	ExtractionPaths []pathexpr.Path
	IgnorePaths     []pathexpr.Path
	IgnoreKeys      []string
}
