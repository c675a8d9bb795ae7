package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/models"
)

func TestBuildTrackedPages_DefaultsModeToData(t *testing.T) {
	pages, err := BuildTrackedPages([]config.PageConfig{
		{ID: "home", URL: "https://example.com/"},
	})

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, models.WatchModeData, pages[0].Mode)
	assert.Equal(t, "https://example.com/", pages[0].URL)
}

func TestBuildTrackedPages_NormalizesURL(t *testing.T) {
	pages, err := BuildTrackedPages([]config.PageConfig{
		{ID: "shop", URL: "example.com/shop"},
	})

	require.NoError(t, err)
	assert.Equal(t, "http://example.com/shop", pages[0].URL)
}

func TestBuildTrackedPages_ModeIsCaseInsensitive(t *testing.T) {
	pages, err := BuildTrackedPages([]config.PageConfig{
		{ID: "prose", URL: "https://example.com", Mode: "TEXT"},
	})

	require.NoError(t, err)
	assert.Equal(t, models.WatchModeText, pages[0].Mode)
}

func TestBuildTrackedPages_RejectsUnknownMode(t *testing.T) {
	_, err := BuildTrackedPages([]config.PageConfig{
		{ID: "odd", URL: "https://example.com", Mode: "screenshot"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown watch mode")
}

func TestBuildTrackedPages_ParsesPathExpressions(t *testing.T) {
	pages, err := BuildTrackedPages([]config.PageConfig{
		{
			ID:              "narrow",
			URL:             "https://example.com",
			ExtractionPaths: []string{"props.pageProps"},
			IgnorePaths:     []string{"items[*].viewCount"},
			IgnoreKeys:      []string{"sessionId"},
		},
	})

	require.NoError(t, err)
	require.Len(t, pages[0].ExtractionPaths, 1)
	assert.Equal(t, "props.pageProps", pages[0].ExtractionPaths[0].String())
	require.Len(t, pages[0].IgnorePaths, 1)
	assert.Equal(t, "items[*].viewCount", pages[0].IgnorePaths[0].String())
	assert.Equal(t, []string{"sessionId"}, pages[0].IgnoreKeys)
}

func TestBuildTrackedPages_RejectsWildcardExtractionPath(t *testing.T) {
	_, err := BuildTrackedPages([]config.PageConfig{
		{ID: "wild", URL: "https://example.com", ExtractionPaths: []string{"items[*]"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "single location")
}

func TestBuildTrackedPages_RejectsEmptyURL(t *testing.T) {
	_, err := BuildTrackedPages([]config.PageConfig{
		{ID: "blank", URL: "   "},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "blank")
}
