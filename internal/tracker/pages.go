package tracker

import (
	"fmt"
	"strings"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/errorwrapper"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/pathexpr"
	"github.com/aleister1102/pagewatch/internal/urlhandler"
)

// BuildTrackedPages converts page configurations into their runtime form:
// URLs normalized, modes defaulted, and every path expression parsed. The
// pipeline never sees textual expressions after this point.
func BuildTrackedPages(pageConfigs []config.PageConfig) ([]models.TrackedPage, error) {
	pages := make([]models.TrackedPage, 0, len(pageConfigs))
	for _, pageCfg := range pageConfigs {
		page, err := buildTrackedPage(pageCfg)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func buildTrackedPage(pageCfg config.PageConfig) (models.TrackedPage, error) {
	normalizedURL, err := urlhandler.NormalizeURL(pageCfg.URL)
	if err != nil {
		return models.TrackedPage{}, errorwrapper.WrapError(err, fmt.Sprintf("invalid URL for page '%s'", pageCfg.ID))
	}

	mode := models.WatchMode(strings.ToLower(pageCfg.Mode))
	if mode == "" {
		mode = models.WatchModeData
	}
	if !mode.IsValid() {
		return models.TrackedPage{}, errorwrapper.NewValidationError("mode", pageCfg.Mode, fmt.Sprintf("unknown watch mode for page '%s'", pageCfg.ID))
	}

	extractionPaths, err := pathexpr.ParseAll(pageCfg.ExtractionPaths)
	if err != nil {
		return models.TrackedPage{}, errorwrapper.WrapError(err, fmt.Sprintf("invalid extraction path for page '%s'", pageCfg.ID))
	}
	for _, path := range extractionPaths {
		if path.HasWildcard() {
			return models.TrackedPage{}, errorwrapper.NewValidationError("extraction_paths", path.String(),
				fmt.Sprintf("extraction paths must address a single location, page '%s'", pageCfg.ID))
		}
	}

	ignorePaths, err := pathexpr.ParseAll(pageCfg.IgnorePaths)
	if err != nil {
		return models.TrackedPage{}, errorwrapper.WrapError(err, fmt.Sprintf("invalid ignore path for page '%s'", pageCfg.ID))
	}

	return models.TrackedPage{
		ID:              pageCfg.ID,
		URL:             normalizedURL,
		Mode:            mode,
		ExtractionPaths: extractionPaths,
		IgnorePaths:     ignorePaths,
		IgnoreKeys:      pageCfg.IgnoreKeys,
	}, nil
}
