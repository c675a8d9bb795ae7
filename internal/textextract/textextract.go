// Package textextract converts page markup into markdown for pages
// tracked in text mode, so their diffs run on readable content instead
// of markup details.
package textextract

import (
	"bytes"
	"strings"

	"github.com/aleister1102/pagewatch/internal/errorwrapper"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// TextKey is the mapping key the extracted markdown is stored under, so
// text-mode pages flow through the same value pipeline as data-mode
// pages.
const TextKey = "text"

// strippedSelectors lists elements removed before conversion; they carry
// no readable content and churn on every deploy.
const strippedSelectors = "script, style, noscript, nav, header, footer"

// ContentExtractor converts HTML into markdown text.
type ContentExtractor struct {
	converter *converter.Converter
	logger    zerolog.Logger
}

// NewContentExtractor creates a content extractor with commonmark and
// table rendering.
func NewContentExtractor(logger zerolog.Logger) *ContentExtractor {
	return &ContentExtractor{
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		logger: logger.With().Str("component", "ContentExtractor").Logger(),
	}
}

// ExtractText converts markup into markdown and wraps it as a mapping
// under TextKey. Relative links are resolved against pageURL.
func (ce *ContentExtractor) ExtractText(markup []byte, pageURL string) (models.Value, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse HTML document")
	}

	doc.Find(strippedSelectors).Remove()

	// Convert the body only; head metadata is not page text.
	bodyHTML, err := goquery.OuterHtml(doc.Find("body"))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to serialize cleaned document")
	}

	markdown, err := ce.converter.ConvertString(bodyHTML, converter.WithDomain(pageURL))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to convert HTML to markdown")
	}

	text := collapseBlankLines(strings.TrimSpace(markdown))

	ce.logger.Debug().
		Str("url", pageURL).
		Int("text_len", len(text)).
		Msg("Extracted markdown text")

	return models.Mapping{
		{Key: TextKey, Value: models.String(text)},
	}, nil
}

// TextOf returns the markdown text carried by a value produced from
// ExtractText. Any other shape yields "".
func TextOf(value models.Value) string {
	mapping, ok := value.(models.Mapping)
	if !ok {
		return ""
	}
	inner, found := mapping.Get(TextKey)
	if !found {
		return ""
	}
	text, ok := inner.(models.String)
	if !ok {
		return ""
	}
	return string(text)
}

// collapseBlankLines squeezes runs of blank lines down to one so layout
// tweaks don't show up as text changes.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
