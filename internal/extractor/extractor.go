package extractor

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/pathexpr"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// PayloadExtractor locates the embedded JSON payload in page markup and
// resolves configured extraction paths against it. The primary source is a
// single script element with a well-known id and type="application/json";
// when no such element exists it falls back to scanning inline scripts for
// configured bootstrap assignments like "window.__INITIAL_STATE__ = {...}".
type PayloadExtractor struct {
	scriptSelector   string
	bootstrapMarkers []string
	logger           zerolog.Logger
}

// ExtractPayloadInput groups the inputs for one extraction.
type ExtractPayloadInput struct {
	Markup []byte
	// Paths are the extraction paths for the page. Empty means the whole
	// payload document; a single path yields the value at that path;
	// multiple paths yield a mapping keyed by path expression.
	Paths []pathexpr.Path
}

// NewPayloadExtractor creates a new PayloadExtractor.
func NewPayloadExtractor(cfg config.ExtractConfig, logger zerolog.Logger) *PayloadExtractor {
	scriptID := cfg.DataScriptID
	if scriptID == "" {
		scriptID = config.DefaultExtractDataScriptID
	}

	return &PayloadExtractor{
		scriptSelector:   fmt.Sprintf(`script[id=%q][type="application/json"]`, scriptID),
		bootstrapMarkers: cfg.BootstrapMarkers,
		logger:           logger.With().Str("component", "PayloadExtractor").Logger(),
	}
}

// ExtractPayload extracts the payload document from markup and resolves the
// given paths. All failures are reported as *ExtractionError.
func (pe *PayloadExtractor) ExtractPayload(input ExtractPayloadInput) (models.Value, error) {
	doc, err := pe.ExtractDocument(input.Markup)
	if err != nil {
		return nil, err
	}

	switch len(input.Paths) {
	case 0:
		return doc, nil
	case 1:
		return ResolvePath(doc, input.Paths[0])
	default:
		fields := make(models.Mapping, 0, len(input.Paths))
		for _, path := range input.Paths {
			value, err := ResolvePath(doc, path)
			if err != nil {
				return nil, err
			}
			fields = append(fields, models.Field{Key: path.String(), Value: value})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
		return fields, nil
	}
}

// ExtractDocument locates and decodes the payload document without
// resolving any paths.
func (pe *PayloadExtractor) ExtractDocument(markup []byte) (models.Value, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, NewAmbiguousSourceError("markup could not be parsed", err)
	}

	selection := doc.Find(pe.scriptSelector)
	switch selection.Length() {
	case 0:
		return pe.extractFromBootstrap(doc)
	case 1:
		value, err := models.FromJSON([]byte(selection.First().Text()))
		if err != nil {
			return nil, NewMalformedPayloadError("data script does not contain valid JSON", err)
		}
		return value, nil
	default:
		return nil, NewAmbiguousSourceError(
			fmt.Sprintf("found %d data scripts, expected exactly one", selection.Length()), nil)
	}
}

// ResolvePath walks the payload document along a parsed path expression.
func ResolvePath(doc models.Value, path pathexpr.Path) (models.Value, error) {
	current := doc
	for _, seg := range path {
		switch seg.Kind {
		case pathexpr.SegmentKey:
			mapping, ok := current.(models.Mapping)
			if !ok {
				return nil, NewPathNotFoundError(path.String(),
					fmt.Sprintf("key '%s' requires a mapping, found %s", seg.Key, current.Kind()))
			}
			value, found := mapping.Get(seg.Key)
			if !found {
				return nil, NewPathNotFoundError(path.String(),
					fmt.Sprintf("key '%s' not present", seg.Key))
			}
			current = value
		case pathexpr.SegmentIndex:
			seq, ok := current.(models.Sequence)
			if !ok {
				return nil, NewPathNotFoundError(path.String(),
					fmt.Sprintf("index %d requires a sequence, found %s", seg.Index, current.Kind()))
			}
			if seg.Index >= len(seq) {
				return nil, NewPathNotFoundError(path.String(),
					fmt.Sprintf("index %d out of range (length %d)", seg.Index, len(seq)))
			}
			current = seq[seg.Index]
		case pathexpr.SegmentWildcard:
			return nil, NewPathNotFoundError(path.String(),
				"wildcard segments cannot be resolved to a single location")
		}
	}
	return current, nil
}
