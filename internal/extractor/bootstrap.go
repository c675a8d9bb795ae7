package extractor

import (
	"fmt"
	"strings"

	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// extractFromBootstrap scans inline scripts for the configured bootstrap
// assignment markers. Markers are tried in configuration order; within a
// marker, scripts are scanned in document order and the first hit wins.
func (pe *PayloadExtractor) extractFromBootstrap(doc *goquery.Document) (models.Value, error) {
	if len(pe.bootstrapMarkers) == 0 {
		return nil, NewAmbiguousSourceError("no data script found", nil)
	}

	var scripts []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if text := s.Text(); text != "" {
			scripts = append(scripts, text)
		}
	})

	for _, marker := range pe.bootstrapMarkers {
		for _, script := range scripts {
			idx := strings.Index(script, marker)
			if idx < 0 {
				continue
			}

			literal, err := scanAssignedLiteral(script[idx+len(marker):])
			if err != nil {
				return nil, NewMalformedPayloadError(
					fmt.Sprintf("bootstrap assignment '%s' is not followed by an object literal", marker), err)
			}
			value, err := models.FromJSON([]byte(literal))
			if err != nil {
				return nil, NewMalformedPayloadError(
					fmt.Sprintf("bootstrap assignment '%s' is not valid JSON", marker), err)
			}

			pe.logger.Debug().Str("marker", marker).Int("literal_bytes", len(literal)).Msg("Extracted payload from bootstrap assignment")
			return value, nil
		}
	}

	return nil, NewAmbiguousSourceError("no data script or bootstrap assignment found", nil)
}

// scanAssignedLiteral extracts the object or array literal assigned after a
// bootstrap marker. It skips whitespace and a single '=', then matches
// braces while tracking string literals, so '}' inside a string does not
// terminate the scan early.
func scanAssignedLiteral(s string) (string, error) {
	i := 0
	seenAssign := false
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		case '=':
			if seenAssign {
				return "", fmt.Errorf("unexpected second '=' after marker")
			}
			seenAssign = true
			i++
			continue
		}
		break
	}
	if i >= len(s) || (s[i] != '{' && s[i] != '[') {
		return "", fmt.Errorf("expected '{' or '[' after assignment")
	}

	open := s[i]
	var closing byte = '}'
	if open == '[' {
		closing = ']'
	}

	start := i
	depth := 0
	inString := false
	var quote byte
	escaped := false
	for ; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated literal")
}
