package urlhandler

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Regex for cleaning filenames
var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

// NormalizeURL normalizes a URL string, ensuring it has a scheme and a
// hostname. Pages configured as "example.com/pricing" come out as
// "http://example.com/pricing".
func NormalizeURL(rawURL string) (string, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return "", errors.New("URL is empty or only whitespace")
	}

	// Add scheme if missing
	if !strings.Contains(trimmedURL, "://") && !strings.HasPrefix(trimmedURL, "//") {
		trimmedURL = "http://" + trimmedURL
	}

	parsedURL, err := url.Parse(trimmedURL)
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", trimmedURL, err)
	}

	if parsedURL.Host == "" {
		return "", errors.New("URL lacks a valid hostname")
	}

	return parsedURL.String(), nil
}

// ValidateURLFormat validates URL format using net/url parsing (for config validation)
func ValidateURLFormat(rawURL string) error {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return fmt.Errorf("URL is empty")
	}

	_, err := url.ParseRequestURI(trimmedURL)
	if err != nil {
		return fmt.Errorf("invalid URL format '%s': %w", trimmedURL, err)
	}

	return nil
}

// SanitizeFilename creates a safe filename string from a page ID or URL.
// It removes the protocol, replaces unsafe characters with underscores,
// and collapses runs of underscores.
func SanitizeFilename(input string) string {
	name := input
	if i := strings.Index(name, "://"); i != -1 {
		name = name[i+3:]
	}

	name = unsafeFilenameCharsRegex.ReplaceAllString(name, "_")
	name = multipleUnderscoresRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	// Input consisting only of unsafe characters would otherwise produce
	// an empty filename.
	if name == "" {
		return "sanitized_empty_input"
	}

	return name
}
