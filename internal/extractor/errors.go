package extractor

import (
	"errors"
	"fmt"
)

// ExtractionReason classifies why payload extraction failed.
type ExtractionReason string

const (
	// ReasonAmbiguousOrMissingSource means the markup contained zero or
	// more than one data source, so there is no single payload to read.
	ReasonAmbiguousOrMissingSource ExtractionReason = "ambiguous_or_missing_source"
	// ReasonMalformedPayload means a data source was located but its
	// content did not decode as JSON.
	ReasonMalformedPayload ExtractionReason = "malformed_payload"
	// ReasonPathNotFound means an extraction path did not resolve inside
	// the decoded payload.
	ReasonPathNotFound ExtractionReason = "path_not_found"
)

// ExtractionError carries the failure classification plus, for path
// resolution failures, the offending path expression.
type ExtractionError struct {
	Reason  ExtractionReason
	Path    string
	Detail  string
	Wrapped error
}

func (e *ExtractionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("extraction failed (%s) at path '%s': %s", e.Reason, e.Path, e.Detail)
	}
	return fmt.Sprintf("extraction failed (%s): %s", e.Reason, e.Detail)
}

func (e *ExtractionError) Unwrap() error {
	return e.Wrapped
}

// NewAmbiguousSourceError creates an ExtractionError for a missing or
// duplicated data source.
func NewAmbiguousSourceError(detail string, wrapped error) *ExtractionError {
	return &ExtractionError{
		Reason:  ReasonAmbiguousOrMissingSource,
		Detail:  detail,
		Wrapped: wrapped,
	}
}

// NewMalformedPayloadError creates an ExtractionError for undecodable
// payload content.
func NewMalformedPayloadError(detail string, wrapped error) *ExtractionError {
	return &ExtractionError{
		Reason:  ReasonMalformedPayload,
		Detail:  detail,
		Wrapped: wrapped,
	}
}

// NewPathNotFoundError creates an ExtractionError for an extraction path
// that does not resolve.
func NewPathNotFoundError(path, detail string) *ExtractionError {
	return &ExtractionError{
		Reason: ReasonPathNotFound,
		Path:   path,
		Detail: detail,
	}
}

// HasReason reports whether err is an ExtractionError with the given reason.
func HasReason(err error, reason ExtractionReason) bool {
	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return extractionErr.Reason == reason
	}
	return false
}
