package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleister1102/pagewatch/internal/pathexpr"
	"github.com/aleister1102/pagewatch/internal/urlhandler"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
// Beyond the struct tags it checks that page IDs are unique, so each page
// maps to exactly one snapshot file.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	// Register custom validation for page URLs. NormalizeURL is more
	// lenient than the built-in "url" rule: a missing scheme is fine.
	_ = validate.RegisterValidation("pageurl", func(fl validator.FieldLevel) bool {
		_, err := urlhandler.NormalizeURL(fl.Field().String())
		return err == nil
	})

	// Register custom validation for watch modes
	_ = validate.RegisterValidation("watchmode", func(fl validator.FieldLevel) bool {
		mode := strings.ToLower(fl.Field().String())
		switch mode {
		case "", "data", "text", "sitemap": // Allow empty for omitempty
			return true
		default:
			return false
		}
	})

	// Register custom validation for extraction paths (no wildcards: an
	// extraction path must address a single location)
	_ = validate.RegisterValidation("extractpath", func(fl validator.FieldLevel) bool {
		path, err := pathexpr.Parse(fl.Field().String())
		if err != nil {
			return false
		}
		return !path.HasWildcard()
	})

	// Register custom validation for ignore paths (wildcards allowed)
	_ = validate.RegisterValidation("ignorepath", func(fl validator.FieldLevel) bool {
		_, err := pathexpr.Parse(fl.Field().String())
		return err == nil
	})

	// Register custom validation for LogLevel
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		level := strings.ToLower(fl.Field().String())
		switch level {
		case "", "debug", "info", "warn", "error", "fatal", "panic": // Allow empty for omitempty
			return true
		default:
			return false
		}
	})

	// Register custom validation for LogFormat
	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		format := strings.ToLower(fl.Field().String())
		switch format {
		case "", "console", "text", "json": // Allow empty for omitempty
			return true
		default:
			return false
		}
	})

	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			var validationErrorMessages []string
			for _, e := range errs {
				fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
				msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
				if e.Param() != "" {
					msg += fmt.Sprintf(" (expected: %s)", e.Param())
				}
				if e.Value() != nil && e.Value() != "" {
					msg += fmt.Sprintf(", actual: '%v'", e.Value())
				}
				validationErrorMessages = append(validationErrorMessages, msg)
			}
			return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(validationErrorMessages, "\n  "))
		}
		return fmt.Errorf("configuration validation error: %w", err)
	}

	return validatePageIDsUnique(cfg.Pages)
}

// validatePageIDsUnique rejects duplicate page IDs, which would otherwise
// silently share a snapshot file.
func validatePageIDsUnique(pages []PageConfig) error {
	seen := make(map[string]bool, len(pages))
	for _, page := range pages {
		if seen[page.ID] {
			return fmt.Errorf("configuration validation failed:\n  duplicate page id '%s'", page.ID)
		}
		seen[page.ID] = true
	}
	return nil
}
