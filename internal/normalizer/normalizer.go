// Package normalizer rewrites extracted payloads into canonical form so
// the diff engine only sees meaningful differences: mapping fields sorted
// by key, ignored subtrees pruned, timestamp strings truncated to their
// date part. Normalization is idempotent.
package normalizer

import (
	"sort"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/pathexpr"

	"github.com/rs/zerolog"
)

// timestampDateLength keeps the "2006-01-02" prefix of a timestamp string.
const timestampDateLength = 10

// Options control one normalization pass.
type Options struct {
	// IgnorePaths prune the subtree at each matching location. Wildcard
	// index segments match every element of a sequence.
	IgnorePaths []pathexpr.Path
	// IgnoreKeys drop a mapping field wherever it appears, at any depth.
	IgnoreKeys []string
	// TimestampKeys truncate string values under these keys to the date
	// part, so sub-day churn does not register as a change.
	TimestampKeys []string
}

// OptionsForPage merges the global normalize configuration with a page's
// own ignore rules.
func OptionsForPage(cfg config.NormalizeConfig, page models.TrackedPage) Options {
	ignoreKeys := make([]string, 0, len(cfg.IgnoreKeys)+len(page.IgnoreKeys))
	ignoreKeys = append(ignoreKeys, cfg.IgnoreKeys...)
	ignoreKeys = append(ignoreKeys, page.IgnoreKeys...)

	return Options{
		IgnorePaths:   page.IgnorePaths,
		IgnoreKeys:    ignoreKeys,
		TimestampKeys: cfg.TimestampKeys,
	}
}

// Normalizer applies canonicalization passes to extracted payloads.
type Normalizer struct {
	logger zerolog.Logger
}

// New creates a new Normalizer.
func New(logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		logger: logger.With().Str("component", "Normalizer").Logger(),
	}
}

// Normalize returns the canonical form of value under the given options.
// The input value is never modified.
func (n *Normalizer) Normalize(value models.Value, opts Options) models.Value {
	return n.normalizeValue(value, pathexpr.Path{}, opts.IgnorePaths, toSet(opts.IgnoreKeys), toSet(opts.TimestampKeys))
}

func (n *Normalizer) normalizeValue(value models.Value, at pathexpr.Path, ignorePaths []pathexpr.Path, ignoreKeys, timestampKeys map[string]bool) models.Value {
	switch v := value.(type) {
	case models.Mapping:
		fields := make(models.Mapping, 0, len(v))
		for _, field := range v {
			if ignoreKeys[field.Key] {
				continue
			}
			childPath := at.Child(pathexpr.Key(field.Key))
			if matchesAny(ignorePaths, childPath) {
				continue
			}
			childValue := field.Value
			if timestampKeys[field.Key] {
				childValue = truncateTimestamp(childValue)
			}
			fields = append(fields, models.Field{
				Key:   field.Key,
				Value: n.normalizeValue(childValue, childPath, ignorePaths, ignoreKeys, timestampKeys),
			})
		}
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
		return fields
	case models.Sequence:
		elems := make(models.Sequence, 0, len(v))
		for i, elem := range v {
			childPath := at.Child(pathexpr.Index(i))
			// An ignored element is nulled rather than removed:
			// removal would shift later indices and the result would
			// depend on how many times it was normalized.
			if matchesAny(ignorePaths, childPath) {
				elems = append(elems, models.Null{})
				continue
			}
			elems = append(elems, n.normalizeValue(elem, childPath, ignorePaths, ignoreKeys, timestampKeys))
		}
		return elems
	default:
		// Scalars are already canonical: numbers are float64 by
		// construction and strings are never coerced.
		return value
	}
}

func matchesAny(patterns []pathexpr.Path, target pathexpr.Path) bool {
	for _, pattern := range patterns {
		if pattern.Matches(target) {
			return true
		}
	}
	return false
}

// truncateTimestamp reduces a timestamp string to its date prefix.
// Non-string values are left alone.
func truncateTimestamp(value models.Value) models.Value {
	s, ok := value.(models.String)
	if !ok {
		return value
	}
	if len(s) <= timestampDateLength {
		return s
	}
	return s[:timestampDateLength]
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, key := range keys {
		set[key] = true
	}
	return set
}
